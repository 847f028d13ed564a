package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/jugglec/runtime/compiler"
	"github.com/aledsdavies/jugglec/runtime/hss"
	"github.com/aledsdavies/jugglec/runtime/pattern"
)

func main() {
	app := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := app.rootCmd().Execute(); err != nil {
		if !errors.Is(err, errPatternsDiffer) {
			FormatError(os.Stderr, err, app.useColor)
		}
		os.Exit(1)
	}
}

// app holds the streams and resolved settings shared by every command.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	settings Settings
	useColor bool
	logger   zerolog.Logger

	// colorDetect decides color when neither flag nor environment disables
	// it; nil means ShouldUseColor.
	colorDetect func(noColor bool) bool
}

func (a *app) rootCmd() *cobra.Command {
	var (
		format  string
		noColor bool
		debug   bool
	)

	rootCmd := &cobra.Command{
		Use:           "jugglec",
		Short:         "Compile siteswap and hand siteswap juggling patterns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := LoadSettings()
			if err != nil {
				return err
			}
			// Flags override the environment
			if cmd.Flags().Changed("format") {
				s.Format = format
			}
			if cmd.Flags().Changed("no-color") {
				s.NoColor = noColor
			}
			if cmd.Flags().Changed("debug") {
				s.Debug = debug
			}
			if err := s.Validate(); err != nil {
				return err
			}

			a.settings = *s
			detect := a.colorDetect
			if detect == nil {
				detect = ShouldUseColor
			}
			a.useColor = detect(s.NoColor)
			a.logger = newLogger(a.stderr, s.Debug, a.useColor)
			return nil
		},
	}

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	rootCmd.PersistentFlags().StringVarP(&format, "format", "o", "text", "Output format: text, ladder, json or cbor")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(a.compileCmd(), a.hssCmd(), a.diffCmd(), a.watchCmd())
	return rootCmd
}

func (a *app) compileCmd() *cobra.Command {
	var (
		file      string
		telemetry bool
	)

	cmd := &cobra.Command{
		Use:   "compile [config]",
		Short: "Compile a pattern configuration such as \"pattern=531;bps=4\"",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := a.readInput(args, file)
			if err != nil {
				return err
			}

			opts := []pattern.Option{pattern.WithLogger(a.logger)}
			if telemetry {
				opts = append(opts, pattern.WithTelemetry(compiler.TelemetryTiming))
			}
			loaded, err := pattern.Load(input, opts...)
			if err != nil {
				return err
			}
			for _, w := range loaded.Pattern.Warnings {
				a.logger.Warn().Msg(w)
			}
			if err := writePattern(a.stdout, loaded.Pattern, a.settings.Format, a.useColor); err != nil {
				return err
			}
			if telemetry && loaded.Compile.Telemetry != nil {
				t := loaded.Compile.Telemetry
				tokens := 0
				if loaded.Parse.Telemetry != nil {
					tokens = loaded.Parse.Telemetry.TokenCount
				}
				_, _ = fmt.Fprintf(a.stderr, "%s tokens=%d nodes=%d throws=%d resolved=%d compile=%s total=%s\n",
					Colorize("telemetry:", ColorGray, a.useColor),
					tokens, t.NodeCount, t.ThrowCount, t.ResolvedCount, loaded.Compile.CompileTime, loaded.TotalTime)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the configuration from a file (- for stdin)")
	cmd.Flags().BoolVar(&telemetry, "telemetry", false, "Print compiler telemetry to stderr")
	return cmd
}

func (a *app) hssCmd() *cobra.Command {
	var opts hss.Options

	cmd := &cobra.Command{
		Use:   "hss <object-pattern> <hand-pattern>",
		Short: "Convert a hand siteswap into a synchronous siteswap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Logger = &a.logger
			result, err := hss.Convert(args[0], args[1], opts)
			if err != nil {
				return err
			}
			return writeHSS(a.stdout, result, a.settings.Format)
		},
	}

	cmd.Flags().StringVar(&opts.HandSpec, "handspec", "", "Hand to juggler assignment, e.g. \"(1,2)(3,4)\"")
	cmd.Flags().BoolVar(&opts.Hold, "hold", false, "Mark throws equal to the hand value as holds")
	cmd.Flags().BoolVar(&opts.DwellMax, "dwellmax", false, "Stretch dwell times up to the next throw")
	cmd.Flags().Float64Var(&opts.Dwell, "dwell", 0, "Base dwell time in beats (default 0.3)")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <config> <config>",
		Short: "Compare two pattern configurations beat by beat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := pattern.FromConfig(args[0], pattern.WithLogger(a.logger))
			if err != nil {
				return err
			}
			actual, err := pattern.FromConfig(args[1], pattern.WithLogger(a.logger))
			if err != nil {
				return err
			}

			wantDigest, err := expected.Digest()
			if err != nil {
				return err
			}
			gotDigest, err := actual.Digest()
			if err != nil {
				return err
			}
			if wantDigest == gotDigest {
				_, _ = fmt.Fprintf(a.stdout, "%s %s\n", Colorize("equivalent", ColorGreen, a.useColor), gotDigest)
				return nil
			}

			if FormatPatternDiff(a.stdout, expected, actual, a.useColor) {
				// Same beats, different canonical form: holds or tags differ.
				_, _ = fmt.Fprintf(a.stdout, "digests differ: %s != %s\n", wantDigest, gotDigest)
			}
			return errPatternsDiffer
		},
	}
}

// readInput handles the 3 modes of input:
// 1. A configuration argument
// 2. Explicit stdin with -f - (or piped input when no argument is given)
// 3. File input with -f path
func (a *app) readInput(args []string, file string) (string, error) {
	if len(args) == 1 {
		if file != "" {
			return "", &CLIError{Type: "input", Message: "give either a configuration argument or --file, not both"}
		}
		return args[0], nil
	}

	var r io.Reader
	switch {
	case file == "-":
		r = a.stdin
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", &CLIError{Type: "input", Message: fmt.Sprintf("error opening file %s", file), Details: err.Error()}
		}
		return strings.TrimSpace(string(data)), nil
	case hasPipedInput(a.stdin):
		r = a.stdin
	default:
		return "", &CLIError{
			Type:    "input",
			Message: "no pattern given",
			Hint:    "try: jugglec compile 531",
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &CLIError{Type: "input", Message: "error reading stdin", Details: err.Error()}
	}
	return strings.TrimSpace(string(data)), nil
}

// hasPipedInput detects if there's data piped to stdin
func hasPipedInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	// Check if stdin is not a character device (i.e., it's piped)
	return (stat.Mode() & os.ModeCharDevice) == 0
}
