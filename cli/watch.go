package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/jugglec/runtime/pattern"
)

func (a *app) watchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "watch -f <file>",
		Short: "Recompile a configuration file every time it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.watch(ctx, file, nil)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Configuration file to watch")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// watch compiles file once, then again on every write until ctx is done.
// ready, when non-nil, is closed once the watcher is registered.
func (a *app) watch(ctx context.Context, file string, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &CLIError{Type: "watch", Message: "failed to start file watcher", Details: err.Error()}
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so watch its directory.
	abs, err := filepath.Abs(file)
	if err != nil {
		return &CLIError{Type: "watch", Message: fmt.Sprintf("invalid path %s", file), Details: err.Error()}
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return &CLIError{Type: "watch", Message: fmt.Sprintf("cannot watch %s", file), Details: err.Error()}
	}
	if ready != nil {
		close(ready)
	}

	a.compileFile(file)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			a.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change detected")
			a.compileFile(file)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

// compileFile compiles and prints file; errors are printed, not returned,
// so the watch keeps running.
func (a *app) compileFile(file string) {
	if err := a.compileAndWrite(file); err != nil {
		FormatError(a.stderr, err, a.useColor)
	}
}

func (a *app) compileAndWrite(file string) error {
	input, err := a.readInput(nil, file)
	if err != nil {
		return err
	}
	p, err := pattern.FromConfig(input, pattern.WithLogger(a.logger))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "%s\n", Colorize("-- "+file, ColorBlue, a.useColor))
	return writePattern(a.stdout, p, a.settings.Format, a.useColor)
}
