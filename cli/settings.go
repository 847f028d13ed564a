package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// envPrefix is the prefix of every environment setting: JUGGLEC_FORMAT, ...
const envPrefix = "jugglec"

// Settings are the CLI defaults read from the environment. Flags override
// them.
type Settings struct {
	// Format selects the output of compile and hss.
	Format string `default:"text" validate:"oneof=text ladder json cbor"`

	// NoColor disables ANSI colors.
	NoColor bool `split_words:"true"`

	// Debug enables debug logging on stderr.
	Debug bool
}

// LoadSettings reads Settings from the environment and validates them.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return nil, &CLIError{
			Type:    "settings",
			Message: "failed to read environment settings",
			Details: err.Error(),
		}
	}
	s.Format = strings.ToLower(s.Format)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks field constraints.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var b strings.Builder
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fmt.Fprintf(&b, "%s=%q must be one of: %s\n", fe.Field(), fe.Value(), fe.Param())
			}
		} else {
			b.WriteString(err.Error())
		}
		return &CLIError{
			Type:    "settings",
			Message: "invalid settings",
			Details: strings.TrimRight(b.String(), "\n"),
			Hint:    "set JUGGLEC_FORMAT or --format to text, ladder, json or cbor",
		}
	}
	return nil
}

// newLogger returns a console logger on w; debug lowers the level from
// warnings to debug.
func newLogger(w io.Writer, debug, useColor bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !useColor}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
