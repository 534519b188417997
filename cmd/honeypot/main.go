package main

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const serviceName = "Agentic Honey-Pot API"

var version = "1.0.0" //nolint:gochecknoglobals // overridden via -ldflags

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("honeypot failed")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "honeypot",
		Short:         "Conversational scam honeypot",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// A missing .env file is normal outside local development.
			_ = godotenv.Load()
			setupLogging(cmd.ErrOrStderr())
		},
	}
	root.AddCommand(newServeCmd(), newAnalyzeCmd())
	return root
}

// setupLogging initializes structured logging from environment.
func setupLogging(w io.Writer) {
	level, err := zerolog.ParseLevel(os.Getenv("HONEYPOT_LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("HONEYPOT_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
}
