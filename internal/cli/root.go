// Package cli wires the notification pipeline into a cobra command
// tree and owns the process exit code.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamswat/checkmk-matrix-notify/internal/config"
	"github.com/jamswat/checkmk-matrix-notify/internal/notify"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "checkmk-matrix-notify",
	Short: "Send CheckMK notifications to a Matrix room",
	Long: `checkmk-matrix-notify is a CheckMK notification script that delivers
alert notifications to a Matrix room over the client-server API.

CheckMK invokes it once per notification with the alert context in
NOTIFY_* environment variables and the delivery target (homeserver,
access token, room id) in the three notification parameters. The exit
code tells CheckMK whether to retry: 0 delivered, 1 retry later,
2 give up.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runNotify,
}

// exitError carries the process exit code out of a cobra RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return notify.CodeSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", ee.err)
		}
		return ee.code
	}

	// Flag and usage errors mean a malformed invocation.
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return notify.CodeFailed
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.checkmk-matrix-notify/config.yaml)")
}

func runNotify(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return &exitError{code: notify.CodeFailed, err: fmt.Errorf("load config: %w", err)}
	}

	logger := newLogger(cfg)
	if code := notify.Run(cmd.Context(), cfg, os.Getenv, logger); code != notify.CodeSuccess {
		return &exitError{code: code}
	}
	return nil
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
