// Package notify runs the extract -> format -> deliver pipeline for
// one CheckMK notification and maps the result to the exit codes the
// notification runner understands.
package notify

import (
	"context"
	"log/slog"

	"github.com/jamswat/checkmk-matrix-notify/internal/config"
	"github.com/jamswat/checkmk-matrix-notify/pkg/event"
	"github.com/jamswat/checkmk-matrix-notify/pkg/matrix"
	"github.com/jamswat/checkmk-matrix-notify/pkg/message"
)

// Exit codes of the CheckMK notification script contract.
const (
	CodeSuccess = 0 // delivered
	CodeRetry   = 1 // transient failure, CheckMK retries later
	CodeFailed  = 2 // permanent failure, CheckMK gives up
)

// Run performs one notification end to end and returns the process
// exit code. Nothing is sent when extraction or configuration fails.
func Run(ctx context.Context, cfg *config.Config, getenv func(string) string, logger *slog.Logger) int {
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid delivery target", "error", err)
		return CodeFailed
	}

	ev, err := event.FromEnv(getenv)
	if err != nil {
		logger.Error("extract notification context", "error", err)
		return CodeFailed
	}

	table, err := loadTable(cfg, logger)
	if err != nil {
		return CodeFailed
	}

	msg := message.Build(ev, table)

	client := matrix.NewClient(cfg.Matrix.Homeserver, cfg.Matrix.AccessToken, cfg.Timeout())
	out := client.Send(ctx, cfg.Matrix.RoomID, msg)

	switch out.Status {
	case matrix.StatusSent:
		logger.Info("notification delivered",
			"host", ev.HostName,
			"kind", string(ev.Kind),
			"state", ev.State(),
			"txn_id", msg.TransactionID,
		)
		return CodeSuccess
	case matrix.StatusPermanent:
		logger.Error("delivery failed permanently", "reason", out.Reason, "http_status", out.HTTPStatus)
		return CodeFailed
	default:
		logger.Warn("delivery failed, will be retried", "reason", out.Reason, "http_status", out.HTTPStatus)
		return CodeRetry
	}
}

// Render formats the notification from the environment without sending
// it, for the render subcommand.
func Render(cfg *config.Config, getenv func(string) string, logger *slog.Logger) (*message.OutgoingMessage, error) {
	ev, err := event.FromEnv(getenv)
	if err != nil {
		return nil, err
	}
	table, err := loadTable(cfg, logger)
	if err != nil {
		return nil, err
	}
	return message.Build(ev, table), nil
}

func loadTable(cfg *config.Config, logger *slog.Logger) (*message.Table, error) {
	if cfg.Presentation.StatesFile == "" {
		return nil, nil
	}
	table, err := message.LoadTable(cfg.Presentation.StatesFile)
	if err != nil {
		logger.Error("load state presentation overrides", "path", cfg.Presentation.StatesFile, "error", err)
		return nil, err
	}
	return table, nil
}
