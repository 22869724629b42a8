package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamswat/checkmk-matrix-notify/internal/config"
	"github.com/jamswat/checkmk-matrix-notify/internal/notify"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Format the notification from the environment without sending it",
	Long: `Render reads the NOTIFY_* environment variables like a real
notification run and prints the plain-text and HTML message bodies to
stdout. Nothing is sent; the delivery target may be absent.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return &exitError{code: notify.CodeFailed, err: fmt.Errorf("load config: %w", err)}
	}

	msg, err := notify.Render(cfg, os.Getenv, newLogger(cfg))
	if err != nil {
		return &exitError{code: notify.CodeFailed, err: err}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, msg.PlainText)
	fmt.Fprintln(out, "---")
	fmt.Fprintln(out, msg.HTMLBody)
	return nil
}
