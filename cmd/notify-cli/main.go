// cmd/notify-cli/main.go
// 本機執行入口 - 以 JSON 事件檔重播批次

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pathway-notify/internal/app"
	"pathway-notify/internal/config"
	"pathway-notify/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notify-cli",
		Short: "Replay content-removed events through the notification pipeline",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		eventPath   string
		dryRun      bool
		paramSource string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send notifications for every record in an event file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if paramSource != "" {
				cfg.ParamSource = paramSource
			}

			event, err := readEvent(cmd.InOrStdin(), eventPath)
			if err != nil {
				return err
			}

			zlog, err := logger.New(cfg.Debug)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer zlog.Sync()

			ctx := cmd.Context()
			resolver, err := app.NewResolver(ctx, cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				resolver = dryRunOverride{Resolver: resolver, DryRun: dryRun}
			}

			h, cleanup, err := app.NewHandler(ctx, cfg, resolver, zlog)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := h.Handle(ctx, event)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", "path to a JSON event file (- for stdin)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "redirect every email to the sender address")
	cmd.Flags().StringVar(&paramSource, "param-source", "", "config source: ssm or env (default from PARAM_SOURCE)")
	return cmd
}

func readEvent(stdin io.Reader, path string) (json.RawMessage, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read event from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	return data, nil
}
