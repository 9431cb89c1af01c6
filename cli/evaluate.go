package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func NewEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a model",
		Long: `Run a single evaluation pass over the held-out set. No checkpoints
are written and no progress rows are appended. Set COACH_RESUME=true to
evaluate the latest saved checkpoint instead of a fresh model.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg, err := resolveConfig()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx, cfg, false, logger)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			defer rt.close()

			metrics, err := rt.svc.Evaluate(ctx)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			logJSONCmd(*cmd, metrics)
		},
	}
}
