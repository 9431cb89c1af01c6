package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func NewProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Profile a forward pass",
		Long:  `Time a single forward pass over one batch and report the result.`,
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

			report, err := rt.svc.Profile(ctx)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			logJSONCmd(*cmd, report)
		},
	}
}
