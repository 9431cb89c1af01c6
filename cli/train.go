package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/absmach/coach/api"
	"github.com/absmach/coach/trainer"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func NewTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Run training",
		Long: `Run the epoch training loop. Every epoch saves a latest checkpoint,
appends one progress row, and updates the best checkpoint on improvement.
SIGINT and SIGTERM interrupt gracefully: the current epoch's partial
results are checkpointed before exit.`,
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
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			rt, err := setup(ctx, cfg, true, logger)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			defer rt.close()

			srv := &http.Server{
				Addr:    cfg.HTTPAddress,
				Handler: api.NewRouter(rt.svc, rt.ledger, logger),
			}

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				logger.Info("starting HTTP server", slog.String("address", cfg.HTTPAddress))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}

				return nil
			})

			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancelShutdown()

				return srv.Shutdown(shutdownCtx)
			})

			var summary trainer.Summary
			g.Go(func() error {
				defer cancel()
				s, err := rt.svc.Train(gctx)
				if err != nil {
					return err
				}
				summary = s

				return nil
			})

			if err := g.Wait(); err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			if summary.Interrupted {
				logSuccessCmd(*cmd, "Training interrupted, progress checkpointed")
			} else {
				logSuccessCmd(*cmd, "Training completed")
			}
			logJSONCmd(*cmd, summary)
		},
	}
}
