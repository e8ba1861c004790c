package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bharatprint/config"
	"bharatprint/connection"
	"bharatprint/logging"
	"bharatprint/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bharatprint",
		Short:        "BharatPrint document sharing API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), checkTrialsCmd(), sweepCmd())
	return root
}

// setup loads configuration and opens every connection.
func setup(ctx context.Context) (*connection.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	app, err := connection.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open connections", zap.Error(err))
		return nil, err
	}
	return app, nil
}

func serveCmd() *cobra.Command {
	var noScheduler bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := setup(ctx)
			if err != nil {
				return err
			}
			defer app.Close()
			logger := app.Logger
			defer logger.Sync()

			gin.SetMode(app.Config.GinMode)
			if err := connection.Migrate(app.DB); err != nil {
				return err
			}
			router, err := connection.NewRouter(app.DB, app.Services)
			if err != nil {
				return err
			}
			srv := connection.NewServer(router, app.Config.Port)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("Server starting", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			})
			if !noScheduler {
				g.Go(func() error {
					c, err := scheduler.New(app.DB, app.Services)
					if err != nil {
						return err
					}
					c.Start()
					logger.Info("Scheduler started")
					<-gctx.Done()
					<-c.Stop().Done()
					return nil
				})
			}
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("Shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "do not run background jobs in this process")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()
			if err := connection.Migrate(app.DB); err != nil {
				return err
			}
			app.Logger.Info("Migration finished")
			return nil
		},
	}
}

func checkTrialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-trials",
		Short: "Downgrade expired trials once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()
			n, err := app.Services.ExpireTrials(cmd.Context(), app.DB)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int{"downgraded_count": n})
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire documents and purge their files once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()
			res, err := app.Services.SweepDocuments(cmd.Context(), app.DB)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
