package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/health"
	"github.com/awantoch/cvdfunctions/serverless"
	"github.com/awantoch/cvdfunctions/telemetry"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/spf13/cobra"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the functions locally over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(false); err != nil {
				return err
			}
			// The predict function loads its config lazily from the environment.
			if configPath != "" {
				if err := os.Setenv(constants.EnvConfigPath, configPath); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", constants.DefaultServeAddr, "Listen address")
	return cmd
}

// localFunctions maps function names to their entry points, as deployed.
func localFunctions() map[string]serverless.HandlerFunc {
	return map[string]serverless.HandlerFunc{
		constants.FunctionPredict: serverless.Handler,
		constants.FunctionTest:    health.Handler,
	}
}

func serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           serverless.NewLocalServer(localFunctions()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		utils.Info("serving functions on %s%s", addr, constants.DefaultFunctionsPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return telemetry.Shutdown(shutdownCtx)
}
