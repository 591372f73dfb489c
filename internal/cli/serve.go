package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resengine/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(cfg *RootConfig) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resource queries over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, resolveString(cmd, listen, "listen", "listen"), httpapi.NewServer(engine).Handler())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8080", "Listen address")
	_ = viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	return cmd
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("http server failed").
			WithCause(err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
