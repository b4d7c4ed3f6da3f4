package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"storefront/internal/config"
	httpapi "storefront/internal/http"

	_ "storefront/docs"
)

const shutdownTimeout = 5 * time.Second

func newSandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve the seeded in-memory storefront API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Sandbox.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Sandbox.Addr)
			if err != nil {
				return err
			}
			return serveSandbox(ctx, ln, cfg.Sandbox, log)
		},
	}
	cmd.Flags().String("addr", "", "listen address, overriding sandbox.addr")
	return cmd
}

// serveSandbox serves until ctx is done, then drains in-flight requests
func serveSandbox(ctx context.Context, ln net.Listener, cfg config.Sandbox, log logrus.FieldLogger) error {
	srv, err := httpapi.NewSandbox(ctx, cfg.TokenTTL, log)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("sandbox listening")
		errc <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
		return err
	}
	log.Info("sandbox stopped")
	return nil
}
