// Stub photos application.
//
// Serves the pages the smoke tests expect so the harness can be exercised
// without the real frontend/backend stack.
//
// Usage:
//
//	go run ./cmd/stub-app --addr :5174
//	go run ./cmd/stub-app --addr :5174 --warmup 5  # answer 503 five times first
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesyncim/e2eready/cmd/stub-app/server"
)

func main() {
	log := logrus.New()

	cfg := server.DefaultConfig()
	cfg.Addr = ":5174"

	cmd := &cobra.Command{
		Use:           "stub-app",
		Short:         "Serve a stand-in for the photos frontend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Logger = log
			srv, err := server.NewServer(cfg)
			if err != nil {
				return err
			}
			if _, err := srv.Start(); err != nil {
				return err
			}
			log.Infof("Open %s/photos", srv.URL())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().IntVar(&cfg.WarmupRequests, "warmup", 0, "requests answered with 503 before serving pages")

	if err := cmd.Execute(); err != nil {
		log.WithError(err).Error("stub app failed")
		os.Exit(1)
	}
}
