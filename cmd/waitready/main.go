// Readiness gate for the E2E suite.
//
// Polls the frontend until it serves a successful response, then exits 0.
// If the attempt budget runs out it prints remediation steps and exits 1 so
// CI aborts before any browser test is scheduled.
//
// Usage:
//
//	go run ./cmd/waitready
//	BASE_URL=http://localhost:4173 go run ./cmd/waitready --driver http
//	go run ./cmd/waitready --attempts 30 --delay 2s
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesyncim/e2eready/pkg/browser"
	"github.com/thesyncim/e2eready/pkg/config"
	"github.com/thesyncim/e2eready/pkg/ready"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var rte *ready.ReadinessTimeoutError
		if errors.As(err, &rte) {
			fmt.Fprintln(os.Stderr, "❌ "+rte.Error())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var envFile string

	cmd := &cobra.Command{
		Use:           "waitready [url]",
		Short:         "Wait for the application under test to become reachable",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		if len(args) == 1 {
			v.Set(config.KeyBaseURL, args[0])
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		log := cfg.NewLogger()
		log.SetOutput(cmd.ErrOrStderr())
		log.WithFields(logrus.Fields{
			"driver":   cfg.Browser.Driver,
			"attempts": cfg.Attempts,
		}).Debug("loaded configuration")

		p, err := ready.NewProber(browser.NewLauncher(cfg.Browser), cfg.ProberOptions(log)...)
		if err != nil {
			return err
		}
		res, err := p.Wait(cmd.Context(), cfg.BaseURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is ready after %d attempt(s)\n", cfg.BaseURL, len(res.Attempts))
		return nil
	}

	f := cmd.Flags()
	f.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	f.Int("attempts", ready.DefaultAttempts, "attempt budget")
	f.String("timeout", ready.DefaultAttemptTimeout.String(), "per-attempt timeout")
	f.String("delay", ready.DefaultDelay.String(), "delay between attempts")
	f.String("driver", string(browser.DriverRod), fmt.Sprintf("browser driver %v", browser.Drivers))
	f.Bool("headless", true, "run the browser headless")
	f.String("log-level", logrus.InfoLevel.String(), "log level")

	_ = v.BindPFlag(config.KeyAttempts, f.Lookup("attempts"))
	_ = v.BindPFlag(config.KeyAttemptTimeout, f.Lookup("timeout"))
	_ = v.BindPFlag(config.KeyDelay, f.Lookup("delay"))
	_ = v.BindPFlag(config.KeyDriver, f.Lookup("driver"))
	_ = v.BindPFlag(config.KeyHeadless, f.Lookup("headless"))
	_ = v.BindPFlag(config.KeyLogLevel, f.Lookup("log-level"))

	return cmd
}
