//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/e2eready/cmd/stub-app/server"
	"github.com/thesyncim/e2eready/pkg/browser"
	"github.com/thesyncim/e2eready/pkg/config"
	"github.com/thesyncim/e2eready/pkg/ready"
)

// suite is the configuration every test runs with. BaseURL points at the
// stub application when no external BASE_URL was given.
var suite config.Config

func TestMain(m *testing.M) {
	code := run(m)

	// Cleanup: Kill any orphaned Chrome processes
	// This is a safety net for test failures/panics where
	// defer session.Close() didn't run
	cleanupOrphanedBrowsers()

	os.Exit(code)
}

func run(m *testing.M) int {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := config.Load(config.NewViper())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log := cfg.NewLogger()

	if os.Getenv("BASE_URL") == "" {
		srvCfg := server.DefaultConfig()
		srvCfg.WarmupRequests = 2
		srvCfg.Logger = log.WithField("component", "stub-app")
		srv, err := server.NewServer(srvCfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if _, err := srv.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		cfg.BaseURL = srv.URL()
	}

	log.WithFields(logrus.Fields{
		"url":    cfg.BaseURL,
		"driver": cfg.Browser.Driver,
	}).Info("🔍 global setup")

	p, err := ready.NewProber(browser.NewLauncher(cfg.Browser), cfg.ProberOptions(log)...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := p.Wait(context.Background(), cfg.BaseURL); err != nil {
		fmt.Fprintln(os.Stderr, "❌ "+err.Error())
		return 1
	}

	suite = cfg
	return m.Run()
}

// cleanupOrphanedBrowsers attempts to kill Chrome processes that may have
// been left behind by failed tests. This is best-effort cleanup.
//
// In normal operation, each test's deferred Close handles cleanup.
// This function catches edge cases like panics or os.Exit during tests.
func cleanupOrphanedBrowsers() {
	switch runtime.GOOS {
	case "darwin", "linux":
		// pkill returns non-zero if no processes matched, ignore error
		// Target both chromium (Rod downloads) and chrome (system install)
		_ = exec.Command("pkill", "-f", "chromium|chrome").Run()
	case "windows":
		// taskkill returns non-zero if process not found, ignore error
		_ = exec.Command("taskkill", "/F", "/IM", "chrome.exe").Run()
		_ = exec.Command("taskkill", "/F", "/IM", "chromium.exe").Run()
	}
}
