// Package browser provides the browser sessions the readiness prober and
// the smoke tests drive. Each driver wraps one automation library behind
// the ready.Session interface.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/thesyncim/e2eready/pkg/ready"
)

// Driver names a browser automation backend.
type Driver string

const (
	// DriverRod drives Chrome over CDP with go-rod.
	DriverRod Driver = "rod"
	// DriverPlaywright drives Chromium, Firefox or WebKit with playwright-go.
	DriverPlaywright Driver = "playwright"
	// DriverChromedp drives Chrome over CDP with chromedp.
	DriverChromedp Driver = "chromedp"
	// DriverHTTP issues plain HTTP requests without a browser.
	DriverHTTP Driver = "http"
)

// Drivers lists every supported driver.
var Drivers = []Driver{DriverRod, DriverPlaywright, DriverChromedp, DriverHTTP}

// ParseDriver maps a driver name to a Driver. Matching ignores case.
func ParseDriver(name string) (Driver, error) {
	n := Driver(strings.ToLower(strings.TrimSpace(name)))
	for _, d := range Drivers {
		if d == n {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown browser driver %q (want one of %v)", name, Drivers)
}

// Engine names a browser engine for drivers that support more than one.
type Engine string

const (
	Chromium Engine = "chromium"
	Firefox  Engine = "firefox"
	WebKit   Engine = "webkit"
)

// Config configures browser launch options.
type Config struct {
	Driver   Driver
	Engine   Engine // Only honoured by DriverPlaywright (default: chromium)
	Headless bool   // Run in headless mode (default: true)

	// ControlURL connects to an already running browser instead of
	// launching one. Honoured by DriverRod and DriverChromedp.
	ControlURL string

	// Device is a playwright device descriptor name such as "Pixel 5".
	// Only honoured by DriverPlaywright.
	Device string

	// VideoDir enables video recording into the directory.
	// Only honoured by DriverPlaywright.
	VideoDir string
}

// DefaultConfig returns sensible defaults for readiness probing.
func DefaultConfig() Config {
	return Config{
		Driver:   DriverRod,
		Engine:   Chromium,
		Headless: true,
	}
}

// Launch opens a session with the configured driver.
func Launch(ctx context.Context, cfg Config) (ready.Session, error) {
	var (
		s   ready.Session
		err error
	)
	switch cfg.Driver {
	case DriverRod, "":
		s, err = NewRodSession(cfg)
	case DriverPlaywright:
		s, err = NewPlaywrightSession(cfg)
	case DriverChromedp:
		s, err = NewChromedpSession(ctx, cfg)
	case DriverHTTP:
		s = NewHTTPSession()
	default:
		err = fmt.Errorf("unknown browser driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewLauncher returns a ready.Launcher that opens sessions with cfg.
func NewLauncher(cfg Config) ready.Launcher {
	return func(ctx context.Context) (ready.Session, error) {
		return Launch(ctx, cfg)
	}
}
