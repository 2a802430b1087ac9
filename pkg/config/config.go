// Package config loads the harness configuration from the environment.
//
// Every setting has an environment variable so CI pipelines can tune the
// harness without flags:
//
//	BASE_URL             target frontend (default http://localhost:5174)
//	E2E_ATTEMPTS         readiness attempt budget (default 60)
//	E2E_ATTEMPT_TIMEOUT  per-attempt timeout, "2s" or milliseconds (default 2000)
//	E2E_DELAY            delay between attempts, "1s" or milliseconds (default 1000)
//	E2E_DRIVER           rod, playwright, chromedp or http (default rod)
//	E2E_HEADLESS         run browsers headless (default true)
//	E2E_PROJECTS         comma separated project names (default all)
//	E2E_OUTPUT_DIR       screenshots, videos and traces (default test-results)
//	BROWSER_URL          connect to a running browser instead of launching one
//	CI                   enables CI runner settings when set
//	LOG_LEVEL            logrus level (default info)
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/thesyncim/e2eready/pkg/browser"
	"github.com/thesyncim/e2eready/pkg/ready"
)

// Keys double as lower-cased environment variable names.
const (
	KeyBaseURL        = "base_url"
	KeyAttempts       = "e2e_attempts"
	KeyAttemptTimeout = "e2e_attempt_timeout"
	KeyDelay          = "e2e_delay"
	KeyDriver         = "e2e_driver"
	KeyHeadless       = "e2e_headless"
	KeyProjects       = "e2e_projects"
	KeyOutputDir      = "e2e_output_dir"
	KeyBrowserURL     = "browser_url"
	KeyCI             = "ci"
	KeyLogLevel       = "log_level"
)

// DefaultBaseURL is the frontend dev server address.
const DefaultBaseURL = "http://localhost:5174"

// Config is the complete harness configuration.
type Config struct {
	BaseURL        string
	Attempts       int
	AttemptTimeout time.Duration
	Delay          time.Duration
	Browser        browser.Config
	LogLevel       logrus.Level
	Runner         Runner
}

// NewViper returns a viper instance with every default registered and
// environment lookup enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyAttempts, ready.DefaultAttempts)
	v.SetDefault(KeyAttemptTimeout, ready.DefaultAttemptTimeout.String())
	v.SetDefault(KeyDelay, ready.DefaultDelay.String())
	v.SetDefault(KeyDriver, string(browser.DriverRod))
	v.SetDefault(KeyHeadless, true)
	v.SetDefault(KeyProjects, "")
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyBrowserURL, "")
	v.SetDefault(KeyCI, "")
	v.SetDefault(KeyLogLevel, logrus.InfoLevel.String())
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var (
		cfg Config
		err error
	)

	cfg.BaseURL = strings.TrimSpace(v.GetString(KeyBaseURL))
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if err := validateURL(cfg.BaseURL); err != nil {
		return Config{}, err
	}

	cfg.Attempts = v.GetInt(KeyAttempts)
	if cfg.Attempts < 1 {
		return Config{}, fmt.Errorf("%s must be positive, got %d", strings.ToUpper(KeyAttempts), cfg.Attempts)
	}
	if cfg.AttemptTimeout, err = durationMS(v, KeyAttemptTimeout); err != nil {
		return Config{}, err
	}
	if cfg.AttemptTimeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", strings.ToUpper(KeyAttemptTimeout))
	}
	if cfg.Delay, err = durationMS(v, KeyDelay); err != nil {
		return Config{}, err
	}
	if cfg.Delay < 0 {
		return Config{}, fmt.Errorf("%s must not be negative", strings.ToUpper(KeyDelay))
	}

	cfg.Browser = browser.DefaultConfig()
	if cfg.Browser.Driver, err = browser.ParseDriver(v.GetString(KeyDriver)); err != nil {
		return Config{}, err
	}
	cfg.Browser.Headless = v.GetBool(KeyHeadless)
	cfg.Browser.ControlURL = strings.TrimSpace(v.GetString(KeyBrowserURL))

	if cfg.LogLevel, err = logrus.ParseLevel(v.GetString(KeyLogLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", strings.ToUpper(KeyLogLevel), err)
	}

	cfg.Runner = DefaultRunner(isTruthy(v.GetString(KeyCI)))
	if dir := strings.TrimSpace(v.GetString(KeyOutputDir)); dir != "" {
		cfg.Runner.OutputDir = dir
	}
	if names := splitList(v.GetString(KeyProjects)); len(names) > 0 {
		if cfg.Runner.Projects, err = SelectProjects(cfg.Runner.Projects, names); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// ProberOptions converts the readiness settings into prober options.
func (c Config) ProberOptions(log logrus.FieldLogger) []ready.Option {
	return []ready.Option{
		ready.WithAttempts(c.Attempts),
		ready.WithAttemptTimeout(c.AttemptTimeout),
		ready.WithDelay(c.Delay),
		ready.WithLogger(log),
	}
}

// NewLogger returns a text logger at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(c.LogLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", strings.ToUpper(KeyBaseURL), raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", strings.ToUpper(KeyBaseURL), raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", strings.ToUpper(KeyBaseURL), raw)
	}
	return nil
}

// durationMS accepts Go duration strings ("1.5s") and bare millisecond
// counts ("2000").
func durationMS(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToUpper(key), raw, err)
	}
	return d, nil
}

// isTruthy mirrors shell-style flags: any non-empty value except 0/false.
func isTruthy(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "0" && !strings.EqualFold(s, "false")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
