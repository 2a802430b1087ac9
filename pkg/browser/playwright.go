package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightSession holds one playwright driver, browser, context and page.
// The page is reused across fetches.
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// NewPlaywrightSession starts the playwright driver and opens a page in
// the configured engine. An unknown Device name is an error.
func NewPlaywrightSession(cfg Config) (*PlaywrightSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	s := &PlaywrightSession{pw: pw}

	bt, err := s.browserType(cfg.Engine)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.browser, err = bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch %s: %w", bt.Name(), err)
	}

	var opts playwright.BrowserNewContextOptions
	if cfg.Device != "" {
		d, ok := pw.Devices[cfg.Device]
		if !ok {
			s.Close()
			return nil, fmt.Errorf("unknown playwright device %q", cfg.Device)
		}
		opts = deviceContextOptions(d)
	}
	if cfg.VideoDir != "" {
		opts.RecordVideo = &playwright.RecordVideo{Dir: cfg.VideoDir}
	}

	s.context, err = s.browser.NewContext(opts)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	s.page, err = s.context.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return s, nil
}

func (s *PlaywrightSession) browserType(e Engine) (playwright.BrowserType, error) {
	switch e {
	case Chromium, "":
		return s.pw.Chromium, nil
	case Firefox:
		return s.pw.Firefox, nil
	case WebKit:
		return s.pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q", e)
	}
}

func deviceContextOptions(d *playwright.DeviceDescriptor) playwright.BrowserNewContextOptions {
	return playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(d.UserAgent),
		Viewport:          d.Viewport,
		Screen:            d.Screen,
		DeviceScaleFactor: playwright.Float(d.DeviceScaleFactor),
		IsMobile:          playwright.Bool(d.IsMobile),
		HasTouch:          playwright.Bool(d.HasTouch),
	}
}

// FetchStatus navigates the session page and waits for DOMContentLoaded.
// A playwright timeout is reported as context.DeadlineExceeded. If ctx
// ends first the page is closed to stop the navigation and a fresh one
// is opened on the next fetch.
func (s *PlaywrightSession) FetchStatus(ctx context.Context, url string, timeout time.Duration) (int, error) {
	if s.page == nil {
		page, err := s.context.NewPage()
		if err != nil {
			return 0, fmt.Errorf("failed to open page: %w", err)
		}
		s.page = page
	}
	page := s.page

	status, err := navigateWithContext(ctx,
		func() (int, error) {
			resp, err := page.Goto(url, playwright.PageGotoOptions{
				Timeout:   playwright.Float(float64(timeout.Milliseconds())),
				WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			})
			if err != nil {
				if errors.Is(err, playwright.ErrTimeout) {
					return 0, fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
				}
				return 0, err
			}
			if resp == nil {
				return 0, errors.New("no document response")
			}
			return resp.Status(), nil
		},
		func() {
			_ = page.Close()
			s.page = nil
		},
	)
	if err != nil {
		return 0, fmt.Errorf("navigate to %s: %w", url, err)
	}
	return status, nil
}

// navigateWithContext runs navigate until it returns or ctx ends. On
// cancellation abort is called to unblock navigate, which is then awaited
// so no navigation outlives the call.
func navigateWithContext(ctx context.Context, navigate func() (int, error), abort func()) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	type result struct {
		status int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		status, err := navigate()
		done <- result{status, err}
	}()

	select {
	case r := <-done:
		return r.status, r.err
	case <-ctx.Done():
		abort()
		<-done
		return 0, ctx.Err()
	}
}

// Page returns the session page for direct interaction.
func (s *PlaywrightSession) Page() playwright.Page {
	return s.page
}

// Context returns the browser context, for tracing and video control.
func (s *PlaywrightSession) Context() playwright.BrowserContext {
	return s.context
}

// Close releases all Playwright resources.
func (s *PlaywrightSession) Close() error {
	var errs []error
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}
