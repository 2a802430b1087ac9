package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodSession wraps Rod with a container-friendly Chrome configuration.
type RodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
}

// NewRodSession launches (or connects to) Chrome. A launched browser is
// configured with:
//   - No sandbox (for container compatibility)
//   - GPU disabled
func NewRodSession(cfg Config) (*RodSession, error) {
	s := &RodSession{}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		s.launcher = launcher.New().
			Headless(cfg.Headless).
			Set("no-sandbox").
			Set("disable-gpu")

		url, err := s.launcher.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch Chrome: %w", err)
		}
		controlURL = url
	}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}
	return s, nil
}

// FetchStatus opens a fresh page, navigates to url and returns the status
// of the document response once DOMContentLoaded fired.
func (s *RodSession) FetchStatus(ctx context.Context, url string, timeout time.Duration) (int, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return 0, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	status := 0
	waitResponse := p.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})
	waitLoaded := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	if err := p.Navigate(url); err != nil {
		return 0, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	waitResponse()
	waitLoaded()

	if status == 0 {
		if err := p.GetContext().Err(); err != nil {
			return 0, fmt.Errorf("no response from %s: %w", url, err)
		}
		return 0, fmt.Errorf("no document response from %s", url)
	}
	return status, nil
}

// Navigate opens a URL with timeout.
// Returns the page for further interaction.
func (s *RodSession) Navigate(url string, timeout time.Duration) (*rod.Page, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	s.page = page

	p := page.Timeout(timeout)
	err = p.Navigate(url)
	// Cancel timeout so later interaction is not bounded by it
	p.CancelTimeout()
	if err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return page, nil
}

// Page returns the page opened by Navigate, or nil if none open.
func (s *RodSession) Page() *rod.Page {
	return s.page
}

// WaitIdle waits until the page has no pending network requests,
// the equivalent of Playwright's "networkidle" load state.
func (s *RodSession) WaitIdle(timeout time.Duration) error {
	if s.page == nil {
		return errors.New("no page open, call Navigate first")
	}
	p := s.page.Timeout(timeout)
	defer p.CancelTimeout()

	p.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
	return p.GetContext().Err()
}

// WaitStable waits for the page to be stable (no DOM changes).
func (s *RodSession) WaitStable(timeout time.Duration) error {
	if s.page == nil {
		return errors.New("no page open")
	}
	return s.page.WaitStable(timeout)
}

// Close cleans up browser resources.
// Always call this (via defer) to prevent orphaned Chrome processes.
func (s *RodSession) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	s.cleanup()
	return err
}

func (s *RodSession) cleanup() {
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
}
