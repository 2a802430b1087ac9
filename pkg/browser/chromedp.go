package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromedpSession keeps one chromedp browser tab alive between fetches.
type ChromedpSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewChromedpSession starts Chrome (or attaches to cfg.ControlURL).
// The browser's lifetime is independent of ctx; ctx only bounds startup.
func NewChromedpSession(ctx context.Context, cfg Config) (*ChromedpSession, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if cfg.ControlURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.ControlURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.NoSandbox,
			chromedp.DisableGPU,
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	tabCtx, cancel := chromedp.NewContext(allocCtx)
	s := &ChromedpSession{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel}

	// The first Run starts the browser. It must not carry a timeout or the
	// browser would close when it fires.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to start Chrome: %w", err)
		}
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}
	return s, nil
}

// FetchStatus navigates the tab and returns the document response status.
func (s *ChromedpSession) FetchStatus(ctx context.Context, url string, timeout time.Duration) (int, error) {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(tctx, chromedp.Navigate(url))
	if err != nil {
		if cerr := tctx.Err(); cerr != nil {
			return 0, fmt.Errorf("navigate to %s: %w", url, cerr)
		}
		return 0, fmt.Errorf("navigate to %s: %w", url, err)
	}
	if resp == nil {
		return 0, fmt.Errorf("no document response from %s", url)
	}
	return int(resp.Status), nil
}

// Close stops the tab and the browser process.
func (s *ChromedpSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}
