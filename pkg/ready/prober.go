package ready

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/e2eready/pkg/ready/internal"
)

// Defaults match a ~60 second wait at one attempt per second.
const (
	DefaultAttempts       = 60
	DefaultAttemptTimeout = 2000 * time.Millisecond
	DefaultDelay          = 1000 * time.Millisecond
)

// Option configures a Prober.
type Option func(*Prober) error

// WithAttempts sets the attempt budget.
// Default: 60
func WithAttempts(n int) Option {
	return func(p *Prober) error {
		if n < 1 {
			return errors.New("attempt budget must be positive")
		}
		p.attempts = n
		return nil
	}
}

// WithAttemptTimeout sets how long a single fetch may take.
// Default: 2s
func WithAttemptTimeout(d time.Duration) Option {
	return func(p *Prober) error {
		if d <= 0 {
			return errors.New("attempt timeout must be positive")
		}
		p.attemptTimeout = d
		return nil
	}
}

// WithDelay sets the pause between a failed attempt and the next one.
// Default: 1s
func WithDelay(d time.Duration) Option {
	return func(p *Prober) error {
		if d < 0 {
			return errors.New("delay must not be negative")
		}
		p.delay = d
		return nil
	}
}

// WithLogger sets the logger for progress and transient failures.
// Default: a logger that discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Prober) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}
		p.log = l
		return nil
	}
}

// WithClock replaces the clock used for delays and elapsed time.
// If clock is nil, a default MonotonicClock is used.
func WithClock(clock internal.Clock) Option {
	return func(p *Prober) error {
		if clock == nil {
			clock = internal.MonotonicClock{}
		}
		p.clock = clock
		return nil
	}
}

// WithOnAttempt sets a callback that is invoked after every attempt.
func WithOnAttempt(fn func(Attempt)) Option {
	return func(p *Prober) error {
		p.onAttempt = fn
		return nil
	}
}

// Prober polls a URL until it is serving successfully.
// A Prober holds no per-run state and may be reused.
type Prober struct {
	launch         Launcher
	attempts       int
	attemptTimeout time.Duration
	delay          time.Duration
	clock          internal.Clock
	log            logrus.FieldLogger
	onAttempt      func(Attempt)
}

// NewProber creates a Prober that opens its browser session with launch.
//
// Example:
//
//	p, err := ready.NewProber(launch,
//	    ready.WithAttempts(30),
//	    ready.WithDelay(500*time.Millisecond),
//	)
//	if err != nil {
//	    return err
//	}
//	_, err = p.Wait(ctx, "http://localhost:5174")
func NewProber(launch Launcher, opts ...Option) (*Prober, error) {
	if launch == nil {
		return nil, errors.New("launcher must not be nil")
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Prober{
		launch:         launch,
		attempts:       DefaultAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		delay:          DefaultDelay,
		clock:          internal.MonotonicClock{},
		log:            discard,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Wait opens a session, polls url until it answers with a 2xx status and
// closes the session again. The session is closed exactly once whether
// polling succeeds, exhausts its budget or is cancelled through ctx.
//
// When the budget is spent the returned error is a *ReadinessTimeoutError.
func (p *Prober) Wait(ctx context.Context, url string) (Result, error) {
	log := p.log.WithField("url", url)
	log.Info("Waiting for application to be ready...")

	session, err := p.launch(ctx)
	if err != nil {
		return Result{State: Polling}, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("browser close failed")
		}
	}()

	return p.poll(ctx, session, url, log)
}

func (p *Prober) poll(ctx context.Context, f Fetcher, url string, log logrus.FieldLogger) (Result, error) {
	res := Result{State: Polling}
	var last error

	for i := 0; i < p.attempts; i++ {
		a := p.attempt(ctx, f, url, i)
		res.Attempts = append(res.Attempts, a)
		if p.onAttempt != nil {
			p.onAttempt(a)
		}

		if a.Outcome == Success {
			res.State = Ready
			log.WithField("attempts", i+1).Info("Application is ready!")
			return res, nil
		}

		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("readiness wait for %s aborted: %w", url, err)
		}

		last = a.Err
		log.WithFields(logrus.Fields{
			"attempt": i + 1,
			"outcome": a.Outcome,
		}).WithError(a.Err).Debug("application not ready yet")

		if i == p.attempts-1 {
			break
		}
		if err := p.clock.Sleep(ctx, p.delay); err != nil {
			return res, fmt.Errorf("readiness wait for %s aborted: %w", url, err)
		}
	}

	res.State = Exhausted
	return res, &ReadinessTimeoutError{
		URL:         url,
		Attempts:    p.attempts,
		Delay:       p.delay,
		LastFailure: last,
	}
}

func (p *Prober) attempt(ctx context.Context, f Fetcher, url string, index int) Attempt {
	actx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
	defer cancel()

	start := p.clock.Now()
	status, err := f.FetchStatus(actx, url, p.attemptTimeout)
	a := Attempt{
		Index:   index,
		Status:  status,
		Elapsed: p.clock.Now().Sub(start),
	}

	switch {
	case err == nil && IsSuccessStatus(status):
		a.Outcome = Success
		return a
	case err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		a.Outcome = Timeout
	default:
		a.Outcome = TransientFailure
	}
	a.Err = &TransientFetchFailure{URL: url, Attempt: index, Status: status, Err: err}
	return a
}
