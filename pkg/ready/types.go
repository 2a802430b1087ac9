// Package ready implements a readiness prober that polls a target URL
// through a browser session until it serves a successful response or an
// attempt budget is exhausted.
package ready

import (
	"context"
	"time"
)

// Outcome classifies a single probe attempt.
type Outcome int

const (
	// Success indicates the target answered with a 2xx status.
	Success Outcome = iota
	// TransientFailure indicates a network error or a non-2xx status.
	TransientFailure
	// Timeout indicates the per-attempt timeout elapsed before a response.
	Timeout
)

// String returns a string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "Success"
	case TransientFailure:
		return "TransientFailure"
	case Timeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// State is the prober's position in its polling state machine.
//
//	Polling --success--> Ready
//	Polling --failure, attempts remain--> Polling
//	Polling --failure, budget spent--> Exhausted
//
// Ready and Exhausted are terminal.
type State int

const (
	// Polling is the initial state; attempts are still being made.
	Polling State = iota
	// Ready means a successful response was observed.
	Ready
	// Exhausted means the attempt budget was spent without success.
	Exhausted
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case Polling:
		return "Polling"
	case Ready:
		return "Ready"
	case Exhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// Attempt records one fetch of the target. It only lives for the
// duration of a single polling run.
type Attempt struct {
	// Index is zero-based and strictly increasing within a run.
	Index int

	Outcome Outcome

	// Status is the HTTP status observed, or 0 if no response arrived.
	Status int

	// Err is the failure for non-successful attempts.
	Err error

	// Elapsed is the time spent on the fetch itself.
	Elapsed time.Duration
}

// Result summarizes a polling run.
type Result struct {
	State    State
	Attempts []Attempt
}

// Fetcher is the page-fetching capability the prober depends on.
type Fetcher interface {
	// FetchStatus navigates to url and returns the HTTP status of the
	// document response. timeout bounds the whole navigation.
	FetchStatus(ctx context.Context, url string, timeout time.Duration) (int, error)
}

// Session is an exclusively owned browser automation session.
type Session interface {
	Fetcher
	Close() error
}

// Launcher opens a new Session. The prober calls it once per Wait.
type Launcher func(ctx context.Context) (Session, error)

// IsSuccessStatus reports whether status is in the 2xx range.
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
