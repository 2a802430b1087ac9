package ready

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// BackendURL is the address the remediation text points developers at.
const BackendURL = "http://localhost:8000"

// TransientFetchFailure is a recoverable per-attempt failure. The prober
// logs it and retries; it is never returned from Wait.
type TransientFetchFailure struct {
	URL     string
	Attempt int
	Status  int
	Err     error
}

func (e *TransientFetchFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("attempt %d: %s returned status %d", e.Attempt+1, e.URL, e.Status)
	}
	return fmt.Sprintf("attempt %d: fetch %s: %v", e.Attempt+1, e.URL, e.Err)
}

func (e *TransientFetchFailure) Unwrap() error {
	return e.Err
}

// ReadinessTimeoutError is returned when the attempt budget is spent
// without observing a successful response.
type ReadinessTimeoutError struct {
	URL      string
	Attempts int
	Delay    time.Duration

	// LastFailure is the final transient failure. It is kept for callers
	// that want it but is not part of the message and is not unwrapped.
	LastFailure error
}

// Window is the nominal wait the budget represents: one delay per attempt.
func (e *ReadinessTimeoutError) Window() time.Duration {
	return time.Duration(e.Attempts) * e.Delay
}

func (e *ReadinessTimeoutError) Error() string {
	var b strings.Builder
	if e.Delay > 0 {
		seconds := int(math.Ceil(e.Window().Seconds()))
		fmt.Fprintf(&b, "application not ready after %d seconds (%d attempts against %s)", seconds, e.Attempts, e.URL)
	} else {
		fmt.Fprintf(&b, "application not ready after %d attempts against %s", e.Attempts, e.URL)
	}
	b.WriteString(". Make sure services are running:\n")
	b.WriteString("   - Database: docker compose up -d db\n")
	fmt.Fprintf(&b, "   - Backend: running on %s\n", BackendURL)
	fmt.Fprintf(&b, "   - Frontend: running on %s\n", e.URL)
	b.WriteString("   - Seed data: ./scripts/seed.sh")
	return b.String()
}
