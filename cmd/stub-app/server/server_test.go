package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/thesyncim/e2eready/pkg/browser"
	"github.com/thesyncim/e2eready/pkg/ready"
)

// noRedirect keeps redirects visible to the test.
var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func TestServerStartStop(t *testing.T) {
	// Create server with random port
	srv, err := NewServer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}

	addr, err := srv.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// Verify we got a real address (not :0)
	if addr == "" || addr == ":0" {
		t.Errorf("Start() returned invalid address: %q", addr)
	}
	t.Logf("Server started on %s", addr)

	if got := srv.Addr(); got != addr {
		t.Errorf("Addr() = %q, want %q", got, addr)
	}

	url := srv.URL() + "/photos"
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("HTTP GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /photos status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"<h1>", "New Folder", "<nav>"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("Response body doesn't contain %q", want)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	// Verify server is stopped (should fail to connect)
	_, err = http.Get(url)
	if err == nil {
		t.Error("Expected connection error after shutdown, but request succeeded")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Addr != ":0" {
		t.Errorf("DefaultConfig().Addr = %q, want %q", cfg.Addr, ":0")
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("DefaultConfig().ReadTimeout = %v, want %v", cfg.ReadTimeout, 30*time.Second)
	}
	if cfg.WriteTimeout != 30*time.Second {
		t.Errorf("DefaultConfig().WriteTimeout = %v, want %v", cfg.WriteTimeout, 30*time.Second)
	}
	if cfg.WarmupRequests != 0 {
		t.Errorf("DefaultConfig().WarmupRequests = %d, want 0", cfg.WarmupRequests)
	}
}

func TestServerDoubleStart(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	addr1, err := srv.Start()
	if err != nil {
		t.Fatalf("First Start() failed: %v", err)
	}

	// Second start should return same address (no error)
	addr2, err := srv.Start()
	if err != nil {
		t.Fatalf("Second Start() failed: %v", err)
	}

	if addr1 != addr2 {
		t.Errorf("Second Start() returned different address: %q vs %q", addr1, addr2)
	}
}

func TestServerRootRedirects(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	if _, err := srv.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := noRedirect.Get(srv.URL() + "/")
	if err != nil {
		t.Fatalf("HTTP GET failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Errorf("GET / status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/photos" {
		t.Errorf("GET / Location = %q, want /photos", loc)
	}
}

func TestServerWarmup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WarmupRequests = 2
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	if _, err := srv.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	want := []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK}
	for i, code := range want {
		resp, err := http.Get(srv.URL() + "/healthz")
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != code {
			t.Errorf("request %d status = %d, want %d", i, resp.StatusCode, code)
		}
	}
	if got := srv.Requests(); got != 3 {
		t.Errorf("Requests() = %d, want 3", got)
	}
}

func TestNewServerNegativeWarmup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WarmupRequests = -1
	if _, err := NewServer(cfg); err == nil {
		t.Error("NewServer() with negative warmup succeeded, want error")
	}
}

// TestProberWaitsForWarmup runs the readiness prober against a stub that
// needs three requests before it serves pages.
func TestProberWaitsForWarmup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WarmupRequests = 3
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	if _, err := srv.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	p, err := ready.NewProber(browser.NewLauncher(browser.Config{Driver: browser.DriverHTTP}),
		ready.WithAttempts(10),
		ready.WithDelay(10*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewProber() failed: %v", err)
	}

	res, err := p.Wait(context.Background(), srv.URL()+"/photos")
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if res.State != ready.Ready {
		t.Errorf("State = %v, want Ready", res.State)
	}
	if len(res.Attempts) != 4 {
		t.Errorf("attempts = %d, want 4", len(res.Attempts))
	}
}
