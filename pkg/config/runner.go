package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/thesyncim/e2eready/pkg/browser"
)

// Artifact retention policies.
const (
	TraceOff                = "off"
	TraceOnFirstRetry       = "on-first-retry"
	TraceOn                 = "on"
	ScreenshotOff           = "off"
	ScreenshotOnlyOnFailure = "only-on-failure"
	ScreenshotOn            = "on"
	VideoOff                = "off"
	VideoRetainOnFailure    = "retain-on-failure"
	VideoOn                 = "on"
)

// DefaultOutputDir is where screenshots, videos and traces are written.
const DefaultOutputDir = "test-results"

// Project is one browser/device combination the smoke tests run against.
type Project struct {
	Name   string
	Engine browser.Engine

	// Device is a playwright device descriptor name.
	Device string
}

// BrowserConfig returns the playwright browser configuration for p.
func (p Project) BrowserConfig(headless bool) browser.Config {
	return browser.Config{
		Driver:   browser.DriverPlaywright,
		Engine:   p.Engine,
		Device:   p.Device,
		Headless: headless,
	}
}

// Slug is the project name made safe for use as a directory name.
func (p Project) Slug() string {
	return strings.ToLower(strings.ReplaceAll(p.Name, " ", "-"))
}

// Artifacts controls what the suite keeps around for failing tests.
type Artifacts struct {
	Trace      string
	Screenshot string
	Video      string
}

// TraceAttempt reports whether a trace is recorded on the given
// zero-based attempt. Attempt 1 is the first retry.
func (a Artifacts) TraceAttempt(attempt int) bool {
	switch a.Trace {
	case TraceOn:
		return true
	case TraceOnFirstRetry:
		return attempt == 1
	default:
		return false
	}
}

// KeepScreenshot reports whether a screenshot is taken after an attempt.
func (a Artifacts) KeepScreenshot(failed bool) bool {
	switch a.Screenshot {
	case ScreenshotOn:
		return true
	case ScreenshotOnlyOnFailure:
		return failed
	default:
		return false
	}
}

// RecordVideo reports whether video recording is started at all.
func (a Artifacts) RecordVideo() bool {
	return a.Video == VideoOn || a.Video == VideoRetainOnFailure
}

// KeepVideo reports whether a recorded video survives the attempt.
func (a Artifacts) KeepVideo(failed bool) bool {
	switch a.Video {
	case VideoOn:
		return true
	case VideoRetainOnFailure:
		return failed
	default:
		return false
	}
}

// Runner holds the settings for executing the smoke tests.
type Runner struct {
	CI            bool
	FullyParallel bool
	Retries       int
	Workers       int // 0 means half the CPUs
	OutputDir     string
	Artifacts     Artifacts
	Projects      []Project
}

// MaxParallel is how many projects may run at once.
func (r Runner) MaxParallel() int {
	if !r.FullyParallel {
		return 1
	}
	if r.Workers > 0 {
		return r.Workers
	}
	return max(1, runtime.NumCPU()/2)
}

// ArtifactDir returns the directory for one project attempt.
func (r Runner) ArtifactDir(p Project, attempt int) string {
	dir := r.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	name := p.Slug()
	if attempt > 0 {
		name = fmt.Sprintf("%s-retry%d", name, attempt)
	}
	return filepath.Join(dir, name)
}

// DefaultProjects returns the desktop and mobile project matrix.
func DefaultProjects() []Project {
	return []Project{
		{Name: "chromium", Engine: browser.Chromium, Device: "Desktop Chrome"},
		{Name: "firefox", Engine: browser.Firefox, Device: "Desktop Firefox"},
		{Name: "webkit", Engine: browser.WebKit, Device: "Desktop Safari"},
		{Name: "Mobile Chrome", Engine: browser.Chromium, Device: "Pixel 5"},
		{Name: "Mobile Safari", Engine: browser.WebKit, Device: "iPhone 12"},
	}
}

// DefaultRunner returns the runner settings for local or CI runs.
// CI runs retry twice and cap workers at four.
func DefaultRunner(ci bool) Runner {
	r := Runner{
		CI:            ci,
		FullyParallel: true,
		OutputDir:     DefaultOutputDir,
		Artifacts: Artifacts{
			Trace:      TraceOnFirstRetry,
			Screenshot: ScreenshotOnlyOnFailure,
			Video:      VideoRetainOnFailure,
		},
		Projects: DefaultProjects(),
	}
	if ci {
		r.Retries = 2
		r.Workers = 4
	}
	return r
}

// SelectProjects returns the projects named in names, in the order given.
// Names are matched case-insensitively.
func SelectProjects(all []Project, names []string) ([]Project, error) {
	out := make([]Project, 0, len(names))
	for _, n := range names {
		found := false
		for _, p := range all {
			if strings.EqualFold(p.Name, n) {
				out = append(out, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown project %q", n)
		}
	}
	return out, nil
}
