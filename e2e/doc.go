//go:build e2e

// Package e2e provides the end-to-end smoke tests for the photos frontend.
//
// These tests are isolated from the standard test suite via build tags.
// They require a Chrome browser (auto-downloaded by Rod if not present)
// and, for the project matrix, the Playwright browsers.
//
// Running E2E tests against a running stack:
//
//	BASE_URL=http://localhost:5174 go test -tags=e2e ./e2e/...
//
// Running them against the built-in stub application:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// Before any test runs, TestMain waits for BASE_URL with the readiness
// prober from pkg/ready. If the application never becomes ready the whole
// run aborts with a non-zero exit code and remediation steps.
//
// E2E tests use:
//   - Rod for the smoke tests (Chrome DevTools Protocol)
//   - playwright-go for the desktop/mobile project matrix
//   - chromedp, Rod and playwright-go as readiness drivers
package e2e
