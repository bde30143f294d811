// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper bundles helpers shared by the package tests.
package testhelper

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// TestOnlineAPIURL is an endpoint used by tests that need a real network round-trip.
const TestOnlineAPIURL = "https://httpbin.org/anything"

// MockRoundTripper lets tests replace the HTTP transport with a function.
type MockRoundTripper struct {
	Fn func(*http.Request) (*http.Response, error)
}

// RoundTrip satisfies the http.RoundTripper interface.
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless tests against online APIs are enabled.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if os.Getenv("PERFORM_INTEGRATION_TEST") != "true" {
		t.Skip("skipping online integration test")
	}
}

// TestdataPath returns the absolute path of a file in the repository testdata directory.
func TestdataPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata", name)
}

// FileResponder returns a MockRoundTripper function that answers every request with the given
// testdata file and status code. Requests are handed to inspect before answering, if set.
func FileResponder(t *testing.T, name string, status int, inspect func(*http.Request)) func(*http.Request) (*http.Response, error) {
	t.Helper()
	return func(req *http.Request) (*http.Response, error) {
		if inspect != nil {
			inspect(req)
		}
		data, err := os.Open(TestdataPath(name))
		if err != nil {
			t.Fatalf("failed to open testdata file %q: %s", name, err)
		}
		return &http.Response{
			StatusCode: status,
			Body:       data,
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
}

