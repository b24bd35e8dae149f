// Package testutil holds fixtures and helpers shared by package tests.
package testutil

import (
	"os"
	"testing"
)

// EnvLiveTests enables tests that call real model providers.
const EnvLiveTests = "PURESTREAM_LIVE_TESTS"

// SkipUnlessLive skips t unless PURESTREAM_LIVE_TESTS=1 and, when keys are
// given, at least one of those environment variables is non-empty.
func SkipUnlessLive(t *testing.T, keys ...string) {
	t.Helper()
	if os.Getenv(EnvLiveTests) != "1" {
		t.Skipf("live provider test (set %s=1 to run)", EnvLiveTests)
	}
	if len(keys) == 0 {
		return
	}
	for _, k := range keys {
		if os.Getenv(k) != "" {
			return
		}
	}
	t.Skipf("live provider test needs one of %v", keys)
}
