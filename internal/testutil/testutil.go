// Package testutil holds shared helpers for tests that are too slow for
// the default test run.
package testutil

import (
	"flag"
	"testing"
)

var heavy = flag.Bool("heavy", false, "run heavy tests (large documents, real mining difficulty)")

// RequireHeavy skips the calling test unless -heavy is set.
func RequireHeavy(t *testing.T) {
	t.Helper()
	if !*heavy {
		t.Skip("skipping heavy test (use -heavy to enable)")
	}
}
