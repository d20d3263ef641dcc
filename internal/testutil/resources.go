package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// ignoredGoroutines are long-lived goroutines owned by the test runner or
// by libraries that never stop them.
func ignoredGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("go.uber.org/goleak.(*opts).retry"),
		goleak.IgnoreAnyFunction("testing.(*T).Parallel"),
		goleak.IgnoreAnyFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	}
}

// VerifyTestMain runs the package tests and fails the run when goroutines
// outlive them. Call it from TestMain in packages that open databases.
func VerifyTestMain(m *testing.M, options ...goleak.Option) {
	goleak.VerifyTestMain(m, append(ignoredGoroutines(), options...)...)
}

// VerifyNoLeaks fails t when goroutines started since the test began are
// still running. Use with defer in tests that do not call t.Parallel.
func VerifyNoLeaks(t *testing.T, options ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, append(ignoredGoroutines(), options...)...)
}
