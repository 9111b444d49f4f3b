// Package testutil holds fixtures shared by the connection and CLI tests:
// a t.Log backed logger and the seeded posts table.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NewTestLogger returns a debug level logger that writes to t.Log, tagged
// with attrs. Pool and session logs only show up on failure or with -v.
func NewTestLogger(t testing.TB, attrs ...any) *slog.Logger {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	return logger
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
