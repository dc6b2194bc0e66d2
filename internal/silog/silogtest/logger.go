// Package silogtest provides a logger for testing.
package silogtest

import (
	"testing"

	"github.com/gitutil/trim/internal/ioutil"
	"github.com/gitutil/trim/internal/silog"
)

// New creates a new logger that writes to the given testing.TB.
func New(t testing.TB) *silog.Logger {
	return silog.New(ioutil.TestLogWriter(t, ""), &silog.Options{
		Level: silog.LevelDebug,
	})
}
