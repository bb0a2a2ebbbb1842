// Package ixlog holds the package-level logger shared by cht and ixheap.
//
// Both components are otherwise silent: diagnostics are only emitted on the
// fatal paths spec.md calls out (capacity exceeded, update of an absent
// element, rehash/growth arithmetic overflow) and on rehash/grow events at
// debug level.
package ixlog

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is the package-level sink. Callers may reassign it before using
// cht or ixheap to redirect diagnostics (e.g. in tests, to a buffer).
var Logger = level.NewFilter(
	log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)),
	level.AllowInfo(),
)

// Fatal logs msg at error level with the given key/value pairs, mirroring
// the "emits a diagnostic to the error stream" propagation policy from
// spec.md §7 for conditions that poison the caller's heap/table.
func Fatal(msg string, keyvals ...interface{}) {
	_ = level.Error(Logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Debug logs a non-fatal structural event (grow, rehash).
func Debug(msg string, keyvals ...interface{}) {
	_ = level.Debug(Logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}
