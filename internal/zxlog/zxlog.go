// Package zxlog is the core's ambient logger: a package-level standard
// logger with leveled helper functions, the same weight the teacher's own
// runtime diagnostics use. The Z80 dispatch tables never call into this
// package; per the core's error-handling design the CPU itself never
// fails, so there is nothing for it to log.
package zxlog

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// SetOutput redirects where Warnf/Infof write, for tests and embedders
// that want to capture or silence core diagnostics.
func SetOutput(w interface {
	Write([]byte) (int, error)
}) {
	std.SetOutput(w)
}

// Warnf logs a recoverable boundary condition: an unsupported snapshot
// version, an unknown tape block, a rejected paging write.
func Warnf(format string, args ...any) {
	std.Printf("WARN "+format, args...)
}

// Infof logs a routine lifecycle event: snapshot loaded, tape inserted.
func Infof(format string, args ...any) {
	std.Printf("INFO "+format, args...)
}
