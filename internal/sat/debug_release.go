//go:build !sat_debug

package sat

// debugAssert is a no-op in release builds: preconditions it would check
// are undefined behavior outside debug builds, per spec §7.
func debugAssert(cond bool, format string, args ...any) {}
