//go:build sat_debug

package sat

import "fmt"

// debugAssert panics with msg if cond is false. Only compiled in with the
// sat_debug build tag, per spec §7 ("surfaced as assertion failures in
// debug builds; undefined in release builds").
func debugAssert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("sat: assertion failed: "+format, args...))
	}
}
