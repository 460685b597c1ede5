//go:build assert_invariants

package core

import "fmt"

// assertNoDuplicate panics if a duplicate push was about to happen. Only
// compiled in with -tags assert_invariants; production builds use the
// no-op in assert.go (§9 item 4: "production code should assert it").
func assertNoDuplicate(alreadyPresent bool, who, where string) {
	if alreadyPresent {
		panic(fmt.Sprintf("raymond: duplicate push of %q into %s", who, where))
	}
}
