//go:build !assert_invariants

package core

// assertNoDuplicate is a no-op in normal builds. Build with
// -tags assert_invariants to turn it into a panic, guarding the
// membership check the advise-reconstruction step relies on (§9 item 4).
func assertNoDuplicate(alreadyPresent bool, who, where string) {
	_ = alreadyPresent
	_ = who
	_ = where
}
