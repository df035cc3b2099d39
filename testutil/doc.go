// Package testutil provides lifecycle helpers for test components.
//
//	func TestShared(t *testing.T) {
//	    rc := redistest.NewComponent()
//	    testutil.T(t).Setup(rc)
//	    // rc is stopped when the test ends
//	}
package testutil
