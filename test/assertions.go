// Package test holds assertion helpers shared by the package test suites.
package test

import (
	"errors"
	"testing"
)

func AssertWantErr(err error, wantErr, caller string, t *testing.T) bool {
	t.Helper()
	if err != nil {
		if wantErr != err.Error() {
			t.Errorf("%s error = %v, wantErr %q", caller, err, wantErr)
		}

		return true
	} else if wantErr != "" {
		t.Errorf("%s expected error %q, did not receive an error", caller, wantErr)
		return true
	}

	return false
}

// AssertErrIs fails the test when err does not match target in the sense of
// errors.Is.
func AssertErrIs(err, target error, caller string, t *testing.T) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("%s error = %v, want %v", caller, err, target)
	}
}
