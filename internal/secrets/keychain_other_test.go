//go:build !darwin

package secrets

import "testing"

func TestKeychainHelpersAreNoOps(t *testing.T) {
	if err := EnsureKeychainAccess(); err != nil {
		t.Errorf("EnsureKeychainAccess() = %v, want nil", err)
	}
	if err := UnlockKeychain(); err != nil {
		t.Errorf("UnlockKeychain() = %v, want nil", err)
	}
	if CheckKeychainLocked() {
		t.Error("CheckKeychainLocked() = true, want false")
	}
	if IsKeychainLockedError("errSecInteractionNotAllowed -25308") {
		t.Error("IsKeychainLockedError() = true, want false")
	}
}
