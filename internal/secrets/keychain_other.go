//go:build !darwin

package secrets

// EnsureKeychainAccess is a no-op off macOS.
func EnsureKeychainAccess() error { return nil }

// CheckKeychainLocked always reports false off macOS.
func CheckKeychainLocked() bool { return false }

// UnlockKeychain is a no-op off macOS.
func UnlockKeychain() error { return nil }

// IsKeychainLockedError always reports false off macOS.
func IsKeychainLockedError(string) bool { return false }
