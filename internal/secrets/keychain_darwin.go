//go:build darwin

package secrets

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

func loginKeychainPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "login.keychain-db"
	}
	return filepath.Join(home, "Library", "Keychains", "login.keychain-db")
}

// IsKeychainLockedError reports whether errStr comes from a locked keychain.
func IsKeychainLockedError(errStr string) bool {
	return strings.Contains(errStr, "errSecInteractionNotAllowed") || strings.Contains(errStr, "-25308")
}

// CheckKeychainLocked reports whether the login keychain is locked.
func CheckKeychainLocked() bool {
	out, err := exec.Command("security", "show-keychain-info", loginKeychainPath()).CombinedOutput()
	if err == nil {
		return false
	}
	return strings.Contains(string(out), "-25308") || strings.Contains(string(out), "locked")
}

// UnlockKeychain runs security unlock-keychain interactively.
func UnlockKeychain() error {
	cmd := exec.Command("security", "unlock-keychain", loginKeychainPath())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("unlock keychain: %w", err)
	}
	return nil
}

// EnsureKeychainAccess unlocks the login keychain when it is locked and a
// terminal is available to prompt on.
func EnsureKeychainAccess() error {
	if os.Getenv(EnvKeyringBackend) == "file" || !CheckKeychainLocked() {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("login keychain is locked; run: security unlock-keychain %s", loginKeychainPath())
	}
	fmt.Fprintln(os.Stderr, "Login keychain is locked, unlocking...")
	return UnlockKeychain()
}
