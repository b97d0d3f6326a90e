package secrets

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
)

func TestWrapKeychainError_IncludesRecoveryInstructions(t *testing.T) {
	// Test locked keychain error
	lockedErr := fmt.Errorf("operation failed: errSecInteractionNotAllowed -25308")
	wrapped := wrapKeychainError(lockedErr)

	errStr := wrapped.Error()
	if !strings.Contains(errStr, "security unlock-keychain") {
		t.Errorf("wrapKeychainError() should include unlock instructions, got: %s", errStr)
	}
}

func TestWrapKeychainError_NilError(t *testing.T) {
	wrapped := wrapKeychainError(nil)
	if wrapped != nil {
		t.Errorf("wrapKeychainError(nil) should return nil, got: %v", wrapped)
	}
}

func TestWrapKeychainError_NonLockedError(t *testing.T) {
	originalErr := fmt.Errorf("some other error")
	wrapped := wrapKeychainError(originalErr)

	if wrapped != originalErr {
		t.Errorf("wrapKeychainError() should return original error unchanged for non-locked errors, got: %v", wrapped)
	}
}

func TestKeyringStore_CredentialLifecycle(t *testing.T) {
	store := NewKeyringStore(keyring.NewArrayKeyring(nil))

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := store.SetCredential("work", Credential{
		APIKey:    "service-role-key",
		BaseURL:   "https://abc.supabase.co",
		CreatedAt: created,
	}); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}
	if err := store.SetDefaultAccount("work"); err != nil {
		t.Fatalf("SetDefaultAccount() error = %v", err)
	}

	cred, err := store.GetCredential("work")
	if err != nil {
		t.Fatalf("GetCredential() error = %v", err)
	}
	if cred.Profile != "work" || cred.APIKey != "service-role-key" || cred.BaseURL != "https://abc.supabase.co" {
		t.Errorf("GetCredential() = %+v", cred)
	}
	if !cred.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", cred.CreatedAt, created)
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != "work" {
		t.Errorf("Keys() = %v, want [work]", keys)
	}

	def, err := store.DefaultAccount()
	if err != nil || def != "work" {
		t.Errorf("DefaultAccount() = %q, %v", def, err)
	}

	if err := store.DeleteCredential("work"); err != nil {
		t.Fatalf("DeleteCredential() error = %v", err)
	}
	if _, err := store.GetCredential("work"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCredential() after delete error = %v, want ErrNotFound", err)
	}
}

func TestKeyringStore_MissingProfile(t *testing.T) {
	store := NewKeyringStore(keyring.NewArrayKeyring(nil))

	if _, err := store.GetCredential("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCredential() error = %v, want ErrNotFound", err)
	}
	if _, err := store.DefaultAccount(); !errors.Is(err, ErrNotFound) {
		t.Errorf("DefaultAccount() error = %v, want ErrNotFound", err)
	}
	if err := store.SetCredential(" ", Credential{APIKey: "k"}); err == nil {
		t.Error("SetCredential() with blank profile expected error")
	}
}

func TestResolveKeyringBackendInfo_EnvWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvKeyringBackend, " FILE ")

	info, err := ResolveKeyringBackendInfo()
	if err != nil {
		t.Fatalf("ResolveKeyringBackendInfo() error = %v", err)
	}
	if info.Value != "file" || info.Source != "env" {
		t.Errorf("ResolveKeyringBackendInfo() = %+v, want file from env", info)
	}

	t.Setenv(EnvKeyringBackend, "")
	info, err = ResolveKeyringBackendInfo()
	if err != nil {
		t.Fatalf("ResolveKeyringBackendInfo() error = %v", err)
	}
	if info.Value != "auto" || info.Source != "default" {
		t.Errorf("ResolveKeyringBackendInfo() = %+v, want auto default", info)
	}
}

func TestAllowedBackends_RejectsUnknown(t *testing.T) {
	if _, err := allowedBackends(KeyringBackendInfo{Value: "vault", Source: "config"}); err == nil {
		t.Error("allowedBackends() expected error for unknown backend")
	}
	got, err := allowedBackends(KeyringBackendInfo{Value: "file"})
	if err != nil || len(got) != 1 || got[0] != keyring.FileBackend {
		t.Errorf("allowedBackends(file) = %v, %v", got, err)
	}
}
