// Package secrets stores API credentials in the system keyring, with an
// encrypted file fallback for headless machines.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/salmonumbrella/tiptap-cli/internal/config"
)

const (
	// EnvKeyringBackend selects the keyring backend (auto|keychain|file).
	EnvKeyringBackend = "TIPTAP_KEYRING_BACKEND"
	// EnvKeyringPassword unlocks the file backend without a prompt.
	EnvKeyringPassword = "TIPTAP_KEYRING_PASSWORD"

	credentialPrefix  = "credential:"
	defaultAccountKey = "default_account"

	keyringOpenTimeout = 5 * time.Second
)

// ErrNotFound is returned when no credential is stored for a profile.
var ErrNotFound = errors.New("credential not found")

var errKeyringTimeout = errors.New("timed out opening keyring")

// keyringOpenFunc is swapped in tests.
var keyringOpenFunc = keyring.Open

// Credential is what gets stored per profile.
type Credential struct {
	Profile   string    `json:"profile"`
	APIKey    string    `json:"api_key"`
	BaseURL   string    `json:"base_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists credentials.
type Store interface {
	Keys() ([]string, error)
	GetCredential(profile string) (Credential, error)
	SetCredential(profile string, cred Credential) error
	DeleteCredential(profile string) error
	SetDefaultAccount(profile string) error
	DefaultAccount() (string, error)
}

// KeyringStore is a Store backed by a keyring.Keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// KeyringBackendInfo records which backend was requested and where the
// setting came from (env, config or default).
type KeyringBackendInfo struct {
	Value  string
	Source string
}

// ResolveKeyringBackendInfo reads the backend from the environment, then
// the config file, defaulting to auto.
func ResolveKeyringBackendInfo() (KeyringBackendInfo, error) {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvKeyringBackend))); v != "" {
		return KeyringBackendInfo{Value: v, Source: "env"}, nil
	}
	cfg, err := config.ReadConfig()
	if err != nil {
		return KeyringBackendInfo{}, err
	}
	if v := strings.ToLower(strings.TrimSpace(cfg.KeyringBackend)); v != "" {
		return KeyringBackendInfo{Value: v, Source: "config"}, nil
	}
	return KeyringBackendInfo{Value: "auto", Source: "default"}, nil
}

func allowedBackends(info KeyringBackendInfo) ([]keyring.BackendType, error) {
	switch info.Value {
	case "", "auto":
		return nil, nil
	case "keychain":
		return []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
		}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	default:
		return nil, fmt.Errorf("invalid keyring backend %q (from %s); expected auto|keychain|file", info.Value, info.Source)
	}
}

// shouldForceFileBackend reports whether auto mode must fall back to the
// file backend: on Linux without a D-Bus session there is no secret service.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether opening may hang on a D-Bus
// secret service that never answers.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr != ""
}

// OpenDefault opens the keyring configured for this machine.
func OpenDefault() (Store, error) {
	info, err := ResolveKeyringBackendInfo()
	if err != nil {
		return nil, err
	}
	backends, err := allowedBackends(info)
	if err != nil {
		return nil, err
	}

	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	if shouldForceFileBackend(runtime.GOOS, info, dbusAddr) {
		backends = []keyring.BackendType{keyring.FileBackend}
	}

	if err := EnsureKeychainAccess(); err != nil {
		return nil, err
	}

	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}

	cfg := keyring.Config{
		ServiceName:              config.AppName,
		AllowedBackends:          backends,
		FileDir:                  keyringDir,
		FilePasswordFunc:         filePasswordFunc(),
		KeychainTrustApplication: true,
	}

	var ring keyring.Keyring
	if shouldUseKeyringTimeout(runtime.GOOS, info, dbusAddr) {
		ring, err = openKeyringWithTimeout(cfg, keyringOpenTimeout)
	} else {
		ring, err = keyringOpenFunc(cfg)
	}
	if err != nil {
		return nil, wrapKeychainError(err)
	}
	return NewKeyringStore(ring), nil
}

func filePasswordFunc() keyring.PromptFunc {
	if pw := os.Getenv(EnvKeyringPassword); pw != "" {
		return keyring.FixedStringPrompt(pw)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return keyring.TerminalPrompt
	}
	return func(string) (string, error) {
		return "", fmt.Errorf("file keyring is locked; set %s", EnvKeyringPassword)
	}
}

type openResult struct {
	ring keyring.Keyring
	err  error
}

func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	done := make(chan openResult, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		done <- openResult{ring: ring, err: err}
	}()

	select {
	case res := <-done:
		return res.ring, res.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; the secret service is not responding.\n"+
			"Use the encrypted file backend instead:\n"+
			"  export %s=file\n"+
			"  export %s=<password>", errKeyringTimeout, timeout, EnvKeyringBackend, EnvKeyringPassword)
	}
}

// wrapKeychainError adds recovery steps to locked-keychain errors and
// returns every other error unchanged.
func wrapKeychainError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "errSecInteractionNotAllowed") || strings.Contains(msg, "-25308") {
		return fmt.Errorf("%w\n\nThe login keychain is locked. Unlock it with:\n"+
			"  security unlock-keychain ~/Library/Keychains/login.keychain-db\n"+
			"or use the file backend: %s=file", err, EnvKeyringBackend)
	}
	return err
}

func credentialKey(profile string) string {
	return credentialPrefix + profile
}

// Keys lists the profiles that have a stored credential.
func (s *KeyringStore) Keys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, wrapKeychainError(err)
	}
	profiles := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, credentialPrefix) {
			profiles = append(profiles, strings.TrimPrefix(k, credentialPrefix))
		}
	}
	return profiles, nil
}

// GetCredential loads the credential for profile.
func (s *KeyringStore) GetCredential(profile string) (Credential, error) {
	item, err := s.ring.Get(credentialKey(profile))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Credential{}, fmt.Errorf("%w: %s", ErrNotFound, profile)
		}
		return Credential{}, wrapKeychainError(err)
	}

	var cred Credential
	if err := json.Unmarshal(item.Data, &cred); err != nil {
		return Credential{}, fmt.Errorf("decode credential %s: %w", profile, err)
	}
	return cred, nil
}

// SetCredential stores cred under profile.
func (s *KeyringStore) SetCredential(profile string, cred Credential) error {
	if strings.TrimSpace(profile) == "" {
		return errors.New("profile is required")
	}
	cred.Profile = profile
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	return wrapKeychainError(s.ring.Set(keyring.Item{
		Key:   credentialKey(profile),
		Data:  data,
		Label: config.AppName + " (" + profile + ")",
	}))
}

// DeleteCredential removes the credential for profile.
func (s *KeyringStore) DeleteCredential(profile string) error {
	if err := s.ring.Remove(credentialKey(profile)); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) || os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, profile)
		}
		return wrapKeychainError(err)
	}
	return nil
}

// SetDefaultAccount records which profile commands use by default.
func (s *KeyringStore) SetDefaultAccount(profile string) error {
	return wrapKeychainError(s.ring.Set(keyring.Item{
		Key:  defaultAccountKey,
		Data: []byte(profile),
	}))
}

// DefaultAccount returns the default profile.
func (s *KeyringStore) DefaultAccount() (string, error) {
	item, err := s.ring.Get(defaultAccountKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", wrapKeychainError(err)
	}
	return string(item.Data), nil
}
