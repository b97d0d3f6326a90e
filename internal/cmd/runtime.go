package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/tiptap-cli/internal/api"
	"github.com/salmonumbrella/tiptap-cli/internal/config"
	"github.com/salmonumbrella/tiptap-cli/internal/secrets"
)

// Process dependencies, replaced in tests.
var (
	openSecretsStore       = secrets.OpenDefault
	newClientFromCredsFunc = api.NewClientFromCredentials
	envGet                 = os.Getenv
	nowFunc                = time.Now
)

const (
	envSupabaseURL       = "SUPABASE_URL"
	envPublicSupabaseURL = "NEXT_PUBLIC_SUPABASE_URL"
	envServiceRoleKey    = "SUPABASE_SERVICE_ROLE_KEY"
)

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

// resolveCredentials resolves the project URL and API key with precedence:
// flags > env > keyring > config.
func resolveCredentials(cmd *cobra.Command, cfg *config.Config) (string, string, error) {
	url := strings.TrimSpace(baseURL)
	key := strings.TrimSpace(apiKey)

	// Flags (only if explicitly set)
	if !flagChanged(cmd, "base-url") {
		url = ""
	}
	if !flagChanged(cmd, "api-key") {
		key = ""
	}

	// Environment
	if url == "" {
		url = firstEnv(envSupabaseURL, envPublicSupabaseURL)
	}
	if key == "" {
		key = firstEnv(envServiceRoleKey)
	}

	// Keyring (only if still missing)
	if url == "" || key == "" {
		if store, err := openSecretsStore(); err == nil {
			profile := defaultProfile
			if def, err := store.DefaultAccount(); err == nil && strings.TrimSpace(def) != "" {
				profile = def
			}
			if cred, err := store.GetCredential(profile); err == nil {
				if key == "" {
					key = cred.APIKey
				}
				if url == "" {
					url = cred.BaseURL
				}
			}
		}
	}

	// Config fallback
	if url == "" && cfg != nil {
		url = strings.TrimSpace(cfg.BaseURL)
	}
	if key == "" && cfg != nil {
		key = strings.TrimSpace(cfg.APIKey)
	}

	return url, key, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(envGet(k)); v != "" {
			return v
		}
	}
	return ""
}

// clientOptionsFromConfig builds API client options from config.
func clientOptionsFromConfig(cfg *config.Config, logger zerolog.Logger) []api.ClientOption {
	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTable(cfg.TableName()),
	}
	if timeout, err := cfg.TimeoutDuration(); err == nil && timeout > 0 {
		opts = append(opts, api.WithTimeout(timeout))
	} else if err != nil {
		logger.Warn().Err(err).Msg("ignoring timeout from config")
	}
	return opts
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
