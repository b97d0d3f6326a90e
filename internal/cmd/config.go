package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/tiptap-cli/internal/config"
	"github.com/salmonumbrella/tiptap-cli/internal/output"
)

// configKey binds a config file key to its Config field.
type configKey struct {
	name  string
	usage string
	get   func(*config.Config) string
	set   func(*config.Config, string) error
}

var configKeys = []configKey{
	{
		name:  "base_url",
		usage: "project URL, e.g. https://abc.supabase.co",
		get:   func(c *config.Config) string { return c.BaseURL },
		set:   func(c *config.Config, v string) error { c.BaseURL = v; return nil },
	},
	{
		name:  "api_key",
		usage: "API key, prefer 'tiptap auth login'",
		get: func(c *config.Config) string {
			if c.APIKey == "" {
				return ""
			}
			return maskToken(c.APIKey)
		},
		set:   func(c *config.Config, v string) error { c.APIKey = v; return nil },
	},
	{
		name:  "table",
		usage: "posts table name (default " + config.DefaultTable + ")",
		get:   func(c *config.Config) string { return c.TableName() },
		set:   func(c *config.Config, v string) error { c.Table = v; return nil },
	},
	{
		name:  "recent_limit",
		usage: "recent posts checked for slug collisions",
		get:   func(c *config.Config) string { return strconv.Itoa(c.Recent()) },
		set: func(c *config.Config, v string) error {
			if v == "" {
				c.RecentLimit = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("recent_limit must be a positive integer, got %q", v)
			}
			c.RecentLimit = n
			return nil
		},
	},
	{
		name:  "timeout",
		usage: "HTTP timeout as a Go duration, e.g. 30s",
		get:   func(c *config.Config) string { return c.Timeout },
		set:   func(c *config.Config, v string) error { c.Timeout = v; return nil },
	},
	{
		name:  "keyring_backend",
		usage: strings.Join(config.KeyringBackends, "|"),
		get:   func(c *config.Config) string { return c.KeyringBackend },
		set:   func(c *config.Config, v string) error { c.KeyringBackend = v; return nil },
	},
	{
		name:  "output_format",
		usage: "default output format (text|json|ndjson|table|yaml)",
		get:   func(c *config.Config) string { return c.OutputFormat },
		set: func(c *config.Config, v string) error {
			if v != "" {
				if _, err := output.ParseFormat(v); err != nil {
					return err
				}
			}
			c.OutputFormat = v
			return nil
		},
	},
}

func lookupConfigKey(name string) (configKey, error) {
	for _, k := range configKeys {
		if k.name == name {
			return k, nil
		}
	}
	return configKey{}, fmt.Errorf("unknown config key: %s (see 'tiptap config keys')", name)
}

func supportedConfigKeys() []string {
	names := make([]string, len(configKeys))
	for i, k := range configKeys {
		names[i] = k.name
	}
	return names
}

// applyConfigValue sets key on cfg. cfg is left untouched when the
// resulting config does not validate.
func applyConfigValue(cfg *config.Config, key, value string) error {
	k, err := lookupConfigKey(key)
	if err != nil {
		return err
	}
	next := *cfg
	if err := k.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

func clearConfigValue(cfg *config.Config, key string) error {
	return applyConfigValue(cfg, key, "")
}

// configView is the shown configuration. Values are already masked.
type configView struct {
	path string
	cfg  *config.Config
}

func (v configView) fields() map[string]interface{} {
	fields := map[string]interface{}{"api_key_set": v.cfg.APIKey != ""}
	for _, k := range configKeys {
		fields[k.name] = k.get(v.cfg)
	}
	fields["recent_limit"] = v.cfg.Recent()
	return fields
}

func (v configView) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Config: %s\n", v.path)
	for _, k := range configKeys {
		if _, err := fmt.Fprintf(w, "  %-16s %s\n", k.name+":", k.get(v.cfg)); err != nil {
			return err
		}
	}
	return nil
}

func configOutput(cfg *config.Config) map[string]interface{} {
	return configView{cfg: cfg}.fields()
}

// configKeyList renders the supported keys with their usage.
type configKeyList []configKey

func (l configKeyList) Table() output.Table {
	t := output.Table{Headers: []string{"KEY", "DESCRIPTION"}}
	for _, k := range l {
		t.Rows = append(t.Rows, []string{k.name, k.usage})
	}
	return t
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in ~/.config/tiptap/config.yaml.

Run 'tiptap config keys' for the supported keys.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		path, err := configPath()
		if err != nil {
			return err
		}
		if structuredOutputRequested() {
			return printStructured(configOutput(cfg))
		}
		return configView{path: path, cfg: cfg}.RenderText(stdoutFromContext(cmd.Context()))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Example: `  tiptap config set table articles
  tiptap config set timeout 60s`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if structuredOutputRequested() {
			return printStructured(supportedConfigKeys())
		}
		return printStructured(configKeyList(configKeys).Table())
	},
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	return config.DefaultConfigPath()
}

// updateConfig loads the config, applies change and saves it back.
func updateConfig(change func(*config.Config) error) error {
	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := change(cfg); err != nil {
		return err
	}
	path, err := configPath()
	if err != nil {
		return err
	}
	return cfg.Save(path)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])

	err := updateConfig(func(cfg *config.Config) error {
		return applyConfigValue(cfg, key, value)
	})
	if err != nil {
		return err
	}

	if structuredOutputRequested() {
		if key == "api_key" {
			value = maskToken(value)
		}
		return printStructured(map[string]string{"status": "updated", "key": key, "value": value})
	}
	fmt.Fprintf(stdoutFromContext(cmd.Context()), "Updated %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))

	err := updateConfig(func(cfg *config.Config) error {
		return clearConfigValue(cfg, key)
	})
	if err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{"status": "unset", "key": key})
	}
	fmt.Fprintf(stdoutFromContext(cmd.Context()), "Unset %s\n", key)
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configUnsetCmd, configKeysCmd)
	rootCmd.AddCommand(configCmd)
}
