package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmonumbrella/tiptap-cli/internal/config"
)

func TestConfigSetUnsetCommands(t *testing.T) {
	restore := snapshotCLIState()
	defer restore()

	_, err := runCLI(t, "", "--output", "text", "config", "set", "table", "articles")
	require.NoError(t, err)
	cfgPath := configFile

	_, err = runCLI(t, "", "--config", cfgPath, "--output", "text", "config", "set", "recent_limit", "7")
	require.NoError(t, err)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "articles", cfg.TableName())
	assert.Equal(t, 7, cfg.Recent())

	run, err := runCLI(t, "", "--config", cfgPath, "--output", "text", "config", "unset", "table")
	require.NoError(t, err)
	assert.Equal(t, "Unset table\n", run.out.String())

	cfg, err = config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTable, cfg.TableName())
	assert.Equal(t, 7, cfg.Recent())
}

func TestConfigSetRejectsInvalidValue(t *testing.T) {
	restore := snapshotCLIState()
	defer restore()

	_, err := runCLI(t, "", "--output", "json", "config", "set", "keyring_backend", "vault")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyring_backend")
}

func TestConfigShowJSON(t *testing.T) {
	restore := snapshotCLIState()
	defer restore()

	_, err := runCLI(t, "", "--output", "json", "config", "set", "api_key", "sb-service-role-123456")
	require.NoError(t, err)
	cfgPath := configFile

	run, err := runCLI(t, "", "--config", cfgPath, "--output", "json", "config", "show")
	require.NoError(t, err)

	var shown map[string]interface{}
	require.NoError(t, json.Unmarshal(run.out.Bytes(), &shown))
	assert.Equal(t, "sb-s...3456", shown["api_key"])
	assert.Equal(t, true, shown["api_key_set"])
	assert.Equal(t, "posts", shown["table"])
}
