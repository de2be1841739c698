package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig(t *testing.T) {
	content := `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

store {
  path = "data/accounts.json"
}

table "high" {
  max_players      = 4
  small_blind      = 50
  big_blind        = 100
  decision_timeout = 30
}

table "low" {
  small_blind = 5
  big_blind   = 10
}
`
	path := filepath.Join(t.TempDir(), "cardroom.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "data/accounts.json", cfg.Store.Path)

	require.Len(t, cfg.Tables, 2)
	high := cfg.GetTableByName("high")
	require.NotNil(t, high)
	assert.Equal(t, 4, high.MaxPlayers)
	assert.Equal(t, 30, high.DecisionTimeout)

	// max_players defaults to a full table
	low := cfg.GetTableByName("low")
	require.NotNil(t, low)
	assert.Equal(t, 6, low.MaxPlayers)

	assert.Nil(t, cfg.GetTableByName("missing"))
}

func TestLoadServerConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	assert.Len(t, cfg.Tables, 1)
}

func TestServerConfigValidate(t *testing.T) {
	base := func() *ServerConfig {
		cfg := DefaultServerConfig()
		return cfg
	}

	cfg := base()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tables = nil
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tables[0].SmallBlind = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tables[0].BigBlind = cfg.Tables[0].SmallBlind
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tables[0].MaxPlayers = 7
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tables[0].MaxPlayers = 1
	assert.Error(t, cfg.Validate())
}
