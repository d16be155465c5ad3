package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGatewayMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadGateway(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultGateway(), cfg)
}

func TestLoadGatewayOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server_name: MyWorld\n"+
			"game_port: 7272\n"+
			"max_players: 900\n"+
			"one_player_per_account: false\n"+
			"database:\n"+
			"  host: db.local\n"), 0o644))

	cfg, err := LoadGateway(path)
	require.NoError(t, err)
	assert.Equal(t, "MyWorld", cfg.ServerName)
	assert.Equal(t, 7272, cfg.GamePort)
	assert.Equal(t, uint32(900), cfg.MaxPlayers)
	assert.False(t, cfg.OnePlayerPerAccount)
	assert.Equal(t, "db.local", cfg.Database.Host)
	// Untouched keys keep their defaults.
	assert.Equal(t, 7171, cfg.StatusPort)
}

func TestLoadGatewayMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_name: [unclosed"), 0o644))

	_, err := LoadGateway(path)
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "fs", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/fs?sslmode=disable", d.DSN())
}
