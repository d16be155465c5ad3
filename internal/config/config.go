package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Gateway holds all configuration for the game session gateway.
type Gateway struct {
	// World identity. The client greets the server with this name before the
	// handshake proper; a mismatch aborts the connection.
	ServerName string `yaml:"server_name"`

	// Network
	IP                    string `yaml:"ip"`
	BindOnlyGlobalAddress bool   `yaml:"bind_only_global_address"`
	GamePort              int    `yaml:"game_port"`
	StatusPort            int    `yaml:"status_port"`
	HTTPPort              int    `yaml:"http_port"`

	// Admission
	MaxPlayers          uint32 `yaml:"max_players"` // 0 disables the wait-list
	FreePremium         bool   `yaml:"free_premium"`
	AllowClones         bool   `yaml:"allow_clones"`
	OnePlayerPerAccount bool   `yaml:"one_player_per_account"`

	// Reserved for a reconnect-kick path; parsed but not acted upon.
	ReplaceKickOnLogin bool `yaml:"replace_kick_on_login"`

	// Flood protection
	MaxPacketsPerSecond uint32 `yaml:"max_packets_per_second"`

	// Crypto
	RSAKeyFile string `yaml:"rsa_key_file"`

	// Database
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultGateway returns Gateway config with sensible defaults.
func DefaultGateway() Gateway {
	return Gateway{
		ServerName:          "Forgotten",
		IP:                  "0.0.0.0",
		GamePort:            7172,
		StatusPort:          7171,
		HTTPPort:            8080,
		MaxPlayers:          0,
		OnePlayerPerAccount: true,
		MaxPacketsPerSecond: 25,
		RSAKeyFile:          "key.pem",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "forgottenserver",
			Password: "forgottenserver",
			DBName:   "forgottenserver",
			SSLMode:  "disable",
		},
	}
}

// LoadGateway loads gateway config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGateway(path string) (Gateway, error) {
	cfg := DefaultGateway()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
