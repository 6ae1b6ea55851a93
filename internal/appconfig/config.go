package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/trove/internal/backend"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	Root          string        `mapstructure:"root" yaml:"root"`
	Trove         string        `mapstructure:"trove" yaml:"trove"`
	Bridge        BridgeConfig  `mapstructure:"bridge" yaml:"bridge"`
	Backend       BackendConfig `mapstructure:"backend" yaml:"backend"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// BridgeConfig controls the bridge socket and client calls.
type BridgeConfig struct {
	SocketPath     string `mapstructure:"socket_path" yaml:"socket_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// BackendConfig controls the filesystem backend run by `trove serve`.
type BackendConfig struct {
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Root:          filepath.Join(home, "Documents", "Trove"),
		Trove:         backend.DefaultTrove,
		Bridge: BridgeConfig{
			SocketPath:     defaultSocketPath(home),
			TimeoutSeconds: 10,
		},
		Backend: BackendConfig{
			Watch: true,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".trove", "config.yaml"), nil
}

func defaultSocketPath(home string) string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "trove", "bridge.sock")
	}
	return filepath.Join(home, ".trove", "bridge.sock")
}
