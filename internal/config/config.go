// Package config loads and persists worldforge configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all worldforge configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// World generation parameters
	Generation GenerationConfig `yaml:"generation"`

	// Combat tuning for character generation
	Combat CombatConfig `yaml:"combat"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DatabaseConfig configures the SQLite world database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GenerationConfig holds per-stage entity counts and world parameters.
type GenerationConfig struct {
	Seed       int64 `yaml:"seed"` // 0 means derive from wall clock
	Complexity int   `yaml:"complexity"`

	NumCities            int `yaml:"num_cities"`
	DistrictsPerCity     int `yaml:"districts_per_city"`
	BuildingsPerLocation int `yaml:"buildings_per_location"`
	NumCharacters        int `yaml:"num_characters"`
	NumDevices           int `yaml:"num_devices"`
	ItemsPerCategory     int `yaml:"items_per_category"`
	NumShops             int `yaml:"num_shops"`
}

// CombatConfig tunes combat-stat derivation for generated characters.
type CombatConfig struct {
	// Difficulty scales health/damage/accuracy/initiative and resistances (1-5).
	Difficulty int `yaml:"difficulty"`

	// HostilePercent is the chance (0-100) that a character is hostile.
	HostilePercent int `yaml:"hostile_percent"`

	// EnemyTypeWeights is the base distribution over enemy type tags.
	// Weights are normalized at generation time.
	EnemyTypeWeights map[string]int `yaml:"enemy_type_weights"`

	// CombatStyles restricts the styles characters may be assigned.
	CombatStyles []string `yaml:"combat_styles"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "worldforge",
		Version: "1.0.0",

		Database: DatabaseConfig{
			Path: "data/worlds.db",
		},

		Generation: GenerationConfig{
			Seed:                 0,
			Complexity:           3,
			NumCities:            4,
			DistrictsPerCity:     3,
			BuildingsPerLocation: 4,
			NumCharacters:        30,
			NumDevices:           25,
			ItemsPerCategory:     20,
			NumShops:             8,
		},

		Combat: CombatConfig{
			Difficulty:     3,
			HostilePercent: 30,
			EnemyTypeWeights: map[string]int{
				"HUMAN":     40,
				"GUARD":     20,
				"CYBORG":    15,
				"DRONE":     10,
				"ROBOT":     5,
				"NETRUNNER": 5,
				"MILITECH":  3,
				"BEAST":     2,
			},
			CombatStyles: []string{
				"aggressive", "defensive", "balanced", "evasive",
				"swarm", "support", "tactical", "ambush",
			},
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WORLDFORGE_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("WORLDFORGE_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Generation.Seed = seed
		}
	}
	if v := os.Getenv("WORLDFORGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks parameter ranges before a generation run.
func (c *Config) Validate() error {
	if c.Generation.Complexity < 1 || c.Generation.Complexity > 5 {
		return fmt.Errorf("complexity must be in [1,5], got %d", c.Generation.Complexity)
	}
	if c.Combat.Difficulty < 1 || c.Combat.Difficulty > 5 {
		return fmt.Errorf("combat difficulty must be in [1,5], got %d", c.Combat.Difficulty)
	}
	if c.Combat.HostilePercent < 0 || c.Combat.HostilePercent > 100 {
		return fmt.Errorf("hostile_percent must be in [0,100], got %d", c.Combat.HostilePercent)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path required")
	}
	return nil
}
