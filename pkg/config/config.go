package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "taskboard"
	configFile = "config.yaml"
	envPrefix  = "TASKBOARD"

	DefaultCalendar = "Tasks"
	DefaultTasksKey = "tasks"
)

type Config struct {
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Seed     SeedConfig     `yaml:"seed" mapstructure:"seed"`
	Calendar CalendarConfig `yaml:"calendar" mapstructure:"calendar"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StorageConfig selects the slot backend that holds the board.
type StorageConfig struct {
	Backend         string `yaml:"backend" mapstructure:"backend"` // file, sqlite, mongo or memory
	Path            string `yaml:"path" mapstructure:"path"`
	Key             string `yaml:"key" mapstructure:"key"`
	MongoURI        string `yaml:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database" mapstructure:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection" mapstructure:"mongo_collection"`
}

type SeedConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	Probability float64 `yaml:"probability" mapstructure:"probability"`
	Months      int     `yaml:"months" mapstructure:"months"`
	// RandomSeed of 0 seeds from the clock.
	RandomSeed uint64 `yaml:"random_seed" mapstructure:"random_seed"`
}

type CalendarConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}

type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"`
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	dir := "~/.config/" + xdgAppName
	return &Config{
		Storage: StorageConfig{
			Backend:         "file",
			Path:            dir,
			Key:             DefaultTasksKey,
			MongoDatabase:   xdgAppName,
			MongoCollection: "slots",
		},
		Seed: SeedConfig{
			Enabled:     true,
			Probability: 0.3,
			Months:      3,
		},
		Calendar: CalendarConfig{Name: DefaultCalendar},
		Log: LogConfig{
			File:  dir + "/logs/taskboard.log",
			Level: "info",
		},
	}
}

// GetConfigDir returns ~/.config/taskboard.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load builds the configuration from defaults, the YAML file at path (or the
// default location when path is empty), a .env file in the working directory
// and TASKBOARD_* environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys that are
// absent from the file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.key", cfg.Storage.Key)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)
	v.SetDefault("seed.enabled", cfg.Seed.Enabled)
	v.SetDefault("seed.probability", cfg.Seed.Probability)
	v.SetDefault("seed.months", cfg.Seed.Months)
	v.SetDefault("seed.random_seed", cfg.Seed.RandomSeed)
	v.SetDefault("calendar.name", cfg.Calendar.Name)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
}

func (c *Config) normalize() {
	if c.Calendar.Name == "" {
		c.Calendar.Name = DefaultCalendar
	}
	if c.Storage.Key == "" {
		c.Storage.Key = DefaultTasksKey
	}
	c.Storage.Path = ExpandHome(c.Storage.Path)
	c.Log.File = ExpandHome(c.Log.File)
}

// Save writes cfg as YAML to path, or to the default location when path is
// empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return encoder.Close()
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
