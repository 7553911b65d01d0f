package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix prefixes environment variables, e.g. GREST_BASE_URL.
const DefaultEnvPrefix = "GREST"

// DefaultEnvFile is loaded when present and LoaderConfig.EnvFile is empty.
const DefaultEnvFile = ".env"

// keys lists every setting bound to an environment variable. Headers are
// file-only.
var keys = []string{
	"base_url",
	"authorization",
	"endpoints",
	"service_name",
	"debug",
	"generate_curl",
}

// LoaderConfig selects where configuration is read from.
type LoaderConfig struct {
	// ConfigFile is a YAML, JSON or TOML file. Optional.
	ConfigFile string

	// EnvFile is a dotenv file loaded into the process environment.
	// Existing variables win. Defaults to DefaultEnvFile when it exists.
	EnvFile string

	// EnvPrefix defaults to DefaultEnvPrefix.
	EnvPrefix string
}

// Load reads configuration with precedence env > dotenv > file > defaults.
// An explicitly named file that cannot be read is an error.
//
//	cfg, err := config.Load(config.LoaderConfig{ConfigFile: "config.yml"})
//	if err != nil { ... }
//	client, err := cfg.NewClient()
func Load(lc LoaderConfig) (*Config, error) {
	if err := loadEnvFile(lc.EnvFile); err != nil {
		return nil, err
	}

	prefix := lc.EnvPrefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	v := viper.New()
	v.SetDefault("service_name", "grest")
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", lc.ConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load env file %s: %w", path, err)
	}
	return nil
}
