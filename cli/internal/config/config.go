// Package config resolves CLI settings from flags, the environment,
// .env files and .drizzle-go.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// FileName is the config file written by init
	FileName  = ".drizzle-go.yaml"
	envPrefix = "DRIZZLE"
)

// Config holds the CLI configuration
type Config struct {
	SchemaPath  string
	Provider    string
	DatabaseURL string
	Debug       bool
	LogFormat   string
}

// Loader reads configuration through one viper instance. Flags bound to
// Viper() take precedence over the environment and the config file.
type Loader struct {
	fs afero.Fs
	v  *viper.Viper
}

// NewLoader creates a loader reading files from fs
func NewLoader(fs afero.Fs) *Loader {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("schema", "schema.dsl")
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "text")
	return &Loader{fs: fs, v: v}
}

// Viper returns the underlying viper instance, used to bind flags
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load resolves the configuration. configFile, when set, replaces the
// default search for .drizzle-go.yaml in the working directory, the home
// directory and ~/.config/drizzle-go.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			l.v.AddConfigPath(home)
			l.v.AddConfigPath(filepath.Join(home, ".config", "drizzle-go"))
		}
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	dotenv, err := l.readDotenv()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SchemaPath:  l.v.GetString("schema"),
		Provider:    l.v.GetString("provider"),
		DatabaseURL: l.v.GetString("url"),
		Debug:       l.v.GetBool("debug"),
		LogFormat:   l.v.GetString("log_format"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dotenv["DATABASE_URL"]
	}
	if cfg.Provider == "" && cfg.DatabaseURL != "" {
		cfg.Provider = DetectProvider(cfg.DatabaseURL)
	}
	return cfg, nil
}

// readDotenv merges .env and .env.local; .env.local wins
func (l *Loader) readDotenv() (map[string]string, error) {
	out := make(map[string]string)
	for _, name := range []string{".env", ".env.local"} {
		if _, err := l.fs.Stat(name); err != nil {
			continue
		}
		f, err := l.fs.Open(name)
		if err != nil {
			return nil, err
		}
		values, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		for k, v := range values {
			out[k] = v
		}
	}
	return out, nil
}

// DetectProvider guesses the provider from a connection string
func DetectProvider(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "mysql://"), strings.Contains(dsn, "@tcp("):
		return "mysql"
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"),
		strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"), dsn == ":memory:":
		return "sqlite"
	default:
		return "postgresql"
	}
}

// Save writes cfg to path. The database URL is left out; it belongs in
// the environment.
func Save(fs afero.Fs, cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(fs)
	v.Set("schema", cfg.SchemaPath)
	v.Set("provider", cfg.Provider)
	v.Set("debug", cfg.Debug)
	v.Set("log_format", cfg.LogFormat)
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return v.WriteConfigAs(path)
}
