package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ugoscholars/scholardb/internal/config"
	"github.com/ugoscholars/scholardb/pkg/constants"
	"github.com/ugoscholars/scholardb/pkg/errors"
)

// Logging configuration keys.
const (
	keyLogLevel  = "log.level"
	keyLogFormat = "log.format"
	keyLogOutput = "log.output"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Store overrides from --store and --driver
	StorePath   string
	StoreDriver string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	v *viper.Viper
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. SCHOLARDB_* environment variables
// 3. .env files
// 4. Config file (~/.scholardb.yaml or ./.scholardb.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)

	// Search for config in standard locations
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(constants.DefaultConfigName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.WrapParse("yaml", v.ConfigFileUsed(), err)
		}
	}

	return &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no-color") || os.Getenv("NO_COLOR") != "",
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),
		LogLevel:   firstNonEmpty(v.GetString(keyLogLevel), os.Getenv("LOG_LEVEL")),
		LogFormat:  firstNonEmpty(v.GetString(keyLogFormat), os.Getenv("LOG_FORMAT"), "auto"),
		LogOutput:  firstNonEmpty(v.GetString(keyLogOutput), os.Getenv("LOG_OUTPUT"), "stderr"),
		v:          v,
	}, nil
}

// UseConfigFile reads an explicit config file on top of the loaded values.
func (c *Config) UseConfigFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return &errors.ConfigError{Component: "config", Message: "cannot read " + path, Err: err}
	}
	c.ConfigFile = path
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, store, driver string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if store != "" {
		c.StorePath = store
	}
	if driver != "" {
		c.StoreDriver = driver
	}
}

// Settings resolves the typed store, archive and run settings.
func (c *Config) Settings() (*config.Config, error) {
	switch {
	case strings.Contains(c.StorePath, "://"):
		c.v.Set(config.KeyStoreDSN, c.StorePath)
	case c.StorePath != "":
		c.v.Set(config.KeyStorePath, c.StorePath)
	}
	if c.StoreDriver != "" {
		c.v.Set(config.KeyStoreDriver, c.StoreDriver)
	}
	return config.FromViper(c.v)
}

// Viper exposes the underlying viper instance, mainly for tests.
func (c *Config) Viper() *viper.Viper { return c.v }

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
