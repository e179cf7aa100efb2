package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/marcelsud/book-manager/book/cover"
	"github.com/spf13/viper"
)

/* Config is built once in main and handed to the components that need it.
 * Nothing reads configuration from globals after start-up.
 */

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBDriver string `mapstructure:"DB_DRIVER"`
	DBPath   string `mapstructure:"DB_PATH"`

	PostgresHost               string `mapstructure:"POSTGRES_HOST"`
	PostgresPort               string `mapstructure:"POSTGRES_PORT"`
	PostgresUser               string `mapstructure:"POSTGRES_USER"`
	PostgresPassword           string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB                 string `mapstructure:"POSTGRES_DB"`
	PostgresSSLMode            string `mapstructure:"POSTGRES_SSLMODE"`
	PostgresMaxOpenConns       int    `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
	PostgresMaxIdleConns       int    `mapstructure:"POSTGRES_MAX_IDLE_CONNS"`
	PostgresConnMaxLifeMinutes int    `mapstructure:"POSTGRES_CONN_MAX_LIFE_MINUTES"`

	UploadDir    string `mapstructure:"UPLOAD_DIR"`
	UploadNaming string `mapstructure:"UPLOAD_NAMING"`

	SessionSecret string `mapstructure:"SESSION_SECRET"`
}

var defaults = map[string]any{
	"PORT":                           "5000",
	"LOG_LEVEL":                      "info",
	"DB_DRIVER":                      DriverSQLite,
	"DB_PATH":                        "books.db",
	"POSTGRES_HOST":                  "localhost",
	"POSTGRES_PORT":                  "5432",
	"POSTGRES_USER":                  "",
	"POSTGRES_PASSWORD":              "",
	"POSTGRES_DB":                    "",
	"POSTGRES_SSLMODE":               "disable",
	"POSTGRES_MAX_OPEN_CONNS":        25,
	"POSTGRES_MAX_IDLE_CONNS":        5,
	"POSTGRES_CONN_MAX_LIFE_MINUTES": 5,
	"UPLOAD_DIR":                     "static/uploads",
	"UPLOAD_NAMING":                  "original",
	"SESSION_SECRET":                 "replace-this-with-a-random-secret",
}

// GetConfig reads the optional .env file in the working directory, then the environment
func GetConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var config Config
	err = v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &config, nil
}

// Validate checks the values main depends on
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if err := c.ValidatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %s or %s, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if _, err := cover.ParseNaming(c.UploadNaming); err != nil {
		return fmt.Errorf("UPLOAD_NAMING: %w", err)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	return nil
}

// ValidatePostgres checks that every connection setting is present
func (c *Config) ValidatePostgres() error {
	missing := []string{}
	for name, value := range map[string]string{
		"POSTGRES_HOST": c.PostgresHost,
		"POSTGRES_PORT": c.PostgresPort,
		"POSTGRES_USER": c.PostgresUser,
		"POSTGRES_DB":   c.PostgresDB,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing postgres settings: %v", missing)
	}
	return nil
}

// PostgresConnectionString builds a lib/pq URL from the POSTGRES_* settings
func (c *Config) PostgresConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     c.PostgresHost + ":" + c.PostgresPort,
		Path:     "/" + c.PostgresDB,
		RawQuery: url.Values{"sslmode": []string{c.PostgresSSLMode}}.Encode(),
	}
	return u.String()
}

// Naming returns the parsed upload naming policy; Validate has already checked it
func (c *Config) Naming() cover.Naming {
	n, err := cover.ParseNaming(c.UploadNaming)
	if err != nil {
		return cover.Original
	}
	return n
}
