package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config aggregates runtime settings read from the environment and an
// optional dotenv file.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Argon2   Argon2Config
	Google   GoogleConfig
}

type AppConfig struct {
	Host         string
	Port         string
	LoggingLevel string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Argon2Config struct {
	MemoryCost  uint32
	TimeCost    uint32
	Parallelism uint8
	KeyLength   uint32
}

type GoogleConfig struct {
	ClientID string
}

// Load reads configuration from environment variables, overlaid on the
// dotenv file at envfile when it exists. Missing required values fail the
// load; only the tuning knobs carry defaults.
func Load(envfile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	if envfile != "" {
		if _, err := os.Stat(envfile); err == nil {
			logrus.WithField("envfile", envfile).Info("Loading dotenv file")
			v.SetConfigFile(envfile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read envfile %s: %w", envfile, err)
			}
		}
	}

	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("ARGON2_MEMORY_COST", 16384)
	v.SetDefault("ARGON2_TIME_COST", 2)
	v.SetDefault("ARGON2_PARALLELISM", 1)
	v.SetDefault("ARGON2_HASH_LEN", 32)
	v.SetDefault("APP_LOGGING_LEVEL", "info")

	required := []string{
		"POSTGRES_USER",
		"POSTGRES_PASSWD",
		"POSTGRES_HOST",
		"POSTGRES_PORT",
		"POSTGRES_DB",
		"APP_HOST",
		"APP_PORT",
		"APP_GOOGLE_CLIENT_ID",
	}
	var missing []string
	for _, key := range required {
		if v.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	// Parallelism is stored as uint8; a plain conversion would silently
	// truncate larger values.
	parallelism := v.GetUint("ARGON2_PARALLELISM")
	if parallelism < 1 || parallelism > 255 {
		return nil, fmt.Errorf("ARGON2_PARALLELISM must be between 1 and 255, got %d", parallelism)
	}

	cfg := &Config{
		App: AppConfig{
			Host:         v.GetString("APP_HOST"),
			Port:         v.GetString("APP_PORT"),
			LoggingLevel: v.GetString("APP_LOGGING_LEVEL"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetString("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWD"),
			Name:     v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		Argon2: Argon2Config{
			MemoryCost:  v.GetUint32("ARGON2_MEMORY_COST"),
			TimeCost:    v.GetUint32("ARGON2_TIME_COST"),
			Parallelism: uint8(parallelism),
			KeyLength:   v.GetUint32("ARGON2_HASH_LEN"),
		},
		Google: GoogleConfig{
			ClientID: v.GetString("APP_GOOGLE_CLIENT_ID"),
		},
	}
	return cfg, nil
}
