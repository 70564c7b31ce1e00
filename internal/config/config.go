package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string
	// HoursPerPeriod is the reporting-period working-hour base used by the
	// financial reconciler (default 160 = one person-month).
	HoursPerPeriod int
	// CORSAllowedOrigins is a comma-separated origin allowlist; localhost is
	// always admitted.
	CORSAllowedOrigins []string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		if testURL := viper.GetString("DATABASE_URL_TEST"); testURL != "" {
			dbURL = testURL
		}
	}

	hours := viper.GetInt("HOURS_PER_PERIOD")
	if hours <= 0 {
		hours = 160
	}

	var origins []string
	if raw := viper.GetString("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return &Config{
		Env:                env,
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           viper.GetString("REDIS_URL"),
		HoursPerPeriod:     hours,
		CORSAllowedOrigins: origins,
	}, nil
}
