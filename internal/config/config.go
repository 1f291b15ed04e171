package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	SessionSecret       string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string

	// Marketplace policy knobs. The radius bands and the warning window are
	// policy constants with no derivation; they stay configurable.
	ListingPeriodDays int
	NotifyWindowDays  int
	SweepInterval     time.Duration
	FuzzRadiusLowM    float64
	FuzzRadiusMediumM float64
	FuzzRadiusHighM   float64
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
		if u := viper.GetString("DATABASE_URL_TEST"); u != "" {
			dbURL = u
		}
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		ListingPeriodDays:   intOr(viper.GetInt("LISTING_PERIOD_DAYS"), 30),
		NotifyWindowDays:    intOr(viper.GetInt("EXPIRATION_NOTIFY_WINDOW_DAYS"), 3),
		SweepInterval:       durationOr(viper.GetDuration("EXPIRATION_SWEEP_INTERVAL"), time.Hour),
		FuzzRadiusLowM:      floatOr(viper.GetFloat64("FUZZ_RADIUS_LOW_M"), 500),
		FuzzRadiusMediumM:   floatOr(viper.GetFloat64("FUZZ_RADIUS_MEDIUM_M"), 2000),
		FuzzRadiusHighM:     floatOr(viper.GetFloat64("FUZZ_RADIUS_HIGH_M"), 5000),
	}, nil
}

func intOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func floatOr(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func durationOr(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
