package config

import (
	"log"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	RateLimit         string

	// Tenant-wide FX fallback defaults; callers may override per request.
	FxFallbackMode    domain.FxFallbackMode
	FxFallbackMaxDays int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "cari-backend")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("FX_FALLBACK_MODE", string(domain.FxFallbackNone))
	viper.SetDefault("FX_FALLBACK_MAX_DAYS", 7)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	mode := domain.FxFallbackMode(viper.GetString("FX_FALLBACK_MODE"))
	if mode != domain.FxFallbackNone && mode != domain.FxFallbackPriorDate {
		log.Printf("Warning: Invalid value for FX_FALLBACK_MODE ('%s'). Defaulting to %s.\n", mode, domain.FxFallbackNone)
		mode = domain.FxFallbackNone
	}
	cfg.FxFallbackMode = mode

	cfg.FxFallbackMaxDays = viper.GetInt("FX_FALLBACK_MAX_DAYS")
	if cfg.FxFallbackMaxDays <= 0 {
		cfg.FxFallbackMaxDays = 7
	}

	return cfg, nil
}
