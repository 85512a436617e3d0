package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking wizard.
	SessionTTL   time.Duration `mapstructure:"SESSION_TTL"`
	HandoffTTL   time.Duration `mapstructure:"HANDOFF_TTL"`
	SubmitDelay  time.Duration `mapstructure:"SUBMIT_DELAY"`
	TrackingTick time.Duration `mapstructure:"TRACKING_TICK"`
	Currency     string        `mapstructure:"CURRENCY"`

	// Fallback coordinate used when the client cannot or will not share a location.
	DefaultLat float64 `mapstructure:"DEFAULT_LAT"`
	DefaultLon float64 `mapstructure:"DEFAULT_LON"`

	// Optional integrations. Empty values switch the integration off.
	UploadDir               string `mapstructure:"UPLOAD_DIR"`
	CloudinaryURL           string `mapstructure:"CLOUDINARY_URL"`
	StripeKey               string `mapstructure:"STRIPE_KEY"`
	SendGridAPIKey          string `mapstructure:"SENDGRID_API_KEY"`
	MailFrom                string `mapstructure:"MAIL_FROM"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "homeserve")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("HANDOFF_TTL", "10m")
	v.SetDefault("SUBMIT_DELAY", "2s")
	v.SetDefault("TRACKING_TICK", "10s")
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("DEFAULT_LAT", -1.286389)
	v.SetDefault("DEFAULT_LON", 36.817223)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("CLOUDINARY_URL", "")
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "bookings@homeserve.local")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
}

// Load reads configuration from .env, config.yaml and the environment, in that
// order of increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, skipping")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.HandoffTTL <= 0 {
		return fmt.Errorf("HANDOFF_TTL must be > 0")
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("SUBMIT_DELAY must not be negative")
	}
	if c.TrackingTick <= 0 {
		return fmt.Errorf("TRACKING_TICK must be > 0")
	}
	if c.DefaultLat < -90 || c.DefaultLat > 90 || c.DefaultLon < -180 || c.DefaultLon > 180 {
		return fmt.Errorf("DEFAULT_LAT/DEFAULT_LON out of range")
	}
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

// LoadConfig populates AppConfig and aborts the process on invalid configuration.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = *cfg
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return AppConfig.IsProduction()
}
