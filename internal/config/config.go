package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// StoreMongo selects the MongoDB document store.
	StoreMongo = "mongo"
	// StorePostgres selects PostgreSQL through GORM.
	StorePostgres = "postgres"
	// StoreSQLite selects an SQLite file through GORM.
	StoreSQLite = "sqlite"
)

// Config holds runtime configuration values for the feedback service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	PublicDir         string
	StoreDriver       string
	MongoURI          string
	MongoDatabase     string
	MongoCollection   string
	DatabaseURL       string
	StoreTimeout      time.Duration
	HealthInterval    time.Duration
	RedisURL          string
	DedupeTTL         time.Duration
	NATSURL           string
	NATSSubject       string
	JWTSecret         string
	RateLimitMax      int
	RateLimitWindow   time.Duration
	FeedbackListLimit int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FEEDBACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// unprefixed names used by common hosting platforms
	_ = v.BindEnv("app.port", "FEEDBACK_APP_PORT", "PORT")
	_ = v.BindEnv("mongodb.uri", "FEEDBACK_MONGODB_URI", "MONGODB_URI")

	v.SetDefault("app.name", "Student Feedback API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3001")
	v.SetDefault("public_dir", "public")
	v.SetDefault("store.driver", StoreMongo)
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "student_feedback")
	v.SetDefault("mongodb.collection", "feedbacks")
	v.SetDefault("store.timeout", "10s")
	v.SetDefault("health.interval", "10s")
	v.SetDefault("dedupe.ttl", "0s")
	v.SetDefault("nats.subject", "feedback.created")
	v.SetDefault("rate_limit.max", 20)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("list_limit", 500)

	storeTimeout, err := parseDuration(v, "store.timeout")
	if err != nil {
		return Config{}, err
	}
	healthInterval, err := parseDuration(v, "health.interval")
	if err != nil {
		return Config{}, err
	}
	dedupeTTL, err := parseDuration(v, "dedupe.ttl")
	if err != nil {
		return Config{}, err
	}
	rateLimitWindow, err := parseDuration(v, "rate_limit.window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		PublicDir:         v.GetString("public_dir"),
		StoreDriver:       strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
		MongoURI:          v.GetString("mongodb.uri"),
		MongoDatabase:     v.GetString("mongodb.database"),
		MongoCollection:   v.GetString("mongodb.collection"),
		DatabaseURL:       v.GetString("database.url"),
		StoreTimeout:      storeTimeout,
		HealthInterval:    healthInterval,
		RedisURL:          v.GetString("redis.url"),
		DedupeTTL:         dedupeTTL,
		NATSURL:           v.GetString("nats.url"),
		NATSSubject:       v.GetString("nats.subject"),
		JWTSecret:         v.GetString("jwt.secret"),
		RateLimitMax:      v.GetInt("rate_limit.max"),
		RateLimitWindow:   rateLimitWindow,
		FeedbackListLimit: v.GetInt("list_limit"),
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" || cfg.MongoDatabase == "" || cfg.MongoCollection == "" {
			return Config{}, fmt.Errorf("mongodb uri, database and collection must be provided")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url must be provided for the postgres store")
		}
	case StoreSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "feedback.db"
		}
	default:
		return Config{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if cfg.DedupeTTL < 0 {
		return Config{}, fmt.Errorf("dedupe ttl must not be negative")
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 20
	}

	if cfg.FeedbackListLimit <= 0 {
		cfg.FeedbackListLimit = 500
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
