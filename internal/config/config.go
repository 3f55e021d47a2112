package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything tunable from the environment.
type Config struct {
	HTTPPort       string
	MongoURI       string
	MongoDatabase  string
	RedisAddr      string
	AllowedOrigins string

	ResetDelay    time.Duration
	SessionTTL    time.Duration
	JanitorPeriod time.Duration
}

// Load reads configuration from the environment with sane defaults.
func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.port", "8080")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "gameplatform")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("cors.allowed_origins", "*")

	v.SetDefault("session.reset_delay", "3s")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.janitor_period", "10m")

	v.BindEnv("http.port", "PORT")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("session.reset_delay", "SESSION_RESET_DELAY")
	v.BindEnv("session.ttl", "SESSION_TTL")
	v.BindEnv("session.janitor_period", "SESSION_JANITOR_PERIOD")

	return Config{
		HTTPPort:       v.GetString("http.port"),
		MongoURI:       v.GetString("mongo.uri"),
		MongoDatabase:  v.GetString("mongo.database"),
		RedisAddr:      v.GetString("redis.addr"),
		AllowedOrigins: v.GetString("cors.allowed_origins"),
		ResetDelay:     v.GetDuration("session.reset_delay"),
		SessionTTL:     v.GetDuration("session.ttl"),
		JanitorPeriod:  v.GetDuration("session.janitor_period"),
	}
}
