package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DEFAULT_DB_NAME string = "devevent"
const DEFAULT_CONNECT_TIMEOUT time.Duration = 10 * time.Second
const DEFAULT_CACHE_TTL time.Duration = 60 * time.Second

// Config holds runtime settings read from the environment. MongoURI may be
// empty here: a missing URI is reported by the database layer on first use.
type Config struct {
	Env            string
	Port           string
	LogLevel       string
	MongoURI       string
	MongoDatabase  string
	ConnectTimeout time.Duration
	SigningKey     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	AMQPURL        string
}

// Load reads the configuration, loading a .env file first outside production.
func Load() (Config, error) {
	env := getenv("GO_ENV", "development")
	if env != "production" {
		// a missing .env is fine, the process environment is still used
		_ = godotenv.Load()
	}

	timeout, err := parseDuration("MONGODB_CONNECT_TIMEOUT", DEFAULT_CONNECT_TIMEOUT)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", DEFAULT_CACHE_TTL)
	if err != nil {
		return Config{}, err
	}
	redisDB := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		redisDB, err = strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid int for REDIS_DB: %q", s)
		}
	}
	// optional, admin routes refuse every request while it is unset
	signingKey, _ := GetSecret("SIGN")

	return Config{
		Env:            env,
		Port:           getenv("APP_PORT", "80"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		MongoURI:       os.Getenv("MONGODB_URI"),
		MongoDatabase:  getenv("MONGODB_DATABASE", DEFAULT_DB_NAME),
		ConnectTimeout: timeout,
		SigningKey:     signingKey,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		CacheTTL:       cacheTTL,
		AMQPURL:        os.Getenv("AMQP_URL"),
	}, nil
}

func GetSecret(key string) (string, error) {
	val, exist := os.LookupEnv(key)
	if exist {
		return val, nil
	}
	return "", fmt.Errorf("no env variable with key %v", key)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %v: %q", key, s)
	}
	return d, nil
}
