package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	MySQLDSN             string
	MySQLMaxOpenConns    int
	MySQLMaxIdleConns    int
	MySQLConnMaxLifetime time.Duration

	RedisAddr     string
	RedisPoolSize int
}

// Load reads a local .env file when present, then the environment, falling
// back to local-development defaults.
func Load() Config {
	godotenv.Load()

	return Config{
		HTTPAddr:             getString("HTTP_ADDR", ":8080"),
		MySQLDSN:             getString("MYSQL_DSN", "root:root@tcp(localhost:3306)/velocar?parseTime=true"),
		MySQLMaxOpenConns:    getInt("MYSQL_MAX_OPEN_CONNS", 50),
		MySQLMaxIdleConns:    getInt("MYSQL_MAX_IDLE_CONNS", 25),
		MySQLConnMaxLifetime: getDuration("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute),
		RedisAddr:            getString("REDIS_ADDR", "localhost:6379"),
		RedisPoolSize:        getInt("REDIS_POOL_SIZE", 100),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
