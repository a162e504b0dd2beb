package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	DBType     string
	DBDSN      string
	BoltPath   string
	FileBabies string
	FileSleep  string

	AuthToken      string
	AuthServiceURL string

	RedisAddr    string
	RedisChannel string

	RefreshSchedule      string
	WakeWindowTable      string
	MinDataPoints        int
	HighConfidencePoints int
	NightStartHour       int
	NightEndHour         int
	Timezone             string
	CacheTTL             time.Duration

	OtelEnabled     bool
	OtelServiceName string

	CORSOrigins []string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv(".env")
		cfg = FromEnv()
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

// FromEnv reads the process environment without validating it.
func FromEnv() *Config {
	return &Config{
		Env:                  getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8088"),
		DBType:               getEnv("STORAGE_BACKEND", "file"),
		DBDSN:                getEnv("POSTGRES_DSN", ""),
		BoltPath:             getEnv("BOLT_PATH", "data/sweetspot.db"),
		FileBabies:           getEnv("BABIES_FILE", "data/babies.json"),
		FileSleep:            getEnv("SLEEP_FILE", "data/sleep_sessions.json"),
		AuthToken:            getEnv("AUTH_TOKEN", "MOCK-TOKEN"),
		AuthServiceURL:       getEnv("AUTH_SERVICE_URL", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisChannel:         getEnv("REDIS_CHANNEL", "sweetspot.predictions"),
		RefreshSchedule:      getEnv("REFRESH_SCHEDULE", "@every 1m"),
		WakeWindowTable:      getEnv("WAKE_WINDOW_TABLE", ""),
		MinDataPoints:        getInt("MIN_DATA_POINTS", 3),
		HighConfidencePoints: getInt("HIGH_CONFIDENCE_POINTS", 7),
		NightStartHour:       getInt("NIGHT_START_HOUR", 19),
		NightEndHour:         getInt("NIGHT_END_HOUR", 6),
		Timezone:             getEnv("TIMEZONE", "UTC"),
		CacheTTL:             getDuration("CACHE_TTL", 10*time.Minute),
		OtelEnabled:          getBool("OTEL_ENABLED", false),
		OtelServiceName:      getEnv("OTEL_SERVICE_NAME", "sweetspot"),
		CORSOrigins:          getList("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "file":
		if c.FileBabies == "" || c.FileSleep == "" {
			return errors.New("File storage requires BABIES_FILE and SLEEP_FILE to be set")
		}
	case "bolt":
		if c.BoltPath == "" {
			return errors.New("BOLT_PATH is required when STORAGE_BACKEND=bolt")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: file, postgres, bolt (got %q)", c.DBType)
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	if c.MinDataPoints < 1 {
		return errors.New("MIN_DATA_POINTS must be at least 1")
	}
	if c.HighConfidencePoints < c.MinDataPoints {
		return errors.New("HIGH_CONFIDENCE_POINTS must be >= MIN_DATA_POINTS")
	}
	if !validHour(c.NightStartHour) || !validHour(c.NightEndHour) {
		return errors.New("NIGHT_START_HOUR and NIGHT_END_HOUR must be within 0-23")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func getList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// loadDotEnv sets KEY=VALUE pairs from path without overriding variables
// already present in the environment.
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if _, set := os.LookupEnv(k); set {
			continue
		}
		os.Setenv(k, strings.Trim(strings.TrimSpace(v), `"`))
	}
	return sc.Err()
}
