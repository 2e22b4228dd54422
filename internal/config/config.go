package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	HTTPAddr string

	// Backend REST API
	BackendURL string
	UploadURL  string

	DownstreamReadTimeout  time.Duration
	DownstreamWriteTimeout time.Duration

	// Redis (session storage + login rate limit). Empty addr = in-memory sessions.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Session / cookies
	SessionTTL       time.Duration
	CookieSecure     bool
	CookieDomain     string
	LoginPath        string
	UnauthorizedPath string
	RevokeOnLogout   bool

	// Rate Limiting
	RLEnabled     bool
	RLLimit       int
	RLWindow      time.Duration
	LoginRLLimit  int
	LoginRLWindow time.Duration

	// Uploads
	UploadMaxBytes     int64
	UploadAllowedTypes []string

	CORSAllowedOrigins []string

	TracingEnabled     bool
	OTLPEndpoint       string
	TracingSampleRatio float64

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.BackendURL = strings.TrimRight(getEnv("BACKEND_URL", ""), "/")
	cfg.UploadURL = getEnv("UPLOAD_URL", "")
	if cfg.UploadURL == "" && cfg.BackendURL != "" {
		cfg.UploadURL = cfg.BackendURL + "/upload"
	}

	cfg.DownstreamReadTimeout = getDuration("DOWNSTREAM_READ_TIMEOUT", 5*time.Second)
	cfg.DownstreamWriteTimeout = getDuration("DOWNSTREAM_WRITE_TIMEOUT", 10*time.Second)

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getIntEnv("REDIS_DB", 0)

	cfg.SessionTTL = getDuration("SESSION_TTL", 24*time.Hour)
	cfg.CookieSecure = getBoolEnv("COOKIE_SECURE", false)
	cfg.CookieDomain = getEnv("COOKIE_DOMAIN", "")
	cfg.LoginPath = getEnv("LOGIN_PATH", "/auth/login")
	cfg.UnauthorizedPath = getEnv("UNAUTHORIZED_PATH", "/unauthorized")
	cfg.RevokeOnLogout = getBoolEnv("REVOKE_ON_LOGOUT", false)

	// Rate Limiting Defaults: 300 reqs / 1 min per IP, 10 logins / 15 min
	cfg.RLEnabled = getBoolEnv("RL_ENABLED", true)
	cfg.RLLimit = getIntEnv("RL_IP_LIMIT", 300)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", time.Minute)
	cfg.LoginRLLimit = getIntEnv("LOGIN_RL_LIMIT", 10)
	cfg.LoginRLWindow = getDuration("LOGIN_RL_WINDOW", 15*time.Minute)

	cfg.UploadMaxBytes = int64(getIntEnv("UPLOAD_MAX_BYTES", 10<<20))
	cfg.UploadAllowedTypes = getListEnv("UPLOAD_ALLOWED_TYPES", []string{
		"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf",
	})

	cfg.CORSAllowedOrigins = getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	cfg.TracingEnabled = getBoolEnv("TRACING_ENABLED", false)
	cfg.OTLPEndpoint = getEnv("OTLP_ENDPOINT", "")
	cfg.TracingSampleRatio = getFloatEnv("TRACING_SAMPLE_RATIO", 0.2)

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("missing BACKEND_URL")
	}
	if cfg.AppEnv != "dev" && !cfg.CookieSecure {
		return nil, fmt.Errorf("COOKIE_SECURE must be true when APP_ENV != dev")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.RLWindow <= 0 {
		return nil, fmt.Errorf("RL_IP_WINDOW must be positive")
	}
	if cfg.LoginRLWindow < time.Millisecond {
		return nil, fmt.Errorf("LOGIN_RL_WINDOW must be at least 1ms")
	}
	if cfg.LoginRLLimit <= 0 {
		return nil, fmt.Errorf("LOGIN_RL_LIMIT must be positive")
	}
	if cfg.TracingSampleRatio < 0 || cfg.TracingSampleRatio > 1 {
		return nil, fmt.Errorf("TRACING_SAMPLE_RATIO must be within [0,1]")
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getFloatEnv(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getBoolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getListEnv(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
