package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	AuthURL        string
	AmadeusBase    string
	ClientID       string
	ClientSecret   string
	HTTPTimeout    time.Duration
	RequestTimeout time.Duration
	AmadeusRPS     int
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	VendorDenylist []string
}

func Load() Config {
	// .env is optional; deployments set the environment directly
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8000"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		AuthURL:        env("AMADEUS_AUTH_URL", "https://test.api.amadeus.com/v1/security/oauth2/token"),
		AmadeusBase:    env("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		ClientID:       env("AMADEUS_CLIENT_ID", ""),
		ClientSecret:   env("AMADEUS_CLIENT_SECRET", ""),
		HTTPTimeout:    time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		AmadeusRPS:     atoi("AMADEUS_RPS", 5),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	for _, v := range strings.Split(env("FILTER_VENDOR_DENYLIST", "HOUSE OF TRAVEL"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			c.VendorDenylist = append(c.VendorDenylist, v)
		}
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		log.Warn().Msg("AMADEUS_CLIENT_ID / AMADEUS_CLIENT_SECRET are empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
