package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultFeedBaseURL is the USGS summary feed directory holding the
// all_{month,week,day,hour}.csv files.
const DefaultFeedBaseURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Feed configuration. A zero FeedTimeout leaves the transport default in place.
	FeedBaseURL   string
	FeedTimeout   time.Duration
	FeedRateLimit float64

	// Local world-boundary shapefile (file or directory holding one .shp).
	BasemapPath string

	SessionCapacity int
	SessionTTL      time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEED_TIMEOUT", "0s"))
	if err != nil || feedTimeout < 0 {
		return nil, errors.New("invalid FEED_TIMEOUT")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("FEED_RATE_LIMIT", "4"), 64)
	if err != nil || rateLimit < 0 {
		return nil, errors.New("invalid FEED_RATE_LIMIT")
	}

	sessionTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("SESSION_TTL", "30m"))
	if err != nil || sessionTTL <= 0 {
		return nil, errors.New("invalid SESSION_TTL")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FeedBaseURL:   sharedcfg.EnvOrDefault("FEED_BASE_URL", DefaultFeedBaseURL),
		FeedTimeout:   feedTimeout,
		FeedRateLimit: rateLimit,

		BasemapPath: sharedcfg.EnvOrDefault("BASEMAP_PATH", "./ne_110m_admin_0_countries"),

		SessionCapacity: parseSessionCapacity(),
		SessionTTL:      sessionTTL,
	}

	if u, err := url.Parse(cfg.FeedBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid FEED_BASE_URL")
	}
	if cfg.BasemapPath == "" {
		return nil, errors.New("BASEMAP_PATH is required")
	}

	return cfg, nil
}

func parseSessionCapacity() int {
	if s := os.Getenv("SESSION_CAPACITY"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
