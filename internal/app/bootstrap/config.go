package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the popularity cache.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int32

	WeeklyTTL    time.Duration
	LegendTTL    time.Duration
	FirstPageTTL time.Duration

	ListingSize      int
	RealtimeSize     int
	FallbackLimit    int
	MaxPageSize      int
	CacheReadTimeout time.Duration

	LeaseWait          time.Duration
	LeaseDuration      time.Duration
	RebuildMaxAttempts int
	RebuildBackoffBase time.Duration
	RefreshWorkers     int
	RefreshQueueSize   int

	DecayInterval time.Duration
	DecayFactor   float64
	DecayFloor    float64

	RebuildInterval  time.Duration
	WeeklyWindowDays int
	LegendMinLikes   int

	BreakerFailureThreshold float64
	BreakerMinRequests      uint32
	BreakerCoolDown         time.Duration
	BreakerHalfOpenCalls    uint32
	BreakerCountingWindow   time.Duration

	SnapshotSize int
	SnapshotTTL  time.Duration
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Cache struct {
		WeeklyTTLMinutes    int `yaml:"weekly_ttl_minutes"`
		LegendTTLMinutes    int `yaml:"legend_ttl_minutes"`
		FirstPageTTLMinutes int `yaml:"first_page_ttl_minutes"`
		ListingSize         int `yaml:"listing_size"`
		RealtimeSize        int `yaml:"realtime_size"`
	} `yaml:"cache"`
	Decay struct {
		IntervalMinutes int     `yaml:"interval_minutes"`
		Factor          float64 `yaml:"factor"`
		Floor           float64 `yaml:"floor"`
	} `yaml:"decay"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID: "popcache",
		HTTPPort:  8080,
		GRPCPort:  9090,

		MaxDBConns: 20,

		// Bounded TTLs sit just past a day so categories do not expire in a
		// synchronized storm at a round-hour boundary.
		WeeklyTTL:    24*time.Hour + 30*time.Minute,
		LegendTTL:    24*time.Hour + 30*time.Minute,
		FirstPageTTL: time.Hour,

		ListingSize:      100,
		RealtimeSize:     50,
		FallbackLimit:    50,
		MaxPageSize:      50,
		CacheReadTimeout: 300 * time.Millisecond,

		LeaseWait:          3 * time.Second,
		LeaseDuration:      15 * time.Second,
		RebuildMaxAttempts: 3,
		RebuildBackoffBase: 200 * time.Millisecond,
		RefreshWorkers:     2,
		RefreshQueueSize:   64,

		DecayInterval: 10 * time.Minute,
		DecayFactor:   0.97,
		DecayFloor:    1.0,

		RebuildInterval:  24 * time.Hour,
		WeeklyWindowDays: 7,
		LegendMinLikes:   100,

		BreakerFailureThreshold: 0.6,
		BreakerMinRequests:      5,
		BreakerCoolDown:         30 * time.Second,
		BreakerHalfOpenCalls:    1,
		BreakerCountingWindow:   time.Minute,

		SnapshotSize: 8,
		SnapshotTTL:  5 * time.Minute,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Cache.WeeklyTTLMinutes > 0 {
			cfg.WeeklyTTL = time.Duration(f.Cache.WeeklyTTLMinutes) * time.Minute
		}
		if f.Cache.LegendTTLMinutes > 0 {
			cfg.LegendTTL = time.Duration(f.Cache.LegendTTLMinutes) * time.Minute
		}
		if f.Cache.FirstPageTTLMinutes > 0 {
			cfg.FirstPageTTL = time.Duration(f.Cache.FirstPageTTLMinutes) * time.Minute
		}
		if f.Cache.ListingSize > 0 {
			cfg.ListingSize = f.Cache.ListingSize
		}
		if f.Cache.RealtimeSize > 0 {
			cfg.RealtimeSize = f.Cache.RealtimeSize
		}
		if f.Decay.IntervalMinutes > 0 {
			cfg.DecayInterval = time.Duration(f.Decay.IntervalMinutes) * time.Minute
		}
		if f.Decay.Factor > 0 && f.Decay.Factor < 1 {
			cfg.DecayFactor = f.Decay.Factor
		}
		if f.Decay.Floor > 0 {
			cfg.DecayFloor = f.Decay.Floor
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.WeeklyTTL = time.Duration(envInt("WEEKLY_TTL_MINUTES", int(cfg.WeeklyTTL.Minutes()))) * time.Minute
	cfg.LegendTTL = time.Duration(envInt("LEGEND_TTL_MINUTES", int(cfg.LegendTTL.Minutes()))) * time.Minute
	cfg.FirstPageTTL = time.Duration(envInt("FIRST_PAGE_TTL_MINUTES", int(cfg.FirstPageTTL.Minutes()))) * time.Minute
	cfg.ListingSize = envInt("LISTING_SIZE", cfg.ListingSize)
	cfg.RealtimeSize = envInt("REALTIME_SIZE", cfg.RealtimeSize)
	cfg.FallbackLimit = envInt("FALLBACK_LIMIT", cfg.FallbackLimit)
	cfg.MaxPageSize = envInt("MAX_PAGE_SIZE", cfg.MaxPageSize)
	cfg.CacheReadTimeout = time.Duration(envInt("CACHE_READ_TIMEOUT_MS", int(cfg.CacheReadTimeout.Milliseconds()))) * time.Millisecond

	cfg.LeaseWait = time.Duration(envInt("LEASE_WAIT_SECONDS", int(cfg.LeaseWait.Seconds()))) * time.Second
	cfg.LeaseDuration = time.Duration(envInt("LEASE_DURATION_SECONDS", int(cfg.LeaseDuration.Seconds()))) * time.Second
	cfg.RebuildMaxAttempts = envInt("REBUILD_MAX_ATTEMPTS", cfg.RebuildMaxAttempts)
	cfg.RefreshWorkers = envInt("REFRESH_WORKERS", cfg.RefreshWorkers)
	cfg.RefreshQueueSize = envInt("REFRESH_QUEUE_SIZE", cfg.RefreshQueueSize)

	cfg.DecayInterval = time.Duration(envInt("DECAY_INTERVAL_MINUTES", int(cfg.DecayInterval.Minutes()))) * time.Minute
	cfg.DecayFactor = envFloat("DECAY_FACTOR", cfg.DecayFactor)
	cfg.DecayFloor = envFloat("DECAY_FLOOR", cfg.DecayFloor)

	cfg.RebuildInterval = time.Duration(envInt("REBUILD_INTERVAL_HOURS", int(cfg.RebuildInterval.Hours()))) * time.Hour
	cfg.WeeklyWindowDays = envInt("WEEKLY_WINDOW_DAYS", cfg.WeeklyWindowDays)
	cfg.LegendMinLikes = envInt("LEGEND_MIN_LIKES", cfg.LegendMinLikes)

	cfg.BreakerFailureThreshold = envFloat("BREAKER_FAILURE_THRESHOLD", cfg.BreakerFailureThreshold)
	cfg.BreakerMinRequests = uint32(envInt("BREAKER_MIN_REQUESTS", int(cfg.BreakerMinRequests)))
	cfg.BreakerCoolDown = time.Duration(envInt("BREAKER_COOLDOWN_SECONDS", int(cfg.BreakerCoolDown.Seconds()))) * time.Second
	cfg.BreakerHalfOpenCalls = uint32(envInt("BREAKER_HALF_OPEN_CALLS", int(cfg.BreakerHalfOpenCalls)))

	cfg.SnapshotSize = envInt("SNAPSHOT_SIZE", cfg.SnapshotSize)
	cfg.SnapshotTTL = time.Duration(envInt("SNAPSHOT_TTL_SECONDS", int(cfg.SnapshotTTL.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envFloat parses float env vars with safe fallback on empty/invalid values.
func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
