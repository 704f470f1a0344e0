// Package config loads the bot configuration from the environment, with
// optional .env support.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"trendcast/internal/extract"
)

// Config is the full runtime configuration. Thresholds that vary across
// deployments (liquidity floor, pump bounds, interval) are env-tunable.
type Config struct {
	BotToken      string
	TargetChannel string

	// ChannelStrategies maps watched chat ids to extraction strategies.
	ChannelStrategies map[int64]extract.Strategy

	LiquidityFloor float64
	PumpMin        float64
	PumpMax        float64
	TrendInterval  time.Duration
	CollectLimit   int

	DexBaseURL   string
	CommunityURL string
	ApplyURL     string
	SponsorHTML  string

	BannerPath string
	FontPath   string

	LogJSON bool
}

// Load reads configuration from the environment. A .env file is honored
// when present, real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		TargetChannel:  getEnv("TARGET_CHANNEL", ""),
		LiquidityFloor: getEnvFloat("LIQUIDITY_FLOOR", 10_000),
		PumpMin:        getEnvFloat("PUMP_MIN", 10),
		PumpMax:        getEnvFloat("PUMP_MAX", 999),
		TrendInterval:  getEnvDuration("TREND_INTERVAL", 30*time.Minute),
		CollectLimit:   getEnvInt("COLLECT_LIMIT", 150),
		DexBaseURL:     getEnv("DEX_BASE_URL", ""),
		CommunityURL:   getEnv("COMMUNITY_URL", ""),
		ApplyURL:       getEnv("APPLY_URL", ""),
		SponsorHTML:    os.Getenv("SPONSOR_HTML"),
		BannerPath:     getEnv("BANNER_PATH", "banner.jpg"),
		FontPath:       getEnv("FONT_PATH", "fonts/arialbd.ttf"),
		LogJSON:        getEnv("LOG_JSON", "false") == "true",
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.TargetChannel == "" {
		return nil, fmt.Errorf("TARGET_CHANNEL is required")
	}

	strategies, err := ParseChannelStrategies(os.Getenv("CHANNEL_STRATEGIES"))
	if err != nil {
		return nil, err
	}
	cfg.ChannelStrategies = strategies

	return cfg, nil
}

// ParseChannelStrategies parses "chatID:strategy,chatID:strategy" into the
// typed table the extractor dispatches on. Resolution happens here, at
// configuration load, not at message time.
func ParseChannelStrategies(raw string) (map[int64]extract.Strategy, error) {
	table := make(map[int64]extract.Strategy)
	if strings.TrimSpace(raw) == "" {
		return table, nil
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed channel strategy entry %q", entry)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed chat id in %q: %w", entry, err)
		}
		strategy, err := extract.ParseStrategy(parts[1])
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry, err)
		}
		table[id] = strategy
	}
	return table, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
