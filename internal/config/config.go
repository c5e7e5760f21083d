package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	NatsURL     string
	DatabaseURL string

	CompletionURL         string
	CompletionKey         string
	CompletionModel       string
	CompletionTimeout     time.Duration
	CompletionTemperature float64

	HistoryWindow int
	MinResponders int
	MaxResponders int

	TypingHoldMin time.Duration
	TypingHoldMax time.Duration
	PacedDelivery bool

	RosterPath string
	LogLevel   string
}

func Load() Config {
	return Config{
		Port:        envInt("MASTERMIND_PORT", 8520),
		NatsURL:     envStr("NATS_URL", "nats://localhost:4222"),
		DatabaseURL: envStr("DATABASE_URL", ""),

		CompletionURL:         envStr("COMPLETION_API_URL", "https://api.moonshot.cn/v1/chat/completions"),
		CompletionKey:         envStr("COMPLETION_API_KEY", ""),
		CompletionModel:       envStr("COMPLETION_MODEL", "moonshot-v1-8k"),
		CompletionTimeout:     time.Duration(envInt("COMPLETION_TIMEOUT_MS", 60000)) * time.Millisecond,
		CompletionTemperature: envFloat("COMPLETION_TEMPERATURE", 0.9),

		HistoryWindow: envInt("HISTORY_WINDOW", 10),
		MinResponders: envInt("MIN_RESPONDERS", 1),
		MaxResponders: envInt("MAX_RESPONDERS", 3),

		TypingHoldMin: time.Duration(envInt("TYPING_HOLD_MIN_MS", 1500)) * time.Millisecond,
		TypingHoldMax: time.Duration(envInt("TYPING_HOLD_MAX_MS", 4500)) * time.Millisecond,
		PacedDelivery: envBool("PACED_DELIVERY", true),

		RosterPath: envStr("ROSTER_PATH", ""),
		LogLevel:   envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
