package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string
	WSAddr   string

	DefaultLayout string
	LayoutDir     string
	MessagesDir   string

	MaxSessions   int
	SessionTTL    time.Duration
	SweepInterval time.Duration
	EventBuffer   int
}

// Load reads the environment. Unparseable numbers keep their defaults;
// combinations that cannot work are returned as errors.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:      ":8080",
		WSAddr:        ":8081",
		DefaultLayout: "classic",
		MaxSessions:   200,
		SessionTTL:    3600 * time.Second,
		SweepInterval: 60 * time.Second,
		EventBuffer:   32,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_LAYOUT")); v != "" {
		cfg.DefaultLayout = v
	}
	cfg.LayoutDir = strings.TrimSpace(os.Getenv("LAYOUT_DIR"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if n, ok := positiveInt("MAX_SESSIONS"); ok {
		cfg.MaxSessions = n
	}
	if n, ok := positiveInt("SESSION_TTL"); ok { // seconds
		cfg.SessionTTL = time.Duration(n) * time.Second
	}
	if n, ok := positiveInt("SWEEP_INTERVAL"); ok {
		cfg.SweepInterval = time.Duration(n) * time.Second
	}
	if n, ok := positiveInt("EVENT_BUFFER"); ok {
		cfg.EventBuffer = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *AppConfig) Validate() error {
	if c.HTTPAddr == c.WSAddr {
		return fmt.Errorf("HTTP_ADDR and WS_ADDR must differ (both %q)", c.HTTPAddr)
	}
	if c.DefaultLayout == "" {
		return errors.New("DEFAULT_LAYOUT is required")
	}
	if c.SweepInterval > c.SessionTTL {
		return fmt.Errorf("SWEEP_INTERVAL %s exceeds SESSION_TTL %s", c.SweepInterval, c.SessionTTL)
	}
	return nil
}

func positiveInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
