package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, 90, cfg.MatchLength)
	assert.Equal(t, 10, cfg.BetCutoffMinute)
	assert.Equal(t, 3, cfg.PostgresMaxConns)
	assert.Equal(t, "match_events", cfg.TopicMatchEvents)
	assert.Contains(t, cfg.CORSAllowedOrigins, "http://localhost:8100")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIM_TICK_INTERVAL", "500ms")
	t.Setenv("SIM_MATCH_LENGTH", "45")
	t.Setenv("SIM_BET_CUTOFF_MINUTE", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 45, cfg.MatchLength)
	assert.Equal(t, 10, cfg.BetCutoffMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}
