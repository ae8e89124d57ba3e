package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// No config file next to the test binary: every key falls back.
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 20*time.Second, cfg.RejoinGrace)
	assert.Equal(t, 250*time.Millisecond, cfg.KickDelay)
	assert.Equal(t, int64(32768), cfg.ReadLimit)
	require.Len(t, cfg.ICEServers, 1)
	assert.NotEmpty(t, cfg.ICEServers[0].URLs)
}

func TestWebRTCICEServers(t *testing.T) {
	cfg := &Config{ICEServers: []ICEServer{
		{URLs: []string{"stun:stun.example.org:3478"}},
		{URLs: []string{"turn:turn.example.org:3478"}, Username: "u", Credential: "p"},
	}}

	out := cfg.WebRTCICEServers()
	require.Len(t, out, 2)
	assert.Empty(t, out[0].Username)
	assert.Equal(t, "u", out[1].Username)
	assert.Equal(t, "p", out[1].Credential)
}
