package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: "30m", want: 30 * time.Minute},
		{in: "90s", want: 90 * time.Second},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "xd", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfigFromBytesDefaults(t *testing.T) {
	cfg, err := LoadConfigFromBytes([]byte("server:\n  run-mode: debug\n"))
	require.NoError(t, err)

	// 显式值覆盖缺省
	assert.Equal(t, "debug", cfg.Server.RunMode)

	// 未给出的字段由 default 标签补齐
	assert.Equal(t, ":9000", cfg.Server.HttpPort)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.True(t, cfg.User.RegisterIsEnable)
	assert.Equal(t, 200, cfg.Sweep.BatchSize)
	assert.Equal(t, time.Minute, cfg.GetSweepInterval())
	assert.Equal(t, 7*24*time.Hour, cfg.GetTokenExpiry())
	assert.Equal(t, 30*24*time.Hour, cfg.GetClaimRetention())
	assert.Equal(t, 30*time.Minute, cfg.GetConnMaxLifetime())
}

func TestLoadConfigFromBytesOverrides(t *testing.T) {
	content := `
sweep:
  interval: 30s
  batch-size: 50
  claim-retention: 7d
security:
  token-expiry: 24h
`
	cfg, err := LoadConfigFromBytes([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.GetSweepInterval())
	assert.Equal(t, 50, cfg.Sweep.BatchSize)
	assert.Equal(t, 7*24*time.Hour, cfg.GetClaimRetention())
	assert.Equal(t, 24*time.Hour, cfg.GetTokenExpiry())
}
