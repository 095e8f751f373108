package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezcellular/ezcellular-go/pkg/cellular"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
capture_file: /var/log/cellular/modem.clog
signal_rate_seconds: 10
traffic_rate_ms: 500
apns:
  - name: default
    apn: internet
    ip_type: ipv4v6
  - name: iot
    apn: iot.provider
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/log/cellular/modem.clog", cfg.CaptureFile)
	assert.Equal(t, uint32(10), cfg.SignalRateSeconds)
	assert.Equal(t, uint32(500), cfg.TrafficRateMs)
	require.Len(t, cfg.APNs, 2)

	entry := cfg.APNByName("default")
	require.NotNil(t, entry)
	assert.Equal(t, "internet", entry.APN)
	ipType, err := entry.ResolveIPType()
	require.NoError(t, err)
	assert.Equal(t, cellular.IPTypeIPv4v6, ipType)

	// ip_type omitted defaults to IPv4.
	ipType, err = cfg.APNByName("iot").ResolveIPType()
	require.NoError(t, err)
	assert.Equal(t, cellular.IPTypeIPv4, ipType)

	assert.Nil(t, cfg.APNByName("missing"))
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `capture_file: out.clog`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint32(5), cfg.SignalRateSeconds)
	assert.Equal(t, uint32(1000), cfg.TrafficRateMs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log_level",
		},
		{
			name:    "zero signal rate",
			mutate:  func(c *Config) { c.SignalRateSeconds = 0 },
			wantErr: "signal_rate_seconds",
		},
		{
			name: "unnamed apn",
			mutate: func(c *Config) {
				c.APNs = []APN{{APN: "internet"}}
			},
			wantErr: "without a name",
		},
		{
			name: "duplicate apn",
			mutate: func(c *Config) {
				c.APNs = []APN{
					{Name: "a", APN: "x"},
					{Name: "a", APN: "y"},
				}
			},
			wantErr: "duplicate apn",
		},
		{
			name: "empty access point",
			mutate: func(c *Config) {
				c.APNs = []APN{{Name: "a"}}
			},
			wantErr: "without an access point",
		},
		{
			name: "bad ip type",
			mutate: func(c *Config) {
				c.APNs = []APN{{Name: "a", APN: "x", IPType: "ipv5"}}
			},
			wantErr: "invalid ip_type",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
