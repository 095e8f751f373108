// Package config loads monitoring configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ezcellular/ezcellular-go/pkg/cellular"
)

// Config is the monitoring configuration.
type Config struct {
	// LogLevel sets the operational log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// CaptureFile is the telemetry capture path. Empty disables capture.
	CaptureFile string `yaml:"capture_file"`

	// SignalRateSeconds is the signal refresh interval.
	SignalRateSeconds uint32 `yaml:"signal_rate_seconds"`

	// TrafficRateMs is the traffic counter refresh interval.
	TrafficRateMs uint32 `yaml:"traffic_rate_ms"`

	// APNs are the known access points, by name.
	APNs []APN `yaml:"apns"`
}

// APN is one named access point configuration.
type APN struct {
	// Name identifies the entry, e.g. "default" or a carrier name.
	Name string `yaml:"name"`

	// APN is the access point name sent to the network.
	APN string `yaml:"apn"`

	// IPType selects the IP family: "ipv4", "ipv6" or "ipv4v6".
	IPType string `yaml:"ip_type"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:          "info",
		SignalRateSeconds: 5,
		TrafficRateMs:     1000,
	}
}

// Load reads and validates a YAML configuration file. Fields the file
// omits keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.SignalRateSeconds == 0 {
		return fmt.Errorf("signal_rate_seconds must be positive")
	}
	seen := make(map[string]bool, len(c.APNs))
	for _, apn := range c.APNs {
		if apn.Name == "" {
			return fmt.Errorf("apn entry without a name")
		}
		if seen[apn.Name] {
			return fmt.Errorf("duplicate apn name %q", apn.Name)
		}
		seen[apn.Name] = true
		if apn.APN == "" {
			return fmt.Errorf("apn %q without an access point name", apn.Name)
		}
		if _, err := apn.ResolveIPType(); err != nil {
			return err
		}
	}
	return nil
}

// APNByName returns the named access point entry, or nil.
func (c *Config) APNByName(name string) *APN {
	for i := range c.APNs {
		if c.APNs[i].Name == name {
			return &c.APNs[i]
		}
	}
	return nil
}

// ResolveIPType maps the entry's ip_type string to the bearer IP family.
// An empty value defaults to IPv4.
func (a *APN) ResolveIPType() (cellular.IPType, error) {
	switch a.IPType {
	case "", "ipv4":
		return cellular.IPTypeIPv4, nil
	case "ipv6":
		return cellular.IPTypeIPv6, nil
	case "ipv4v6":
		return cellular.IPTypeIPv4v6, nil
	default:
		return cellular.IPTypeUnknown, fmt.Errorf("apn %q: invalid ip_type %q", a.Name, a.IPType)
	}
}
