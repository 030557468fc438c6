package cmd

import (
	"fmt"
	"net"
	"os"

	"github.com/mikaelmello/spring/core"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// config holds the user facing settings, as read from a YAML file and from the flags.
type config struct {
	Target         string `yaml:"target"`
	Size           int    `yaml:"size"`
	Count          int    `yaml:"count"`
	TTL            int    `yaml:"ttl"`
	Timeout        int    `yaml:"timeout"`
	StrictSequence bool   `yaml:"strict_sequence"`
	LogLevel       string `yaml:"log_level"`
}

// defaultConfig returns a config matching core.DefaultSettings.
func defaultConfig() *config {
	settings := core.DefaultSettings()
	return &config{
		Size:           settings.PayloadSize,
		Count:          settings.Count,
		TTL:            settings.TTL,
		Timeout:        settings.Timeout,
		StrictSequence: settings.StrictSequence,
		LogLevel:       log.Level(settings.LoggingLevel).String(),
	}
}

// loadConfig reads the YAML file at path. Keys missing from the file keep their default.
func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (*config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// settings converts the config into validated session settings.
func (c *config) settings() (*core.Settings, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("a target IPv4 address is required")
	}

	// no name resolution, the target must be a literal address
	target := net.ParseIP(c.Target)
	if target == nil || target.To4() == nil {
		return nil, fmt.Errorf("target %q is not an IPv4 address", c.Target)
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	settings := core.DefaultSettings()
	settings.Target = target.To4()
	settings.PayloadSize = c.Size
	settings.Count = c.Count
	settings.TTL = c.TTL
	settings.Timeout = c.Timeout
	settings.StrictSequence = c.StrictSequence
	settings.LoggingLevel = uint32(level)

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}
