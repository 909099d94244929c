package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"badgectl/buzzer"
	"badgectl/door"
	"badgectl/indicator"
	"badgectl/metrics"
	"badgectl/mqtt"
	"badgectl/protocol"
	"badgectl/reader"
	"badgectl/session"
	"badgectl/transport"
)

// Config is the main configuration structure for badgectl.
type Config struct {
	// Node name used in MQTT topics. Defaults to the host name.
	ClientID string `yaml:"client_id"`

	// Credential reader
	Reader reader.Config `yaml:"reader"`

	// Line link to the host decision process
	Link transport.Config `yaml:"link"`

	// Outputs
	Indicator indicator.Config `yaml:"indicator"`
	Buzzer    buzzer.Config    `yaml:"buzzer"`
	Door      door.Config      `yaml:"door"`

	// Telemetry
	MQTT    mqtt.Config    `yaml:"mqtt"`
	Metrics metrics.Config `yaml:"metrics"`

	// Timing of the scan cycle
	Session session.Config `yaml:"session"`

	// Response tokens
	Protocol ProtocolConfig `yaml:"protocol"`

	// Play the output self test at startup (default true)
	SelfTest *bool `yaml:"self_test"`
}

// ProtocolConfig adjusts how host response lines are understood.
type ProtocolConfig struct {
	// Accept the tokens of the older host software as well.
	Legacy bool `yaml:"legacy"`

	// Extra token -> canonical token mappings.
	Aliases map[string]string `yaml:"aliases"`

	// Line sent back on a connectivity test. Overrides session.probe_reply.
	// Defaults to ARDUINO_OK when legacy is set.
	ProbeReply string `yaml:"probe_reply"`
}

// LoadConfig decodes a YAML configuration. An empty document is valid.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.ClientID == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("client_id missing and no host name: %w", err)
		}
		cfg.ClientID = host
	}
	switch {
	case cfg.Protocol.ProbeReply != "":
		cfg.Session.ProbeReply = cfg.Protocol.ProbeReply
	case cfg.Protocol.Legacy && cfg.Session.ProbeReply == "":
		cfg.Session.ProbeReply = protocol.LegacyProbeReply
	}
	if _, err := cfg.Table(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Table builds the response token table.
func (c *Config) Table() (*protocol.Table, error) {
	t := protocol.DefaultTable()
	var err error
	if c.Protocol.Legacy {
		if t, err = t.WithAliases(protocol.LegacyAliases); err != nil {
			return nil, fmt.Errorf("legacy aliases: %w", err)
		}
	}
	if len(c.Protocol.Aliases) > 0 {
		if t, err = t.WithAliases(c.Protocol.Aliases); err != nil {
			return nil, fmt.Errorf("protocol aliases: %w", err)
		}
	}
	return t, nil
}

// SelfTestEnabled reports whether the startup self test should run.
func (c *Config) SelfTestEnabled() bool {
	return c.SelfTest == nil || *c.SelfTest
}
