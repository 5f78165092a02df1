package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// DefaultPaths are tried in order when LoadAppConfig is called without paths
var DefaultPaths = []string{"config.yml", "./configs/config.yml"}

// LoadAppConfig loads and validates the application configuration. The first
// readable path wins.
func LoadAppConfig(paths ...string) error {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// Parse decodes and validates a YAML document and fills defaults. Penalties
// are filled before decoding, so an explicit zero turns them off.
func Parse(data []byte) (*AppConfig, error) {
	cfg := AppConfig{Routing: defaultPenalties()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default filled in
func Default() *AppConfig {
	cfg := &AppConfig{Routing: defaultPenalties()}
	cfg.applyDefaults()
	return cfg
}

func defaultPenalties() RoutingConfig {
	return RoutingConfig{TransferPenalty: 120, WalkReluctance: 2}
}

func (c *AppConfig) applyDefaults() {
	r := &c.Routing
	if r.WalkSpeed == 0 {
		r.WalkSpeed = 1.33
	}
	if r.BikeSpeed == 0 {
		r.BikeSpeed = 4.5
	}
	if r.SearchWindowMinutes == 0 {
		r.SearchWindowMinutes = 24 * 60
	}
	if r.NumItineraries == 0 {
		r.NumItineraries = 1
	}
	l := &c.Linking
	if l.SnapDistance == 0 {
		l.SnapDistance = 5
	}
	if l.SearchRadius == 0 {
		l.SearchRadius = 500
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "logfmt"
	}
}

// SelectFeed chooses a feed by name; fallback to first. ok is false when no
// feed is configured.
func SelectFeed(name string) (Feed, bool) {
	if name != "" {
		for _, f := range Config.Feeds {
			if f.Name == name {
				return f, true
			}
		}
	}
	if len(Config.Feeds) > 0 {
		return Config.Feeds[0], true
	}
	return Feed{}, false
}
