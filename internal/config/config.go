// Package config loads and validates the static configuration of a game
// instance. Validation runs before the first tick; a malformed layout aborts
// startup instead of corrupting authoritative state mid-game.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riftcore/riftcore/internal/core/collision"
	"github.com/riftcore/riftcore/internal/core/vision"
)

// Config is the root configuration document.
type Config struct {
	Instance  InstanceConfig   `yaml:"instance"`
	Collision collision.Config `yaml:"collision"`
	Vision    VisionConfig     `yaml:"vision"`
	Server    ServerConfig     `yaml:"server"`
}

// InstanceConfig controls the tick driver.
type InstanceConfig struct {
	TickRate int `yaml:"tick_rate"` // ticks per second
}

// VisionConfig seeds the concealment-zone layout.
type VisionConfig struct {
	MapSeed string              `yaml:"map_seed"`
	Zones   []vision.ZoneAnchor `yaml:"zones"`
}

// Duration decodes human-readable YAML durations like "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"5s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ServerConfig controls the snapshot feed.
type ServerConfig struct {
	ListenAddr   string   `yaml:"listen_addr"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Instance:  InstanceConfig{TickRate: 30},
		Collision: collision.DefaultConfig(),
		Vision:    VisionConfig{MapSeed: "rift"},
		Server: ServerConfig{
			ListenAddr:   "127.0.0.1:8080",
			WriteTimeout: Duration(5 * time.Second),
		},
	}
}

// Load decodes YAML from r over the defaults and validates the result.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and decodes the YAML file at path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate rejects configurations the simulation cannot start from.
func (c Config) Validate() error {
	if c.Instance.TickRate <= 0 {
		return fmt.Errorf("config: tick_rate must be positive, got %d", c.Instance.TickRate)
	}
	if c.Collision.CellSize < 0 {
		return fmt.Errorf("config: collision cell_size must not be negative")
	}
	if c.Collision.MaxSeparation < 0 {
		return fmt.Errorf("config: collision max_separation must not be negative")
	}
	if c.Vision.MapSeed == "" {
		return fmt.Errorf("config: vision map_seed must not be empty")
	}
	// Zone anchors are validated by generating the layout, the same code path
	// the engine uses, so a bad layout can never survive to the first tick.
	if _, err := vision.GenerateZones(c.Vision.MapSeed, c.Vision.Zones); err != nil {
		return err
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server listen_addr must not be empty")
	}
	return nil
}

// TickInterval converts the tick rate into a wall-clock ticker interval.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Instance.TickRate)
}

// TickDT is the fixed simulation step in seconds.
func (c Config) TickDT() float64 {
	return 1.0 / float64(c.Instance.TickRate)
}
