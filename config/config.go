// Package config loads the session configuration for melody.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"melody/cantus"
	"melody/capture"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "melody.yaml"

// Config represents the complete melody configuration
type Config struct {
	Key     KeyConfig     `yaml:"key"`
	Capture CaptureConfig `yaml:"capture"`
	MIDI    MIDIConfig    `yaml:"midi"`
	Engine  EngineConfig  `yaml:"engine"`
	Game    GameConfig    `yaml:"game"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// KeyConfig fixes the tonal frame every phrase is read in
type KeyConfig struct {
	// Tonic is the MIDI note of degree 1 (60 = C4)
	Tonic int `yaml:"tonic"`
	// PhraseGap is the silence that closes a phrase under the silence boundary
	PhraseGap time.Duration `yaml:"phrase_gap"`
	// OctaveAnchorThreshold is how far above the tonic its pitch class reads as degree 8
	OctaveAnchorThreshold int `yaml:"octave_anchor_threshold"`
}

type CaptureConfig struct {
	// Boundary is "pedal" or "silence"
	Boundary     string        `yaml:"boundary"`
	PollInterval time.Duration `yaml:"poll_interval"`
	QueueSize    int           `yaml:"queue_size"`
}

type MIDIConfig struct {
	// PreferredPort is a case-insensitive substring matched against port names
	PreferredPort string        `yaml:"preferred_port"`
	InputPort     string        `yaml:"input_port"`
	OutputPort    string        `yaml:"output_port"`
	Channel       int           `yaml:"channel"`
	Velocity      int           `yaml:"velocity"`
	NoteHold      time.Duration `yaml:"note_hold"`
	NoteGap       time.Duration `yaml:"note_gap"`
}

type EngineConfig struct {
	// Path to a UCI engine; empty means search MELODY_ENGINE, tools/ and PATH,
	// then fall back to the built-in searcher
	Path          string        `yaml:"path"`
	Builtin       bool          `yaml:"builtin"`
	MoveTime      time.Duration `yaml:"move_time"`
	LimitStrength bool          `yaml:"limit_strength"`
	Elo           int           `yaml:"elo"`
	HashMB        int           `yaml:"hash_mb"`
}

type GameConfig struct {
	// Human is "white", "black", "both" or "none" (engine against itself)
	Human string `yaml:"human"`
	// FEN optionally starts from a position other than the initial one
	FEN string `yaml:"fen"`
}

type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9464"
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Key: KeyConfig{
			Tonic:                 cantus.DefaultTonic,
			PhraseGap:             cantus.DefaultPhraseGap,
			OctaveAnchorThreshold: cantus.DefaultOctaveAnchorThreshold,
		},
		Capture: CaptureConfig{
			Boundary:     capture.BoundaryPedal.String(),
			PollInterval: capture.DefaultPollInterval,
			QueueSize:    capture.DefaultQueueSize,
		},
		MIDI: MIDIConfig{
			PreferredPort: "usb-midi",
			Velocity:      100,
			NoteHold:      220 * time.Millisecond,
			NoteGap:       40 * time.Millisecond,
		},
		Engine: EngineConfig{
			MoveTime:      700 * time.Millisecond,
			LimitStrength: true,
			Elo:           1500,
			HashMB:        16,
		},
		Game: GameConfig{
			Human: "white",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// KeyContext converts the key section for the codec.
func (c *Config) KeyContext() cantus.KeyContext {
	return cantus.KeyContext{
		Tonic:                 c.Key.Tonic,
		PhraseGap:             c.Key.PhraseGap,
		OctaveAnchorThreshold: c.Key.OctaveAnchorThreshold,
	}
}

func (c *Config) Boundary() (capture.Boundary, error) {
	return capture.ParseBoundary(c.Capture.Boundary)
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := c.KeyContext().Validate(); err != nil {
		return err
	}
	if _, err := c.Boundary(); err != nil {
		return fmt.Errorf("capture.boundary: %w", err)
	}
	if c.Capture.PollInterval <= 0 {
		return fmt.Errorf("capture.poll_interval must be positive")
	}
	if c.MIDI.Channel < 0 || c.MIDI.Channel > 15 {
		return fmt.Errorf("midi.channel must be between 0 and 15")
	}
	if c.MIDI.Velocity < 1 || c.MIDI.Velocity > 127 {
		return fmt.Errorf("midi.velocity must be between 1 and 127")
	}
	if c.Engine.MoveTime <= 0 {
		return fmt.Errorf("engine.move_time must be positive")
	}
	switch c.Game.Human {
	case "white", "black", "both", "none":
	default:
		return fmt.Errorf("game.human must be white, black, both or none, got %q", c.Game.Human)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// Load reads path, or DefaultFile when path is empty and it exists, and
// validates the result. A missing DefaultFile is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	config, err := LoadFromFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			config = DefaultConfig()
		} else {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
