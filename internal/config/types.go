package config

import (
	"time"

	"github.com/basturkme/4IER-HMI/internal/protocol"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .emgscope.yaml configuration file.
// It is read once at startup and never mutated while the pipeline runs.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Link       LinkConfig       `yaml:"link" mapstructure:"link"`
	Buffer     BufferConfig     `yaml:"buffer" mapstructure:"buffer"`
	Render     RenderConfig     `yaml:"render" mapstructure:"render"`
	Protocol   ProtocolConfig   `yaml:"protocol" mapstructure:"protocol"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
}

// LinkConfig describes where sensor lines come from.
type LinkConfig struct {
	// Address selects the link kind: a serial device path (/dev/ttyUSB0, COM3),
	// tcp://host:port, ssh://[user@]host[:port]/dev/ttyACM0, file://capture.log,
	// or "-" for stdin.
	Address string `yaml:"address" mapstructure:"address"`

	// Baud is the serial line rate. Also used by stty on ssh links.
	Baud int `yaml:"baud" mapstructure:"baud"`

	// ReadTimeout bounds how long a single read waits before reporting "no data yet".
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`

	// ReplayInterval paces file:// replays, one line per interval.
	ReplayInterval time.Duration `yaml:"replay_interval" mapstructure:"replay_interval"`

	// ReplayLoop restarts a file:// replay from the top at EOF.
	ReplayLoop bool `yaml:"replay_loop" mapstructure:"replay_loop"`
}

// BufferConfig sizes the per-channel history.
type BufferConfig struct {
	// Capacity is the number of samples kept per channel (N).
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// RenderConfig controls the display refresh.
type RenderConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ProtocolConfig selects the wire format. When Preset is set and Channels is
// empty, the preset's variant, separator and channels are used.
type ProtocolConfig struct {
	Preset    string          `yaml:"preset" mapstructure:"preset"`
	Variant   string          `yaml:"variant,omitempty" mapstructure:"variant"`
	Separator string          `yaml:"separator,omitempty" mapstructure:"separator"`
	Channels  []ChannelConfig `yaml:"channels,omitempty" mapstructure:"channels"`
}

// ChannelConfig identifies one series in the stream.
type ChannelConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Label    string `yaml:"label,omitempty" mapstructure:"label"`
	Integer  bool   `yaml:"integer,omitempty" mapstructure:"integer"`
	Optional bool   `yaml:"optional,omitempty" mapstructure:"optional"`
}

// ClassifierConfig holds the threshold rules. Rules are evaluated in order;
// the first channel whose latest value is strictly above Threshold wins.
type ClassifierConfig struct {
	Threshold float64      `yaml:"threshold" mapstructure:"threshold"`
	Fallback  string       `yaml:"fallback,omitempty" mapstructure:"fallback"`
	Rules     []RuleConfig `yaml:"rules,omitempty" mapstructure:"rules"`
}

// RuleConfig maps a decision channel to the state it signals.
type RuleConfig struct {
	Channel string `yaml:"channel" mapstructure:"channel"`
	State   string `yaml:"state" mapstructure:"state"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

const (
	DefaultBaud           = 115200
	DefaultReadTimeout    = 100 * time.Millisecond
	DefaultReplayInterval = 20 * time.Millisecond
	DefaultCapacity       = 200
	DefaultRenderInterval = 50 * time.Millisecond
	MinRenderInterval     = 10 * time.Millisecond
	DefaultPreset         = "D"
)

// DefaultConfig returns a Config with sensible defaults.
// The protocol and classifier come from the default preset.
func DefaultConfig() *Config {
	cfg := &Config{
		Version: CurrentConfigVersion,
		Link: LinkConfig{
			Baud:           DefaultBaud,
			ReadTimeout:    DefaultReadTimeout,
			ReplayInterval: DefaultReplayInterval,
		},
		Buffer: BufferConfig{Capacity: DefaultCapacity},
		Render: RenderConfig{Interval: DefaultRenderInterval},
		Protocol: ProtocolConfig{
			Preset: DefaultPreset,
		},
	}
	if err := cfg.ApplyPreset(); err != nil {
		panic("config: default preset " + DefaultPreset + " is not defined: " + err.Error())
	}
	return cfg
}

// ProtocolSpec converts the protocol section into a matcher spec.
func (c *Config) ProtocolSpec() protocol.Spec {
	spec := protocol.Spec{
		Variant:   protocol.Variant(c.Protocol.Variant),
		Separator: c.Protocol.Separator,
		Channels:  make([]protocol.Channel, 0, len(c.Protocol.Channels)),
	}
	for _, ch := range c.Protocol.Channels {
		spec.Channels = append(spec.Channels, protocol.Channel{
			Name:     ch.Name,
			Label:    ch.Label,
			Integer:  ch.Integer,
			Optional: ch.Optional,
		})
	}
	return spec
}

// ChannelNames returns the configured channel names in wire order.
func (c *Config) ChannelNames() []string {
	names := make([]string, len(c.Protocol.Channels))
	for i, ch := range c.Protocol.Channels {
		names[i] = ch.Name
	}
	return names
}
