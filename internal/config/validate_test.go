package config

import (
	"math"
	"testing"
	"time"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		opts        []ValidationOption
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:   "address set and required",
			mutate: func(c *Config) { c.Link.Address = "/dev/ttyUSB0" },
			opts:   []ValidationOption{RequireLink()},
		},
		{
			name:        "future version",
			mutate:      func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr:     true,
			errContains: "from the future",
		},
		{
			name:        "unexpanded variable in address",
			mutate:      func(c *Config) { c.Link.Address = "${SERIAL}" },
			wantErr:     true,
			errContains: "unexpanded variable",
		},
		{
			name:        "zero baud",
			mutate:      func(c *Config) { c.Link.Baud = 0 },
			wantErr:     true,
			errContains: "link.baud",
		},
		{
			name:        "zero read timeout",
			mutate:      func(c *Config) { c.Link.ReadTimeout = 0 },
			wantErr:     true,
			errContains: "link.read_timeout",
		},
		{
			name:        "negative replay interval",
			mutate:      func(c *Config) { c.Link.ReplayInterval = -time.Millisecond },
			wantErr:     true,
			errContains: "link.replay_interval",
		},
		{
			name:        "capacity zero",
			mutate:      func(c *Config) { c.Buffer.Capacity = 0 },
			wantErr:     true,
			errContains: "buffer.capacity",
		},
		{
			name:   "capacity of one sample",
			mutate: func(c *Config) { c.Buffer.Capacity = 1 },
		},
		{
			name:        "capacity too large",
			mutate:      func(c *Config) { c.Buffer.Capacity = MaxCapacity + 1 },
			wantErr:     true,
			errContains: "over the limit",
		},
		{
			name:        "render interval below minimum",
			mutate:      func(c *Config) { c.Render.Interval = 5 * time.Millisecond },
			wantErr:     true,
			errContains: "too fast",
		},
		{
			name:   "render interval at minimum",
			mutate: func(c *Config) { c.Render.Interval = MinRenderInterval },
		},
		{
			name:        "unknown variant",
			mutate:      func(c *Config) { c.Protocol.Variant = "json" },
			wantErr:     true,
			errContains: "protocol.variant 'json'",
		},
		{
			name:        "no channels",
			mutate:      func(c *Config) { c.Protocol.Channels = nil },
			wantErr:     true,
			errContains: "protocol.channels is empty",
		},
		{
			name: "duplicate channel",
			mutate: func(c *Config) {
				c.Protocol.Channels = append(c.Protocol.Channels, ChannelConfig{Name: "rest", Label: "R:"})
			},
			wantErr:     true,
			errContains: "twice",
		},
		{
			name:        "unnamed channel",
			mutate:      func(c *Config) { c.Protocol.Channels[1].Name = " " },
			wantErr:     true,
			errContains: "needs a name",
		},
		{
			name:        "labeled channel without label",
			mutate:      func(c *Config) { c.Protocol.Channels[2].Label = "" },
			wantErr:     true,
			errContains: "label",
		},
		{
			name:        "NaN threshold",
			mutate:      func(c *Config) { c.Classifier.Threshold = math.NaN() },
			wantErr:     true,
			errContains: "finite",
		},
		{
			name:        "unknown fallback",
			mutate:      func(c *Config) { c.Classifier.Fallback = "SLEEPING" },
			wantErr:     true,
			errContains: "classifier.fallback",
		},
		{
			name: "rule on unknown channel",
			mutate: func(c *Config) {
				c.Classifier.Rules = append(c.Classifier.Rules, RuleConfig{Channel: "ring", State: "MOVEMENT"})
			},
			wantErr:     true,
			errContains: "channel 'ring'",
		},
		{
			name:        "rule with unknown state",
			mutate:      func(c *Config) { c.Classifier.Rules[0].State = "FIST" },
			wantErr:     true,
			errContains: "classifier.rules[0]",
		},
		{
			name:        "bad metrics addr",
			mutate:      func(c *Config) { c.Metrics.Addr = "9464" },
			wantErr:     true,
			errContains: "metrics.addr",
		},
		{
			name:   "metrics addr with port only",
			mutate: func(c *Config) { c.Metrics.Addr = ":9464" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg, tt.opts...)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
