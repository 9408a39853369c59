package cli

import (
	"testing"
	"time"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		flag    string
		want    float64
		ok      bool
		wantErr bool
	}{
		{"", 0, false, false},
		{"0.6", 0.6, true, false},
		{" 0.25 ", 0.25, true, false},
		{"0", 0, true, false},
		{"high", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, ok, err := ParseThreshold(tt.flag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyMonitorFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Link.Address = "/dev/ttyUSB0"

	err := applyMonitorFlags(cfg, MonitorOptions{
		Threshold:   "0.45",
		Interval:    20 * time.Millisecond,
		MetricsAddr: "127.0.0.1:9464",
	}, []string{"file://session.log"})
	require.NoError(t, err)

	assert.Equal(t, "file://session.log", cfg.Link.Address, "positional address wins")
	assert.Equal(t, 0.45, cfg.Classifier.Threshold)
	assert.Equal(t, 20*time.Millisecond, cfg.Render.Interval)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
	assert.Equal(t, "D", cfg.Protocol.Preset, "preset untouched without --preset")
}

func TestApplyMonitorFlags_PresetReplacesProtocol(t *testing.T) {
	cfg := config.DefaultConfig()

	require.NoError(t, applyMonitorFlags(cfg, MonitorOptions{Preset: "A"}, nil))

	assert.Equal(t, []string{"signal", "class", "confidence"}, cfg.ChannelNames())
	assert.Empty(t, cfg.Classifier.Rules, "preset A has no classifier")

	require.NoError(t, applyMonitorFlags(cfg, MonitorOptions{Preset: "filtered", Threshold: "0.3"}, nil))
	assert.Equal(t, []string{"raw", "filtered"}, cfg.ChannelNames())
	assert.Equal(t, 0.3, cfg.Classifier.Threshold, "threshold flag applies after the preset")
}

func TestApplyMonitorFlags_Errors(t *testing.T) {
	err := applyMonitorFlags(config.DefaultConfig(), MonitorOptions{Preset: "Z"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown protocol preset 'Z'")

	err = applyMonitorFlags(config.DefaultConfig(), MonitorOptions{Threshold: "x"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
