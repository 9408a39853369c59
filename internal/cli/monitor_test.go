package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const captureD = "Test:0.91 noisy Rest:0.10 junk Index:0.75 trailing Middle:0.05\nHareket algılandı\n"

// replayConfig returns the default config pointed at a capture file.
func replayConfig(t *testing.T, capture string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Link.Address = "file://" + writeFile(t, "capture.log", capture)
	cfg.Link.ReplayInterval = time.Millisecond
	cfg.Render.Interval = 5 * time.Millisecond
	return cfg
}

func TestPipelineOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Link.Address = "/dev/ttyACM0"
	cfg.Buffer.Capacity = 300

	opts, err := pipelineOptions(cfg)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", opts.Link.Address)
	assert.Equal(t, config.DefaultBaud, opts.Link.Baud)
	assert.Equal(t, 300, opts.Capacity)
	assert.Equal(t, 0.6, opts.Threshold)
	assert.Equal(t, monitor.StateUncertain, opts.Fallback)
	assert.Equal(t, []monitor.Rule{
		{Channel: "rest", State: monitor.StateRest},
		{Channel: "index", State: monitor.StateIndex},
		{Channel: "middle", State: monitor.StateMiddle},
	}, opts.Rules)
	assert.Len(t, opts.Protocol.Channels, 4)
}

func TestPipelineOptions_BadState(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Classifier.Rules = []config.RuleConfig{{Channel: "rest", State: "SLEEPING"}}

	_, err := pipelineOptions(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "Invalid classifier rule for channel rest")

	cfg = config.DefaultConfig()
	cfg.Classifier.Fallback = "maybe"
	_, err = pipelineOptions(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
}

func TestChannelLabels(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, map[string]string{
		"test":   "Test",
		"rest":   "Rest",
		"index":  "Index",
		"middle": "Middle",
	}, channelLabels(cfg))

	require.NoError(t, applyMonitorFlags(cfg, MonitorOptions{Preset: "B"}, nil))
	assert.Empty(t, channelLabels(cfg), "delimited channels have no labels")
}

func TestMonitorSession_Plain(t *testing.T) {
	cfg := replayConfig(t, captureD)

	var out bytes.Buffer
	err := monitorSession(context.Background(), cfg, MonitorOptions{}, &out, false)
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "Test=0.91 Rest=0.1 Index=0.75 Middle=0.05 | INDEX")
	assert.True(t, strings.HasSuffix(output, "# end of stream\n"), "got %q", output)
	assert.NotContains(t, output, "Hareket")
}

func TestMonitorSession_Record(t *testing.T) {
	cfg := replayConfig(t, captureD)
	record := filepath.Join(t.TempDir(), "session.log")
	require.NoError(t, os.WriteFile(record, []byte("earlier\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, monitorSession(context.Background(), cfg, MonitorOptions{Record: record}, &out, false))

	data, err := os.ReadFile(record)
	require.NoError(t, err)
	assert.Equal(t, "earlier\n"+captureD, string(data), "recording appends every raw line")
}

func TestMonitorSession_RecordUnwritable(t *testing.T) {
	cfg := replayConfig(t, captureD)
	record := filepath.Join(t.TempDir(), "missing", "session.log")

	err := monitorSession(context.Background(), cfg, MonitorOptions{Record: record}, &bytes.Buffer{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Couldn't open record file")
}

func TestMonitorSession_LinkFailed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Link.Address = "file://" + filepath.Join(t.TempDir(), "nope.log")
	cfg.Render.Interval = 5 * time.Millisecond

	var out bytes.Buffer
	err := monitorSession(context.Background(), cfg, MonitorOptions{}, &out, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLink))
	assert.Contains(t, out.String(), "! link failed:")
}

func TestMonitorSession_Cancel(t *testing.T) {
	cfg := replayConfig(t, captureD)
	cfg.Link.ReplayLoop = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- monitorSession(ctx, cfg, MonitorOptions{}, &bytes.Buffer{}, false)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after cancel")
	}
}

func TestMonitorSession_Metrics(t *testing.T) {
	cfg := replayConfig(t, captureD)
	cfg.Metrics.Addr = "127.0.0.1:0"

	require.NoError(t, monitorSession(context.Background(), cfg, MonitorOptions{}, &bytes.Buffer{}, false))
}

func TestMonitorSession_BadMetricsAddr(t *testing.T) {
	cfg := replayConfig(t, captureD)
	cfg.Metrics.Addr = "256.0.0.1:bad"

	err := monitorSession(context.Background(), cfg, MonitorOptions{}, &bytes.Buffer{}, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestRunMonitor_RequiresAddress(t *testing.T) {
	isolateConfigSearch(t)

	_, err := runRoot(t, "monitor", "--plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link.address is empty")
}

func TestRunMonitor_PlainReplay(t *testing.T) {
	isolateConfigSearch(t)
	capture := writeFile(t, "capture.log", "0.2,0.9,0.1\n0.7,0.1,0.1\n")

	out, err := runRoot(t, "--plain", "--preset", "B", "--interval", "5ms", "file://"+capture)
	require.NoError(t, err)
	assert.Contains(t, out, "rest=0.7 index=0.1 middle=0.1 | REST")
	assert.Contains(t, out, "# end of stream")
}
