package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readerSource(content string) link.Source {
	return link.NewReader("test", io.NopCloser(strings.NewReader(content)), time.Second)
}

func TestDecode(t *testing.T) {
	input := captureD + "Rest:0.80 Index:0.10 Middle:0.05\n"

	var out bytes.Buffer
	stats, err := decode(context.Background(), readerSource(input), config.DefaultConfig(), &out, false)
	require.NoError(t, err)

	assert.Equal(t, DecodeStats{Lines: 3, Decoded: 2, Skipped: 1}, stats)
	assert.Equal(t,
		"test=0.91 rest=0.1 index=0.75 middle=0.05 | INDEX\n"+
			"rest=0.8 index=0.1 middle=0.05 | REST\n",
		out.String())
}

func TestDecode_All(t *testing.T) {
	var out bytes.Buffer
	_, err := decode(context.Background(), readerSource(captureD), config.DefaultConfig(), &out, true)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "# Hareket algılandı\n")
}

func TestDecode_NoClassifier(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, applyMonitorFlags(cfg, MonitorOptions{Preset: "A"}, nil))

	var out bytes.Buffer
	stats, err := decode(context.Background(), readerSource("0.45,3,0.92\n0.45,3.5,0.92\n"), cfg, &out, false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Decoded, "class must be an integer")
	assert.Equal(t, "signal=0.45 class=3 confidence=0.92\n", out.String())
}

func TestRunDecode_File(t *testing.T) {
	isolateConfigSearch(t)
	capture := writeFile(t, "capture.log", captureD)

	out, err := runRoot(t, "decode", capture)
	require.NoError(t, err)
	assert.Contains(t, out, "test=0.91 rest=0.1 index=0.75 middle=0.05 | INDEX")
	assert.Contains(t, out, "1 decoded, 1 skipped")
}

func TestRunDecode_Stdin(t *testing.T) {
	isolateConfigSearch(t)
	rootCmd.SetIn(strings.NewReader("0.2,0.9,0.1\n"))
	defer rootCmd.SetIn(nil)

	out, err := runRoot(t, "decode", "--preset", "B")
	require.NoError(t, err)
	assert.Contains(t, out, "rest=0.2 index=0.9 middle=0.1 | INDEX")
}

func TestRunDecode_NothingMatches(t *testing.T) {
	isolateConfigSearch(t)
	capture := writeFile(t, "capture.log", "hello\nworld\n")

	out, err := runRoot(t, "decode", "--preset", "A", capture)
	require.NoError(t, err)
	assert.Contains(t, out, "None of 2 lines matched the delimited protocol")
}

func TestRunDecode_MissingFile(t *testing.T) {
	isolateConfigSearch(t)

	_, err := runRoot(t, "decode", "/no/such/capture.log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Couldn't open /no/such/capture.log")
}
