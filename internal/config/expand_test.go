package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"~", home},
		{"~/captures/a.log", filepath.Join(home, "captures/a.log")},
		{"/dev/ttyUSB0", "/dev/ttyUSB0"},
		{"~other/file", "~other/file"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandTilde(tt.input))
		})
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("USER", "ayse")
	home, _ := os.UserHomeDir()

	assert.Equal(t, "", Expand(""))
	assert.Equal(t, "/home/ayse/cap.log", Expand("/home/${USER}/cap.log"))
	assert.Equal(t, home+"/cap.log", Expand("${HOME}/cap.log"))
	assert.Equal(t, "/dev/ttyUSB0", Expand("/dev/ttyUSB0"))
}

func TestExpandAddress(t *testing.T) {
	t.Setenv("USER", "ayse")
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"stdin", "-", "-"},
		{"serial path", "/dev/ttyACM0", "/dev/ttyACM0"},
		{"windows port", "COM3", "COM3"},
		{"file with tilde", "file://~/cap.log", "file://" + filepath.Join(home, "cap.log")},
		{"ssh user var", "ssh://${USER}@pi.local/dev/ttyACM0", "ssh://ayse@pi.local/dev/ttyACM0"},
		{"ssh keeps remote tilde", "ssh://pi/~/fifo", "ssh://pi/~/fifo"},
		{"tcp unchanged", "tcp://10.0.0.2:4000", "tcp://10.0.0.2:4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandAddress(tt.input))
		})
	}
}
