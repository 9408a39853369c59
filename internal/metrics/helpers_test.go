package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/internal/logger"
	"github.com/stretchr/testify/require"
)

// linkSpecForFile writes content to a capture file and returns a replay spec for it.
func linkSpecForFile(t *testing.T, content string) link.Spec {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return link.Spec{Address: "file://" + path, Log: logger.Noop()}
}
