package doctor

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/pkg/sshutil"
	sshtest "github.com/basturkme/4IER-HMI/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatusString(t *testing.T) {
	assert.Equal(t, "pass", StatusPass.String())
	assert.Equal(t, "warn", StatusWarn.String())
	assert.Equal(t, "fail", StatusFail.String())
	assert.Equal(t, "unknown", CheckStatus(9).String())

	text, err := StatusFail.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "fail", string(text))
}

func TestSummaryAndCounts(t *testing.T) {
	clean := []CheckResult{{Status: StatusPass}, {Status: StatusPass}}
	assert.Equal(t, "Everything looks good", Summary(clean))
	assert.False(t, HasIssues(clean))

	mixed := []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}
	assert.Equal(t, "1 issue found", Summary(mixed))
	assert.True(t, HasIssues(mixed))
	assert.False(t, HasFailures(mixed))

	bad := append(mixed, CheckResult{Status: StatusFail})
	assert.Equal(t, "2 issues found", Summary(bad))
	assert.True(t, HasFailures(bad))
	assert.Equal(t, 1, CountByStatus(bad)[StatusFail])
}

func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, config.Save(cfg, path))
	return path
}

func TestConfigChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("valid config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Link.Address = "/dev/ttyUSB0"
		path := writeConfig(t, cfg)

		res := (&ConfigFileCheck{ConfigPath: path}).Run(ctx)
		assert.Equal(t, StatusPass, res.Status)
		assert.Equal(t, "Config file: "+config.ConfigFileName, res.Message)

		res = (&ConfigSchemaCheck{ConfigPath: path}).Run(ctx)
		assert.Equal(t, StatusPass, res.Status, res.Message)
		assert.Equal(t, "Protocol labeled-loose with 4 channels", res.Message)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		res := (&ConfigFileCheck{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")}).Run(ctx)
		assert.Equal(t, StatusFail, res.Status)
		assert.Contains(t, res.Message, "not found")
	})

	t.Run("no address", func(t *testing.T) {
		path := writeConfig(t, config.DefaultConfig())

		res := (&ConfigSchemaCheck{ConfigPath: path}).Run(ctx)
		assert.Equal(t, StatusFail, res.Status)
		assert.Contains(t, res.Message, "link.address is empty")
		assert.Contains(t, res.Suggestion, "'link' section")
	})
}

func TestLinkAddressCheck(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StatusFail, (&LinkAddressCheck{}).Run(ctx).Status)
	assert.Equal(t, StatusFail, (&LinkAddressCheck{Address: "ftp://box"}).Run(ctx).Status)

	res := (&LinkAddressCheck{Address: "tcp://192.168.4.1:23"}).Run(ctx)
	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, "Link address: tcp://192.168.4.1:23 (tcp)", res.Message)
}

func stubPorts(t *testing.T, ports []link.PortInfo) {
	t.Helper()
	orig := listPorts
	listPorts = func() ([]link.PortInfo, error) { return ports, nil }
	t.Cleanup(func() { listPorts = orig })
}

func TestLinkReachable_Serial(t *testing.T) {
	ctx := context.Background()
	stubPorts(t, []link.PortInfo{{Name: "/dev/ttyACM0", USB: true, VID: "2341", PID: "0043"}})

	res := (&LinkReachableCheck{Address: "/dev/ttyACM0"}).Run(ctx)
	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, "Port found: /dev/ttyACM0  USB 2341:0043", res.Message)

	res = (&LinkReachableCheck{Address: "/dev/ttyEMG9"}).Run(ctx)
	assert.Equal(t, StatusFail, res.Status)
	assert.Contains(t, res.Suggestion, "emgscope ports")
}

func TestLinkReachable_TCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	res := (&LinkReachableCheck{Address: "tcp://" + addr}).Run(context.Background())
	assert.Equal(t, StatusPass, res.Status)

	ln.Close()
	res = (&LinkReachableCheck{Address: "tcp://" + addr}).Run(context.Background())
	assert.Equal(t, StatusFail, res.Status)
	assert.Contains(t, res.Message, "Can't connect to "+addr)
}

func TestLinkReachable_File(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "capture.log")
	require.NoError(t, os.WriteFile(capture, []byte("Rest:0.8,Index:0.1,Middle:0.05\n"), 0644))
	empty := filepath.Join(dir, "empty.log")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	tests := []struct {
		name   string
		path   string
		status CheckStatus
		msg    string
	}{
		{"capture", capture, StatusPass, "(31 B)"},
		{"empty", empty, StatusWarn, "is empty"},
		{"directory", dir, StatusFail, "is a directory"},
		{"missing", filepath.Join(dir, "gone.log"), StatusFail, "Can't read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := (&LinkReachableCheck{Address: "file://" + tt.path}).Run(context.Background())
			assert.Equal(t, tt.status, res.Status)
			assert.Contains(t, res.Message, tt.msg)
		})
	}
}

func withMockSSH(t *testing.T, mock *sshtest.MockClient, dialErr error) {
	t.Helper()
	orig := dialSSH
	dialSSH = func(ctx context.Context, host string) (sshutil.Streamer, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return mock, nil
	}
	t.Cleanup(func() { dialSSH = orig })
}

func TestLinkReachable_SSH(t *testing.T) {
	ctx := context.Background()
	address := "ssh://pi@emgpi.local/dev/ttyACM0"

	t.Run("readable", func(t *testing.T) {
		mock := sshtest.NewMockClient("pi@emgpi.local")
		withMockSSH(t, mock, nil)

		res := (&LinkReachableCheck{Address: address}).Run(ctx)
		assert.Equal(t, StatusPass, res.Status)
		assert.Equal(t, "/dev/ttyACM0 is readable on pi@emgpi.local", res.Message)
		assert.Equal(t, []string{"test -r '/dev/ttyACM0'"}, mock.Commands())
		assert.True(t, mock.IsClosed())
	})

	t.Run("not readable", func(t *testing.T) {
		mock := sshtest.NewMockClient("pi@emgpi.local")
		mock.SetCommandResponse(`^test -r `, sshtest.CommandResponse{ExitCode: 1})
		withMockSSH(t, mock, nil)

		res := (&LinkReachableCheck{Address: address}).Run(ctx)
		assert.Equal(t, StatusFail, res.Status)
		assert.Contains(t, res.Message, "not readable")
	})

	t.Run("unreachable", func(t *testing.T) {
		withMockSSH(t, nil, stderrors.New("dial tcp: no route to host"))

		res := (&LinkReachableCheck{Address: address}).Run(ctx)
		assert.Equal(t, StatusFail, res.Status)
		assert.Equal(t, "Can't reach pi@emgpi.local: dial tcp: no route to host", res.Message)
	})
}

func TestSSHKeyCheck(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SSH_AUTH_SOCK", "")

	res := (&SSHKeyCheck{Home: home}).Run(context.Background())
	assert.Equal(t, StatusWarn, res.Status)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".ssh"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".ssh", "id_ed25519.pub"), []byte("ssh-ed25519 AAAA"), 0644))

	res = (&SSHKeyCheck{Home: home}).Run(context.Background())
	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, "SSH key found: ~/.ssh/id_ed25519.pub", res.Message)
}

func TestMetricsPortCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	res := (&MetricsPortCheck{Addr: ln.Addr().String()}).Run(context.Background())
	assert.Equal(t, StatusFail, res.Status)

	res = (&MetricsPortCheck{Addr: "127.0.0.1:0"}).Run(context.Background())
	assert.Equal(t, StatusPass, res.Status)
}

func TestNewChecks(t *testing.T) {
	names := func(checks []Check) []string {
		out := make([]string, len(checks))
		for i, c := range checks {
			out[i] = c.Name()
		}
		return out
	}

	assert.Equal(t, []string{"config_file", "config_schema"}, names(NewChecks("", nil)))

	cfg := config.DefaultConfig()
	assert.Equal(t, []string{"config_file", "config_schema", "link_address"}, names(NewChecks("", cfg)))

	cfg.Link.Address = "ssh://pi/dev/ttyACM0"
	cfg.Metrics.Addr = "127.0.0.1:9464"
	assert.Equal(t,
		[]string{"config_file", "config_schema", "link_address", "link_reachable", "ssh_key", "metrics_port"},
		names(NewChecks("", cfg)))
}
