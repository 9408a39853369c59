package link

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/logger"
	"github.com/basturkme/4IER-HMI/pkg/sshutil"
)

// DialTimeout bounds connecting to a tcp:// bridge.
const DialTimeout = 5 * time.Second

func openTCP(ctx context.Context, hostport string) (io.ReadCloser, error) {
	dialer := net.Dialer{Timeout: DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLink,
			fmt.Sprintf("Couldn't connect to %s", hostport),
			"Check the serial bridge (ser2net, ESP-Link) is running and the port is right.")
	}
	return conn, nil
}

// dialSSH is swapped out in tests.
var dialSSH = func(ctx context.Context, host string) (sshutil.Streamer, error) {
	return sshutil.Dial(ctx, host)
}

// ProbeCommand is the shell test that a remote device is readable.
func ProbeCommand(device string) string {
	return "test -r " + shellQuote(device)
}

// remoteStreamCommand configures the remote tty and copies it to stdout.
func remoteStreamCommand(device string, baud int) string {
	dev := shellQuote(device)
	return fmt.Sprintf("stty -F %s %d raw -echo && exec cat %s", dev, baud, dev)
}

// openSSH streams a device attached to another machine.
func openSSH(ctx context.Context, addr Address, baud int, log logger.Logger) (io.ReadCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}

	client, err := dialSSH(ctx, addr.Host)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLink,
			fmt.Sprintf("Couldn't open ssh link to %s", addr.Host),
			"Try connecting by hand first: ssh "+addr.Host)
	}

	_, stderr, code, err := client.Exec(ProbeCommand(addr.Path))
	if err != nil {
		client.Close()
		return nil, errors.WrapWithCode(err, errors.ErrLink,
			fmt.Sprintf("Couldn't check %s on %s", addr.Path, addr.Host), "")
	}
	if code != 0 {
		client.Close()
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = "not readable"
		}
		return nil, errors.New(errors.ErrLink,
			fmt.Sprintf("%s on %s: %s", addr.Path, addr.Host, msg),
			"Check the device path on the remote machine and that your user is in the dialout group.")
	}

	cmd := remoteStreamCommand(addr.Path, baud)
	log.Debug("ssh %s: %s", client.GetHost(), cmd)

	rc, err := client.Stream(cmd)
	if err != nil {
		client.Close()
		return nil, errors.WrapWithCode(err, errors.ErrLink,
			fmt.Sprintf("Couldn't start streaming %s on %s", addr.Path, addr.Host), "")
	}

	return &sshStream{ReadCloser: rc, client: client}, nil
}

// sshStream closes the SSH connection along with the remote command.
type sshStream struct {
	io.ReadCloser
	client sshutil.Streamer
}

func (s *sshStream) Close() error {
	err := s.ReadCloser.Close()
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// shellQuote wraps s in single quotes for a POSIX shell. A leading ~/ is left
// outside the quotes so the remote shell still expands it.
func shellQuote(s string) string {
	prefix := ""
	if strings.HasPrefix(s, "~/") {
		prefix, s = "~/", s[2:]
	}
	return prefix + "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
