package sshutil

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"golang.org/x/crypto/ssh"
)

// maxStderr caps how much remote stderr is kept for error messages.
const maxStderr = 4096

// Exec runs a short command on the remote host and returns the output.
// Exit code is -1 if the command couldn't be executed at all.
// A non-zero exit code with nil error means the command ran but failed.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	exitCode = 0
	err = session.Run(cmd)
	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			exitCode = exitErr.ExitStatus()
		} else {
			return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
				fmt.Sprintf("Failed to execute command: %s", cmd),
				"Check if the command exists on the remote host.")
		}
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitCode, nil
}

// Stream starts cmd on the remote host and returns its stdout.
// The command keeps running until it exits or the stream is closed.
// When the remote command exits, Read returns io.EOF for a clean exit and a
// structured error carrying the exit status and stderr otherwise.
func (c *Client) Stream(cmd string) (io.ReadCloser, error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to attach to remote output", "")
	}

	s := &stream{session: session, stdout: stdout, cmd: cmd}
	session.Stderr = &s.stderr

	if err := session.Start(cmd); err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Failed to start command: %s", cmd),
			"Check if the command exists on the remote host.")
	}

	return s, nil
}

type stream struct {
	session *ssh.Session
	stdout  io.Reader
	stderr  limitedBuffer
	cmd     string

	closeOnce sync.Once
	closeErr  error
}

func (s *stream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if err != io.EOF {
		return n, err
	}

	waitErr := s.session.Wait()
	if waitErr == nil {
		return n, io.EOF
	}

	msg := strings.TrimSpace(s.stderr.String())
	if exitErr, ok := waitErr.(*ssh.ExitError); ok {
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", exitErr.ExitStatus())
		}
		return n, errors.New(errors.ErrSSH,
			fmt.Sprintf("Remote command failed: %s", msg),
			"Check the device path and that your user can read it (dialout group).")
	}
	return n, errors.WrapWithCode(waitErr, errors.ErrSSH, "Remote command ended unexpectedly", "")
}

func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.session.Close()
		if s.closeErr == io.EOF {
			s.closeErr = nil
		}
	})
	return s.closeErr
}

// limitedBuffer keeps the first maxStderr bytes written to it.
type limitedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := maxStderr - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
