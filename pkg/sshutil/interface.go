package sshutil

import "io"

// Streamer is what the ssh link needs from a connection.
// Both the real Client and the mock in sshutil/testing satisfy it.
type Streamer interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Stream starts a long-running command and returns its stdout.
	Stream(cmd string) (io.ReadCloser, error)

	// Close closes the SSH connection.
	Close() error

	// GetHost returns the original host/alias used to connect.
	GetHost() string
}

var _ Streamer = (*Client)(nil)
