// Package testing provides an in-memory sshutil.Streamer for tests that
// exercise the ssh link without a real SSH server.
package testing

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"sync"

	"github.com/basturkme/4IER-HMI/pkg/sshutil"
)

// CommandResponse defines a canned response for a command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// MockClient simulates an SSH connection for testing.
// Exec answers from canned responses; Stream serves a fixed payload or a
// caller-supplied reader.
type MockClient struct {
	mu       sync.Mutex
	host     string
	closed   bool
	commands map[string]CommandResponse // pattern -> response
	stream   func() io.ReadCloser
	history  []string
}

var _ sshutil.Streamer = (*MockClient)(nil)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("connection closed")

// NewMockClient creates a new mock SSH client.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:     host,
		commands: make(map[string]CommandResponse),
	}
}

// SetCommandResponse registers a response for commands matching pattern
// (an exact string or a regular expression).
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[pattern] = resp
}

// SetStreamOutput makes Stream return data followed by io.EOF.
func (m *MockClient) SetStreamOutput(data string) {
	m.SetStreamReader(func() io.ReadCloser {
		return io.NopCloser(bytes.NewBufferString(data))
	})
}

// SetStreamReader makes Stream return a fresh reader from open on every call.
func (m *MockClient) SetStreamReader(open func() io.ReadCloser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stream = open
}

// Exec returns the registered response for cmd, or exit code 0 with no output.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, ErrClosed
	}
	m.history = append(m.history, cmd)

	if resp, ok := m.lookup(cmd); ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}
	return nil, nil, 0, nil
}

// Stream records cmd and returns the configured reader.
func (m *MockClient) Stream(cmd string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	m.history = append(m.history, cmd)

	if resp, ok := m.lookup(cmd); ok && resp.Error != nil {
		return nil, resp.Error
	}
	if m.stream == nil {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return m.stream(), nil
}

func (m *MockClient) lookup(cmd string) (CommandResponse, bool) {
	if resp, ok := m.commands[cmd]; ok {
		return resp, true
	}
	for pattern, resp := range m.commands {
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			return resp, true
		}
	}
	return CommandResponse{}, false
}

// Close marks the client closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the host the mock was created with.
func (m *MockClient) GetHost() string {
	return m.host
}

// Commands returns every command run so far, in order.
func (m *MockClient) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.history))
	copy(out, m.history)
	return out
}
