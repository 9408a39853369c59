package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/logger"
	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Client wraps an SSH connection to the host the sensor is plugged into.
type Client struct {
	*ssh.Client
	Host    string // The original host/alias used to connect
	Address string // The resolved address (host:port)
}

// DialTimeout bounds the TCP connect and the SSH handshake.
const DialTimeout = 10 * time.Second

var matchWarningOnce sync.Once

// Dial connects to host, which may be an ~/.ssh/config alias, a hostname,
// user@hostname or hostname:port. Known hosts are always verified.
func Dial(ctx context.Context, host string) (*Client, error) {
	settings := resolveSSHSettings(host)

	config, err := buildSSHConfig(settings)
	if err != nil {
		var sErr *errors.Error
		if stderrors.As(err, &sErr) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	address := settings.address()
	dialer := net.Dialer{Timeout: DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	// The handshake has no context of its own; the deadline stands in for it.
	_ = conn.SetDeadline(time.Now().Add(DialTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			suggestionForHandshakeError(err, settings.encryptedKeys))
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the original host/alias used to connect.
func (c *Client) GetHost() string {
	return c.Host
}

type sshSettings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string // found, but need a passphrase
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSSHSettings splits [user@]host[:port] and fills the gaps from
// ~/.ssh/config. An explicit user beats EMGSCOPE_SSH_USER, which beats
// the config file's User, which beats $USER.
func resolveSSHSettings(host string) *sshSettings {
	settings := &sshSettings{port: "22", user: currentUser()}

	explicitUser := false
	if user, rest, ok := strings.Cut(host, "@"); ok {
		settings.user, host, explicitUser = user, rest, true
	} else if envUser := os.Getenv("EMGSCOPE_SSH_USER"); envUser != "" {
		settings.user = envUser
	}

	if i := strings.LastIndex(host, ":"); i != -1 {
		if _, err := strconv.Atoi(host[i+1:]); err == nil {
			settings.port = host[i+1:]
			host = host[:i]
		}
	}
	settings.hostname = host

	content, matchLine, err := preprocessSSHConfig(filepath.Join(homeDir(), ".ssh", "config"))
	if err != nil {
		return settings
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return settings
	}

	found := false
	if v, _ := cfg.Get(host, "HostName"); v != "" {
		settings.hostname, found = v, true
	}
	if v, _ := cfg.Get(host, "Port"); v != "" {
		settings.port, found = v, true
	}
	if v, _ := cfg.Get(host, "User"); v != "" {
		found = true
		if !explicitUser && os.Getenv("EMGSCOPE_SSH_USER") == "" {
			settings.user = v
		}
	}
	if v, _ := cfg.Get(host, "IdentityFile"); v != "" {
		settings.identityFile, found = expandPath(v), true
	}

	if matchLine > 0 && !found {
		matchWarningOnce.Do(func() {
			logger.Default().Warn("host '%s' not found in ~/.ssh/config; entries after the Match block on line %d are not read",
				host, matchLine)
		})
	}
	return settings
}

// buildSSHConfig collects auth methods: the agent, EMGSCOPE_SSH_KEY, the
// config's IdentityFile, then the default key files.
func buildSSHConfig(settings *sshSettings) (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod
	if a := sshAgentAuth(); a != nil {
		methods = append(methods, a)
	}

	keys := []string{}
	if extra := os.Getenv("EMGSCOPE_SSH_KEY"); extra != "" {
		keys = append(keys, expandPath(extra))
	}
	if settings.identityFile != "" {
		keys = append(keys, settings.identityFile)
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keys = append(keys, filepath.Join(homeDir(), ".ssh", name))
	}

	seen := make(map[string]bool)
	for _, path := range keys {
		if seen[path] {
			continue
		}
		seen[path] = true

		auth, err := keyFileAuth(path)
		if err == errEncryptedKey {
			settings.encryptedKeys = append(settings.encryptedKeys, path)
			continue
		}
		if err == nil {
			methods = append(methods, auth)
		}
	}

	if len(methods) == 0 {
		if len(settings.encryptedKeys) > 0 {
			return nil, errors.New(errors.ErrSSH,
				"Found SSH key(s) but they're encrypted: "+strings.Join(settings.encryptedKeys, ", "),
				addKeysHint(settings.encryptedKeys))
		}
		return nil, errors.New(errors.ErrSSH,
			"No SSH auth methods available",
			"Check your keys are loaded: ssh-add -l")
	}

	hostKeys, err := knownHostsCallback(filepath.Join(homeDir(), ".ssh", "known_hosts"))
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}

	return &ssh.ClientConfig{
		User:            settings.user,
		Auth:            methods,
		HostKeyCallback: hostKeys,
		Timeout:         DialTimeout,
	}, nil
}

var (
	agentOnce   sync.Once
	agentClient agent.ExtendedAgent
)

// sshAgentAuth returns agent auth when SSH_AUTH_SOCK has keys loaded.
// An empty agent placed first makes servers give up early, so it is skipped.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}
	agentOnce.Do(func() {
		if conn, err := net.Dial("unix", socket); err == nil {
			agentClient = agent.NewClient(conn)
		}
	})
	if agentClient == nil {
		return nil
	}
	if signers, err := agentClient.Signers(); err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

var errEncryptedKey = stderrors.New("ssh key is passphrase protected")

func keyFileAuth(path string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || isEncryptedPEM(key) {
			return nil, errEncryptedKey
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

func isEncryptedPEM(data []byte) bool {
	return bytes.Contains(data, []byte("ENCRYPTED"))
}

// knownHostsCallback verifies against known_hosts, creating an empty file
// when there is none so the first connection fails with a clear message.
func knownHostsCallback(path string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, nil, 0600); err != nil {
			return nil, err
		}
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, err
	}
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) {
			host := hostname
			if h, _, splitErr := net.SplitHostPort(hostname); splitErr == nil {
				host = h
			}
			if len(keyErr.Want) == 0 {
				return fmt.Errorf("host key for %s is not in %s (connect once with: ssh %s)", host, path, host)
			}
			return fmt.Errorf("host key mismatch for %s: server sent %s (if the board was reflashed: ssh-keygen -R %s)",
				host, key.Type(), host)
		}
		return err
	}, nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func suggestionForDialError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Is SSH running on that box? Try: ssh <host>"
	case strings.Contains(msg, "no route to host"), strings.Contains(msg, "network is unreachable"):
		return "Can't route to the host. Check the board and this machine share a network."
	case strings.Contains(msg, "timeout"):
		return "Connection timed out. The host might be offline or behind a firewall."
	default:
		return "Make sure the host is reachable: ping <host>"
	}
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"), strings.Contains(msg, "no supported methods"):
		if len(encryptedKeys) > 0 {
			return addKeysHint(encryptedKeys)
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	case strings.Contains(msg, "host key"):
		return "Host key issue. Try connecting manually first: ssh <host>"
	default:
		return "Something went wrong during SSH setup. Try: ssh <host>"
	}
}

func addKeysHint(keys []string) string {
	flag := ""
	if runtime.GOOS == "darwin" {
		flag = "--apple-use-keychain "
	}
	var b strings.Builder
	b.WriteString("Add your key(s) to the agent:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  ssh-add %s%s\n", flag, k)
	}
	return b.String()
}

// preprocessSSHConfig reads an SSH config up to the first Match directive,
// which ssh_config can't parse. It also returns that directive's 1-based
// line number, or 0.
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			return []byte(strings.Join(lines[:i], "\n")), i + 1, nil
		}
	}
	return content, 0, nil
}
