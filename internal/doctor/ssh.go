package doctor

import (
	"context"
	"os"
	"path/filepath"
)

// SSHKeyCheck verifies an SSH key exists for ssh:// links. An agent can
// still serve keys that live elsewhere, so a missing file is a warning.
type SSHKeyCheck struct {
	Home string // defaults to the user's home directory
}

func (c *SSHKeyCheck) Name() string     { return "ssh_key" }
func (c *SSHKeyCheck) Category() string { return CategorySSH }

func (c *SSHKeyCheck) Run(context.Context) CheckResult {
	home := c.Home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return fail(c.Name(), "Check the HOME environment variable", "Cannot determine home directory")
		}
	}

	for _, key := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		if _, err := os.Stat(filepath.Join(home, ".ssh", key+".pub")); err == nil {
			return pass(c.Name(), "SSH key found: ~/.ssh/%s.pub", key)
		}
	}

	if os.Getenv("SSH_AUTH_SOCK") != "" {
		return pass(c.Name(), "No key in ~/.ssh, using the SSH agent")
	}
	return warn(c.Name(), "Generate a key with: ssh-keygen -t ed25519", "No SSH key found")
}
