package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
// Use this for LOCAL paths only. Paths on an ssh link keep ~ for the remote shell.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// Expand replaces variables in a string with their values.
// Supported variables:
//   - ${USER} - current username
//   - ${HOME} - user's home directory
//
// Note: Does NOT expand ~ - use ExpandTilde for local paths if needed.
func Expand(s string) string {
	if s == "" {
		return s
	}

	result := s

	if strings.Contains(result, "${USER}") {
		result = strings.ReplaceAll(result, "${USER}", getUser())
	}

	if strings.Contains(result, "${HOME}") {
		result = strings.ReplaceAll(result, "${HOME}", getHome())
	}

	return result
}

// expandAddress applies variable and tilde expansion to the local part of a
// link address. Remote addresses (tcp://, ssh://) only get ${USER}.
func expandAddress(addr string) string {
	switch {
	case addr == "" || addr == "-":
		return addr
	case strings.HasPrefix(addr, "file://"):
		return "file://" + ExpandTilde(Expand(strings.TrimPrefix(addr, "file://")))
	case strings.Contains(addr, "://"):
		return strings.ReplaceAll(addr, "${USER}", getUser())
	default:
		return ExpandTilde(Expand(addr))
	}
}

// getUser returns the current username for ${USER} expansion.
func getUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}

	// POSIX standard
	if user := os.Getenv("LOGNAME"); user != "" {
		return user
	}

	// Windows
	if user := os.Getenv("USERNAME"); user != "" {
		return user
	}

	cmd := exec.Command("whoami")
	out, err := cmd.Output()
	if err != nil {
		return "user"
	}
	return strings.TrimSpace(string(out))
}

// getHome returns the home directory for ${HOME} expansion.
func getHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}

	if home := os.Getenv("HOME"); home != "" {
		return home
	}

	return "~"
}
