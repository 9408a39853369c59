package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostEntry is a concrete Host alias from ~/.ssh/config. 'emgscope init'
// offers these when the sensor hangs off a remote board.
type HostEntry struct {
	Alias    string // The Host pattern (alias)
	Hostname string // The HostName value (actual host to connect to)
	User     string
	Port     string
}

// Description returns a short label for pickers: "pi@192.168.4.20:2022".
func (h HostEntry) Description() string {
	target := h.Hostname
	if target == "" {
		target = h.Alias
	}
	if h.User != "" {
		target = h.User + "@" + target
	}
	if h.Port != "" && h.Port != "22" {
		target += ":" + h.Port
	}
	return target
}

// Hosts parses ~/.ssh/config and returns its concrete host aliases.
func Hosts() ([]HostEntry, error) {
	return HostsFromFile(filepath.Join(homeDir(), ".ssh", "config"))
}

// HostsFromFile parses the given SSH config. Wildcard patterns are skipped,
// as is anything after the first Match block. A missing file yields no hosts.
func HostsFromFile(configPath string) ([]HostEntry, error) {
	content, _, err := preprocessSSHConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []HostEntry
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if strings.ContainsAny(alias, "*?!") || seen[alias] {
				continue
			}
			seen[alias] = true

			entry := HostEntry{Alias: alias}
			entry.Hostname, _ = cfg.Get(alias, "HostName")
			entry.User, _ = cfg.Get(alias, "User")
			entry.Port, _ = cfg.Get(alias, "Port")
			hosts = append(hosts, entry)
		}
	}

	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Alias < hosts[j].Alias
	})

	return hosts, nil
}
