package doctor

import (
	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/link"
)

// NewChecks builds the checks for a config. cfg may be nil when the config
// couldn't be loaded, in which case only the config checks run.
func NewChecks(cfgPath string, cfg *config.Config) []Check {
	checks := []Check{
		&ConfigFileCheck{ConfigPath: cfgPath},
		&ConfigSchemaCheck{ConfigPath: cfgPath},
	}
	if cfg == nil {
		return checks
	}

	checks = append(checks, &LinkAddressCheck{Address: cfg.Link.Address})
	addr, err := link.ParseAddress(cfg.Link.Address)
	if err == nil {
		checks = append(checks, &LinkReachableCheck{Address: cfg.Link.Address})
		if addr.Kind == link.KindSSH {
			checks = append(checks, &SSHKeyCheck{})
		}
	}

	if cfg.Metrics.Addr != "" {
		checks = append(checks, &MetricsPortCheck{Addr: cfg.Metrics.Addr})
	}
	return checks
}
