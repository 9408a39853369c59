package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/internal/ui"
)

// listPorts is swapped out in tests.
var listPorts = link.Ports

// portsCommand lists serial ports, or with use set, writes the port to the
// config file.
func portsCommand(out io.Writer, use string) error {
	if use != "" {
		return usePort(out, use)
	}

	ports, err := listPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		ui.Warn(out, "No serial ports found")
		ui.Hint(out, "Plug the board in, and check your user can read /dev/tty* (the dialout group on Linux)")
		return nil
	}

	configured := configuredAddress()
	rows := make([]ui.PortRow, len(ports))
	for i, p := range ports {
		rows[i] = ui.PortRow{
			Name:       p.Name,
			Details:    strings.TrimSpace(strings.TrimPrefix(p.Description(), p.Name)),
			Configured: p.Name == configured,
		}
	}
	fmt.Fprint(out, ui.RenderPortTable(rows))
	if configured == "" {
		ui.Hint(out, "Pick one with: emgscope ports --use <port>")
	}
	return nil
}

// configuredAddress returns link.address from the config, or "" when there
// is no usable config.
func configuredAddress() string {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return ""
	}
	return cfg.Link.Address
}

func usePort(out io.Writer, port string) error {
	if _, err := link.ParseAddress(port); err != nil {
		return err
	}

	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No .emgscope.yaml to update",
			"Run 'emgscope init --address "+port+"' to create one")
	}

	if err := config.SetLinkAddress(path, port); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't update "+path,
			"Check the file is valid YAML and writable")
	}
	ui.Success(out, "link.address set to %s in %s", port, path)
	return nil
}
