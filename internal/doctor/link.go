package doctor

import (
	"context"
	"net"
	"os"
	"strings"
	"time"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/pkg/sshutil"
	"github.com/dustin/go-humanize"
)

// ProbeTimeout bounds each network probe.
const ProbeTimeout = 5 * time.Second

// Hooks for tests.
var (
	listPorts = link.Ports
	dialSSH   = func(ctx context.Context, host string) (sshutil.Streamer, error) {
		return sshutil.Dial(ctx, host)
	}
)

// LinkAddressCheck verifies link.address parses.
type LinkAddressCheck struct {
	Address string
}

func (c *LinkAddressCheck) Name() string     { return "link_address" }
func (c *LinkAddressCheck) Category() string { return CategoryLink }

func (c *LinkAddressCheck) Run(context.Context) CheckResult {
	if strings.TrimSpace(c.Address) == "" {
		return fail(c.Name(), "Set link.address, or run 'emgscope ports' to find the board", "No link address configured")
	}
	addr, err := link.ParseAddress(c.Address)
	if err != nil {
		return fail(c.Name(), "Use a serial path, tcp://host:port, ssh://host/dev/ttyACM0 or file://capture.log", "%v", err)
	}
	return pass(c.Name(), "Link address: %s (%s)", addr, addr.Kind)
}

// LinkReachableCheck probes the link without reading from it. Serial ports
// are looked up rather than opened, since opening one resets most Arduino
// boards.
type LinkReachableCheck struct {
	Address string
}

func (c *LinkReachableCheck) Name() string     { return "link_reachable" }
func (c *LinkReachableCheck) Category() string { return CategoryLink }

func (c *LinkReachableCheck) Run(ctx context.Context) CheckResult {
	addr, err := link.ParseAddress(c.Address)
	if err != nil {
		return fail(c.Name(), "Fix link.address first", "Can't probe an invalid address")
	}

	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	switch addr.Kind {
	case link.KindSerial:
		return c.probeSerial(addr.Path)
	case link.KindTCP:
		return c.probeTCP(ctx, addr.Host)
	case link.KindSSH:
		return c.probeSSH(ctx, addr)
	case link.KindFile:
		return c.probeFile(addr.Path)
	default:
		return pass(c.Name(), "Reading lines from standard input")
	}
}

func (c *LinkReachableCheck) probeSerial(path string) CheckResult {
	ports, err := listPorts()
	if err == nil {
		for _, p := range ports {
			if p.Name == path {
				return pass(c.Name(), "Port found: %s", p.Description())
			}
		}
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return pass(c.Name(), "Port %s exists", path)
	}
	return fail(c.Name(),
		"Plug the board in, or run 'emgscope ports' to see what is attached",
		"Serial port %s not found", path)
}

func (c *LinkReachableCheck) probeTCP(ctx context.Context, hostport string) CheckResult {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return fail(c.Name(),
			"Check the serial bridge (ser2net, ESP-Link) is running and the port is right",
			"Can't connect to %s: %v", hostport, err)
	}
	conn.Close()
	return pass(c.Name(), "%s accepts connections", hostport)
}

func (c *LinkReachableCheck) probeSSH(ctx context.Context, addr link.Address) CheckResult {
	client, err := dialSSH(ctx, addr.Host)
	if err != nil {
		return fail(c.Name(), "Try connecting by hand first: ssh "+addr.Host, "Can't reach %s: %s", addr.Host, errors.Summary(err))
	}
	defer client.Close()

	_, stderr, code, err := client.Exec(link.ProbeCommand(addr.Path))
	if err != nil {
		return fail(c.Name(), "", "Couldn't check %s on %s: %v", addr.Path, addr.Host, err)
	}
	if code != 0 {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = "not readable"
		}
		return fail(c.Name(),
			"Check the device path on the remote machine and that your user is in the dialout group",
			"%s on %s: %s", addr.Path, addr.Host, msg)
	}
	return pass(c.Name(), "%s is readable on %s", addr.Path, addr.Host)
}

func (c *LinkReachableCheck) probeFile(path string) CheckResult {
	info, err := os.Stat(path)
	if err != nil {
		return fail(c.Name(), "Check the path to the recorded capture", "Can't read %s: %v", path, err)
	}
	if info.IsDir() {
		return fail(c.Name(), "Point file:// at a capture file", "%s is a directory", path)
	}
	if info.Size() == 0 {
		return warn(c.Name(), "Record a session with 'emgscope --record <file>'", "%s is empty", path)
	}
	return pass(c.Name(), "Replay file %s (%s)", path, humanize.IBytes(uint64(info.Size())))
}
