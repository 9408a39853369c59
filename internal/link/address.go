package link

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Kind is the transport behind an address.
type Kind string

const (
	KindSerial Kind = "serial"
	KindTCP    Kind = "tcp"
	KindSSH    Kind = "ssh"
	KindFile   Kind = "file"
	KindStdin  Kind = "stdin"
)

// Address is a parsed link.address value.
type Address struct {
	Kind Kind
	// Path is the serial device, replay file, or remote device for ssh.
	Path string
	// Host is host:port for tcp, and [user@]host[:port] for ssh.
	Host string
	raw  string
}

// String returns the address as the user wrote it.
func (a Address) String() string {
	return a.raw
}

// ParseAddress classifies a link address:
//
//	/dev/ttyUSB0, COM3, serial:///dev/cu.usbmodem1101   serial port
//	tcp://host:port                                     raw TCP (ser2net and friends)
//	ssh://[user@]host[:port]/dev/ttyACM0                device on a remote machine
//	file://capture.log                                  recorded session replay
//	-                                                   stdin
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	addr := Address{raw: s}

	switch {
	case s == "":
		return addr, fmt.Errorf("link address is empty")

	case s == "-":
		addr.Kind = KindStdin
		return addr, nil

	case strings.HasPrefix(s, "file://"):
		addr.Kind = KindFile
		addr.Path = strings.TrimPrefix(s, "file://")
		if addr.Path == "" {
			return addr, fmt.Errorf("file address %q has no path", s)
		}
		return addr, nil

	case strings.HasPrefix(s, "serial://"):
		addr.Kind = KindSerial
		addr.Path = strings.TrimPrefix(s, "serial://")
		if addr.Path == "" {
			return addr, fmt.Errorf("serial address %q has no device", s)
		}
		return addr, nil

	case strings.HasPrefix(s, "tcp://"):
		addr.Kind = KindTCP
		addr.Host = strings.TrimPrefix(s, "tcp://")
		if _, port, err := net.SplitHostPort(addr.Host); err != nil || port == "" {
			return addr, fmt.Errorf("tcp address %q needs host:port", s)
		}
		return addr, nil

	case strings.HasPrefix(s, "ssh://"):
		return parseSSH(s)

	case strings.Contains(s, "://"):
		return addr, fmt.Errorf("unsupported link scheme in %q - use a serial path, tcp://, ssh://, file:// or -", s)
	}

	addr.Kind = KindSerial
	addr.Path = s
	return addr, nil
}

func parseSSH(s string) (Address, error) {
	addr := Address{Kind: KindSSH, raw: s}

	u, err := url.Parse(s)
	if err != nil {
		return addr, fmt.Errorf("invalid ssh address %q: %w", s, err)
	}
	if u.Host == "" {
		return addr, fmt.Errorf("ssh address %q has no host", s)
	}

	addr.Host = u.Host
	if u.User != nil && u.User.Username() != "" {
		addr.Host = u.User.Username() + "@" + u.Host
	}

	addr.Path = u.Path
	// ssh://pi/~/ttyfifo means a path relative to the remote home
	if strings.HasPrefix(addr.Path, "/~") {
		addr.Path = addr.Path[1:]
	}
	if addr.Path == "" || addr.Path == "/" {
		return addr, fmt.Errorf("ssh address %q needs a device path, like ssh://pi@host/dev/ttyACM0", s)
	}
	return addr, nil
}
