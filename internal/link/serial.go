package link

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultBaud matches the firmware's Serial.begin(115200).
const DefaultBaud = 115200

// openSerialPort is swapped out in tests.
var openSerialPort = func(path string, mode *serial.Mode) (io.ReadCloser, error) {
	return serial.Open(path, mode)
}

// openSerial opens a local serial port at baud, 8N1.
func openSerial(path string, baud int) (io.ReadCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := openSerialPort(path, mode)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLink,
			fmt.Sprintf("Couldn't open serial port %s", path),
			serialSuggestion(err))
	}
	return port, nil
}

func serialSuggestion(err error) string {
	var portErr *serial.PortError
	if stderrors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortBusy:
			return "Another program has the port open. Close the Arduino Serial Monitor or plotter and try again."
		case serial.PortNotFound:
			return "No such port. Plug the board in and run: emgscope ports"
		case serial.PermissionDenied:
			return "Permission denied. On Linux add yourself to the dialout group: sudo usermod -aG dialout $USER"
		case serial.InvalidSpeed:
			return "The port rejected the baud rate. The firmware uses 115200."
		}
	}
	return "Check the device path with: emgscope ports"
}

// PortInfo describes a serial port found on this machine.
type PortInfo struct {
	Name         string
	USB          bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// Ports lists the serial ports on this machine, sorted by name.
// USB details are filled in where the OS exposes them.
func Ports() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		ports := make([]PortInfo, 0, len(details))
		for _, d := range details {
			ports = append(ports, PortInfo{
				Name:         d.Name,
				USB:          d.IsUSB,
				VID:          d.VID,
				PID:          d.PID,
				SerialNumber: d.SerialNumber,
				Product:      d.Product,
			})
		}
		sortPorts(ports)
		return ports, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLink,
			"Couldn't list serial ports", "")
	}
	ports := make([]PortInfo, 0, len(names))
	for _, name := range names {
		ports = append(ports, PortInfo{Name: name})
	}
	sortPorts(ports)
	return ports, nil
}

func sortPorts(ports []PortInfo) {
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
}

// Description is a one-line summary for port listings.
func (p PortInfo) Description() string {
	if !p.USB {
		return p.Name
	}
	desc := fmt.Sprintf("%s  USB %s:%s", p.Name, p.VID, p.PID)
	if p.Product != "" {
		desc += "  " + p.Product
	}
	if p.SerialNumber != "" {
		desc += "  (" + p.SerialNumber + ")"
	}
	return desc
}
