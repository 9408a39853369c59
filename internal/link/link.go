// Package link turns a byte stream from the sensor into text lines.
//
// Every transport (serial port, TCP bridge, SSH to a remote board, file
// replay, stdin) ends up as an io.ReadCloser feeding the same line reader, so
// the rest of the pipeline only sees Source.
package link

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/logger"
)

// MaxLineLength is the longest line kept. Longer lines are line noise
// (a missing newline, the wrong baud rate) and are dropped.
const MaxLineLength = 4096

// DefaultReadTimeout is used when Spec.ReadTimeout is zero.
const DefaultReadTimeout = 100 * time.Millisecond

var (
	// ErrClosed is returned by Next after Close.
	ErrClosed = stderrors.New("link closed")

	// ErrEndOfStream is returned by Next when a finite source (a replay file
	// without looping, or stdin) has no more lines.
	ErrEndOfStream = stderrors.New("end of stream")
)

// Source yields lines from the sensor.
type Source interface {
	// Next waits up to the read timeout for a line. It returns ok=false with a
	// nil error when nothing arrived in time, and a non-nil error when the
	// link is unusable. A cancelled ctx returns ctx.Err().
	Next(ctx context.Context) (line string, ok bool, err error)

	// Close releases the link and unblocks pending reads. Safe to call twice.
	Close() error

	// String describes the link for logs and the status bar.
	String() string
}

// Spec is everything needed to open a link.
type Spec struct {
	Address        string
	Baud           int
	ReadTimeout    time.Duration
	ReplayInterval time.Duration
	ReplayLoop     bool
	Log            logger.Logger
}

// Open parses spec.Address and opens the matching transport. Failures are
// structured errors with code LINK (or SSH for ssh dial problems) and are not
// retried.
func Open(ctx context.Context, spec Spec) (Source, error) {
	addr, err := ParseAddress(spec.Address)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLink,
			"Invalid link address",
			"Use a serial port (/dev/ttyUSB0, COM3), tcp://host:port, ssh://host/dev/ttyACM0, file://capture.log, or -")
	}

	if spec.ReadTimeout <= 0 {
		spec.ReadTimeout = DefaultReadTimeout
	}
	if spec.Log == nil {
		spec.Log = logger.NewEnvLogger("[link]")
	}

	opts := readerOptions{
		name:    addr.String(),
		timeout: spec.ReadTimeout,
		log:     spec.Log,
	}

	switch addr.Kind {
	case KindSerial:
		rc, err := openSerial(addr.Path, spec.Baud)
		if err != nil {
			return nil, err
		}
		return newLineSource(rc, opts), nil

	case KindTCP:
		rc, err := openTCP(ctx, addr.Host)
		if err != nil {
			return nil, err
		}
		return newLineSource(rc, opts), nil

	case KindSSH:
		rc, err := openSSH(ctx, addr, spec.Baud, spec.Log)
		if err != nil {
			return nil, err
		}
		return newLineSource(rc, opts), nil

	case KindFile:
		rc, err := openReplay(addr.Path, spec.ReplayLoop)
		if err != nil {
			return nil, err
		}
		opts.interval = spec.ReplayInterval
		opts.finite = !spec.ReplayLoop
		return newLineSource(rc, opts), nil

	case KindStdin:
		opts.finite = true
		return newLineSource(nopCloser{os.Stdin}, opts), nil
	}

	return nil, errors.New(errors.ErrLink, fmt.Sprintf("Unsupported link kind %q", addr.Kind), "")
}
