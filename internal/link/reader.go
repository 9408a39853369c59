package link

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/logger"
)

type readerOptions struct {
	name     string
	timeout  time.Duration
	interval time.Duration // pause after each line, for replays
	finite   bool          // io.EOF is a normal end, not a lost link
	log      logger.Logger
}

// lineSource reads lines from rc on its own goroutine and hands them to Next.
type lineSource struct {
	rc    io.ReadCloser
	opts  readerOptions
	lines chan string
	done  chan struct{}

	// err is written before lines is closed and read after.
	err error

	oversized atomic.Uint64
	closeOnce sync.Once
	closeErr  error
}

// NewReader wraps any io.ReadCloser as a Source. Used by tests and by the
// decode command to run files through the same line handling as live links.
func NewReader(name string, rc io.ReadCloser, timeout time.Duration) Source {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return newLineSource(rc, readerOptions{
		name:    name,
		timeout: timeout,
		finite:  true,
		log:     logger.Noop(),
	})
}

func newLineSource(rc io.ReadCloser, opts readerOptions) *lineSource {
	s := &lineSource{
		rc:    rc,
		opts:  opts,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *lineSource) String() string {
	return s.opts.name
}

// Oversized returns how many lines were dropped for exceeding MaxLineLength.
func (s *lineSource) Oversized() uint64 {
	return s.oversized.Load()
}

func (s *lineSource) run() {
	defer close(s.lines)

	r := bufio.NewReaderSize(s.rc, MaxLineLength)
	for {
		line, err := s.readLine(r)
		if err != nil {
			s.err = s.classify(err)
			return
		}
		if line == "" {
			continue
		}

		select {
		case s.lines <- line:
		case <-s.done:
			return
		}

		if s.opts.interval > 0 {
			select {
			case <-time.After(s.opts.interval):
			case <-s.done:
				return
			}
		}
	}
}

// readLine returns the next cleaned line. Lines longer than the buffer are
// skipped whole.
func (s *lineSource) readLine(r *bufio.Reader) (string, error) {
	for {
		b, err := r.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			n := s.oversized.Add(1)
			s.opts.log.Debug("%s: dropped line longer than %d bytes (%d so far)", s.opts.name, MaxLineLength, n)
			if err := discardLine(r); err != nil {
				return "", err
			}
			continue
		}
		if err != nil {
			if err == io.EOF && len(b) > 0 {
				// Last line without a newline; the next call reports EOF.
				return cleanLine(b), nil
			}
			return "", err
		}
		return cleanLine(b), nil
	}
}

func discardLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}

// cleanLine strips the line terminator and surrounding whitespace and drops
// bytes that are not valid UTF-8 (serial garbage at connect time).
func cleanLine(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), ""))
}

func (s *lineSource) classify(err error) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	if err == io.EOF {
		if s.opts.finite {
			return ErrEndOfStream
		}
		return errors.WrapWithCode(err, errors.ErrLink,
			fmt.Sprintf("Lost connection to %s", s.opts.name),
			"The device went away. Check the cable and restart emgscope.")
	}

	// A structured cause (ssh remote command failure) already explains itself.
	var sErr *errors.Error
	if stderrors.As(err, &sErr) {
		return errors.WrapWithCode(err, errors.ErrLink,
			fmt.Sprintf("Lost connection to %s", s.opts.name), sErr.Suggestion)
	}
	return errors.WrapWithCode(err, errors.ErrLink,
		fmt.Sprintf("Read from %s failed", s.opts.name),
		"Check the cable and that nothing else has the port open, then restart emgscope.")
}

func (s *lineSource) Next(ctx context.Context) (string, bool, error) {
	timer := time.NewTimer(s.opts.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-s.done:
		return "", false, ErrClosed
	case line, ok := <-s.lines:
		if !ok {
			return "", false, s.err
		}
		return line, true, nil
	case <-timer.C:
		return "", false, nil
	}
}

func (s *lineSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.rc.Close()
	})
	return s.closeErr
}

type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }
