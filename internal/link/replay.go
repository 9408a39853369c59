package link

import (
	"fmt"
	"io"
	"os"

	"github.com/basturkme/4IER-HMI/internal/errors"
)

func openReplay(path string, loop bool) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLink,
			fmt.Sprintf("Couldn't open replay file %s", path),
			"Check the path. Record one with: emgscope monitor --record capture.log")
	}
	if !loop {
		return f, nil
	}
	return &loopReader{f: f}, nil
}

// loopReader rewinds to the start of the file at EOF. A missing final
// newline is supplied so the last and first lines don't run together.
type loopReader struct {
	f              *os.File
	sinceSeek      int64
	last           byte
	pendingNewline bool
}

func (l *loopReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if l.pendingNewline {
		l.pendingNewline = false
		p[0] = '\n'
		return 1, nil
	}

	n, err := l.f.Read(p)
	if n > 0 {
		l.sinceSeek += int64(n)
		l.last = p[n-1]
	}
	if err != io.EOF {
		return n, err
	}
	if l.sinceSeek == 0 {
		// Empty file; looping would spin.
		return n, io.EOF
	}
	if _, serr := l.f.Seek(0, io.SeekStart); serr != nil {
		return n, serr
	}
	l.sinceSeek = 0
	l.pendingNewline = l.last != '\n'
	return n, nil
}

func (l *loopReader) Close() error {
	return l.f.Close()
}
