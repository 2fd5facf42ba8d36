package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when a read is abandoned because its context
// ended.
var ErrInputCancelled = errors.New("input canceled")

type scannedLine struct {
	err  error
	text string
}

// LineReader reads answers from a terminal without blocking past a canceled
// context. Lines are scanned by one background goroutine, started on the
// first read, so a line typed after a cancellation is still delivered to the
// next ReadLine.
type LineReader struct {
	src   io.Reader
	lines chan scannedLine
	once  sync.Once
}

// NewLineReader wraps src.
func NewLineReader(src io.Reader) *LineReader {
	return &LineReader{src: src, lines: make(chan scannedLine)}
}

func (r *LineReader) scan() {
	scanner := bufio.NewScanner(r.src)
	for scanner.Scan() {
		r.lines <- scannedLine{text: scanner.Text()}
	}
	if err := scanner.Err(); err != nil {
		r.lines <- scannedLine{err: err}
	}
	close(r.lines)
}

// ReadLine returns the next line with surrounding whitespace removed.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.once.Do(func() { go r.scan() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case line, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if line.err != nil {
			return "", line.err
		}
		return strings.TrimSpace(line.text), nil
	}
}
