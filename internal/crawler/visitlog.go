package crawler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// VisitLog is the append-only visited-URL log: one URL per line, written
// one committed batch at a time.
type VisitLog struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
}

// NewVisitLog wraps w. Close flushes but only closes w if it is an io.Closer.
func NewVisitLog(w io.Writer) *VisitLog {
	l := &VisitLog{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// OpenVisitLog creates or truncates the log file at path, creating its
// parent directory when needed.
func OpenVisitLog(path string) (*VisitLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	//nolint:gosec // path comes from the configured output directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open visit log: %w", err)
	}
	return NewVisitLog(f), nil
}

// AppendBatch writes urls, one per line, and flushes them so the file
// always ends on a batch boundary.
func (l *VisitLog) AppendBatch(urls []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, u := range urls {
		if _, err := l.w.WriteString(u + "\n"); err != nil {
			return fmt.Errorf("failed to write visit log: %w", err)
		}
	}
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush visit log: %w", err)
	}
	return nil
}

// Close flushes pending output and closes the underlying file.
func (l *VisitLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.w.Flush(); err != nil {
		return err
	}
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
