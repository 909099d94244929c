package transport

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// Stream implements Line over a plain reader/writer pair, such as the
// standard streams of a process started by the host. Reads happen on a
// background goroutine so TryReadLine never blocks.
type Stream struct {
	w      io.Writer
	closer io.Closer
	lines  chan string

	mu  sync.Mutex
	err error
}

// NewStream starts reading lines from r. If r implements io.Closer it is
// closed by Close.
func NewStream(r io.Reader, w io.Writer) *Stream {
	s := &Stream{
		w:     w,
		lines: make(chan string, 16),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	go s.pump(r)
	return s
}

func (s *Stream) pump(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.lines)
}

// SendLine implements Line.SendLine.
func (s *Stream) SendLine(line string) error {
	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// TryReadLine implements Line.TryReadLine. Once the reader is exhausted and
// every buffered line has been returned it reports the read error.
func (s *Stream) TryReadLine() (string, bool, error) {
	select {
	case line, ok := <-s.lines:
		if ok {
			return line, true, nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return "", false, s.err
	default:
		return "", false, nil
	}
}

// Discard implements Line.Discard.
func (s *Stream) Discard() []string {
	var dropped []string
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return dropped
			}
			dropped = append(dropped, line)
		default:
			return dropped
		}
	}
}

// Close implements Line.Close.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
