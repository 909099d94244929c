// Package transport carries newline-terminated text lines between the reader
// and the host decision process.
package transport

import (
	"bytes"
	"fmt"
	"os"
)

// Line is a duplex, line-oriented link to the host.
type Line interface {
	// SendLine writes s followed by a newline.
	SendLine(s string) error

	// TryReadLine returns the next complete line without its terminator, if
	// one is available. It never waits longer than a few milliseconds.
	TryReadLine() (string, bool, error)

	// Discard drops every line received so far and returns the complete
	// ones. It is called before each credential is sent, so a late answer
	// to an earlier credential is never taken for the current one.
	Discard() []string

	// Close releases the underlying device.
	Close() error
}

// Config holds configuration for the host link.
type Config struct {
	Type   string   `yaml:"type"`   // "serial" or "stdio"
	Device string   `yaml:"device"` // e.g. "/dev/ttyACM0"
	Baud   int      `yaml:"baud"`   // defaults to 9600
	Banner []string `yaml:"banner"` // lines sent once the link is open
}

// New creates a Line based on the provided configuration.
func New(cfg Config) (Line, error) {
	switch cfg.Type {
	case "stdio":
		return NewStream(os.Stdin, os.Stdout), nil
	case "serial", "":
		if cfg.Device == "" {
			return nil, fmt.Errorf("serial link needs a device")
		}
		return NewSerial(cfg.Device, cfg.Baud)
	default:
		return nil, fmt.Errorf("unknown link type %q", cfg.Type)
	}
}

// maxLineLen bounds a single host line. Bytes past it are dropped until the
// next newline.
const maxLineLen = 256

// lineBuffer accumulates raw bytes and splits them into lines.
type lineBuffer struct {
	buf []byte
}

func (lb *lineBuffer) write(p []byte) {
	partial := len(lb.buf) - (bytes.LastIndexByte(lb.buf, '\n') + 1)
	for len(p) > 0 {
		body := p
		i := bytes.IndexByte(p, '\n')
		if i >= 0 {
			body = p[:i]
			p = p[i+1:]
		} else {
			p = nil
		}

		if room := maxLineLen - partial; len(body) > room {
			body = body[:max(room, 0)]
		}
		lb.buf = append(lb.buf, body...)
		partial += len(body)

		if i >= 0 {
			lb.buf = append(lb.buf, '\n')
			partial = 0
		}
	}
}

// next pops the first complete line, dropping the "\n" or "\r\n" terminator.
func (lb *lineBuffer) next() (string, bool) {
	i := bytes.IndexByte(lb.buf, '\n')
	if i < 0 {
		return "", false
	}
	line := lb.buf[:i]
	line = bytes.TrimSuffix(line, []byte{'\r'})
	s := string(line)
	lb.buf = lb.buf[i+1:]
	return s, true
}

// drain pops every complete line and drops any partial one.
func (lb *lineBuffer) drain() []string {
	var lines []string
	for {
		line, ok := lb.next()
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	lb.discard()
	return lines
}

// discard drops everything buffered so far.
func (lb *lineBuffer) discard() {
	lb.buf = lb.buf[:0]
}
