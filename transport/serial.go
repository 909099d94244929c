package transport

import (
	"fmt"
	"log"
	"time"

	"go.bug.st/serial"
)

const serialPollTimeout = time.Millisecond

// Serial implements Line over a serial port.
type Serial struct {
	port   serial.Port
	device string
	lines  lineBuffer
	tmp    []byte
}

// NewSerial opens device at the given baud rate (8N1).
func NewSerial(device string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = 9600
	}

	mode := &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}

	if err := p.SetReadTimeout(serialPollTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", device, err)
	}

	s := &Serial{
		port:   p,
		device: device,
		tmp:    make([]byte, 256),
	}
	s.flush()
	log.Printf("Host link on %s at %d baud", device, baud)
	return s, nil
}

// SendLine implements Line.SendLine.
func (s *Serial) SendLine(line string) error {
	if _, err := s.port.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("write %s: %w", s.device, err)
	}
	return nil
}

// TryReadLine implements Line.TryReadLine.
func (s *Serial) TryReadLine() (string, bool, error) {
	if line, ok := s.lines.next(); ok {
		return line, true, nil
	}

	n, err := s.port.Read(s.tmp)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", s.device, err)
	}
	if n == 0 {
		return "", false, nil
	}
	s.lines.write(s.tmp[:n])

	line, ok := s.lines.next()
	return line, ok, nil
}

// Discard implements Line.Discard. It reads whatever the port still holds
// so the dropped lines can be reported.
func (s *Serial) Discard() []string {
	for i := 0; i < 64; i++ {
		n, err := s.port.Read(s.tmp)
		if err != nil || n == 0 {
			break
		}
		s.lines.write(s.tmp[:n])
	}
	return s.lines.drain()
}

// Close implements Line.Close.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

// flush drops whatever the host sent before we were listening.
func (s *Serial) flush() {
	if err := s.port.ResetInputBuffer(); err != nil {
		for {
			n, err := s.port.Read(s.tmp)
			if err != nil || n == 0 {
				break
			}
		}
	}
	s.lines.discard()
}
