package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"

	"badgectl/credential"
)

const (
	stx = 0x02
	etx = 0x03
)

// Wiegand implements Scanner for Wiegand-style serial RFID readers that send
// the identifier as ASCII hex between STX and ETX.
type Wiegand struct {
	port serial.Port
}

// NewWiegand creates a new Wiegand reader on the specified serial port.
func NewWiegand(device string, baud int) (*Wiegand, error) {
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

	_ = p.SetReadTimeout(50 * time.Millisecond)

	w := &Wiegand{port: p}
	w.flush()
	return w, nil
}

// Poll implements Scanner.Poll.
func (w *Wiegand) Poll(ctx context.Context) (credential.UID, error) {
	if w.port == nil {
		return nil, errors.New("port not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.readFrame()
}

// readFrame attempts to read a single card frame.
func (w *Wiegand) readFrame() (credential.UID, error) {
	first := make([]byte, 1)
	n, err := w.port.Read(first)
	if err != nil {
		return nil, fmt.Errorf("read STX: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	if first[0] != stx {
		w.flush()
		return nil, nil
	}

	var idBuilder strings.Builder
	buf := make([]byte, 1)

	for {
		n, err := w.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if n == 0 {
			w.flush()
			return nil, nil
		}
		if buf[0] == etx {
			break
		}
		idBuilder.WriteByte(buf[0])
	}

	uid, err := decodeASCIIFrame(idBuilder.String())
	if err != nil {
		// Corrupt frames are treated like an empty field.
		return nil, nil
	}
	return uid, nil
}

// decodeASCIIFrame turns the hex body of a frame into an identifier. A 12
// digit body carries 5 data bytes followed by their XOR checksum.
func decodeASCIIFrame(body string) (credential.UID, error) {
	if body == "" {
		return nil, fmt.Errorf("empty frame")
	}
	if len(body)%2 != 0 {
		body = "0" + body
	}

	raw, err := credential.Parse(body)
	if err != nil {
		return nil, err
	}

	if len(body) != 12 {
		return raw, nil
	}

	data, sum := raw[:5], raw[5]
	var checksum byte
	for _, b := range data {
		checksum ^= b
	}
	if checksum != sum {
		return nil, fmt.Errorf("checksum %02X, frame says %02X", checksum, sum)
	}
	return data, nil
}

// Halt implements Scanner.Halt.
func (w *Wiegand) Halt() error {
	w.flush()
	return nil
}

// Close implements Scanner.Close.
func (w *Wiegand) Close() error {
	if w.port == nil {
		return nil
	}
	return w.port.Close()
}

func (w *Wiegand) flush() {
	if w.port == nil {
		return
	}
	_ = w.port.SetReadTimeout(10 * time.Millisecond)
	defer func() {
		_ = w.port.SetReadTimeout(50 * time.Millisecond)
	}()

	tmp := make([]byte, 64)
	for {
		n, err := w.port.Read(tmp)
		if err != nil || n == 0 {
			return
		}
	}
}
