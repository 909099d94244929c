package reader

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/tarm/serial"

	"badgectl/credential"
)

// Serial implements Scanner for serial RFID readers using a custom protocol.
// Protocol: [0x02][0x09][type][uid0..uid3][checksum][0x03]
type Serial struct {
	port   *serial.Port
	device string
	buff   []byte
}

// NewSerial creates a new serial RFID reader.
func NewSerial(device string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = 115200
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}

	return &Serial{port: port, device: device, buff: make([]byte, 9)}, nil
}

// Poll implements Scanner.Poll.
func (s *Serial) Poll(ctx context.Context) (credential.UID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := s.port.Read(s.buff)
	if err != nil || n == 0 {
		return nil, nil // Timeout, nothing on the antenna
	}
	if n != len(s.buff) {
		return nil, nil // Partial read
	}
	return decodeFrame(s.buff), nil
}

// decodeFrame validates a 9 byte frame and extracts the 4 byte identifier.
func decodeFrame(buff []byte) credential.UID {
	preambles := []byte{0x02, 0x09}
	terminator := []byte{0x03}

	if !bytes.Equal(buff[0:2], preambles) {
		return nil
	}

	if !bytes.Equal(buff[8:9], terminator) {
		return nil
	}

	data := buff[1:7]
	xor := data[0]
	for i := 1; i < len(data); i++ {
		xor ^= data[i]
	}

	if xor != buff[7] {
		return nil // Checksum mismatch
	}

	uid := make(credential.UID, 4)
	copy(uid, data[2:6])
	return uid
}

// Halt implements Scanner.Halt. Frames that arrived while the card was being
// handled are dropped.
func (s *Serial) Halt() error {
	return s.port.Flush()
}

// Close implements Scanner.Close.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
