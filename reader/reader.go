package reader

import (
	"context"
	"fmt"

	"badgectl/credential"
)

// Scanner is the interface for all credential reader implementations.
type Scanner interface {
	// Poll checks once for a credential. It returns a nil UID when no
	// credential is present or the read was partial or corrupt.
	Poll(ctx context.Context) (credential.UID, error)

	// Halt ends the hardware session with the last credential read and
	// discards anything the reader picked up since.
	Halt() error

	// Close releases any resources held by the reader.
	Close() error
}

// Config holds common configuration for reader implementations.
type Config struct {
	Type   string `yaml:"type"`   // "serial", "wiegand", "keyboard", "pipe"
	Device string `yaml:"device"` // e.g., "/dev/serial0", "/dev/input/event0", "/tmp/badgectl-tags"
	Baud   int    `yaml:"baud"`   // baud rate for serial devices
	Format string `yaml:"format"` // keyboard readers: "8h", "10d", ...
}

// New creates a Scanner based on the provided configuration. The result
// reports each physical presentation once; see Debounce.
func New(cfg Config) (Scanner, error) {
	var (
		s   Scanner
		err error
	)
	switch cfg.Type {
	case "wiegand":
		s, err = NewWiegand(cfg.Device, cfg.Baud)
	case "keyboard", "10h-kbd":
		s, err = NewKeyboard(cfg.Device, cfg.Format)
	case "pipe":
		s, err = NewPipe(cfg.Device)
	case "serial", "":
		s, err = NewSerial(cfg.Device, cfg.Baud)
	default:
		return nil, fmt.Errorf("unknown reader type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return Debounce(s), nil
}

// Debounce wraps s so a credential that stays on the antenna is reported
// only once. The same identifier is reported again only after a poll has
// seen the field empty, i.e. after the card was removed and re-presented.
func Debounce(s Scanner) Scanner {
	return &debounced{Scanner: s}
}

type debounced struct {
	Scanner
	held credential.UID
}

func (d *debounced) Poll(ctx context.Context) (credential.UID, error) {
	uid, err := d.Scanner.Poll(ctx)
	if err != nil {
		return nil, err
	}
	if uid == nil {
		d.held = nil
		return nil, nil
	}
	if d.held != nil && d.held.Equal(uid) {
		return nil, nil
	}
	d.held = uid
	return uid, nil
}
