package reader

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/kenshaw/evdev"

	"badgectl/credential"
)

// Keyboard implements Scanner for USB keyboard-style RFID readers
// that output digits followed by Enter.
type Keyboard struct {
	device    *evdev.Evdev
	numDigits int  // expected number of digits (0 = any)
	isHex     bool // true for hex input, false for decimal
	format    string
	tags      chan credential.UID
	cancel    context.CancelFunc
}

// NewKeyboard creates a new keyboard reader on the specified input device.
// Format specifies the input format: "10h" (10 hex digits), "10d" (10 decimal), "8h", "8d", etc.
// If format is empty, defaults to "10h" for backwards compatibility.
func NewKeyboard(device string, format string) (*Keyboard, error) {
	dev, err := evdev.OpenFile(device)
	if err != nil {
		return nil, fmt.Errorf("open evdev %s: %w", device, err)
	}

	log.Printf("Opened keyboard device: %s", dev.Name())
	log.Printf("Vendor: 0x%04x, Product: 0x%04x", dev.ID().Vendor, dev.ID().Product)

	numDigits, isHex := parseFormat(format)
	if format == "" {
		format = "10h"
	}

	base := "hex"
	if !isHex {
		base = "decimal"
	}
	log.Printf("Keyboard reader format: %s (%d %s digits)", format, numDigits, base)

	ctx, cancel := context.WithCancel(context.Background())
	k := &Keyboard{
		device:    dev,
		numDigits: numDigits,
		isHex:     isHex,
		format:    format,
		tags:      make(chan credential.UID, 4),
		cancel:    cancel,
	}
	go k.listen(ctx)
	return k, nil
}

// parseFormat parses a format string such as "10h", "10d", "8h" or "8".
func parseFormat(format string) (numDigits int, isHex bool) {
	if format == "" {
		format = "10h"
	}
	format = strings.ToLower(format)

	if strings.HasSuffix(format, "h") {
		numDigits, _ = strconv.Atoi(strings.TrimSuffix(format, "h"))
		return numDigits, true
	}
	if strings.HasSuffix(format, "d") {
		numDigits, _ = strconv.Atoi(strings.TrimSuffix(format, "d"))
		return numDigits, false
	}
	// Try to parse as just a number, assume hex
	numDigits, _ = strconv.Atoi(format)
	return numDigits, true
}

// listen collects key presses until Enter and queues each complete badge.
func (k *Keyboard) listen(ctx context.Context) {
	ch := k.device.Poll(ctx)
	var strbuf string

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			if event == nil {
				log.Printf("Keyboard device closed")
				return
			}

			switch event.Type.(type) {
			case evdev.KeyType:
				if event.Value != 1 {
					continue
				}

				if event.Type == evdev.KeyEnter {
					uid, err := k.decode(strbuf)
					strbuf = ""
					if err != nil {
						log.Printf("Bad badge: %v", err)
						continue
					}
					select {
					case k.tags <- uid:
					default:
						log.Printf("Dropping badge %s, reader busy", uid)
					}
					continue
				}

				strbuf += evdev.KeyType(event.Code).String()
			}
		}
	}
}

// decode parses a badge line according to the configured format.
func (k *Keyboard) decode(line string) (credential.UID, error) {
	if line == "" {
		return nil, fmt.Errorf("empty line")
	}
	if k.numDigits > 0 && len(line) != k.numDigits {
		return nil, fmt.Errorf("expected %d digits, got %d (%q)", k.numDigits, len(line), line)
	}

	if k.isHex {
		if len(line)%2 != 0 {
			line = "0" + line
		}
		return credential.Parse(line)
	}

	number, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad badge line %q (base 10): %w", line, err)
	}
	uid := make(credential.UID, 4)
	binary.BigEndian.PutUint32(uid, uint32(number&0xffffffff))
	return uid, nil
}

// Poll implements Scanner.Poll.
func (k *Keyboard) Poll(ctx context.Context) (credential.UID, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case uid := <-k.tags:
		return uid, nil
	default:
		return nil, nil
	}
}

// Halt implements Scanner.Halt. Badges typed while the last one was being
// handled are discarded.
func (k *Keyboard) Halt() error {
	for {
		select {
		case <-k.tags:
		default:
			return nil
		}
	}
}

// Close implements Scanner.Close.
func (k *Keyboard) Close() error {
	if k.device == nil {
		return nil
	}
	k.cancel()
	return k.device.Close()
}
