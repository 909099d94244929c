//go:build !linux

package buzzer

import "errors"

var ErrNotSupported = errors.New("gpio character device not supported on this platform")

// Square is a stub for non-linux platforms.
type Square struct{}

// NewSquare returns ErrNotSupported on non-linux platforms.
func NewSquare(chip string, offset int) (*Square, error) {
	return nil, ErrNotSupported
}

func (s *Square) Start(hz int) error { return ErrNotSupported }
func (s *Square) Stop() error        { return nil }
func (s *Square) Release() error     { return nil }
