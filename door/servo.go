package door

import "time"

// sweepStep is the pause between PWM steps; it sets the swing speed.
var sweepStep = 2 * time.Millisecond

// Servo implements Strike by swinging a latch servo.
type Servo struct {
	set      func(v uint32)
	close    func() error
	openPos  int
	closePos int
	isOpen   bool
}

// NewServo creates a servo strike parked in the closed position. set writes
// a PWM value; close may be nil.
func NewServo(set func(v uint32), close func() error, openPos, closePos int) *Servo {
	s := &Servo{set: set, close: close, openPos: openPos, closePos: closePos}
	s.set(uint32(closePos))
	return s
}

// Unlock implements Strike.Unlock.
func (s *Servo) Unlock() error {
	if s.isOpen {
		return nil
	}
	s.sweep(s.closePos, s.openPos)
	s.isOpen = true
	return nil
}

// Lock implements Strike.Lock.
func (s *Servo) Lock() error {
	if !s.isOpen {
		return nil
	}
	s.sweep(s.openPos, s.closePos)
	s.isOpen = false
	return nil
}

// Release implements Strike.Release.
func (s *Servo) Release() error {
	s.Lock()
	if s.close == nil {
		return nil
	}
	return s.close()
}

func (s *Servo) sweep(from, to int) {
	inc := 1
	if to < from {
		inc = -1
	}
	for i := from; i != to; i += inc {
		s.set(uint32(i))
		time.Sleep(sweepStep)
	}
	s.set(uint32(to))
}
