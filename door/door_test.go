package door

import (
	"fmt"
	"testing"
)

func TestNewWithoutPin(t *testing.T) {
	s, err := New(Config{Type: "servo"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*Noop); !ok {
		t.Errorf("New without pin = %T, want *Noop", s)
	}
}

func TestNewUnknownType(t *testing.T) {
	pin := 4
	if _, err := New(Config{Type: "drawbridge", Pin: &pin}); err == nil {
		t.Error("unknown door type accepted")
	}

	s, err := New(Config{Type: "none", Pin: &pin})
	if err != nil {
		t.Fatalf("New(none): %v", err)
	}
	if _, ok := s.(*Noop); !ok {
		t.Errorf("New(none) = %T, want *Noop", s)
	}
}

func TestServoNeedsTwoPositions(t *testing.T) {
	pin := 18
	if _, err := New(Config{Type: "servo", Pin: &pin, ServoOpen: 1500, ServoClose: 1500}); err == nil {
		t.Error("servo with equal positions accepted")
	}
}

type levels []bool

func (l *levels) drive(high bool) { *l = append(*l, high) }

func TestRelay(t *testing.T) {
	var out levels
	closed := false
	r := NewRelay(out.drive, func() error { closed = true; return nil }, true)

	if len(out) != 1 || out[0] {
		t.Fatalf("initial levels %v, want [false]", out)
	}

	r.Unlock()
	r.Unlock()
	r.Lock()
	r.Lock()
	if want := "[false true false]"; fmt.Sprint(out) != want {
		t.Errorf("levels %v, want %s", out, want)
	}

	r.Unlock()
	if err := r.Release(); err != nil {
		t.Fatal(err)
	}
	if !closed || out[len(out)-1] {
		t.Errorf("Release left output %v closed=%v", out, closed)
	}
}

func TestRelayActiveLow(t *testing.T) {
	var out levels
	r := NewRelay(out.drive, nil, false)
	r.Unlock()
	if want := "[true false]"; fmt.Sprint(out) != want {
		t.Errorf("levels %v, want %s", out, want)
	}
	if err := r.Release(); err != nil {
		t.Errorf("Release without close: %v", err)
	}
}

func TestServoSweep(t *testing.T) {
	sweepStep = 0
	var pos []uint32
	s := NewServo(func(v uint32) { pos = append(pos, v) }, nil, 104, 100)

	s.Unlock()
	if want := "[100 100 101 102 103 104]"; fmt.Sprint(pos) != want {
		t.Errorf("open sweep %v, want %s", pos, want)
	}

	pos = nil
	s.Unlock()
	if len(pos) != 0 {
		t.Errorf("second Unlock moved the servo: %v", pos)
	}

	s.Release()
	if want := "[104 103 102 101 100]"; fmt.Sprint(pos) != want {
		t.Errorf("close sweep %v, want %s", pos, want)
	}
}
