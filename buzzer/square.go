//go:build linux

package buzzer

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Square implements Buzzer by toggling a GPIO line from a goroutine. Pitch is
// only as good as the scheduler, which is fine for beeps.
type Square struct {
	line *gpiocdev.Line

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSquare requests offset on chip as an output, initially low.
func NewSquare(chip string, offset int) (*Square, error) {
	if chip == "" {
		chip = "gpiochip0"
	}
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", chip, offset, err)
	}
	return &Square{line: line}, nil
}

// Start implements Buzzer.Start.
func (s *Square) Start(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("tone %d Hz out of range", hz)
	}
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.toggle(time.Second/time.Duration(2*hz), s.stop, s.done)
	return nil
}

func (s *Square) toggle(half time.Duration, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(half)
	defer ticker.Stop()

	level := 0
	for {
		select {
		case <-stop:
			s.line.SetValue(0)
			return
		case <-ticker.C:
			level ^= 1
			s.line.SetValue(level)
		}
	}
}

// Stop implements Buzzer.Stop.
func (s *Square) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
	return nil
}

// Release implements Buzzer.Release.
func (s *Square) Release() error {
	s.Stop()
	return s.line.Close()
}
