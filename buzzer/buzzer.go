// Package buzzer drives the piezo used for audible feedback.
package buzzer

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// Buzzer is the interface for all tone output implementations.
type Buzzer interface {
	// Start begins sounding a tone at hz. It returns immediately; the tone
	// continues until Stop.
	Start(hz int) error

	// Stop silences the buzzer.
	Stop() error

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for buzzer implementations.
type Config struct {
	Type string `yaml:"type"` // "pwm", "square", "active", "none"
	Pin  *int   `yaml:"pin"`  // GPIO pin number (pwm needs a PWM0 capable pin, e.g. 18)
	Chip string `yaml:"chip"` // gpiochip for "square", defaults to gpiochip0
}

// New creates a Buzzer based on the provided configuration.
func New(cfg Config) (Buzzer, error) {
	if cfg.Pin == nil {
		return &Noop{}, nil
	}

	switch cfg.Type {
	case "pwm":
		hw, err := govattu.Open()
		if err != nil {
			return nil, fmt.Errorf("open gpio: %w", err)
		}
		return NewPWM(hw, uint8(*cfg.Pin))
	case "square":
		return NewSquare(cfg.Chip, *cfg.Pin)
	case "active":
		return NewActive(*cfg.Pin)
	case "none", "":
		return &Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown buzzer type %q", cfg.Type)
	}
}

// Noop implements Buzzer but does nothing.
// Used when no buzzer is configured.
type Noop struct{}

// Start implements Buzzer.Start.
func (n *Noop) Start(hz int) error { return nil }

// Stop implements Buzzer.Stop.
func (n *Noop) Stop() error { return nil }

// Release implements Buzzer.Release.
func (n *Noop) Release() error { return nil }
