// Package door drives an optional electric strike or latch servo that is
// released while a successful registration is shown.
package door

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// Strike is the interface for all lock actuator implementations.
type Strike interface {
	// Unlock releases the lock.
	Unlock() error

	// Lock engages the lock again.
	Lock() error

	// Release locks and releases any hardware resources.
	Release() error
}

// Config holds configuration for lock actuator implementations.
type Config struct {
	Type       string `yaml:"type"`        // "relay", "servo", "none"
	Pin        *int   `yaml:"pin"`         // GPIO pin number
	ActiveLow  bool   `yaml:"active_low"`  // relay: drive low to unlock
	ServoOpen  int    `yaml:"servo_open"`  // PWM value for open position
	ServoClose int    `yaml:"servo_close"` // PWM value for closed position
}

// New creates a Strike based on the provided configuration.
func New(cfg Config) (Strike, error) {
	if cfg.Pin == nil {
		return &Noop{}, nil
	}

	switch cfg.Type {
	case "relay", "gpio_high", "gpio_low", "servo":
	case "none", "":
		return &Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown door type %q", cfg.Type)
	}
	if cfg.Type == "servo" && cfg.ServoOpen == cfg.ServoClose {
		return nil, fmt.Errorf("servo needs distinct servo_open and servo_close")
	}

	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	pin := uint8(*cfg.Pin)

	if cfg.Type == "servo" {
		hw.PinMode(pin, govattu.ALT5) // PWM0
		hw.PwmSetMode(true, true, false, false)
		hw.PwmSetClock(19)
		hw.Pwm0SetRange(20000)
		return NewServo(func(v uint32) { hw.Pwm0Set(v) }, hw.Close, cfg.ServoOpen, cfg.ServoClose), nil
	}

	hw.PinMode(pin, govattu.ALToutput)
	drive := func(high bool) {
		if high {
			hw.PinSet(pin)
		} else {
			hw.PinClear(pin)
		}
	}
	activeHigh := !cfg.ActiveLow && cfg.Type != "gpio_low"
	return NewRelay(drive, hw.Close, activeHigh), nil
}
