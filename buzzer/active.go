package buzzer

import (
	"fmt"

	"github.com/warthog618/gpio"
)

// Active implements Buzzer for self-oscillating buzzers that sound at a fixed
// pitch whenever their pin is high. The requested frequency is ignored.
type Active struct {
	pin *gpio.Pin
}

// NewActive claims the GPIO memory map and drives pin low.
func NewActive(pin int) (*Active, error) {
	if err := gpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	p := gpio.NewPin(pin)
	p.Output()
	p.Low()
	return &Active{pin: p}, nil
}

// Start implements Buzzer.Start.
func (a *Active) Start(hz int) error {
	a.pin.High()
	return nil
}

// Stop implements Buzzer.Stop.
func (a *Active) Stop() error {
	a.pin.Low()
	return nil
}

// Release implements Buzzer.Release.
func (a *Active) Release() error {
	a.pin.Low()
	return gpio.Close()
}
