package buzzer

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// The PWM peripheral runs from the 19.2 MHz oscillator; with a divisor of 16
// one range step is 1/1.2 MHz.
const (
	pwmClockDivisor = 16
	pwmClockHz      = 19200000 / pwmClockDivisor
)

// PWM implements Buzzer with the hardware PWM0 channel driving a passive piezo.
type PWM struct {
	hw  govattu.Vattu
	pin uint8
}

// NewPWM configures pin for PWM0 and leaves the buzzer silent.
func NewPWM(hw govattu.Vattu, pin uint8) (*PWM, error) {
	hw.PinMode(pin, govattu.ALT5) // ALT5 for PWM0
	hw.PwmSetMode(true, true, false, false)
	hw.PwmSetClock(pwmClockDivisor)

	p := &PWM{hw: hw, pin: pin}
	p.hw.Pwm0Set(0)
	return p, nil
}

// pwmRange returns the PWM range producing hz.
func pwmRange(hz int) (uint32, error) {
	if hz <= 0 || hz > pwmClockHz/2 {
		return 0, fmt.Errorf("tone %d Hz out of range", hz)
	}
	return uint32(pwmClockHz / hz), nil
}

// Start implements Buzzer.Start with a 50% duty square wave.
func (p *PWM) Start(hz int) error {
	rng, err := pwmRange(hz)
	if err != nil {
		return err
	}
	p.hw.Pwm0SetRange(rng)
	p.hw.Pwm0Set(rng / 2)
	return nil
}

// Stop implements Buzzer.Stop.
func (p *PWM) Stop() error {
	p.hw.Pwm0Set(0)
	return nil
}

// Release implements Buzzer.Release.
func (p *PWM) Release() error {
	p.hw.Pwm0Set(0)
	return p.hw.Close()
}
