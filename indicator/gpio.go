package indicator

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// lamp bits for the three discrete LEDs.
const (
	green uint8 = 1 << iota
	yellow
	red
)

var lampPatterns = map[state]uint8{
	stateIdle:     0,
	stateWaiting:  yellow,
	stateSuccess:  green,
	stateError:    red,
	stateLost:     yellow | red,
	stateShutdown: 0,
}

// GPIO implements Indicator using discrete LEDs. Unwired colours are skipped.
type GPIO struct {
	pins  [3]*uint8 // green, yellow, red
	write func(pin uint8, on bool)
	close func() error
}

// NewGPIO opens the GPIO block and drives the given pins as outputs.
func NewGPIO(greenPin, yellowPin, redPin *uint8) (*GPIO, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	for _, pin := range []*uint8{greenPin, yellowPin, redPin} {
		if pin != nil {
			hw.PinMode(*pin, govattu.ALToutput)
		}
	}
	write := func(pin uint8, on bool) {
		if on {
			hw.PinSet(pin)
		} else {
			hw.PinClear(pin)
		}
	}
	return newGPIO([3]*uint8{greenPin, yellowPin, redPin}, write, hw.Close), nil
}

func newGPIO(pins [3]*uint8, write func(pin uint8, on bool), close func() error) *GPIO {
	g := &GPIO{pins: pins, write: write, close: close}
	g.show(stateIdle)
	return g
}

func (g *GPIO) show(s state) {
	p := lampPatterns[s]
	for i, pin := range g.pins {
		if pin != nil {
			g.write(*pin, p&(1<<i) != 0)
		}
	}
}

func (g *GPIO) Idle()                { g.show(stateIdle) }
func (g *GPIO) Waiting(info *Status) { g.show(stateWaiting) }
func (g *GPIO) Success(info *Status) { g.show(stateSuccess) }
func (g *GPIO) Error(info *Status)   { g.show(stateError) }
func (g *GPIO) ConnectionLost()      { g.show(stateLost) }
func (g *GPIO) Shutdown()            { g.show(stateShutdown) }

// Release turns every LED off and closes the GPIO block.
func (g *GPIO) Release() error {
	g.show(stateShutdown)
	if g.close == nil {
		return nil
	}
	return g.close()
}
