package indicator

import "errors"

// Multi drives several indicators in the order given.
type Multi struct {
	indicators []Indicator
}

func (m *Multi) each(fn func(Indicator)) {
	for _, ind := range m.indicators {
		fn(ind)
	}
}

func (m *Multi) Idle()                { m.each(func(i Indicator) { i.Idle() }) }
func (m *Multi) Waiting(info *Status) { m.each(func(i Indicator) { i.Waiting(info) }) }
func (m *Multi) Success(info *Status) { m.each(func(i Indicator) { i.Success(info) }) }
func (m *Multi) Error(info *Status)   { m.each(func(i Indicator) { i.Error(info) }) }
func (m *Multi) ConnectionLost()      { m.each(func(i Indicator) { i.ConnectionLost() }) }
func (m *Multi) Shutdown()            { m.each(func(i Indicator) { i.Shutdown() }) }

// Release releases every indicator and returns all failures.
func (m *Multi) Release() error {
	var errs []error
	m.each(func(i Indicator) {
		if err := i.Release(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
