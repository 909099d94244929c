package indicator

// Noop implements Indicator for readers with no lights or display.
type Noop struct{}

func (n *Noop) Idle()                {}
func (n *Noop) Waiting(info *Status) {}
func (n *Noop) Success(info *Status) {}
func (n *Noop) Error(info *Status)   {}
func (n *Noop) ConnectionLost()      {}
func (n *Noop) Shutdown()            {}
func (n *Noop) Release() error       { return nil }
