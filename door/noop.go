package door

// Noop implements Strike for readers with no lock attached.
type Noop struct{}

func (n *Noop) Unlock() error  { return nil }
func (n *Noop) Lock() error    { return nil }
func (n *Noop) Release() error { return nil }
