package door

import "log"

// Relay implements Strike with a relay or MOSFET on a single output.
type Relay struct {
	drive      func(high bool)
	close      func() error
	activeHigh bool
	unlocked   bool
}

// NewRelay creates a relay strike and locks it. drive sets the output level;
// close releases the output and may be nil.
func NewRelay(drive func(high bool), close func() error, activeHigh bool) *Relay {
	r := &Relay{drive: drive, close: close, activeHigh: activeHigh, unlocked: true}
	r.Lock()
	return r
}

// Unlock implements Strike.Unlock.
func (r *Relay) Unlock() error {
	if r.unlocked {
		return nil
	}
	r.drive(r.activeHigh)
	r.unlocked = true
	log.Printf("Strike released")
	return nil
}

// Lock implements Strike.Lock.
func (r *Relay) Lock() error {
	if !r.unlocked {
		return nil
	}
	r.drive(!r.activeHigh)
	r.unlocked = false
	return nil
}

// Release implements Strike.Release.
func (r *Relay) Release() error {
	r.Lock()
	if r.close == nil {
		return nil
	}
	return r.close()
}
