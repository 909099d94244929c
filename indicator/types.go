package indicator

// Status describes what an indicator is showing, for outputs that can display text.
type Status struct {
	Title  string // e.g. "Entry recorded"
	Detail string // e.g. the badge identifier
}

// state is what a lamp-style output shows; text is ignored.
type state int

const (
	stateIdle state = iota
	stateWaiting
	stateSuccess
	stateError
	stateLost
	stateShutdown
)
