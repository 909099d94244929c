package indicator

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Commands for the external neopixel daemon, read from a named pipe:
// "@<mode> !<period us> <rgb hex>".
var neoCommands = map[state]string{
	stateIdle:     "@3 !150000 400000",
	stateWaiting:  "@3 !30000 202000",
	stateSuccess:  "@1 !50000 8000",
	stateError:    "@2 !10000 ff",
	stateLost:     "@2 !150000 001010",
	stateShutdown: "@0 010101",
}

// Neopixel implements Indicator by writing commands to a neopixel daemon.
// Repeated states are written once.
type Neopixel struct {
	pipe    io.WriteCloser
	last    string
	errSeen bool
}

// NewNeopixel opens the daemon's pipe. It is opened read-write so the open
// does not block when the daemon is not running yet.
func NewNeopixel(pipePath string) (*Neopixel, error) {
	f, err := os.OpenFile(pipePath, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open neopixel pipe %s: %w", pipePath, err)
	}
	return &Neopixel{pipe: f}, nil
}

func (n *Neopixel) show(s state) {
	cmd := neoCommands[s]
	if n.pipe == nil || cmd == n.last {
		return
	}
	if _, err := io.WriteString(n.pipe, cmd); err != nil {
		if !n.errSeen {
			log.Printf("Neopixel write: %v", err)
			n.errSeen = true
		}
		return
	}
	n.last = cmd
	n.errSeen = false
}

func (n *Neopixel) Idle()                { n.show(stateIdle) }
func (n *Neopixel) Waiting(info *Status) { n.show(stateWaiting) }
func (n *Neopixel) Success(info *Status) { n.show(stateSuccess) }
func (n *Neopixel) Error(info *Status)   { n.show(stateError) }
func (n *Neopixel) ConnectionLost()      { n.show(stateLost) }
func (n *Neopixel) Shutdown()            { n.show(stateShutdown) }

// Release closes the pipe.
func (n *Neopixel) Release() error {
	if n.pipe == nil {
		return nil
	}
	return n.pipe.Close()
}
