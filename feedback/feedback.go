// Package feedback maps host responses to light and sound patterns and plays
// them on the reader's indicator, buzzer and strike.
package feedback

import (
	"fmt"
	"time"

	"badgectl/protocol"
)

// Kind is the family a feedback pattern belongs to.
type Kind int

const (
	Ack        Kind = iota // badge read, asking the host
	Success                // registration accepted
	Error                  // registration refused
	ErrorBurst             // host side failure
	Timeout                // host did not answer
)

func (k Kind) String() string {
	switch k {
	case Ack:
		return "ack"
	case Success:
		return "success"
	case Error:
		return "error"
	case ErrorBurst:
		return "error_burst"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// LED selects which indicator lights up.
type LED int

const (
	LEDNone LED = iota
	LEDSuccess
	LEDError
)

// Feedback is one light/sound pattern. A single repetition sounds the tone
// for Tone while the LED is lit, keeps the LED lit until Hold has elapsed
// from the start, then stays dark for Gap.
type Feedback struct {
	Kind   Kind
	ToneHz int
	Tone   time.Duration
	Hold   time.Duration
	Gap    time.Duration
	Repeat int // 0 means once
	LED    LED
	Unlock bool   // release the strike for the duration
	Title  string // shown on displays
}

// Duration returns how long the pattern blocks the caller.
func (f Feedback) Duration() time.Duration {
	hold := f.Hold
	if f.Tone > hold {
		hold = f.Tone
	}
	return time.Duration(f.repeats()) * (hold + f.Gap)
}

func (f Feedback) repeats() int {
	if f.Repeat < 1 {
		return 1
	}
	return f.Repeat
}

// ReadAck is played right after a badge is read and reported. It says
// "read", not "granted".
var ReadAck = Feedback{
	Kind:   Ack,
	ToneHz: 800,
	Tone:   50 * time.Millisecond,
	Hold:   50 * time.Millisecond,
	LED:    LEDSuccess,
}

// NoResponse is played when the host does not answer in time.
var NoResponse = Feedback{
	Kind:   Timeout,
	ToneHz: 200,
	Tone:   300 * time.Millisecond,
	Hold:   500 * time.Millisecond,
	LED:    LEDError,
	Title:  "No response",
}

func success(hz int, title string) Feedback {
	return Feedback{
		Kind:   Success,
		ToneHz: hz,
		Tone:   200 * time.Millisecond,
		Hold:   500 * time.Millisecond,
		LED:    LEDSuccess,
		Unlock: true,
		Title:  title,
	}
}

func refused(title string) Feedback {
	return Feedback{
		Kind:   Error,
		ToneHz: 500,
		Tone:   500 * time.Millisecond,
		Hold:   1000 * time.Millisecond,
		LED:    LEDError,
		Title:  title,
	}
}

func burst(title string) Feedback {
	return Feedback{
		Kind:   ErrorBurst,
		ToneHz: 300,
		Tone:   100 * time.Millisecond,
		Hold:   150 * time.Millisecond,
		Gap:    100 * time.Millisecond,
		Repeat: 3,
		LED:    LEDError,
		Title:  title,
	}
}

var table = map[protocol.Code]Feedback{
	protocol.EntryOk:      success(1000, "Entry recorded"),
	protocol.ExitOk:       success(1500, "Exit recorded"),
	protocol.Unregistered: refused("Badge not registered"),
	protocol.NoOwner:      refused("Badge has no owner"),
	protocol.Inactive:     refused("Badge inactive"),
	protocol.TimeError:    burst("Clock error"),
	protocol.ComputeError: burst("Processing error"),
	protocol.GeneralError: burst("System error"),
	protocol.TimedOut:     NoResponse,
}

// For returns the pattern for a classified response. Connectivity tests and
// unrecognized lines have none.
func For(code protocol.Code) (Feedback, bool) {
	fb, ok := table[code]
	return fb, ok
}

// SelfTest is played once at startup so an installer can check every output.
var SelfTest = []Feedback{
	{Kind: Success, ToneHz: 1000, Tone: 100 * time.Millisecond, Hold: 200 * time.Millisecond, LED: LEDSuccess, Title: "Self test"},
	{Kind: Error, ToneHz: 1500, Tone: 100 * time.Millisecond, Hold: 200 * time.Millisecond, LED: LEDError, Title: "Self test"},
}
