// Package session runs the read, report, await, render cycle between the
// credential reader and the host decision process.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"badgectl/credential"
	"badgectl/protocol"
)

// State is a step of the per-scan state machine.
type State int

const (
	Idle State = iota
	Announce
	AwaitResponse
	Render
	CoolDown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Announce:
		return "announce"
	case AwaitResponse:
		return "await_response"
	case Render:
		return "render"
	case CoolDown:
		return "cool_down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the state of one scan cycle. It exists from the moment a
// credential is read until its cool-down is over.
type Session struct {
	ID         uuid.UUID
	Credential credential.UID
	Start      time.Time

	ResponseReceived bool
	Response         string        // the trimmed response line, if any
	Code             protocol.Code // classification of Response, or TimedOut
	Waited           time.Duration // time spent in AwaitResponse

	// LinkErr is the host link error that ended the session, if any.
	LinkErr error
}

func newSession(uid credential.UID, now time.Time) *Session {
	return &Session{
		ID:         uuid.New(),
		Credential: uid,
		Start:      now,
		Code:       protocol.TimedOut,
	}
}

// Config holds the timing of the state machine. Zero values take defaults.
type Config struct {
	ResponseTimeoutMS int    `yaml:"response_timeout_ms"` // default 3000, inclusive
	PollIntervalMS    int    `yaml:"poll_interval_ms"`    // default 10
	CoolDownMS        int    `yaml:"cool_down_ms"`        // default 2000
	IdlePollMS        int    `yaml:"idle_poll_ms"`        // default 20
	ProbeReply        string `yaml:"probe_reply"`         // default protocol.ProbeReply
}

func (c Config) withDefaults() Config {
	if c.ResponseTimeoutMS <= 0 {
		c.ResponseTimeoutMS = 3000
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = 10
	}
	if c.CoolDownMS <= 0 {
		c.CoolDownMS = 2000
	}
	if c.IdlePollMS <= 0 {
		c.IdlePollMS = 20
	}
	if c.ProbeReply == "" {
		c.ProbeReply = protocol.ProbeReply
	}
	return c
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
