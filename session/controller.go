package session

import (
	"context"
	"log"
	"strings"
	"sync"

	"badgectl/clock"
	"badgectl/credential"
	"badgectl/feedback"
	"badgectl/protocol"
	"badgectl/reader"
	"badgectl/transport"
)

// Renderer plays local feedback. feedback.Renderer implements it.
type Renderer interface {
	Waiting(uid string)
	Render(ctx context.Context, fb feedback.Feedback, detail string) error
	Idle()
	ConnectionLost()
}

// Hooks are optional callbacks run on the controller's goroutine.
type Hooks struct {
	OnState    func(State, *Session)
	OnComplete func(*Session)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithTable replaces the default response token table.
func WithTable(t *protocol.Table) Option {
	return func(ctl *Controller) { ctl.table = t }
}

// WithHooks installs callbacks.
func WithHooks(h Hooks) Option {
	return func(ctl *Controller) { ctl.hooks = h }
}

// Controller owns the scan state machine. Exactly one goroutine may call
// Step or Run; State may be called from anywhere.
type Controller struct {
	cfg      Config
	scanner  reader.Scanner
	link     transport.Line
	renderer Renderer
	clock    clock.Clock
	table    *protocol.Table
	hooks    Hooks

	mu      sync.Mutex
	state   State
	current *Session
}

// New creates a Controller.
func New(cfg Config, scanner reader.Scanner, link transport.Line, renderer Renderer, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg.withDefaults(),
		scanner:  scanner,
		link:     link,
		renderer: renderer,
		clock:    clock.Real{},
		table:    protocol.DefaultTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot is a point in time view of the controller.
type Snapshot struct {
	State      State
	SessionID  string
	Credential string
}

// State returns what the controller is doing right now.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{State: c.state}
	if c.current != nil {
		snap.SessionID = c.current.ID.String()
		snap.Credential = c.current.Credential.String()
	}
	return snap
}

func (c *Controller) enter(state State, s *Session) {
	c.mu.Lock()
	c.state = state
	c.current = s
	c.mu.Unlock()

	if c.hooks.OnState != nil {
		c.hooks.OnState(state, s)
	}
}

// Run polls for credentials and handles them one at a time until ctx is
// done. It only returns ctx's error.
func (c *Controller) Run(ctx context.Context) error {
	log.Printf("Scanning for credentials")
	c.renderer.Idle()

	idle := ms(c.cfg.IdlePollMS)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s, err := c.Step(ctx)
		if err != nil {
			return err
		}
		if s != nil {
			continue
		}
		if err := c.clock.Sleep(ctx, idle); err != nil {
			return err
		}
	}
}

// Step polls the scanner once. If a credential is present it runs the whole
// session, cool-down included, and returns it. Errors are only returned when
// ctx is done.
func (c *Controller) Step(ctx context.Context) (*Session, error) {
	uid, err := c.scanner.Poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("Read credential: %v", err)
		return nil, nil
	}
	if uid == nil {
		return nil, nil
	}
	return c.handle(ctx, uid)
}

func (c *Controller) handle(ctx context.Context, uid credential.UID) (*Session, error) {
	s := newSession(uid, c.clock.Now())
	id := uid.String()

	c.enter(Announce, s)
	log.Printf("Credential read: %s", id)
	if stale := c.link.Discard(); len(stale) > 0 {
		log.Printf("Dropped %d stale host line(s): %q", len(stale), stale)
	}
	sent := true
	if err := c.link.SendLine(id); err != nil {
		log.Printf("Send credential: %v", err)
		s.LinkErr = err
		sent = false
	}
	if err := c.renderer.Render(ctx, feedback.ReadAck, id); err != nil {
		return s, err
	}

	c.enter(AwaitResponse, s)
	if sent {
		c.renderer.Waiting(id)
		if err := c.await(ctx, s); err != nil {
			return s, err
		}
	}

	c.enter(Render, s)
	if fb, ok := feedback.For(s.Code); ok {
		if err := c.renderer.Render(ctx, fb, id); err != nil {
			return s, err
		}
	} else {
		c.renderer.Idle()
	}
	if s.LinkErr != nil {
		c.renderer.ConnectionLost()
	}

	c.enter(CoolDown, s)
	if err := c.clock.Sleep(ctx, ms(c.cfg.CoolDownMS)); err != nil {
		return s, err
	}
	if err := c.scanner.Halt(); err != nil {
		log.Printf("Halt credential: %v", err)
	}

	c.enter(Idle, nil)
	if c.hooks.OnComplete != nil {
		c.hooks.OnComplete(s)
	}
	return s, nil
}

// await waits for the first response line and classifies it. A link error
// counts as no response.
func (c *Controller) await(ctx context.Context, s *Session) error {
	start := c.clock.Now()
	var line string

	got, err := clock.PollUntil(ctx, c.clock, ms(c.cfg.ResponseTimeoutMS), ms(c.cfg.PollIntervalMS), func() (bool, error) {
		l, ok, err := c.link.TryReadLine()
		if err != nil {
			return false, err
		}
		line = l
		return ok, nil
	})
	s.Waited = c.clock.Now().Sub(start)

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("Read response: %v", err)
		s.LinkErr = err
		s.Code = protocol.TimedOut
		return nil
	}
	if !got {
		log.Printf("No response for %s within %dms", s.Credential, c.cfg.ResponseTimeoutMS)
		s.Code = protocol.TimedOut
		return nil
	}

	s.ResponseReceived = true
	s.Response = strings.TrimSpace(line)
	s.Code = c.table.Classify(line)

	switch s.Code {
	case protocol.ConnectivityTest:
		log.Printf("Connectivity test from host")
		if err := c.link.SendLine(c.cfg.ProbeReply); err != nil {
			log.Printf("Send probe reply: %v", err)
			s.LinkErr = err
		}
	case protocol.Unrecognized:
		log.Printf("Unrecognized response %q", s.Response)
	default:
		log.Printf("Response for %s: %s", s.Credential, s.Code)
	}
	return nil
}
