package feedback

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"badgectl/clock"
	"badgectl/indicator"
	"badgectl/protocol"
)

// rig records every output call with the fake time it happened at.
type rig struct {
	clk    *clock.Fake
	start  time.Time
	events []string
}

func newRig() *rig {
	c := clock.NewFake(time.Unix(1000, 0))
	return &rig{clk: c, start: c.Now()}
}

func (r *rig) log(format string, args ...any) {
	at := r.clk.Now().Sub(r.start).Milliseconds()
	r.events = append(r.events, fmt.Sprintf("%d:%s", at, fmt.Sprintf(format, args...)))
}

func (r *rig) Idle()                          { r.log("idle") }
func (r *rig) Waiting(info *indicator.Status) { r.log("waiting %s", info.Detail) }
func (r *rig) Success(info *indicator.Status) { r.log("green") }
func (r *rig) Error(info *indicator.Status)   { r.log("red") }
func (r *rig) ConnectionLost()                { r.log("lost") }
func (r *rig) Shutdown()                      {}
func (r *rig) Release() error                 { return nil }

type rigBuzzer struct{ *rig }

func (b rigBuzzer) Start(hz int) error { b.log("tone %d", hz); return nil }
func (b rigBuzzer) Stop() error        { b.log("quiet"); return nil }
func (b rigBuzzer) Release() error     { return nil }

type rigStrike struct{ *rig }

func (s rigStrike) Unlock() error  { s.log("unlock"); return nil }
func (s rigStrike) Lock() error    { s.log("lock"); return nil }
func (s rigStrike) Release() error { return nil }

func (r *rig) renderer() *Renderer {
	return NewRenderer(r, rigBuzzer{r}, rigStrike{r}, r.clk)
}

func TestTable(t *testing.T) {
	tests := []struct {
		code   protocol.Code
		kind   Kind
		hz     int
		hold   time.Duration
		repeat int
		led    LED
		unlock bool
	}{
		{protocol.EntryOk, Success, 1000, 500 * time.Millisecond, 1, LEDSuccess, true},
		{protocol.ExitOk, Success, 1500, 500 * time.Millisecond, 1, LEDSuccess, true},
		{protocol.Unregistered, Error, 500, 1000 * time.Millisecond, 1, LEDError, false},
		{protocol.NoOwner, Error, 500, 1000 * time.Millisecond, 1, LEDError, false},
		{protocol.Inactive, Error, 500, 1000 * time.Millisecond, 1, LEDError, false},
		{protocol.TimeError, ErrorBurst, 300, 150 * time.Millisecond, 3, LEDError, false},
		{protocol.ComputeError, ErrorBurst, 300, 150 * time.Millisecond, 3, LEDError, false},
		{protocol.GeneralError, ErrorBurst, 300, 150 * time.Millisecond, 3, LEDError, false},
		{protocol.TimedOut, Timeout, 200, 500 * time.Millisecond, 1, LEDError, false},
	}

	for _, tt := range tests {
		fb, ok := For(tt.code)
		if !ok {
			t.Errorf("For(%v) has no feedback", tt.code)
			continue
		}
		if fb.Kind != tt.kind || fb.ToneHz != tt.hz || fb.Hold != tt.hold ||
			fb.repeats() != tt.repeat || fb.LED != tt.led || fb.Unlock != tt.unlock {
			t.Errorf("For(%v) = %+v", tt.code, fb)
		}
		if fb.Title == "" {
			t.Errorf("For(%v) has no title", tt.code)
		}
	}

	for _, code := range []protocol.Code{protocol.ConnectivityTest, protocol.Unrecognized} {
		if fb, ok := For(code); ok {
			t.Errorf("For(%v) = %+v, want no feedback", code, fb)
		}
	}
}

func TestDuration(t *testing.T) {
	entry, _ := For(protocol.EntryOk)
	if got := entry.Duration(); got != 500*time.Millisecond {
		t.Errorf("entry duration %v", got)
	}
	b, _ := For(protocol.GeneralError)
	if got := b.Duration(); got != 750*time.Millisecond {
		t.Errorf("burst duration %v", got)
	}
	if got := ReadAck.Duration(); got != 50*time.Millisecond {
		t.Errorf("ack duration %v", got)
	}
}

func TestRenderEntry(t *testing.T) {
	r := newRig()
	fb, _ := For(protocol.EntryOk)

	if err := r.renderer().Render(context.Background(), fb, "04 A3 FF 1B"); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := "0:unlock 0:green 0:tone 1000 200:quiet 500:idle 500:lock 500:quiet 500:idle"
	if got := strings.Join(r.events, " "); got != want {
		t.Errorf("events\n got %s\nwant %s", got, want)
	}
}

func TestRenderBurst(t *testing.T) {
	r := newRig()
	fb, _ := For(protocol.ComputeError)

	if err := r.renderer().Render(context.Background(), fb, ""); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := "0:red 0:tone 300 100:quiet 150:idle " +
		"250:red 250:tone 300 350:quiet 400:idle " +
		"500:red 500:tone 300 600:quiet 650:idle " +
		"750:quiet 750:idle"
	if got := strings.Join(r.events, " "); got != want {
		t.Errorf("events\n got %s\nwant %s", got, want)
	}
}

func TestRenderAckAndTimeout(t *testing.T) {
	r := newRig()
	rend := r.renderer()

	if err := rend.Render(context.Background(), ReadAck, ""); err != nil {
		t.Fatalf("Render ack: %v", err)
	}
	if err := rend.Render(context.Background(), NoResponse, ""); err != nil {
		t.Fatalf("Render timeout: %v", err)
	}

	want := "0:green 0:tone 800 50:quiet 50:idle 50:quiet 50:idle " +
		"50:red 50:tone 200 350:quiet 550:idle 550:quiet 550:idle"
	if got := strings.Join(r.events, " "); got != want {
		t.Errorf("events\n got %s\nwant %s", got, want)
	}
}

func TestRenderCancelled(t *testing.T) {
	r := newRig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb, _ := For(protocol.ExitOk)
	if err := r.renderer().Render(ctx, fb, ""); err == nil {
		t.Fatal("cancelled render reported success")
	}

	// Outputs are left quiet, idle and locked.
	n := len(r.events)
	if n < 3 {
		t.Fatalf("events %v", r.events)
	}
	if got := strings.Join(r.events[n-3:], " "); got != "0:lock 0:quiet 0:idle" {
		t.Errorf("final events %q", got)
	}
}

func TestSelfTestSequence(t *testing.T) {
	r := newRig()
	rend := r.renderer()
	for _, fb := range SelfTest {
		if err := rend.Render(context.Background(), fb, ""); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if got := r.clk.Now().Sub(r.start); got != 400*time.Millisecond {
		t.Errorf("self test took %v, want 400ms", got)
	}
}
