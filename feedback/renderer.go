package feedback

import (
	"context"
	"log"
	"time"

	"badgectl/buzzer"
	"badgectl/clock"
	"badgectl/door"
	"badgectl/indicator"
)

// Renderer plays feedback patterns. Every call blocks for the full duration
// of the pattern; patterns never overlap.
type Renderer struct {
	ind    indicator.Indicator
	bz     buzzer.Buzzer
	strike door.Strike
	clock  clock.Clock
}

// NewRenderer creates a Renderer. Nil outputs are replaced with no-ops.
func NewRenderer(ind indicator.Indicator, bz buzzer.Buzzer, strike door.Strike, clk clock.Clock) *Renderer {
	if ind == nil {
		ind = &indicator.Noop{}
	}
	if bz == nil {
		bz = &buzzer.Noop{}
	}
	if strike == nil {
		strike = &door.Noop{}
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Renderer{ind: ind, bz: bz, strike: strike, clock: clk}
}

// Waiting shows that uid was sent and an answer is awaited.
func (r *Renderer) Waiting(uid string) {
	r.ind.Waiting(&indicator.Status{Title: "Checking", Detail: uid})
}

// Idle returns the indicator to its ready state.
func (r *Renderer) Idle() {
	r.ind.Idle()
}

// ConnectionLost shows that the host link failed.
func (r *Renderer) ConnectionLost() {
	r.ind.ConnectionLost()
}

// Render plays fb, with detail shown on displays that support text. It only
// fails if ctx is cancelled; output errors are logged. The indicator is back
// to idle when Render returns.
func (r *Renderer) Render(ctx context.Context, fb Feedback, detail string) error {
	info := &indicator.Status{Title: fb.Title, Detail: detail}

	defer func() {
		if stopErr := r.bz.Stop(); stopErr != nil {
			log.Printf("Buzzer stop: %v", stopErr)
		}
		r.ind.Idle()
	}()

	if fb.Unlock {
		if err := r.strike.Unlock(); err != nil {
			log.Printf("Strike unlock: %v", err)
		}
		defer func() {
			if err := r.strike.Lock(); err != nil {
				log.Printf("Strike lock: %v", err)
			}
		}()
	}

	tone, hold := fb.Tone, fb.Hold
	if tone > hold {
		hold = tone
	}

	for i := 0; i < fb.repeats(); i++ {
		r.light(fb.LED, info)
		if tone > 0 && fb.ToneHz > 0 {
			if err := r.bz.Start(fb.ToneHz); err != nil {
				log.Printf("Buzzer %d Hz: %v", fb.ToneHz, err)
			}
			if err := r.sleep(ctx, tone); err != nil {
				return err
			}
			if err := r.bz.Stop(); err != nil {
				log.Printf("Buzzer stop: %v", err)
			}
		}
		if err := r.sleep(ctx, hold-tone); err != nil {
			return err
		}
		r.ind.Idle()

		if err := r.sleep(ctx, fb.Gap); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return r.clock.Sleep(ctx, d)
}

func (r *Renderer) light(led LED, info *indicator.Status) {
	switch led {
	case LEDSuccess:
		r.ind.Success(info)
	case LEDError:
		r.ind.Error(info)
	}
}
