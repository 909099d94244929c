package indicator

import (
	"badgectl/video"
)

// VideoIndicator wraps video.Display to implement Indicator.
type VideoIndicator struct {
	d *video.Display
}

// NewVideo creates a new video-based indicator. It fails with
// video.ErrScreenNotCompiled unless built with -tags=screen.
func NewVideo() (*VideoIndicator, error) {
	d, err := video.New()
	if err != nil {
		return nil, err
	}
	return &VideoIndicator{d: d}, nil
}

func split(info *Status) (title, detail string) {
	if info != nil {
		title, detail = info.Title, info.Detail
	}
	return title, detail
}

// Idle implements Indicator.Idle.
func (vi *VideoIndicator) Idle() {
	vi.d.Idle()
}

// Waiting implements Indicator.Waiting.
func (vi *VideoIndicator) Waiting(info *Status) {
	_, detail := split(info)
	vi.d.Waiting(detail)
}

// Success implements Indicator.Success.
func (vi *VideoIndicator) Success(info *Status) {
	vi.d.Success(split(info))
}

// Error implements Indicator.Error.
func (vi *VideoIndicator) Error(info *Status) {
	vi.d.Error(split(info))
}

// ConnectionLost implements Indicator.ConnectionLost.
func (vi *VideoIndicator) ConnectionLost() {
	vi.d.ConnectionLost()
}

// Shutdown implements Indicator.Shutdown.
func (vi *VideoIndicator) Shutdown() {
	vi.d.Shutdown()
}

// Release implements Indicator.Release.
func (vi *VideoIndicator) Release() error {
	return vi.d.Release()
}
