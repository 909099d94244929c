package indicator

import "badgectl/video"

// Indicator is the interface for status indicator implementations (LEDs, neopixels, etc).
type Indicator interface {
	// Idle sets the indicator to idle/ready state.
	Idle()

	// Waiting shows that a badge was read and the host is being asked.
	// info may be nil.
	Waiting(info *Status)

	// Success lights the success indicator.
	// info may be nil.
	Success(info *Status)

	// Error lights the error indicator.
	// info may be nil.
	Error(info *Status)

	// ConnectionLost sets the indicator to connection lost state.
	ConnectionLost()

	// Shutdown sets the indicator to shutdown state.
	Shutdown()

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for indicator implementations.
type Config struct {
	// GPIO LED pins (nil = not configured)
	GreenPin  *uint8 `yaml:"green_pin"`
	YellowPin *uint8 `yaml:"yellow_pin"`
	RedPin    *uint8 `yaml:"red_pin"`

	// Neopixel pipe path (empty = not configured)
	NeopixelPipe string `yaml:"neopixel_pipe"`

	// Video framebuffer display (true = enabled)
	VideoEnabled bool `yaml:"video_enabled"`
}

// New creates an Indicator based on the provided configuration.
// Returns a Multi indicator if more than one output is configured.
func New(cfg Config) (Indicator, error) {
	var indicators []Indicator

	// Add GPIO indicator if any pins configured
	if cfg.GreenPin != nil || cfg.YellowPin != nil || cfg.RedPin != nil {
		gpio, err := NewGPIO(cfg.GreenPin, cfg.YellowPin, cfg.RedPin)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, gpio)
	}

	// Add Neopixel indicator if pipe configured
	if cfg.NeopixelPipe != "" {
		neo, err := NewNeopixel(cfg.NeopixelPipe)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, neo)
	}

	// Add Video indicator if enabled
	if cfg.VideoEnabled {
		if !video.ScreenSupported() {
			return nil, video.ErrScreenNotCompiled
		}
		vid, err := NewVideo()
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, vid)
	}

	return Combine(indicators...), nil
}

// Combine returns a single Indicator driving all of the given ones.
func Combine(indicators ...Indicator) Indicator {
	switch len(indicators) {
	case 0:
		return &Noop{}
	case 1:
		return indicators[0]
	default:
		return &Multi{indicators: indicators}
	}
}
