//go:build !screen

package video

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return false
}

// Display is a stub when screen support is not compiled in.
type Display struct{}

// New returns an error when screen support is not compiled in.
func New() (*Display, error) {
	return nil, ErrScreenNotCompiled
}

func (v *Display) Idle()                        {}
func (v *Display) Waiting(uid string)           {}
func (v *Display) Success(title, detail string) {}
func (v *Display) Error(title, detail string)   {}
func (v *Display) ConnectionLost()              {}
func (v *Display) Shutdown()                    {}
func (v *Display) Release() error               { return nil }
