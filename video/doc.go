// Package video draws full screen status messages on a Linux framebuffer.
// Drawing is only compiled in with -tags=screen; without it New fails and
// the reader runs on LEDs and sound alone.
package video

import "errors"

// ErrScreenNotCompiled is returned by New in builds without the screen tag.
var ErrScreenNotCompiled = errors.New("video: built without -tags=screen")
