//go:build screen

package video

import (
	"encoding/binary"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/d21d3q/framebuffer"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const fontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return true
}

// Display renders reader status on a 16 bpp framebuffer.
type Display struct {
	dc              *gg.Context
	pixBuffer       []byte
	backBuffer      []byte
	rgbaImage       *image.RGBA
	width           int
	height          int
	lineLengthBytes int
	initialized     bool
}

// New opens /dev/fb0.
func New() (*Display, error) {
	v := &Display{}
	if err := v.init(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Display) init() error {
	fbLowLevel, err := framebuffer.OpenFrameBuffer("/dev/fb0", os.O_RDWR)
	if err != nil {
		return fmt.Errorf("open framebuffer: %w", err)
	}

	varInfo, err := fbLowLevel.VarScreenInfo()
	if err != nil {
		return fmt.Errorf("get variable screen info: %w", err)
	}
	fixedInfo, err := fbLowLevel.FixScreenInfo()
	if err != nil {
		return fmt.Errorf("get fixed screen info: %w", err)
	}

	v.pixBuffer, err = fbLowLevel.Pixels()
	if err != nil {
		return fmt.Errorf("get pixel data: %w", err)
	}

	v.width = int(varInfo.XRes)
	v.height = int(varInfo.YRes)
	v.lineLengthBytes = int(fixedInfo.LineLength)
	v.backBuffer = make([]byte, v.height*v.lineLengthBytes)

	log.Printf("Video: framebuffer %dx%d, %d bpp, stride %d bytes",
		v.width, v.height, varInfo.BitsPerPixel, v.lineLengthBytes)

	v.rgbaImage = image.NewRGBA(image.Rect(0, 0, v.width, v.height))
	v.dc = gg.NewContextForRGBA(v.rgbaImage)
	v.initialized = true

	v.clear()
	return nil
}

func (v *Display) clear() {
	for i := range v.pixBuffer {
		v.pixBuffer[i] = 0
	}
}

// update converts the RGBA canvas to RGB565 and copies it to the framebuffer.
func (v *Display) update() {
	if !v.initialized {
		return
	}
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			r, g, b, _ := v.rgbaImage.At(x, y).RGBA()
			r5 := uint16(r >> (16 - 5))
			g6 := uint16(g >> (16 - 6))
			b5 := uint16(b >> (16 - 5))
			pixel16 := (r5 << 11) | (g6 << 5) | b5
			fbIdx := (y * v.lineLengthBytes) + (x * 2)
			if fbIdx+1 < len(v.backBuffer) {
				binary.LittleEndian.PutUint16(v.backBuffer[fbIdx:], pixel16)
			}
		}
	}
	copy(v.pixBuffer, v.backBuffer)
}

func (v *Display) setFontSize(size int) {
	if err := v.dc.LoadFontFace(fontPath, float64(size)); err != nil {
		// Fixed size, but always available
		v.dc.SetFontFace(basicfont.Face7x13)
	}
}

func (v *Display) drawCentered(text string, y float64, r, g, b float64) {
	v.dc.SetRGB(r, g, b)
	v.dc.DrawStringAnchored(text, float64(v.width/2), y, 0.5, 0.5)
}

func (v *Display) fill(r, g, b float64) {
	v.dc.SetRGB(r, g, b)
	v.dc.DrawRectangle(0, 0, float64(v.width), float64(v.height))
	v.dc.Fill()
}

// screen paints a full screen message with an optional second line.
func (v *Display) screen(bg [3]float64, title, detail string) {
	if !v.initialized {
		return
	}
	v.fill(bg[0], bg[1], bg[2])

	y := float64(v.height / 2)
	if detail != "" {
		y -= 35
	}
	v.setFontSize(64)
	v.drawCentered(title, y, 1, 1, 1)

	if detail != "" {
		v.setFontSize(40)
		v.drawCentered(detail, y+70, 1, 1, 1)
	}
	v.update()
}

// Idle shows the ready screen.
func (v *Display) Idle() {
	v.screen([3]float64{0, 0, 0.3}, "Present badge", "")
}

// Waiting shows that a badge was read and the host is deciding.
func (v *Display) Waiting(uid string) {
	v.screen([3]float64{0.7, 0.7, 0}, "Checking...", uid)
}

// Success shows a positive outcome.
func (v *Display) Success(title, detail string) {
	v.screen([3]float64{0, 0.7, 0}, title, detail)
}

// Error shows a negative outcome.
func (v *Display) Error(title, detail string) {
	v.screen([3]float64{0.7, 0, 0}, title, detail)
}

// ConnectionLost shows that the host link failed.
func (v *Display) ConnectionLost() {
	v.screen([3]float64{0.5, 0.3, 0}, "Connection Lost", "")
}

// Shutdown blanks the screen.
func (v *Display) Shutdown() {
	if !v.initialized {
		return
	}
	v.clear()
}

// Release blanks the screen and stops drawing.
func (v *Display) Release() error {
	v.clear()
	v.initialized = false
	return nil
}
