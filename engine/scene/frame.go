package scene

// CanvasWidth and CanvasHeight are the virtual canvas every scene draws on. The quad
// shader maps it onto the swapchain whatever the window size.
const (
	CanvasWidth  = 1280
	CanvasHeight = 720
)

// Color is linear RGBA.
type Color [4]float32

// RGBA builds a Color from 8-bit channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float32) Color {
	c[3] *= a
	return c
}

// Quad is one axis-aligned rectangle in canvas units, origin at the top left.
type Quad struct {
	X, Y, W, H float32
	Color      Color
}

// Frame collects what a scene wants drawn this frame, back to front.
type Frame struct {
	Clear Color
	Quads []Quad
}

// Rect appends a rectangle.
func (f *Frame) Rect(x, y, w, h float32, c Color) {
	f.Quads = append(f.Quads, Quad{X: x, Y: y, W: w, H: h, Color: c})
}

// Fade appends a full-canvas rectangle of c at alpha a; a <= 0 draws nothing.
func (f *Frame) Fade(c Color, a float32) {
	if a <= 0 {
		return
	}
	f.Rect(0, 0, CanvasWidth, CanvasHeight, c.WithAlpha(a))
}

// Reset empties the frame, keeping its capacity.
func (f *Frame) Reset(clear Color) {
	f.Clear = clear
	f.Quads = f.Quads[:0]
}
