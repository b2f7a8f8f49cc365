package scenes

import (
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/shader"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/gfx"
	"go.uber.org/zap"
)

// Palette.
var (
	colorBackground = scene.RGBA(18, 20, 32, 255)
	colorBlack      = scene.RGBA(0, 0, 0, 255)
	colorWhite      = scene.RGBA(240, 240, 245, 255)
	colorDim        = scene.RGBA(120, 124, 140, 255)
	colorAccent     = scene.RGBA(90, 180, 255, 255)
	colorWarn       = scene.RGBA(255, 96, 96, 255)
	colorStar       = scene.RGBA(255, 214, 64, 255)
	colorBlank      = scene.RGBA(34, 38, 58, 255)
	colorEdge       = scene.RGBA(70, 76, 104, 255)
	colorTrail      = scene.RGBA(255, 230, 120, 255)
	colorBoss       = scene.RGBA(200, 60, 90, 255)
	colorBullet     = scene.RGBA(255, 120, 160, 255)
)

// actorColors tint owned ground per actor.
var actorColors = [...]scene.Color{
	scene.RGBA(96, 150, 255, 255), // Aris
	scene.RGBA(255, 150, 96, 255), // Momoi
	scene.RGBA(120, 220, 120, 255), // Midori
	scene.RGBA(200, 130, 255, 255), // Yuzu
}

// Screen turns the frames scenes draw into render submissions. The painter is
// created on first use, from the logic goroutine, once a render client exists.
type Screen struct {
	src     shader.Source
	painter *gfx.Painter
	frame   scene.Frame
	failed  bool
}

// headless stands in when no Screen is registered; it draws into a frame nobody submits.
var headless = &Screen{failed: true}

// NewScreen creates a screen that draws with the quad shader src.
func NewScreen(src shader.Source) *Screen {
	return &Screen{src: src}
}

// Begin resets the frame to clear and returns it for drawing.
func (s *Screen) Begin(clear scene.Color) *scene.Frame {
	s.frame.Reset(clear)
	return &s.frame
}

// Frame returns the frame drawn since the last Begin.
func (s *Screen) Frame() *scene.Frame { return &s.frame }

// Submit sends the current frame. Without a render client it does nothing.
//
// Parameters:
//   - c: the logic context
//
// Returns:
//   - error: an error if the painter cannot be created or the batch not sent
func (s *Screen) Submit(c *scene.Context) error {
	if c.Render == nil || s.failed {
		return nil
	}
	if s.painter == nil {
		p, err := gfx.NewPainter(c.Ctx, c.Render, s.src, gfx.DefaultCapacity, c.Log)
		if err != nil {
			s.failed = true
			return err
		}
		s.painter = p
		c.Log.Debug("painter ready", zap.Int("capacity", p.Capacity()))
	}
	return s.painter.Submit(c.Render, &s.frame)
}

// Close releases the painter's GPU objects.
func (s *Screen) Close() {
	if s.painter != nil {
		s.painter.Close()
		s.painter = nil
	}
}
