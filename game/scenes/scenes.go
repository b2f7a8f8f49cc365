// Package scenes implements the game's scene graph: entry, first-time setup, intro,
// title, settings, in-game and result. Each scene is a table-driven state machine
// over its own sub-state enum.
//
// Long-lived values live in the shared registry, put there before the logic worker
// starts: *assets.Bundle, *settings.Settings, *save.Save, stage.Table,
// *records.Store, *audio.Sink and *Screen. Every one is optional so scenes run
// headless in tests.
package scenes

import (
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/assets"
	"github.com/Carmen-Shannon/millennium-run/engine/audio"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/save"
	"github.com/Carmen-Shannon/millennium-run/game/settings"
	"github.com/Carmen-Shannon/millennium-run/game/stage"
	"go.uber.org/zap"
)

// FadeDuration is the length of every fade between scenes, in seconds.
const FadeDuration = 0.5

// base carries the transition request shared by every scene.
type base struct {
	next scene.Next
}

// Next returns the pending request once; later calls keep the scene.
func (b *base) Next() scene.Next {
	n := b.next
	b.next = scene.KeepNext()
	return n
}

// action is a key press translated through the control bindings.
type action int

const (
	actNone action = iota
	actUp
	actDown
	actLeft
	actRight
	actConfirm
	actCancel
)

// pressed maps a KeyPressed event to an action. Other events give actNone.
func pressed(c *scene.Context, ev message.LogicEvent) action {
	if ev.Kind != message.KeyPressed {
		return actNone
	}
	ctl := settingsOf(c).Controls
	switch settings.Key(ev.Key) {
	case ctl.Up:
		return actUp
	case ctl.Down:
		return actDown
	case ctl.Left:
		return actLeft
	case ctl.Right:
		return actRight
	case ctl.Confirm:
		return actConfirm
	case ctl.Cancel:
		return actCancel
	}
	return actNone
}

// menu is a wrapping vertical cursor over n entries.
type menu struct {
	cursor, n int
}

// move shifts the cursor for up and down and reports whether it moved.
func (m *menu) move(a action) bool {
	if m.n == 0 {
		return false
	}
	switch a {
	case actUp:
		m.cursor = (m.cursor + m.n - 1) % m.n
	case actDown:
		m.cursor = (m.cursor + 1) % m.n
	default:
		return false
	}
	return true
}

// timer counts up to a duration.
type timer struct {
	t, d float64
}

func newTimer(d float64) timer { return timer{d: d} }

// advance adds elapsed and reports whether the duration has passed.
func (t *timer) advance(elapsed float64) bool {
	t.t += elapsed
	return t.t >= t.d
}

// progress returns how far the timer is, in [0, 1].
func (t timer) progress() float32 {
	if t.d <= 0 {
		return 1
	}
	return float32(min(1, t.t/t.d))
}

// Registry lookups. Missing values fall back to defaults so scenes stay usable in
// tests that only provide what they exercise.

func settingsOf(c *scene.Context) *settings.Settings {
	if s, ok := scene.Get[*settings.Settings](c.Shared); ok && s != nil {
		return s
	}
	d := settings.Default()
	return &d
}

func saveOf(c *scene.Context) *save.Save {
	if s, ok := scene.Get[*save.Save](c.Shared); ok && s != nil {
		return s
	}
	d := save.Default()
	return &d
}

func stagesOf(c *scene.Context) stage.Table {
	if t, ok := scene.Get[stage.Table](c.Shared); ok && len(t.Stages) > 0 {
		return t
	}
	return stage.Default()
}

func screenOf(c *scene.Context) *Screen {
	if s, ok := scene.Get[*Screen](c.Shared); ok && s != nil {
		return s
	}
	return headless
}

func bundleOf(c *scene.Context) (*assets.Bundle, bool) {
	b, ok := scene.Get[*assets.Bundle](c.Shared)
	return b, ok && b != nil
}

// Sound effects are short tones on the effect channel.
type sound struct {
	freq float64
	d    time.Duration
}

var (
	sfxMove    = sound{660, 30 * time.Millisecond}
	sfxConfirm = sound{880, 80 * time.Millisecond}
	sfxCancel  = sound{330, 80 * time.Millisecond}
	sfxClaim   = sound{990, 60 * time.Millisecond}
	sfxHurt    = sound{196, 150 * time.Millisecond}
	sfxFire    = sound{120, 20 * time.Millisecond}
)

func sinkOf(c *scene.Context) (*audio.Sink, bool) {
	s, ok := scene.Get[*audio.Sink](c.Shared)
	return s, ok && s != nil
}

func play(c *scene.Context, s sound) {
	if sink, ok := sinkOf(c); ok {
		sink.Beep(s.freq, s.d)
	}
}

// MusicPath is the looping background track's manifest path.
const MusicPath = "sound/bgm.wav"

// startMusic loops the background track. A missing or undecodable track leaves the
// background channel silent.
func startMusic(c *scene.Context) {
	sink, ok := sinkOf(c)
	if !ok {
		return
	}
	b, ok := bundleOf(c)
	if !ok {
		return
	}
	h, err := b.Get(MusicPath)
	if err != nil {
		c.Log.Warn("background music unavailable", zap.Error(err))
		return
	}
	clip, err := assets.Read[audio.Clip](h, audio.WavDecoder{Rate: sink.SampleRate()})
	if err != nil {
		c.Log.Warn("background music unreadable", zap.String("path", MusicPath), zap.Error(err))
		return
	}
	if clip.Len() == 0 {
		return
	}
	sink.PlayBackground(clip.Loop())
}

func stopMusic(c *scene.Context) {
	if sink, ok := sinkOf(c); ok {
		sink.StopBackground()
	}
}

// storeSettings writes the settings asset. Failure is logged, not fatal: the game
// keeps running with the in-memory values.
func storeSettings(c *scene.Context, st *settings.Settings) {
	b, ok := bundleOf(c)
	if !ok {
		return
	}
	h, err := b.Get(settings.Path)
	if err == nil {
		err = settings.Store(h, *st)
	}
	if err != nil {
		c.Log.Warn("settings not saved", zap.Error(err))
	}
}

// applyWindow asks the Event Host to match the window to st.
func applyWindow(c *scene.Context, st *settings.Settings) {
	if c.Fabric == nil {
		return
	}
	_ = c.Fabric.Commands.Send(message.ApplyWindowCommand(st.WindowRequest()))
}
