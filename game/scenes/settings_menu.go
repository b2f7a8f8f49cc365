package scenes

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/millennium-run/engine/audio"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/gfx"
	"github.com/Carmen-Shannon/millennium-run/game/settings"
)

type settingsState int

const (
	settingsEdit settingsState = iota
)

const (
	rowLanguage = iota
	rowScreenMode
	rowResolution
	rowBackground
	rowEffect
	rowBack
	numRows
)

var settingsRowLabels = [numRows]string{"LANGUAGE", "SCREEN", "RESOLUTION", "MUSIC", "EFFECTS", "BACK"}

// volumeStep is how much one left or right press changes a volume.
const volumeStep = 10

// SettingsMenu edits the user settings. It is pushed over the title and pops itself;
// changes apply immediately and are written to disk on exit.
type SettingsMenu struct {
	base
	state settingsState
	rows  menu
	dirty bool
}

var _ scene.Scene = &SettingsMenu{}

// NewSettingsMenu creates the settings scene.
func NewSettingsMenu() *SettingsMenu {
	return &SettingsMenu{rows: menu{n: numRows}}
}

// cycle steps v by delta within [0, n).
func cycle(v, delta, n int) int {
	return ((v+delta)%n + n) % n
}

// adjust changes the setting under the cursor by delta and reports whether anything
// changed.
func adjust(st *settings.Settings, row, delta int) bool {
	switch row {
	case rowLanguage:
		langs := []settings.Language{settings.English, settings.Korean}
		i := 0
		for j, l := range langs {
			if l == st.Language {
				i = j
			}
		}
		st.Language = langs[cycle(i, delta, len(langs))]
	case rowScreenMode:
		if st.ScreenMode == settings.Windowed {
			st.ScreenMode = settings.FullScreen
		} else {
			st.ScreenMode = settings.Windowed
		}
	case rowResolution:
		n := len(settings.Resolutions())
		st.Resolution = settings.Resolution(cycle(int(st.Resolution), delta, n))
	case rowBackground:
		st.BackgroundVolume = max(0, min(settings.MaxVolume, st.BackgroundVolume+delta*volumeStep))
	case rowEffect:
		st.EffectVolume = max(0, min(settings.MaxVolume, st.EffectVolume+delta*volumeStep))
	default:
		return false
	}
	return true
}

func settingValue(st *settings.Settings, row int) string {
	switch row {
	case rowLanguage:
		if st.Language == settings.Korean {
			return "KOREAN"
		}
		return "ENGLISH"
	case rowScreenMode:
		return strings.ToUpper(st.ScreenMode.String())
	case rowResolution:
		return st.Resolution.String()
	case rowBackground:
		return fmt.Sprintf("%d", st.BackgroundVolume)
	case rowEffect:
		return fmt.Sprintf("%d", st.EffectVolume)
	}
	return ""
}

// applySettings pushes a changed row to the window or the audio sink.
func applySettings(c *scene.Context, st *settings.Settings, row int) {
	switch row {
	case rowLanguage, rowScreenMode, rowResolution:
		applyWindow(c, st)
	case rowBackground, rowEffect:
		if sink, ok := scene.Get[*audio.Sink](c.Shared); ok && sink != nil {
			sink.SetVolumes(st.BackgroundVolume, st.EffectVolume)
		}
	}
}

var settingsTable = scene.Table[settingsState, SettingsMenu]{
	settingsEdit: {
		HandleEvents: func(s *SettingsMenu, c *scene.Context, ev message.LogicEvent) error {
			a := pressed(c, ev)
			if s.rows.move(a) {
				play(c, sfxMove)
				return nil
			}
			st := settingsOf(c)
			switch {
			case a == actCancel, a == actConfirm && s.rows.cursor == rowBack:
				play(c, sfxCancel)
				s.next = scene.PopNext()
			case a == actLeft || a == actRight || a == actConfirm:
				delta := 1
				if a == actLeft {
					delta = -1
				}
				if adjust(st, s.rows.cursor, delta) {
					s.dirty = true
					applySettings(c, st, s.rows.cursor)
					play(c, sfxMove)
				}
			}
			return nil
		},
		Draw: func(s *SettingsMenu, c *scene.Context, f *scene.Frame) error {
			st := settingsOf(c)
			gfx.TextCentered(f, 80, 8, "SETTINGS", colorWhite)
			for row := range numRows {
				y := 200 + float32(row)*70
				col := colorDim
				if row == s.rows.cursor {
					col = colorAccent
					f.Rect(220, y-14, 840, 63, col.WithAlpha(0.15))
				}
				gfx.Text(f, 260, y, 6, settingsRowLabels[row], col)
				if v := settingValue(st, row); v != "" {
					gfx.Text(f, 1020-gfx.TextWidth(v, 6), y, 6, v, col)
				}
			}
			return nil
		},
	},
}

func (s *SettingsMenu) Name() string { return "settings" }

func (s *SettingsMenu) Enter(*scene.Context) error { return nil }

// Exit writes the settings if anything changed while the scene was open.
func (s *SettingsMenu) Exit(c *scene.Context) error {
	if s.dirty {
		storeSettings(c, settingsOf(c))
		s.dirty = false
	}
	return nil
}

func (s *SettingsMenu) HandleEvents(c *scene.Context, ev message.LogicEvent) error {
	return settingsTable.HandleEvents(s.state, s, c, ev)
}

func (s *SettingsMenu) Update(c *scene.Context, elapsed float64) error {
	return settingsTable.Update(s.state, s, c, elapsed)
}

func (s *SettingsMenu) RenderSubmit(c *scene.Context) error {
	f := screenOf(c).Begin(colorBackground)
	if err := settingsTable.Draw(s.state, s, c, f); err != nil {
		return err
	}
	return screenOf(c).Submit(c)
}
