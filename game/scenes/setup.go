package scenes

import (
	"os"

	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/gfx"
	"github.com/Carmen-Shannon/millennium-run/game/settings"
)

type setupState int

const (
	setupWait setupState = iota
	setupExit
)

// setupChoices are the selectable languages in menu order.
var setupChoices = []settings.Language{settings.English, settings.Korean}

var setupLabels = []string{"ENGLISH", "KOREAN"}

// Setup asks for the interface language on first launch.
type Setup struct {
	base
	state setupState
	menu  menu
	fade  timer
}

var _ scene.Scene = &Setup{}

// NewSetup creates the first-time setup scene. The cursor starts on the language of
// the environment's locale when it is supported.
func NewSetup() *Setup {
	s := &Setup{menu: menu{n: len(setupChoices)}, fade: newTimer(FadeDuration)}
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	guess := settings.ParseLanguage(locale)
	for i, l := range setupChoices {
		if l == guess {
			s.menu.cursor = i
		}
	}
	return s
}

var setupTable = scene.Table[setupState, Setup]{
	setupWait: {
		HandleEvents: func(s *Setup, c *scene.Context, ev message.LogicEvent) error {
			a := pressed(c, ev)
			if s.menu.move(a) {
				play(c, sfxMove)
				return nil
			}
			if a != actConfirm {
				return nil
			}
			play(c, sfxConfirm)
			st := settingsOf(c)
			st.Language = setupChoices[s.menu.cursor]
			applyWindow(c, st)
			storeSettings(c, st)
			s.state = setupExit
			return nil
		},
		Draw: func(s *Setup, _ *scene.Context, f *scene.Frame) error {
			gfx.TextCentered(f, 200, 6, "SELECT YOUR LANGUAGE", colorWhite)
			for i, label := range setupLabels {
				c := colorDim
				if i == s.menu.cursor {
					c = colorAccent
					gfx.Text(f, 520, 340+float32(i)*70, 8, ">", c)
				}
				gfx.TextCentered(f, 340+float32(i)*70, 8, label, c)
			}
			return nil
		},
	},
	setupExit: {
		Update: func(s *Setup, _ *scene.Context, elapsed float64) error {
			if s.fade.advance(elapsed) {
				s.next = scene.ChangeTo(NewIntro())
			}
			return nil
		},
		Draw: func(s *Setup, _ *scene.Context, f *scene.Frame) error {
			gfx.TextCentered(f, 340+float32(s.menu.cursor)*70, 8, setupLabels[s.menu.cursor], colorAccent)
			f.Fade(colorBlack, s.fade.progress())
			return nil
		},
	},
}

func (s *Setup) Name() string { return "setup" }

func (s *Setup) Enter(*scene.Context) error { return nil }

func (s *Setup) Exit(*scene.Context) error { return nil }

func (s *Setup) HandleEvents(c *scene.Context, ev message.LogicEvent) error {
	return setupTable.HandleEvents(s.state, s, c, ev)
}

func (s *Setup) Update(c *scene.Context, elapsed float64) error {
	return setupTable.Update(s.state, s, c, elapsed)
}

func (s *Setup) RenderSubmit(c *scene.Context) error {
	f := screenOf(c).Begin(colorBackground)
	if err := setupTable.Draw(s.state, s, c, f); err != nil {
		return err
	}
	return screenOf(c).Submit(c)
}
