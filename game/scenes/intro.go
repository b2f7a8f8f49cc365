package scenes

import (
	"github.com/Carmen-Shannon/millennium-run/common"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/gfx"
)

type introState int

const (
	introFadeIn introState = iota
	introDisplayNotify
	introDisappearNotify
	introAppearLogo
	introDisplayLogo
	introFadeOut
)

// introDurations holds how long each intro state lasts, in seconds.
var introDurations = [...]float64{
	introFadeIn:          FadeDuration,
	introDisplayNotify:   2.0,
	introDisappearNotify: 0.5,
	introAppearLogo:      0.5,
	introDisplayLogo:     1.5,
	introFadeOut:         FadeDuration,
}

// Intro shows the fan-game notice and the logo, then hands over to the title.
// Confirm or cancel skips to the fade out.
type Intro struct {
	base
	state introState
	clock timer
}

var _ scene.Scene = &Intro{}

// NewIntro creates the intro scene.
func NewIntro() *Intro {
	return &Intro{clock: newTimer(introDurations[introFadeIn])}
}

// advanceIntro moves to the next state when the current one has run its course.
func advanceIntro(s *Intro, _ *scene.Context, elapsed float64) error {
	if !s.clock.advance(elapsed) {
		return nil
	}
	if s.state == introFadeOut {
		s.next = scene.ChangeTo(NewTitle())
		return nil
	}
	s.state++
	s.clock = newTimer(introDurations[s.state])
	return nil
}

func skipIntro(s *Intro, c *scene.Context, ev message.LogicEvent) error {
	if a := pressed(c, ev); a == actConfirm || a == actCancel {
		s.state = introFadeOut
		s.clock = newTimer(introDurations[introFadeOut])
	}
	return nil
}

const introNotice = "THIS IS A FAN GAME"

func drawNotice(f *scene.Frame, alpha float32) {
	gfx.TextCentered(f, 330, 6, introNotice, colorWhite.WithAlpha(alpha))
}

// drawLogo rises into place as it fades in.
func drawLogo(f *scene.Frame, alpha float32) {
	rise := common.Lerp(24, 0, alpha)
	gfx.TextCentered(f, 280+rise, 14, "MILLENNIUM", colorAccent.WithAlpha(alpha))
	gfx.TextCentered(f, 380+rise, 14, "RUN", colorWhite.WithAlpha(alpha))
}

var introTable = scene.Table[introState, Intro]{
	introFadeIn: {
		HandleEvents: skipIntro,
		Update:       advanceIntro,
		Draw: func(s *Intro, _ *scene.Context, f *scene.Frame) error {
			drawNotice(f, s.clock.progress())
			return nil
		},
	},
	introDisplayNotify: {
		HandleEvents: skipIntro,
		Update:       advanceIntro,
		Draw: func(_ *Intro, _ *scene.Context, f *scene.Frame) error {
			drawNotice(f, 1)
			return nil
		},
	},
	introDisappearNotify: {
		HandleEvents: skipIntro,
		Update:       advanceIntro,
		Draw: func(s *Intro, _ *scene.Context, f *scene.Frame) error {
			drawNotice(f, 1-s.clock.progress())
			return nil
		},
	},
	introAppearLogo: {
		HandleEvents: skipIntro,
		Update:       advanceIntro,
		Draw: func(s *Intro, _ *scene.Context, f *scene.Frame) error {
			drawLogo(f, s.clock.progress())
			return nil
		},
	},
	introDisplayLogo: {
		HandleEvents: skipIntro,
		Update:       advanceIntro,
		Draw: func(_ *Intro, _ *scene.Context, f *scene.Frame) error {
			drawLogo(f, 1)
			return nil
		},
	},
	introFadeOut: {
		Update: advanceIntro,
		Draw: func(s *Intro, _ *scene.Context, f *scene.Frame) error {
			drawLogo(f, 1-s.clock.progress())
			return nil
		},
	},
}

func (s *Intro) Name() string { return "intro" }

func (s *Intro) Enter(*scene.Context) error { return nil }

func (s *Intro) Exit(*scene.Context) error { return nil }

func (s *Intro) HandleEvents(c *scene.Context, ev message.LogicEvent) error {
	return introTable.HandleEvents(s.state, s, c, ev)
}

func (s *Intro) Update(c *scene.Context, elapsed float64) error {
	return introTable.Update(s.state, s, c, elapsed)
}

func (s *Intro) RenderSubmit(c *scene.Context) error {
	f := screenOf(c).Begin(colorBlack)
	if err := introTable.Draw(s.state, s, c, f); err != nil {
		return err
	}
	return screenOf(c).Submit(c)
}
