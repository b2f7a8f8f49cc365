package scenes

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/gfx"
	"github.com/Carmen-Shannon/millennium-run/game/stage"
)

type titleState int

const (
	titleEntry titleState = iota
	titleMenu
	titleStage
	titleSelected
	titleExit
)

const (
	menuStart = iota
	menuSettings
	menuExit
)

var titleMenuLabels = []string{"START", "SETTINGS", "EXIT"}

// selectedDuration is how long the chosen actor blinks before the round loads.
const selectedDuration = 1.0

// Title is the main menu and the actor select.
type Title struct {
	base
	state  titleState
	menu   menu
	actors menu
	clock  timer
	blink  float64
}

var _ scene.Scene = &Title{}

// NewTitle creates the title scene, starting with a fade in.
func NewTitle() *Title {
	return &Title{
		menu:   menu{n: len(titleMenuLabels)},
		actors: menu{n: stage.NumActors},
		clock:  newTimer(FadeDuration),
	}
}

func drawTitleLogo(f *scene.Frame) {
	gfx.TextCentered(f, 120, 12, "MILLENNIUM", colorAccent)
	gfx.TextCentered(f, 210, 12, "RUN", colorWhite)
}

func drawTitleMenu(s *Title, f *scene.Frame) {
	for i, label := range titleMenuLabels {
		c := colorDim
		if i == s.menu.cursor {
			c = colorAccent
		}
		gfx.TextCentered(f, 400+float32(i)*60, 7, label, c)
	}
}

func drawActorSelect(s *Title, c *scene.Context, f *scene.Frame, hide bool) {
	sv := saveOf(c)
	gfx.TextCentered(f, 120, 8, "SELECT STAGE", colorWhite)
	for i, a := range stage.Actors() {
		y := 260 + float32(i)*90
		col := colorDim
		if i == s.actors.cursor {
			if hide {
				continue
			}
			col = actorColors[a]
			f.Rect(300, y-14, 680, 63, col.WithAlpha(0.2))
		}
		gfx.Text(f, 340, y, 7, a.String(), col)
		gfx.Text(f, 760, y, 7, fmt.Sprintf("%3d%%", sv.Best(a)), col)
	}
}

var titleTable = scene.Table[titleState, Title]{
	titleEntry: {
		Update: func(s *Title, _ *scene.Context, elapsed float64) error {
			if s.clock.advance(elapsed) {
				s.state = titleMenu
			}
			return nil
		},
		Draw: func(s *Title, _ *scene.Context, f *scene.Frame) error {
			drawTitleLogo(f)
			drawTitleMenu(s, f)
			f.Fade(colorBlack, 1-s.clock.progress())
			return nil
		},
	},
	titleMenu: {
		HandleEvents: func(s *Title, c *scene.Context, ev message.LogicEvent) error {
			a := pressed(c, ev)
			if s.menu.move(a) {
				play(c, sfxMove)
				return nil
			}
			if a != actConfirm {
				return nil
			}
			play(c, sfxConfirm)
			switch s.menu.cursor {
			case menuStart:
				s.state = titleStage
			case menuSettings:
				s.next = scene.PushNext(NewSettingsMenu())
			case menuExit:
				s.state = titleExit
				s.clock = newTimer(FadeDuration)
			}
			return nil
		},
		Draw: func(s *Title, _ *scene.Context, f *scene.Frame) error {
			drawTitleLogo(f)
			drawTitleMenu(s, f)
			return nil
		},
	},
	titleStage: {
		HandleEvents: func(s *Title, c *scene.Context, ev message.LogicEvent) error {
			switch a := pressed(c, ev); {
			case s.actors.move(a):
				play(c, sfxMove)
			case a == actCancel:
				play(c, sfxCancel)
				s.state = titleMenu
			case a == actConfirm:
				play(c, sfxConfirm)
				s.state = titleSelected
				s.clock = newTimer(selectedDuration)
				s.blink = 0
			}
			return nil
		},
		Draw: func(s *Title, c *scene.Context, f *scene.Frame) error {
			drawActorSelect(s, c, f, false)
			return nil
		},
	},
	titleSelected: {
		Update: func(s *Title, _ *scene.Context, elapsed float64) error {
			s.blink += elapsed
			if s.clock.advance(elapsed) {
				actor := stage.Actor(s.actors.cursor)
				s.next = scene.ChangeTo(NewInGame(actor, uint64(time.Now().UnixNano())))
			}
			return nil
		},
		Draw: func(s *Title, c *scene.Context, f *scene.Frame) error {
			hide := int(s.blink*10)%2 == 1
			drawActorSelect(s, c, f, hide)
			f.Fade(colorBlack, (s.clock.progress()-0.5)*2)
			return nil
		},
	},
	titleExit: {
		Update: func(s *Title, _ *scene.Context, elapsed float64) error {
			if s.clock.advance(elapsed) {
				s.next = scene.PopNext()
			}
			return nil
		},
		Draw: func(s *Title, _ *scene.Context, f *scene.Frame) error {
			drawTitleLogo(f)
			f.Fade(colorBlack, s.clock.progress())
			return nil
		},
	},
}

func (s *Title) Name() string { return "title" }

func (s *Title) Enter(c *scene.Context) error {
	startMusic(c)
	return nil
}

func (s *Title) Exit(c *scene.Context) error {
	stopMusic(c)
	return nil
}

func (s *Title) HandleEvents(c *scene.Context, ev message.LogicEvent) error {
	return titleTable.HandleEvents(s.state, s, c, ev)
}

func (s *Title) Update(c *scene.Context, elapsed float64) error {
	return titleTable.Update(s.state, s, c, elapsed)
}

func (s *Title) RenderSubmit(c *scene.Context) error {
	f := screenOf(c).Begin(colorBackground)
	if err := titleTable.Draw(s.state, s, c, f); err != nil {
		return err
	}
	return screenOf(c).Submit(c)
}
