package scenes

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/gfx"
	"github.com/Carmen-Shannon/millennium-run/game/records"
	"github.com/Carmen-Shannon/millennium-run/game/save"
	"github.com/Carmen-Shannon/millennium-run/game/stage"
	"github.com/Carmen-Shannon/millennium-run/game/tile"
	"go.uber.org/zap"
)

type resultState int

const (
	resultAppear resultState = iota
	resultWait
	resultExit
)

// starDelay is the time between stars popping in during Appear.
const starDelay = 0.4

// Result shows the outcome of a round, records it and stores a new best.
type Result struct {
	base
	state  resultState
	actor  stage.Actor
	result tile.Result
	clock  timer

	best     int
	improved bool
}

var _ scene.Scene = &Result{}

// NewResult creates the result scene for a finished round.
func NewResult(actor stage.Actor, r tile.Result) *Result {
	return &Result{
		actor:  actor,
		result: r,
		clock:  newTimer(FadeDuration + starDelay*3),
	}
}

// Improved reports whether the round set a new best percent.
func (s *Result) Improved() bool { return s.improved }

func (s *Result) Name() string { return "result" }

// Enter stores the run in the play history and the save file. Failures are logged:
// losing a record must not end the game.
func (s *Result) Enter(c *scene.Context) error {
	sv := saveOf(c)
	s.improved = sv.Improve(s.actor, s.result.Percent)
	s.best = int(sv.Best(s.actor))
	if b, ok := bundleOf(c); ok {
		h, err := b.Get(save.Path)
		if err == nil {
			err = save.Store(h, *sv)
		}
		if err != nil {
			c.Log.Warn("save not written", zap.Error(err))
		}
	}

	if store, ok := scene.Get[*records.Store](c.Shared); ok && store != nil {
		run := records.Run{
			Actor:    s.actor,
			Percent:  s.result.Percent,
			Stars:    s.result.Stars,
			Hearts:   s.result.Hearts,
			Duration: time.Duration(s.result.Elapsed * float64(time.Second)),
			Cleared:  s.result.Won(),
		}
		if _, err := store.Record(c.Ctx, run); err != nil {
			c.Log.Warn("run not recorded", zap.Error(err))
		}
	}
	return nil
}

func (s *Result) Exit(*scene.Context) error { return nil }

func drawResult(s *Result, f *scene.Frame, stars int) {
	gfx.TextCentered(f, 110, 8, s.actor.String(), actorColors[s.actor])
	for i := range 3 {
		c := colorDim
		if i < stars {
			c = colorStar
		}
		f.Rect(scene.CanvasWidth/2-150+float32(i)*110, 220, 80, 80, c)
	}
	gfx.TextCentered(f, 370, 10, fmt.Sprintf("%d%%", s.result.Percent), colorWhite)
	best := fmt.Sprintf("BEST %d%%", s.best)
	c := colorDim
	if s.improved {
		best = "NEW BEST!"
		c = colorAccent
	}
	gfx.TextCentered(f, 480, 6, best, c)
}

// shownStars is how many stars have popped in so far.
func (s *Result) shownStars() int {
	t := s.clock.t - FadeDuration
	if t < 0 {
		return 0
	}
	return min(s.result.Stars, int(t/starDelay)+1)
}

var resultTable = scene.Table[resultState, Result]{
	resultAppear: {
		HandleEvents: func(s *Result, c *scene.Context, ev message.LogicEvent) error {
			if pressed(c, ev) == actConfirm {
				s.clock.t = s.clock.d
			}
			return nil
		},
		Update: func(s *Result, c *scene.Context, elapsed float64) error {
			before := s.shownStars()
			done := s.clock.advance(elapsed)
			if s.shownStars() > before {
				play(c, sfxClaim)
			}
			if done {
				s.state = resultWait
			}
			return nil
		},
		Draw: func(s *Result, _ *scene.Context, f *scene.Frame) error {
			drawResult(s, f, s.shownStars())
			f.Fade(colorBlack, 1-float32(min(1, s.clock.t/FadeDuration)))
			return nil
		},
	},
	resultWait: {
		HandleEvents: func(s *Result, c *scene.Context, ev message.LogicEvent) error {
			if a := pressed(c, ev); a == actConfirm || a == actCancel {
				play(c, sfxConfirm)
				s.state = resultExit
				s.clock = newTimer(FadeDuration)
			}
			return nil
		},
		Draw: func(s *Result, _ *scene.Context, f *scene.Frame) error {
			drawResult(s, f, s.result.Stars)
			gfx.TextCentered(f, 620, 5, "PRESS ENTER", colorDim)
			return nil
		},
	},
	resultExit: {
		Update: func(s *Result, _ *scene.Context, elapsed float64) error {
			if s.clock.advance(elapsed) {
				s.next = scene.ChangeTo(NewTitle())
			}
			return nil
		},
		Draw: func(s *Result, _ *scene.Context, f *scene.Frame) error {
			drawResult(s, f, s.result.Stars)
			f.Fade(colorBlack, s.clock.progress())
			return nil
		},
	},
}

func (s *Result) HandleEvents(c *scene.Context, ev message.LogicEvent) error {
	return resultTable.HandleEvents(s.state, s, c, ev)
}

func (s *Result) Update(c *scene.Context, elapsed float64) error {
	return resultTable.Update(s.state, s, c, elapsed)
}

func (s *Result) RenderSubmit(c *scene.Context) error {
	f := screenOf(c).Begin(colorBackground)
	if err := resultTable.Draw(s.state, s, c, f); err != nil {
		return err
	}
	return screenOf(c).Submit(c)
}
