package scenes

import (
	"fmt"
	"math/rand/v2"

	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/gfx"
	"github.com/Carmen-Shannon/millennium-run/game/stage"
	"github.com/Carmen-Shannon/millennium-run/game/tile"
	"go.uber.org/zap"
)

type inGameState int

const (
	inGameEnter inGameState = iota
	inGameSpawn
	inGameReady
	inGameRun
	inGamePause
	inGameResult
)

const (
	spawnDuration  = 0.6
	readyDuration  = 1.0
	resultDuration = 1.5
)

const (
	pauseResume = iota
	pauseRetire
)

var pauseLabels = []string{"RESUME", "RETIRE"}

// Playfield bounds on the canvas; the HUD sits above.
const (
	fieldLeft   = 40
	fieldTop    = 96
	fieldWidth  = scene.CanvasWidth - 2*fieldLeft
	fieldHeight = scene.CanvasHeight - fieldTop - 16
)

// InGame plays one round for the chosen actor.
type InGame struct {
	base
	state inGameState
	actor stage.Actor
	seed  uint64
	round *tile.Round
	clock timer
	pause menu
	held  map[uint32]tile.Direction
}

var _ scene.Scene = &InGame{}

// NewInGame creates a round scene for actor. seed drives spawn and boss choices.
func NewInGame(actor stage.Actor, seed uint64) *InGame {
	return &InGame{
		actor: actor,
		seed:  seed,
		clock: newTimer(FadeDuration),
		pause: menu{n: len(pauseLabels)},
		held:  make(map[uint32]tile.Direction),
	}
}

// Round exposes the round in play, nil before Enter.
func (s *InGame) Round() *tile.Round { return s.round }

func (s *InGame) Name() string { return "ingame" }

// Enter builds the round from the stage table.
func (s *InGame) Enter(c *scene.Context) error {
	st, ok := stagesOf(c).For(s.actor)
	if !ok {
		return fmt.Errorf("ingame: no stage for %s", s.actor)
	}
	r, err := tile.NewRound(st, rand.New(rand.NewPCG(s.seed, uint64(s.actor))))
	if err != nil {
		return fmt.Errorf("ingame: %w", err)
	}
	s.round = r
	c.Log.Info("round started", zap.Stringer("actor", s.actor), zap.Int("rows", st.Rows),
		zap.Int("cols", st.Cols), zap.Float64("time_limit", st.TimeLimit))
	startMusic(c)
	return nil
}

func (s *InGame) Exit(c *scene.Context) error {
	clear(s.held)
	stopMusic(c)
	return nil
}

// layout returns the tile size and the top left of the grid on the canvas.
func (s *InGame) layout() (size, ox, oy float32) {
	g := s.round.Grid
	size = min(float32(fieldWidth)/float32(g.Cols()), float32(fieldHeight)/float32(g.Rows()))
	ox = fieldLeft + (fieldWidth-size*float32(g.Cols()))/2
	oy = fieldTop + (fieldHeight-size*float32(g.Rows()))/2
	return size, ox, oy
}

func drawField(s *InGame, f *scene.Frame) {
	g := s.round.Grid
	size, ox, oy := s.layout()
	owned := actorColors[s.actor]
	for row := range g.Rows() {
		for col := range g.Cols() {
			var c scene.Color
			switch g.At(tile.Pos{Row: row, Col: col}).Shade {
			case tile.Blank:
				c = colorBlank
			case tile.Edge:
				c = colorEdge
			case tile.Trail:
				c = colorTrail
			case tile.Owned:
				c = owned
			}
			f.Rect(ox+float32(col)*size, oy+float32(row)*size, size, size, c)
		}
	}
	for _, cl := range g.Claims() {
		a := cl.Alpha()
		for _, p := range cl.Tiles {
			f.Rect(ox+float32(p.Col)*size, oy+float32(p.Row)*size, size, size, colorWhite.WithAlpha(a))
		}
	}
}

func drawActors(s *InGame, f *scene.Frame, playerAlpha float32) {
	size, ox, oy := s.layout()
	b := s.round.Boss
	bs := size * 1.6
	f.Rect(ox+float32(b.X)*size-bs/2, oy+float32(b.Y)*size-bs/2, bs, bs, colorBoss)
	bullet := size * 0.4
	for _, bl := range s.round.Bullets {
		f.Rect(ox+float32(bl.X)*size-bullet/2, oy+float32(bl.Y)*size-bullet/2, bullet, bullet, colorBullet)
	}
	px, py := s.round.Player.Position()
	pc := colorWhite
	if s.round.Player.Face == tile.FaceHit {
		pc = colorWarn
	}
	ps := size * 0.8
	f.Rect(ox+float32(px)*size-ps/2, oy+float32(py)*size-ps/2, ps, ps, pc.WithAlpha(playerAlpha))
}

func drawHUD(s *InGame, f *scene.Frame) {
	r := s.round
	gfx.Text(f, fieldLeft, 30, 6, s.actor.String(), actorColors[s.actor])
	gfx.TextCentered(f, 30, 7, tile.TimerText(r.Remaining()), colorWhite)
	pct := fmt.Sprintf("%d%%", r.Grid.Percent())
	gfx.Text(f, scene.CanvasWidth-fieldLeft-gfx.TextWidth(pct, 6), 30, 6, pct, colorWhite)
	for i := range tile.MaxHearts {
		c := colorDim
		if i < r.Player.Hearts {
			c = colorWarn
		}
		f.Rect(fieldLeft+300+float32(i)*36, 32, 26, 26, c)
	}
	for i, t := range r.Stage.Stars {
		c := colorDim
		if r.Grid.Percent() >= t {
			c = colorStar
		}
		f.Rect(scene.CanvasWidth-fieldLeft-340+float32(i)*30, 34, 22, 22, c)
	}
}

func drawRound(s *InGame, f *scene.Frame) {
	drawField(s, f)
	drawActors(s, f, 1)
	drawHUD(s, f)
}

// trackKeys keeps the held direction keys so a release of one falls back to another
// still held.
func trackKeys(s *InGame, c *scene.Context, ev message.LogicEvent) {
	switch ev.Kind {
	case message.KeyPressed:
		dr, dc, ok := settingsOf(c).Direction(ev.Key)
		if !ok {
			return
		}
		d := tile.DirectionOf(dr, dc)
		s.held[ev.Key] = d
		s.round.Press(d)
	case message.KeyReleased:
		d, ok := s.held[ev.Key]
		if !ok {
			return
		}
		delete(s.held, ev.Key)
		s.round.Release(d)
		for _, other := range s.held {
			s.round.Press(other)
			break
		}
	}
}

var inGameTable = scene.Table[inGameState, InGame]{
	inGameEnter: {
		Update: func(s *InGame, _ *scene.Context, elapsed float64) error {
			if s.clock.advance(elapsed) {
				s.state = inGameSpawn
				s.clock = newTimer(spawnDuration)
			}
			return nil
		},
		Draw: func(s *InGame, _ *scene.Context, f *scene.Frame) error {
			drawField(s, f)
			drawHUD(s, f)
			f.Fade(colorBlack, 1-s.clock.progress())
			return nil
		},
	},
	inGameSpawn: {
		Update: func(s *InGame, _ *scene.Context, elapsed float64) error {
			if s.clock.advance(elapsed) {
				s.state = inGameReady
				s.clock = newTimer(readyDuration)
			}
			return nil
		},
		Draw: func(s *InGame, _ *scene.Context, f *scene.Frame) error {
			drawField(s, f)
			drawActors(s, f, s.clock.progress())
			drawHUD(s, f)
			return nil
		},
	},
	inGameReady: {
		HandleEvents: func(s *InGame, c *scene.Context, ev message.LogicEvent) error {
			// direction keys pressed early take effect as soon as the round runs
			trackKeys(s, c, ev)
			return nil
		},
		Update: func(s *InGame, _ *scene.Context, elapsed float64) error {
			if s.clock.advance(elapsed) {
				s.state = inGameRun
			}
			return nil
		},
		Draw: func(s *InGame, _ *scene.Context, f *scene.Frame) error {
			drawRound(s, f)
			gfx.TextCentered(f, 330, 12, "READY", colorWhite.WithAlpha(1-s.clock.progress()))
			return nil
		},
	},
	inGameRun: {
		HandleEvents: func(s *InGame, c *scene.Context, ev message.LogicEvent) error {
			if pressed(c, ev) == actCancel {
				play(c, sfxCancel)
				s.state = inGamePause
				s.pause.cursor = pauseResume
				return nil
			}
			if ev.Kind == message.ApplicationPaused {
				s.state = inGamePause
				s.pause.cursor = pauseResume
				return nil
			}
			trackKeys(s, c, ev)
			return nil
		},
		Update: func(s *InGame, c *scene.Context, elapsed float64) error {
			ev := s.round.Update(elapsed)
			switch {
			case ev.Hurt:
				play(c, sfxHurt)
			case ev.Committed > 0:
				play(c, sfxClaim)
			case ev.Fired > 0:
				play(c, sfxFire)
			}
			if s.round.Finished() {
				res := s.round.Result()
				c.Log.Info("round finished", zap.Stringer("actor", s.actor),
					zap.Stringer("reason", res.Reason), zap.Int("percent", res.Percent),
					zap.Int("stars", res.Stars))
				s.state = inGameResult
				s.clock = newTimer(resultDuration)
			}
			return nil
		},
		Draw: func(s *InGame, _ *scene.Context, f *scene.Frame) error {
			drawRound(s, f)
			return nil
		},
	},
	inGamePause: {
		HandleEvents: func(s *InGame, c *scene.Context, ev message.LogicEvent) error {
			// releases still reach the player so no key sticks after resuming
			if ev.Kind == message.KeyReleased {
				trackKeys(s, c, ev)
				return nil
			}
			switch a := pressed(c, ev); {
			case s.pause.move(a):
				play(c, sfxMove)
			case a == actCancel:
				s.state = inGameRun
			case a == actConfirm:
				play(c, sfxConfirm)
				if s.pause.cursor == pauseRetire {
					s.next = scene.ChangeTo(NewTitle())
				} else {
					s.state = inGameRun
				}
			}
			return nil
		},
		Draw: func(s *InGame, _ *scene.Context, f *scene.Frame) error {
			drawRound(s, f)
			f.Fade(colorBlack, 0.6)
			gfx.TextCentered(f, 240, 10, "PAUSE", colorWhite)
			for i, label := range pauseLabels {
				c := colorDim
				if i == s.pause.cursor {
					c = colorAccent
				}
				gfx.TextCentered(f, 380+float32(i)*70, 7, label, c)
			}
			return nil
		},
	},
	inGameResult: {
		Update: func(s *InGame, _ *scene.Context, elapsed float64) error {
			if s.clock.advance(elapsed) {
				s.next = scene.ChangeTo(NewResult(s.actor, s.round.Result()))
			}
			return nil
		},
		Draw: func(s *InGame, _ *scene.Context, f *scene.Frame) error {
			drawRound(s, f)
			label := "TIME UP"
			switch s.round.Result().Reason {
			case tile.OutOfHearts:
				label = "FAILED"
			case tile.Completed:
				label = "CLEAR"
			}
			gfx.TextCentered(f, 330, 12, label, colorWhite)
			f.Fade(colorBlack, (s.clock.progress()-0.6)*2.5)
			return nil
		},
	},
}

func (s *InGame) HandleEvents(c *scene.Context, ev message.LogicEvent) error {
	return inGameTable.HandleEvents(s.state, s, c, ev)
}

func (s *InGame) Update(c *scene.Context, elapsed float64) error {
	return inGameTable.Update(s.state, s, c, elapsed)
}

func (s *InGame) RenderSubmit(c *scene.Context) error {
	f := screenOf(c).Begin(colorBackground)
	if err := inGameTable.Draw(s.state, s, c, f); err != nil {
		return err
	}
	return screenOf(c).Submit(c)
}
