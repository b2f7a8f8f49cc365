package tile

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Carmen-Shannon/millennium-run/game/stage"
)

// EndReason says why a round ended.
type EndReason int

const (
	Playing EndReason = iota
	TimeUp
	OutOfHearts
	Completed // reached the last star threshold
)

func (r EndReason) String() string {
	switch r {
	case Playing:
		return "playing"
	case TimeUp:
		return "time up"
	case OutOfHearts:
		return "out of hearts"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("EndReason(%d)", int(r))
}

// Result is the outcome of a finished round.
type Result struct {
	Reason  EndReason
	Percent int
	Stars   int
	Hearts  int
	Elapsed float64
}

// Won reports whether the round earned at least one star.
func (r Result) Won() bool { return r.Stars >= 1 }

// Events reports what happened during one Update, for sound and face effects.
type Events struct {
	Committed int // tiles claimed
	Hurt      bool
	Fired     int // bullets spawned
}

// Round is one stage in play: grid, player, boss and bullets under a time limit.
type Round struct {
	Stage   stage.Stage
	Grid    *Grid
	Player  *Player
	Boss    *Boss
	Bullets []Bullet

	elapsed float64
	result  Result
}

// NewRound builds the grid for s, picks a spawn point and places the boss.
//
// Parameters:
//   - s: the stage tuning
//   - rng: the random source for spawn, boss targets and patterns
//
// Returns:
//   - *Round: the round, not yet started
//   - error: an error if the stage grid is invalid
func NewRound(s stage.Stage, rng *rand.Rand) (*Round, error) {
	g, err := NewGrid(s.Rows, s.Cols)
	if err != nil {
		return nil, err
	}
	spawn := g.Spawn(rng, s.HalfSpawnArea)
	return &Round{
		Stage:  s,
		Grid:   g,
		Player: NewPlayer(spawn),
		Boss:   NewBoss(g, s, rng),
	}, nil
}

// Press forwards a direction key press to the player.
func (r *Round) Press(d Direction) { r.Player.Press(d, r.Grid.Trailing()) }

// Release forwards a direction key release to the player.
func (r *Round) Release(d Direction) { r.Player.Release(d, r.Grid.Trailing()) }

// Elapsed returns the time played so far, in seconds.
func (r *Round) Elapsed() float64 { return r.elapsed }

// Remaining returns the time left, never negative.
func (r *Round) Remaining() float64 { return math.Max(0, r.Stage.TimeLimit-r.elapsed) }

// Finished reports whether the round has ended.
func (r *Round) Finished() bool { return r.result.Reason != Playing }

// Result returns the outcome; Reason is Playing until the round ends.
func (r *Round) Result() Result { return r.result }

// Update advances the round by one fixed step. It does nothing once finished.
func (r *Round) Update(elapsed float64) Events {
	var ev Events
	if r.Finished() {
		return ev
	}
	r.elapsed += elapsed
	p := r.Player
	p.updateFace(elapsed)

	if pos, arrived := p.step(r.Grid, elapsed); arrived {
		switch out, n := r.Grid.Enter(pos); out {
		case Committed:
			ev.Committed = n
			p.closed()
		case Crossed:
			ev.Hurt = true
			p.hurt()
		}
	}

	px, py := p.Position()
	volley := r.Boss.update(r.Grid, elapsed, px, py)
	ev.Fired = len(volley)
	r.Bullets = append(r.Bullets, volley...)
	r.Bullets = advanceBullets(r.Grid, r.Bullets, elapsed)
	if !ev.Hurt && r.Grid.Trailing() {
		for _, b := range r.Bullets {
			if b.hits(px, py) {
				r.Grid.Forfeit()
				p.hurt()
				ev.Hurt = true
				break
			}
		}
	}
	r.Grid.Update(elapsed)
	r.checkEnd()
	return ev
}

func (r *Round) checkEnd() {
	percent := r.Grid.Percent()
	res := Result{Percent: percent, Hearts: r.Player.Hearts, Elapsed: r.elapsed}
	switch {
	case r.Player.Hearts == 0:
		res.Reason, res.Stars = OutOfHearts, 0
	case percent >= r.Stage.Stars[2]:
		res.Reason, res.Stars = Completed, 3
	case r.elapsed >= r.Stage.TimeLimit:
		res.Reason, res.Stars = TimeUp, r.Stage.StarsFor(percent)
	default:
		return
	}
	r.result = res
}

// TimerText formats seconds as m:ss, rounding up and capping minutes at 9.
func TimerText(seconds float64) string {
	s := int(math.Ceil(math.Max(0, seconds)))
	m := s / 60
	if m > 9 {
		return "9:59"
	}
	return fmt.Sprintf("%d:%02d", m, s%60)
}
