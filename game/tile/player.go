package tile

import "github.com/Carmen-Shannon/millennium-run/common"

const (
	// MaxHearts is the player's starting health.
	MaxHearts = 3
	// MoveDuration is the time to slide from one tile to the next, in seconds.
	MoveDuration = 0.05
	// FaceDuration is how long the Hit and Smile faces last.
	FaceDuration = 2.5
)

// Face is the player portrait shown next to the grid.
type Face int

const (
	FaceIdle Face = iota
	FaceHit
	FaceSmile
)

// Direction is the current movement control.
type Direction int

const (
	Idle Direction = iota
	Left
	Right
	Up
	Down
)

func (d Direction) delta() (dr, dc int) {
	switch d {
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	}
	return 0, 0
}

// DirectionOf maps a row and column delta back to a Direction.
func DirectionOf(dr, dc int) Direction {
	switch {
	case dr == 0 && dc < 0:
		return Left
	case dr == 0 && dc > 0:
		return Right
	case dc == 0 && dr < 0:
		return Up
	case dc == 0 && dr > 0:
		return Down
	}
	return Idle
}

func (d Direction) opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Up:
		return Down
	case Down:
		return Up
	}
	return Idle
}

// Player is the tile-walking cursor. It moves one tile per MoveDuration while a
// direction is held.
type Player struct {
	Hearts int
	Face   Face
	Spawn  Pos
	Cur    Pos

	faceTimer float64
	dir       Direction
	pressed   bool

	moving    bool
	next      Pos
	moveTimer float64
}

// NewPlayer places a full-health player at spawn.
func NewPlayer(spawn Pos) *Player {
	return &Player{Hearts: MaxHearts, Spawn: spawn, Cur: spawn}
}

// Direction returns the current control.
func (p *Player) Direction() Direction { return p.dir }

// Press sets the movement direction. Turning straight back is ignored while a trail
// is open.
func (p *Player) Press(d Direction, trailing bool) {
	if d == Idle {
		return
	}
	p.pressed = true
	if trailing && d == p.dir.opposite() {
		return
	}
	p.dir = d
}

// Release handles the direction key going up. Off-trail the player stops; on a trail
// it keeps going until the trail closes.
func (p *Player) Release(d Direction, trailing bool) {
	if d != p.dir {
		return
	}
	p.pressed = false
	if !trailing {
		p.dir = Idle
	}
}

// Position returns the player's center in tile units, x along columns and y along
// rows, interpolated while sliding between tiles.
func (p *Player) Position() (x, y float64) {
	x, y = float64(p.Cur.Col)+0.5, float64(p.Cur.Row)+0.5
	if p.moving {
		t := float64(common.Clamp(p.moveTimer/MoveDuration, 0, 1))
		x += float64(p.next.Col-p.Cur.Col) * t
		y += float64(p.next.Row-p.Cur.Row) * t
	}
	return x, y
}

// setFace shows f and restarts its timer.
func (p *Player) setFace(f Face) {
	p.Face, p.faceTimer = f, 0
}

func (p *Player) updateFace(elapsed float64) {
	if p.Face == FaceIdle {
		return
	}
	p.faceTimer += elapsed
	if p.faceTimer >= FaceDuration {
		p.setFace(FaceIdle)
	}
}

// step advances movement and reports the tile reached this step, if any.
func (p *Player) step(g *Grid, elapsed float64) (Pos, bool) {
	if !p.moving {
		dr, dc := p.dir.delta()
		if dr == 0 && dc == 0 {
			return Pos{}, false
		}
		target := p.Cur.Add(dr, dc)
		if !g.Interior(target) {
			return Pos{}, false
		}
		p.moving, p.next, p.moveTimer = true, target, 0
	}
	p.moveTimer += elapsed
	if p.moveTimer < MoveDuration {
		return Pos{}, false
	}
	p.Cur, p.moving, p.moveTimer = p.next, false, 0
	return p.Cur, true
}

// closed handles a committed trail.
func (p *Player) closed() {
	if !p.pressed {
		p.dir = Idle
	}
	p.setFace(FaceSmile)
}

// hurt takes a heart and sends the player back to its spawn point.
func (p *Player) hurt() {
	if p.Hearts > 0 {
		p.Hearts--
	}
	p.Cur, p.moving, p.moveTimer = p.Spawn, false, 0
	p.dir, p.pressed = Idle, false
	p.setFace(FaceHit)
}
