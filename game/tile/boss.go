package tile

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Carmen-Shannon/millennium-run/game/stage"
)

// Volley sizes per pattern.
const (
	ringBullets   = 12
	fanBullets    = 5
	fanSpread     = math.Pi / 6
	spiralBullets = 6
	spiralTurn    = 0.35
)

type weightedPattern struct {
	pattern stage.Pattern
	weight  int
}

// Boss roams the unowned interior and fires bullet volleys at a fixed interval.
type Boss struct {
	X, Y float64 // center in tile units

	speed    float64
	interval float64
	bullet   float64
	patterns []weightedPattern
	total    int

	targetX, targetY float64
	fireTimer        float64
	spiral           float64
	rng              *rand.Rand
}

// NewBoss places a boss at the grid center using the tuning of s.
func NewBoss(g *Grid, s stage.Stage, rng *rand.Rand) *Boss {
	b := &Boss{
		X:        float64(g.Cols()) / 2,
		Y:        float64(g.Rows()) / 2,
		speed:    s.BossSpeed,
		interval: s.FireInterval,
		bullet:   s.BulletSpeed,
		rng:      rng,
	}
	for p, w := range s.Patterns {
		if w > 0 {
			b.patterns = append(b.patterns, weightedPattern{p, w})
			b.total += w
		}
	}
	// map order is random; sort so a seeded rng replays the same volleys
	sort.Slice(b.patterns, func(i, j int) bool { return b.patterns[i].pattern < b.patterns[j].pattern })
	b.targetX, b.targetY = b.X, b.Y
	return b
}

// pickTarget chooses a random unowned interior tile center, keeping the current
// target when none is found in a few tries.
func (b *Boss) pickTarget(g *Grid) {
	for range 16 {
		p := Pos{1 + b.rng.IntN(g.Rows()-2), 1 + b.rng.IntN(g.Cols()-2)}
		if !g.At(p).Visited {
			b.targetX, b.targetY = float64(p.Col)+0.5, float64(p.Row)+0.5
			return
		}
	}
}

// update moves toward the target and returns any volley fired this step, aimed
// from the boss toward (px, py) where a pattern aims.
func (b *Boss) update(g *Grid, elapsed, px, py float64) []Bullet {
	dx, dy := b.targetX-b.X, b.targetY-b.Y
	dist := math.Hypot(dx, dy)
	move := b.speed * elapsed
	if dist <= move {
		b.X, b.Y = b.targetX, b.targetY
		b.pickTarget(g)
	} else {
		b.X += dx / dist * move
		b.Y += dy / dist * move
	}

	b.fireTimer += elapsed
	if b.fireTimer < b.interval || b.total == 0 {
		return nil
	}
	b.fireTimer -= b.interval
	return b.fire(b.choose(), px, py)
}

func (b *Boss) choose() stage.Pattern {
	n := b.rng.IntN(b.total)
	for _, p := range b.patterns {
		if n < p.weight {
			return p.pattern
		}
		n -= p.weight
	}
	return b.patterns[len(b.patterns)-1].pattern
}

// fire builds one volley of pattern.
func (b *Boss) fire(pattern stage.Pattern, px, py float64) []Bullet {
	var angles []float64
	switch pattern {
	case stage.PatternRing:
		for i := range ringBullets {
			angles = append(angles, 2*math.Pi*float64(i)/ringBullets)
		}
	case stage.PatternFan:
		aim := math.Atan2(py-b.Y, px-b.X)
		for i := range fanBullets {
			angles = append(angles, aim+fanSpread*(float64(i)-(fanBullets-1)/2.0)/2)
		}
	case stage.PatternSpiral:
		for i := range spiralBullets {
			angles = append(angles, b.spiral+2*math.Pi*float64(i)/spiralBullets)
		}
		b.spiral += spiralTurn
	case stage.PatternCross:
		for i := range 4 {
			angles = append(angles, math.Pi/2*float64(i))
		}
	}
	out := make([]Bullet, len(angles))
	for i, a := range angles {
		out[i] = Bullet{X: b.X, Y: b.Y, VX: math.Cos(a) * b.bullet, VY: math.Sin(a) * b.bullet}
	}
	return out
}
