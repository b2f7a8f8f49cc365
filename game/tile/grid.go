// Package tile implements the tile-claim core: the grid of owned and unowned
// tiles, the player's trail, loop commits with enclosure flood fill, and the
// boss and bullets that threaten an open trail.
package tile

import (
	"fmt"
	"math/rand/v2"

	"github.com/Carmen-Shannon/millennium-run/common"
)

// ClaimFade is how long newly owned tiles take to fade in, in seconds.
const ClaimFade = 0.3

// Pos is a tile coordinate. Row 0 is the top of the grid.
type Pos struct {
	Row, Col int
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Add returns p moved by dr rows and dc columns.
func (p Pos) Add(dr, dc int) Pos { return Pos{p.Row + dr, p.Col + dc} }

// Shade is the color bucket of a tile.
type Shade uint8

const (
	// Blank is an unowned tile away from any claim.
	Blank Shade = iota
	// Edge is an unowned tile on the grid border or next to claimed ground.
	Edge
	// Trail is part of the open trail.
	Trail
	// Owned is claimed ground.
	Owned
)

func (s Shade) String() string {
	switch s {
	case Blank:
		return "blank"
	case Edge:
		return "edge"
	case Trail:
		return "trail"
	case Owned:
		return "owned"
	}
	return fmt.Sprintf("Shade(%d)", int(s))
}

// Tile is one cell. Visited holds exactly when Shade is Owned.
type Tile struct {
	Visited bool
	Shade   Shade
}

// Claim is one batch of newly owned tiles and the time since it was committed.
type Claim struct {
	Timer float64
	Tiles []Pos
}

// Alpha is the opacity of the claim's fade-in overlay: 1 at commit, 0 after ClaimFade.
func (c Claim) Alpha() float32 {
	return 1 - common.Smoothstep(float32(c.Timer/ClaimFade))
}

type trailStep struct {
	pos   Pos
	shade Shade // shade before the trail covered it
}

// Grid is the playfield. The outer ring is the border: it is never owned and the
// player never walks on it. The zero value is not usable; call NewGrid.
type Grid struct {
	rows, cols int
	tiles      []Tile

	trail   []trailStep
	inTrail map[Pos]int

	owned int
	total int

	claims []Claim
}

// NewGrid creates a grid with no owned tiles.
//
// Parameters:
//   - rows: number of rows including the border, at least 3
//   - cols: number of columns including the border, at least 3
//
// Returns:
//   - *Grid: the grid
//   - error: an error if the grid has no interior
func NewGrid(rows, cols int) (*Grid, error) {
	if rows < 3 || cols < 3 {
		return nil, fmt.Errorf("tile: grid %dx%d has no interior", rows, cols)
	}
	g := &Grid{
		rows:    rows,
		cols:    cols,
		tiles:   make([]Tile, rows*cols),
		inTrail: make(map[Pos]int),
		total:   (rows - 2) * (cols - 2),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.onBorder(Pos{r, c}) {
				g.tiles[r*cols+c].Shade = Edge
			}
		}
	}
	return g, nil
}

func (g *Grid) Rows() int { return g.rows }

func (g *Grid) Cols() int { return g.cols }

func (g *Grid) index(p Pos) int { return p.Row*g.cols + p.Col }

// Contains reports whether p lies on the grid, border included.
func (g *Grid) Contains(p Pos) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

func (g *Grid) onBorder(p Pos) bool {
	return p.Row == 0 || p.Col == 0 || p.Row == g.rows-1 || p.Col == g.cols-1
}

// Interior reports whether p is inside the border ring, where the player may walk.
func (g *Grid) Interior(p Pos) bool {
	return p.Row >= 1 && p.Row <= g.rows-2 && p.Col >= 1 && p.Col <= g.cols-2
}

// At returns the tile at p. p must be on the grid.
func (g *Grid) At(p Pos) Tile { return g.tiles[g.index(p)] }

// Owned returns how many tiles are owned.
func (g *Grid) Owned() int { return g.owned }

// Total returns how many tiles can be owned: the interior.
func (g *Grid) Total() int { return g.total }

// Percent returns floor(100 * owned / total).
func (g *Grid) Percent() int { return 100 * g.owned / g.total }

// Trailing reports whether a trail is open.
func (g *Grid) Trailing() bool { return len(g.trail) > 0 }

// Trail returns the open trail, oldest first.
func (g *Grid) Trail() []Pos {
	out := make([]Pos, len(g.trail))
	for i, s := range g.trail {
		out[i] = s.pos
	}
	return out
}

// Claims returns the claims still fading in, oldest first.
func (g *Grid) Claims() []Claim { return g.claims }

// OwnSquare marks the (2*half+1)² square around center as owned, clipped to the
// interior, and shades its unowned neighbours as edges. It is used to seed the spawn
// area and does not create a fading claim.
func (g *Grid) OwnSquare(center Pos, half int) {
	var square []Pos
	for r := center.Row - half; r <= center.Row+half; r++ {
		for c := center.Col - half; c <= center.Col+half; c++ {
			p := Pos{r, c}
			if !g.Interior(p) {
				continue
			}
			if t := &g.tiles[g.index(p)]; !t.Visited {
				t.Visited, t.Shade = true, Owned
				g.owned++
				square = append(square, p)
			}
		}
	}
	g.shadeNeighbours(square)
}

// SpawnPoints returns the eight candidate spawn points on the quarter lines of a
// rows x cols grid, in a fixed order.
func SpawnPoints(rows, cols int) []Pos {
	nr, nc := rows/4, cols/4
	return []Pos{
		{nr, nc}, {nr, 2 * nc}, {nr, 3 * nc},
		{2 * nr, nc}, {2 * nr, 3 * nc},
		{3 * nr, nc}, {3 * nr, 2 * nc}, {3 * nr, 3 * nc},
	}
}

// Spawn picks one of the spawn points at random and pre-owns the square of
// half-size half around it.
//
// Parameters:
//   - rng: the random source
//   - half: the half size of the pre-owned square
//
// Returns:
//   - Pos: the chosen spawn point
func (g *Grid) Spawn(rng *rand.Rand, half int) Pos {
	points := SpawnPoints(g.rows, g.cols)
	rng.Shuffle(len(points), func(i, j int) { points[i], points[j] = points[j], points[i] })
	p := points[len(points)-1]
	g.OwnSquare(p, half)
	return p
}

// Update advances the claim fade timers and drops finished claims.
func (g *Grid) Update(elapsed float64) {
	n := 0
	for _, c := range g.claims {
		c.Timer += elapsed
		if c.Timer < ClaimFade {
			g.claims[n] = c
			n++
		}
	}
	for i := n; i < len(g.claims); i++ {
		g.claims[i] = Claim{}
	}
	g.claims = g.claims[:n]
}

// neighbours8 calls fn for each on-grid neighbour of p, diagonals included.
func (g *Grid) neighbours8(p Pos, fn func(Pos)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if q := p.Add(dr, dc); g.Contains(q) {
				fn(q)
			}
		}
	}
}

// shadeNeighbours marks every unowned, non-trail neighbour of tiles as an edge.
func (g *Grid) shadeNeighbours(tiles []Pos) {
	for _, p := range tiles {
		g.neighbours8(p, func(q Pos) {
			if t := &g.tiles[g.index(q)]; !t.Visited && t.Shade != Trail {
				t.Shade = Edge
			}
		})
	}
}
