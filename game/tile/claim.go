package tile

// Outcome is what entering a tile did.
type Outcome int

const (
	// Nothing changed: the player walked on owned ground with no trail open.
	Nothing Outcome = iota
	// Extended the trail by one tile.
	Extended
	// Committed the trail and any region it enclosed.
	Committed
	// Crossed the trail at a tile other than its start; the trail was forfeited.
	Crossed
)

func (o Outcome) String() string {
	switch o {
	case Nothing:
		return "nothing"
	case Extended:
		return "extended"
	case Committed:
		return "committed"
	case Crossed:
		return "crossed"
	}
	return "unknown"
}

// Enter applies the player arriving on p.
//
// An unowned tile extends the trail. An owned tile, or the first tile of the trail,
// closes the loop: the trail and every unowned tile it cuts off from the border
// become owned. Any other trail tile is a self-crossing, which forfeits the trail.
//
// Parameters:
//   - p: the tile the player just reached; must be interior
//
// Returns:
//   - Outcome: what happened
//   - int: tiles newly owned on Committed, tiles reverted on Crossed, else 0
func (g *Grid) Enter(p Pos) (Outcome, int) {
	if i, ok := g.inTrail[p]; ok {
		switch {
		case i == len(g.trail)-1:
			return Nothing, 0
		case i == 0:
			return Committed, g.commit()
		default:
			return Crossed, g.Forfeit()
		}
	}
	t := &g.tiles[g.index(p)]
	if t.Visited {
		if len(g.trail) == 0 {
			return Nothing, 0
		}
		return Committed, g.commit()
	}
	g.inTrail[p] = len(g.trail)
	g.trail = append(g.trail, trailStep{pos: p, shade: t.Shade})
	t.Shade = Trail
	return Extended, 0
}

// Forfeit reverts the open trail to the shades it covered and returns its length.
func (g *Grid) Forfeit() int {
	n := len(g.trail)
	for _, s := range g.trail {
		g.tiles[g.index(s.pos)].Shade = s.shade
	}
	g.clearTrail()
	return n
}

func (g *Grid) clearTrail() {
	g.trail = g.trail[:0]
	clear(g.inTrail)
}

// commit owns the trail plus every unowned tile the flood from the border cannot
// reach, with the trail acting as a wall.
func (g *Grid) commit() int {
	reached := g.floodFromBorder()

	claimed := make([]Pos, 0, len(g.trail))
	for r := 1; r < g.rows-1; r++ {
		for c := 1; c < g.cols-1; c++ {
			i := r*g.cols + c
			t := &g.tiles[i]
			if t.Visited || t.Shade == Trail || reached[i] {
				continue
			}
			t.Visited, t.Shade = true, Owned
			claimed = append(claimed, Pos{r, c})
		}
	}
	trail := g.Trail()
	for _, p := range trail {
		t := &g.tiles[g.index(p)]
		t.Visited, t.Shade = true, Owned
	}
	claimed = append(claimed, trail...)
	g.clearTrail()

	g.shadeNeighbours(trail)
	g.owned += len(claimed)
	g.claims = append(g.claims, Claim{Tiles: claimed})
	return len(claimed)
}

// floodFromBorder marks every tile reachable from the border ring through
// unowned, non-trail tiles, moving in eight directions.
func (g *Grid) floodFromBorder() []bool {
	reached := make([]bool, len(g.tiles))
	stack := make([]Pos, 0, 2*(g.rows+g.cols))
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			p := Pos{r, c}
			if g.onBorder(p) {
				reached[g.index(p)] = true
				stack = append(stack, p)
			}
		}
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		g.neighbours8(p, func(q Pos) {
			i := g.index(q)
			if reached[i] {
				return
			}
			if t := g.tiles[i]; t.Visited || t.Shade == Trail {
				return
			}
			reached[i] = true
			stack = append(stack, q)
		})
	}
	return reached
}
