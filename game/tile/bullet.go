package tile

const (
	// BulletLife is how long a bullet lives, in seconds.
	BulletLife = 5.0
	// HitRadius is the distance between bullet and player centers that counts as a
	// hit, in tiles.
	HitRadius = 0.6
)

// Bullet is a boss projectile in tile units.
type Bullet struct {
	X, Y   float64
	VX, VY float64
	Age    float64
}

// inside reports whether the bullet center lies within the grid's bounding box.
func (b Bullet) inside(g *Grid) bool {
	return b.X >= 0 && b.Y >= 0 && b.X < float64(g.Cols()) && b.Y < float64(g.Rows())
}

// Tile returns the tile under the bullet. Only meaningful while it is on the grid.
func (b Bullet) Tile() Pos {
	return Pos{Row: int(b.Y), Col: int(b.X)}
}

// hits reports whether the bullet touches a player centered at (px, py).
func (b Bullet) hits(px, py float64) bool {
	dx, dy := b.X-px, b.Y-py
	return dx*dx+dy*dy < HitRadius*HitRadius
}

// advanceBullets integrates every bullet and despawns the expired and the ones that
// left the grid. It filters in place and returns the survivors.
func advanceBullets(g *Grid, bullets []Bullet, elapsed float64) []Bullet {
	n := 0
	for _, b := range bullets {
		b.X += b.VX * elapsed
		b.Y += b.VY * elapsed
		b.Age += elapsed
		if b.Age >= BulletLife || !b.inside(g) {
			continue
		}
		bullets[n] = b
		n++
	}
	return bullets[:n]
}
