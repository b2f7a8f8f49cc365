package gfx

import (
	"strings"

	"github.com/Carmen-Shannon/millennium-run/engine/scene"
)

// Glyphs are 3x5 cells; each row is three characters, '#' lit.
const (
	glyphCols = 3
	glyphRows = 5
)

var glyphs = map[rune][glyphRows]string{
	'0': {"###", "#.#", "#.#", "#.#", "###"},
	'1': {".#.", "##.", ".#.", ".#.", "###"},
	'2': {"###", "..#", "###", "#..", "###"},
	'3': {"###", "..#", ".##", "..#", "###"},
	'4': {"#.#", "#.#", "###", "..#", "..#"},
	'5': {"###", "#..", "###", "..#", "###"},
	'6': {"###", "#..", "###", "#.#", "###"},
	'7': {"###", "..#", ".#.", ".#.", ".#."},
	'8': {"###", "#.#", "###", "#.#", "###"},
	'9': {"###", "#.#", "###", "..#", "###"},
	'A': {".#.", "#.#", "###", "#.#", "#.#"},
	'B': {"##.", "#.#", "##.", "#.#", "##."},
	'C': {".##", "#..", "#..", "#..", ".##"},
	'D': {"##.", "#.#", "#.#", "#.#", "##."},
	'E': {"###", "#..", "##.", "#..", "###"},
	'F': {"###", "#..", "##.", "#..", "#.."},
	'G': {".##", "#..", "#.#", "#.#", ".##"},
	'H': {"#.#", "#.#", "###", "#.#", "#.#"},
	'I': {"###", ".#.", ".#.", ".#.", "###"},
	'J': {"..#", "..#", "..#", "#.#", ".#."},
	'K': {"#.#", "#.#", "##.", "#.#", "#.#"},
	'L': {"#..", "#..", "#..", "#..", "###"},
	'M': {"#.#", "###", "###", "#.#", "#.#"},
	'N': {"##.", "#.#", "#.#", "#.#", "#.#"},
	'O': {".#.", "#.#", "#.#", "#.#", ".#."},
	'P': {"##.", "#.#", "##.", "#..", "#.."},
	'Q': {".#.", "#.#", "#.#", "##.", ".##"},
	'R': {"##.", "#.#", "##.", "#.#", "#.#"},
	'S': {".##", "#..", ".#.", "..#", "##."},
	'T': {"###", ".#.", ".#.", ".#.", ".#."},
	'U': {"#.#", "#.#", "#.#", "#.#", "###"},
	'V': {"#.#", "#.#", "#.#", "#.#", ".#."},
	'W': {"#.#", "#.#", "###", "###", "#.#"},
	'X': {"#.#", "#.#", ".#.", "#.#", "#.#"},
	'Y': {"#.#", "#.#", ".#.", ".#.", ".#."},
	'Z': {"###", "..#", ".#.", "#..", "###"},
	':': {"...", ".#.", "...", ".#.", "..."},
	'%': {"#.#", "..#", ".#.", "#..", "#.#"},
	'/': {"..#", "..#", ".#.", "#..", "#.."},
	'-': {"...", "...", "###", "...", "..."},
	'.': {"...", "...", "...", "...", ".#."},
	'!': {".#.", ".#.", ".#.", "...", ".#."},
	'>': {"#..", ".#.", "..#", ".#.", "#.."},
	'*': {"...", "#.#", ".#.", "#.#", "..."},
}

// TextWidth returns the width of s drawn at scale, one blank column between glyphs.
func TextWidth(s string, scale float32) float32 {
	n := len([]rune(s))
	if n == 0 {
		return 0
	}
	return float32(n*(glyphCols+1)-1) * scale
}

// TextHeight returns the height of a line drawn at scale.
func TextHeight(scale float32) float32 { return glyphRows * scale }

// Text draws s with its top left corner at (x, y). Letters are upper-cased; runes
// without a glyph draw as blanks.
func Text(f *scene.Frame, x, y, scale float32, s string, c scene.Color) {
	for i, r := range []rune(strings.ToUpper(s)) {
		g, ok := glyphs[r]
		if !ok {
			continue
		}
		ox := x + float32(i*(glyphCols+1))*scale
		for row, line := range g {
			for col := range glyphCols {
				if line[col] == '#' {
					f.Rect(ox+float32(col)*scale, y+float32(row)*scale, scale, scale, c)
				}
			}
		}
	}
}

// TextCentered draws s centered horizontally on the canvas at y.
func TextCentered(f *scene.Frame, y, scale float32, s string, c scene.Color) {
	Text(f, (scene.CanvasWidth-TextWidth(s, scale))/2, y, scale, s, c)
}
