// Package curve projects a pity trajectory and past cycles onto a small grid
// for sparkline-style trend display.
package curve

import (
	"math"
	"strings"

	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/history"
)

const (
	DefaultRows = 6
	DefaultCols = 32
)

// Cell is one grid position.
type Cell uint8

const (
	Empty   Cell = iota
	Ghost        // a past cycle
	Current      // the current cycle
)

// Glyphs used by Grid.String.
const (
	CurrentGlyph = '█'
	GhostGlyph   = '·'
)

// Grid is rows × cols cells; row 0 is the top (highest progress).
type Grid [][]Cell

// Renderer maps (pull → normalized progress) onto Rows × Cols.
type Renderer struct {
	Rows int
	Cols int
}

// NewRenderer returns the default 6×32 renderer.
func NewRenderer() Renderer {
	return Renderer{Rows: DefaultRows, Cols: DefaultCols}
}

// Render draws up to history.Window ghost cycles, then the current cycle on
// top. Ghosts only fill empty cells; the current cycle always wins.
func (r Renderer) Render(rule gacha.MercyRule, current int, cycles []history.Cycle) Grid {
	rows, cols := r.size()
	grid := make(Grid, rows)
	for i := range grid {
		grid[i] = make([]Cell, cols)
	}

	if len(cycles) > history.Window {
		cycles = cycles[len(cycles)-history.Window:]
	}
	for _, c := range cycles {
		for i := 0; i < cols; i++ {
			pull := r.samplePull(rule, i)
			if pull > len(c)-1 {
				continue
			}
			row := r.row(rule, pull)
			if grid[row][i] == Empty {
				grid[row][i] = Ghost
			}
		}
	}

	for i := 0; i < cols; i++ {
		pull := r.samplePull(rule, i)
		if pull > current {
			continue
		}
		grid[r.row(rule, pull)][i] = Current
	}
	return grid
}

func (r Renderer) size() (int, int) {
	rows, cols := r.Rows, r.Cols
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return rows, cols
}

// samplePull returns the virtual pull count of column i.
func (r Renderer) samplePull(rule gacha.MercyRule, i int) int {
	_, cols := r.size()
	t := float64(i) / float64(max(1, cols-1))
	return int(t * float64(rule.HardPityCap))
}

func (r Renderer) row(rule gacha.MercyRule, pull int) int {
	rows, _ := r.size()
	v := gacha.NormalizedProgress(rule, pull)
	row := rows - 1 - int(math.Round(v*float64(rows-1)))
	return min(rows-1, max(0, row))
}

// String renders the grid as text, one line per row.
func (g Grid) String() string {
	var b strings.Builder
	for i, row := range g {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			switch c {
			case Current:
				b.WriteRune(CurrentGlyph)
			case Ghost:
				b.WriteRune(GhostGlyph)
			default:
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

// Count returns how many cells hold c.
func (g Grid) Count(c Cell) int {
	n := 0
	for _, row := range g {
		for _, v := range row {
			if v == c {
				n++
			}
		}
	}
	return n
}
