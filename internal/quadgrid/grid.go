// Package quadgrid lays axis aligned quads out on a uniform grid and packs
// adjacent live cells into as few rectangles as it can find.
package quadgrid

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"meshopt/internal/logger"
)

// Passes is the number of randomized packing attempts.
const Passes = 1000

// MaxRatio bounds the aspect ratio of a packed rectangle.
const MaxRatio = 6.0

// Quad is a pair of triangles sharing the diagonal D1-D2. D1 has the lower x.
// Dex1 and Dex2 are the remaining corner of each triangle and T1, T2 the
// positions of the triangles in the index buffer.
type Quad struct {
	X1, Z1, X2, Z2 float32

	D1, D2     int
	Dex1, Dex2 int
	T1, T2     int
}

// Cell is one grid position.
type Cell struct {
	// Init is set when a quad occupies the cell.
	Init bool
	// Live is set while the cell is not claimed by a square.
	Live   bool
	Quad   Quad
	Square int
}

// Square is a packed rectangle of cells.
type Square struct {
	X, Y, Width, Height int
}

// Grid holds the quads of one plane.
type Grid struct {
	Width, Height int
	Level         float32
	Squares       []Square

	cells []Cell
	mark  [8][2]int
}

var errOutOfRange = errors.New("quadgrid: cell out of range")

// Build places quads on a grid. It reports false when there are fewer than
// two quads or when they do not all have the same size.
func Build(quads []Quad, level float32) (*Grid, bool) {
	if len(quads) < 2 {
		logger.Log.Debug("not enough quads", zap.Float32("level", level), zap.Int("quads", len(quads)))
		return nil, false
	}
	minX, minZ := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxZ := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	dx := abs32(quads[0].X1 - quads[0].X2)
	dz := abs32(quads[0].Z1 - quads[0].Z2)
	for _, q := range quads {
		if abs32(q.X1-q.X2) != dx || abs32(q.Z1-q.Z2) != dz {
			logger.Log.Info("quads of different sizes",
				zap.Float32("level", level),
				zap.Float32("dx", abs32(q.X1-q.X2)),
				zap.Float32("dz", abs32(q.Z1-q.Z2)))
			return nil, false
		}
		minX = min(minX, q.X1, q.X2)
		minZ = min(minZ, q.Z1, q.Z2)
		maxX = max(maxX, q.X1, q.X2)
		maxZ = max(maxZ, q.Z1, q.Z2)
	}
	w := int(math.Ceil(float64((maxX - minX) / dx)))
	h := int(math.Ceil(float64((maxZ - minZ) / dz)))
	g := New(w, h, level)
	for _, q := range quads {
		mx := (q.X1 + q.X2) * 0.5
		mz := (q.Z1 + q.Z2) * 0.5
		x := int(math.Floor(float64((mx - minX) / dx)))
		y := int(math.Floor(float64((mz - minZ) / dz)))
		c, err := g.cell(x, y)
		if err != nil {
			return nil, false
		}
		c.Init = true
		c.Quad = q
	}
	return g, true
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// New returns an empty w by h grid.
func New(w, h int, level float32) *Grid {
	g := &Grid{Width: w, Height: h, Level: level}
	g.cells = make([]Cell, w*h)
	for i := range g.cells {
		g.cells[i].Square = -1
	}
	return g
}

func (g *Grid) cell(x, y int) (*Cell, error) {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return nil, fmt.Errorf("%w: (%d, %d) in %dx%d", errOutOfRange, x, y, g.Width, g.Height)
	}
	return &g.cells[x+y*g.Width], nil
}

// Cell returns the cell at x, y.
func (g *Grid) Cell(x, y int) (*Cell, error) {
	return g.cell(x, y)
}

// live reports whether the cell is in range and unclaimed.
func (g *Grid) live(x, y int) bool {
	return g.cells[x+y*g.Width].Live
}

func (g *Grid) reinit() {
	for i := range g.cells {
		g.cells[i].Live = g.cells[i].Init
		g.cells[i].Square = -1
	}
	g.mark = [8][2]int{
		{0, 0}, {0, 0},
		{g.Width - 1, 0}, {g.Width - 1, 0},
		{g.Width - 1, g.Height - 1}, {g.Width - 1, g.Height - 1},
		{0, g.Height - 1}, {0, g.Height - 1},
	}
	g.Squares = g.Squares[:0]
}

func (g *Grid) add(s Square) error {
	ind := len(g.Squares)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c, err := g.cell(s.X+x, s.Y+y)
			if err != nil {
				return err
			}
			if !c.Init {
				return fmt.Errorf("quadgrid: square %v covers empty cell (%d, %d)", s, s.X+x, s.Y+y)
			}
			c.Live = false
			c.Square = ind
		}
	}
	g.Squares = append(g.Squares, s)
	return nil
}

// String draws live cells as '*' and claimed cells with their square marker.
func (g *Grid) String() string {
	const markers = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var sb strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := &g.cells[x+y*g.Width]
			switch {
			case c.Live:
				sb.WriteByte('*')
			case c.Square >= len(markers):
				sb.WriteByte('$')
			case c.Square >= 0:
				sb.WriteByte(markers[c.Square])
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
