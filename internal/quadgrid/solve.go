package quadgrid

import (
	"math"

	"go.uber.org/zap"

	"meshopt/internal/logger"
)

// Solve packs the live cells into squares. Each of the Passes attempts
// claims cells greedily from a random scan order and the attempt with the
// fewest squares is kept. The generator is reseeded on every call so the
// result only depends on the grid.
func (g *Grid) Solve() error {
	if g.Width <= 0 || g.Height <= 0 {
		g.Squares = nil
		return nil
	}
	rnd := NewRand(0)
	var best []Square
	bestCount, bestPass := math.MaxInt, -1
	for pass := 0; pass < Passes; pass++ {
		g.reinit()
		for {
			s := g.candidate(rnd.Int() % 8)
			if s.Width == 0 {
				if len(g.Squares) < bestCount {
					bestCount = len(g.Squares)
					best = append(best[:0], g.Squares...)
					bestPass = pass
				}
				break
			}
			if err := g.add(s); err != nil {
				return err
			}
		}
	}
	// leave the cells claimed by the kept squares
	g.reinit()
	for _, s := range best {
		if err := g.add(s); err != nil {
			return err
		}
	}
	logger.Log.Info("quad grid solved",
		zap.Float32("level", g.Level),
		zap.Int("squares", len(g.Squares)),
		zap.Int("pass", bestPass))
	return nil
}

// candidate finds the next live cell in scan order c and grows a square
// from it. A zero width square means no live cell is left.
func (g *Grid) candidate(c int) Square {
	x, y := g.mark[c][0], g.mark[c][1]
	w, h := g.Width, g.Height
	found := false
	switch c {
	case 0:
		for y < h {
			if g.live(x, y) {
				found = true
				break
			}
			if x++; x == w {
				y++
				x = 0
			}
		}
	case 1:
		for x < w {
			if g.live(x, y) {
				found = true
				break
			}
			if y++; y == h {
				x++
				y = 0
			}
		}
	case 2:
		for y < h {
			if g.live(x, y) {
				found = true
				break
			}
			if x--; x == -1 {
				y++
				x = w - 1
			}
		}
	case 3:
		for x >= 0 {
			if g.live(x, y) {
				found = true
				break
			}
			if y++; y == h {
				x--
				y = 0
			}
		}
	case 4:
		for y >= 0 {
			if g.live(x, y) {
				found = true
				break
			}
			if x--; x == -1 {
				y--
				x = w - 1
			}
		}
	case 5:
		for x >= 0 {
			if g.live(x, y) {
				found = true
				break
			}
			if y--; y == -1 {
				x--
				y = h - 1
			}
		}
	case 6:
		for y >= 0 {
			if g.live(x, y) {
				found = true
				break
			}
			if x++; x == w {
				y--
				x = 0
			}
		}
	case 7:
		for x < w {
			if g.live(x, y) {
				found = true
				break
			}
			if y--; y == -1 {
				x++
				y = h - 1
			}
		}
	}
	if !found {
		return Square{}
	}
	g.mark[c] = [2]int{x, y}
	return g.grow(c, x, y)
}

// grow extends a square from the live cell x, y, alternately adding a
// column and a row while the new cells are live.
func (g *Grid) grow(c, x, y int) Square {
	dx, dy := 1, 1
	if c >= 2 && c <= 5 {
		dx = -1
	}
	if c >= 4 {
		dy = -1
	}
	sw, sh := 0, 0
	widen, heighten := true, true
	for widen || heighten {
		if widen {
			sw++
			if nx := x + sw*dx; nx < 0 || nx >= g.Width {
				widen = false
			}
		}
		if heighten {
			sh++
			if ny := y + sh*dy; ny < 0 || ny >= g.Height {
				heighten = false
			}
		}
		if widen {
			for iy := 0; iy < sh; iy++ {
				if !g.live(x+dx*sw, y+dy*iy) {
					widen = false
					break
				}
			}
		}
		if heighten {
			for ix := 0; ix < sw; ix++ {
				if !g.live(x+dx*ix, y+dy*sh) {
					heighten = false
					break
				}
			}
		}
		if widen && heighten && !g.live(x+dx*sw, y+dy*sh) {
			heighten = false
		}
		if float32(sh)/float32(sw) > MaxRatio || float32(sw)/float32(sh) > MaxRatio {
			break
		}
	}
	s := Square{X: x, Y: y, Width: sw, Height: sh}
	if dx < 0 {
		s.X = x - sw + 1
	}
	if dy < 0 {
		s.Y = y - sh + 1
	}
	return s
}
