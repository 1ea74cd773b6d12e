package quadgrid

import (
	"strings"
	"testing"
)

func TestRandMatchesLibc(t *testing.T) {
	want := []int{1804289383, 846930886, 1681692777, 1714636915, 1957747793}
	r := NewRand(0)
	for i, w := range want {
		if got := r.Int(); got != w {
			t.Errorf("value %d got %d, want %d", i, got, w)
		}
	}
	r1 := NewRand(1)
	r0 := NewRand(0)
	for i := 0; i < 100; i++ {
		if a, b := r0.Int(), r1.Int(); a != b {
			t.Fatalf("seed 0 and 1 differ at %d", i)
		}
	}
}

func unitQuads(w, h int, skip map[[2]int]bool) []Quad {
	var qs []Quad
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if skip[[2]int{x, y}] {
				continue
			}
			qs = append(qs, Quad{
				X1: float32(x), Z1: float32(y + 1), X2: float32(x + 1), Z2: float32(y),
				D1: x, D2: y, Dex1: x, Dex2: y, T1: 0, T2: 3,
			})
		}
	}
	return qs
}

func TestBuild(t *testing.T) {
	g, ok := Build(unitQuads(3, 2, nil), 0)
	if !ok {
		t.Fatal("grid not built")
	}
	if g.Width != 3 || g.Height != 2 {
		t.Errorf("got %dx%d, want 3x2", g.Width, g.Height)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			c, err := g.Cell(x, y)
			if err != nil {
				t.Fatal(err)
			}
			if !c.Init || c.Quad.D1 != x || c.Quad.D2 != y {
				t.Errorf("cell (%d, %d) holds %+v", x, y, c.Quad)
			}
		}
	}
	if _, err := g.Cell(3, 0); err == nil {
		t.Error("out of range cell accepted")
	}
}

func TestBuildRejectsMixedSizes(t *testing.T) {
	qs := unitQuads(2, 1, nil)
	qs[1].X2 = qs[1].X1 + 2
	if _, ok := Build(qs, 0); ok {
		t.Error("mixed quad sizes accepted")
	}
	if _, ok := Build(qs[:1], 0); ok {
		t.Error("single quad accepted")
	}
}

func TestSolveFullGrid(t *testing.T) {
	g, _ := Build(unitQuads(2, 2, nil), 0)
	if err := g.Solve(); err != nil {
		t.Fatal(err)
	}
	if len(g.Squares) != 1 || g.Squares[0] != (Square{0, 0, 2, 2}) {
		t.Errorf("squares %+v", g.Squares)
	}
	if s := g.String(); s != "00\n00\n" {
		t.Errorf("grid drawn as %q", s)
	}
}

func TestSolveCoversEveryCell(t *testing.T) {
	skip := map[[2]int]bool{{2, 1}: true, {0, 3}: true, {4, 4}: true}
	g, ok := Build(unitQuads(6, 5, skip), 0)
	if !ok {
		t.Fatal("grid not built")
	}
	if err := g.Solve(); err != nil {
		t.Fatal(err)
	}
	covered := make(map[[2]int]int)
	for _, s := range g.Squares {
		if float64(s.Width)/float64(s.Height) > MaxRatio || float64(s.Height)/float64(s.Width) > MaxRatio {
			t.Errorf("square %+v exceeds the ratio limit", s)
		}
		for y := s.Y; y < s.Y+s.Height; y++ {
			for x := s.X; x < s.X+s.Width; x++ {
				covered[[2]int{x, y}]++
			}
		}
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			want := 1
			if skip[[2]int{x, y}] {
				want = 0
			}
			if got := covered[[2]int{x, y}]; got != want {
				t.Errorf("cell (%d, %d) covered %d times, want %d", x, y, got, want)
			}
		}
	}
	if len(g.Squares) >= 27 {
		t.Errorf("%d squares, packing merged nothing", len(g.Squares))
	}
	if strings.Contains(g.String(), "*") {
		t.Error("live cells left after solve")
	}

	again, _ := Build(unitQuads(6, 5, skip), 0)
	if err := again.Solve(); err != nil {
		t.Fatal(err)
	}
	if len(again.Squares) != len(g.Squares) {
		t.Fatalf("solve is not deterministic: %d vs %d squares", len(again.Squares), len(g.Squares))
	}
	for i := range g.Squares {
		if g.Squares[i] != again.Squares[i] {
			t.Errorf("square %d differs: %+v vs %+v", i, g.Squares[i], again.Squares[i])
		}
	}
}

func TestSolveEmptyGrid(t *testing.T) {
	g := New(0, 0, 0)
	if err := g.Solve(); err != nil {
		t.Fatal(err)
	}
	if len(g.Squares) != 0 {
		t.Errorf("got %d squares", len(g.Squares))
	}
}
