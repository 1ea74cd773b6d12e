package quadgrid

// Rand reproduces the default random generator of the GNU C library, the
// additive feedback generator with a 31 word state, so packing results are
// the same on every platform.
type Rand struct {
	state [31]int32
	f, r  int
}

// NewRand seeds a generator the way srand does. Seed 0 behaves as seed 1.
func NewRand(seed uint32) *Rand {
	g := &Rand{}
	g.Seed(seed)
	return g
}

// Seed resets the generator.
func (g *Rand) Seed(seed uint32) {
	if seed == 0 {
		seed = 1
	}
	g.state[0] = int32(seed)
	word := int32(seed)
	for i := 1; i < len(g.state); i++ {
		// 16807 * word % 2147483647 without overflow
		hi := word / 127773
		lo := word % 127773
		word = 16807*lo - 2836*hi
		if word < 0 {
			word += 2147483647
		}
		g.state[i] = word
	}
	g.f, g.r = 3, 0
	for i := 0; i < 310; i++ {
		g.next()
	}
}

func (g *Rand) next() int32 {
	g.state[g.f] += g.state[g.r]
	v := int32(uint32(g.state[g.f]) >> 1)
	g.f++
	if g.f >= len(g.state) {
		g.f = 0
	}
	g.r++
	if g.r >= len(g.state) {
		g.r = 0
	}
	return v
}

// Int returns a value in [0, 2^31).
func (g *Rand) Int() int {
	return int(g.next())
}
