package tetris

import "math/rand/v2"

// Generator draws the shape of the next tetromino.
type Generator interface {
	Next() Shape
}

// randomGenerator draws every shape independently and uniformly, repeats included.
type randomGenerator struct {
	r *rand.Rand
}

func newRandomGenerator(seed uint64) *randomGenerator {
	if seed == 0 {
		return &randomGenerator{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &randomGenerator{r: rand.New(rand.NewPCG(seed, seed))}
}

func (g *randomGenerator) Next() Shape {
	return Shapes[g.r.IntN(len(Shapes))]
}

// sequence replays a fixed list of shapes in a loop.
type sequence struct {
	shapes []Shape
	i      int
}

// Sequence returns a Generator that cycles through shapes. It's meant for tests
// and replays.
func Sequence(shapes ...Shape) Generator {
	return &sequence{shapes: shapes}
}

func (s *sequence) Next() Shape {
	v := s.shapes[s.i%len(s.shapes)]
	s.i++
	return v
}
