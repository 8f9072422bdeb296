package testutil

import (
	"math/rand/v2"
	"sync"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
)

// Sampler produces a reproducible stream of operand assignments for a
// block's ports.
//
// The first two assignments are the corners (every port all zeros, then all
// ones); the rest come from a PCG generator seeded with the sampler's seed.
// The same seed and ports always yield the same stream.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sampler struct {
	mu    sync.Mutex
	seed  uint64
	ports ir.Ports
	rng   *rand.Rand
	n     int
}

// NewSampler creates a sampler for ports starting from seed.
func NewSampler(seed uint64, ports ir.Ports) *Sampler {
	s := &Sampler{seed: seed, ports: ports}
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return s
}

// Next returns the next assignment. Unused ports are always zero.
func (s *Sampler) Next() ir.Operands {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++
	switch s.n {
	case 1:
		return ir.Operands{}
	case 2:
		return s.masked(^uint64(0), ^uint64(0), ^uint64(0))
	default:
		return s.masked(s.rng.Uint64(), s.rng.Uint64(), s.rng.Uint64())
	}
}

// Count returns how many assignments have been produced.
func (s *Sampler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Reset rewinds the sampler to the start of its stream.
func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
}

func (s *Sampler) masked(a, b, offset uint64) ir.Operands {
	return ir.Operands{
		A:      a & matrix.Mask(s.ports.A),
		B:      b & matrix.Mask(s.ports.B),
		Offset: offset & matrix.Mask(s.ports.Offset),
	}
}
