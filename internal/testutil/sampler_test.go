package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dadda/internal/ir"
)

var ports4x4 = ir.Ports{A: 4, B: 4, Product: 8}

func TestSampler_StartsWithCorners(t *testing.T) {
	s := NewSampler(1, ir.Ports{A: 4, B: 4, Offset: 3, Product: 8})

	assert.Equal(t, ir.Operands{}, s.Next())
	assert.Equal(t, ir.Operands{A: 0xf, B: 0xf, Offset: 0x7}, s.Next())
	assert.Equal(t, 2, s.Count())
}

func TestSampler_MasksToPortWidths(t *testing.T) {
	s := NewSampler(7, ir.Ports{A: 3, Product: 6})

	for i := 0; i < 100; i++ {
		ops := s.Next()
		require.Less(t, ops.A, uint64(8))
		require.Zero(t, ops.B, "absent port b stays zero")
		require.Zero(t, ops.Offset, "absent offset port stays zero")
	}
}

func TestSampler_SameSeedSameStream(t *testing.T) {
	a, b := NewSampler(42, ports4x4), NewSampler(42, ports4x4)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Next(), b.Next(), "sample %d", i)
	}
}

func TestSampler_DifferentSeedsDiverge(t *testing.T) {
	a, b := NewSampler(1, ir.Ports{A: 32, B: 32, Product: 64}), NewSampler(2, ir.Ports{A: 32, B: 32, Product: 64})
	a.Next()
	a.Next()
	b.Next()
	b.Next()

	same := 0
	for i := 0; i < 20; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func TestSampler_Reset(t *testing.T) {
	s := NewSampler(9, ports4x4)
	first := []ir.Operands{s.Next(), s.Next(), s.Next(), s.Next()}

	s.Reset()
	assert.Equal(t, 0, s.Count())
	second := []ir.Operands{s.Next(), s.Next(), s.Next(), s.Next()}
	assert.Equal(t, first, second)
}

func TestSampler_ConcurrentAccess(t *testing.T) {
	s := NewSampler(3, ports4x4)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Next()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, s.Count())
}

func TestFixedOperands(t *testing.T) {
	f := NewFixedOperands([]ir.Operands{{A: 1, B: 2}, {A: 3, B: 4}})

	assert.Equal(t, ir.Operands{A: 1, B: 2}, f.Next())
	assert.Equal(t, ir.Operands{A: 3, B: 4}, f.Next())
	assert.Equal(t, ir.Operands{A: 1, B: 2}, f.Next(), "wraps around")

	empty := NewFixedOperands(nil)
	assert.Equal(t, ir.Operands{}, empty.Next())
}
