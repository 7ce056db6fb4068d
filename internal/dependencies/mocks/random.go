package mocks

import (
	"github.com/radieske/betbuddy-league/internal/dependencies/random"
)

// MockRandom devolve valores enfileirados. Quando a fila acaba, Float64
// devolve Fallback (padrão 0.999999, ou seja "nenhum evento") e Intn devolve 0.
type MockRandom struct {
	Floats   []float64
	Ints     []int
	Fallback float64

	floatIdx int
	intIdx   int
}

var _ random.Random = (*MockRandom)(nil)

func NewMockRandom() *MockRandom {
	return &MockRandom{Fallback: 0.999999}
}

func (r *MockRandom) Float64() float64 {
	if r.floatIdx >= len(r.Floats) {
		return r.Fallback
	}
	v := r.Floats[r.floatIdx]
	r.floatIdx++
	return v
}

func (r *MockRandom) Intn(n int) int {
	if r.intIdx >= len(r.Ints) || n <= 0 {
		return 0
	}
	v := r.Ints[r.intIdx] % n
	r.intIdx++
	return v
}
