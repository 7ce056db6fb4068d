package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random é a fonte de aleatoriedade usada pelo gerador de eventos.
type Random interface {
	// Float64 retorna um valor em [0.0, 1.0)
	Float64() float64
	// Intn retorna um inteiro em [0, n)
	Intn(n int) int
}

// PCG implementa Random sobre math/rand/v2. Seguro para uso concorrente.
type PCG struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New cria uma fonte semeada pelo relógio
func New() *PCG {
	seed := uint64(time.Now().UnixNano())
	return NewSeeded(seed)
}

// NewSeeded cria uma fonte determinística (útil em testes e replays)
func NewSeeded(seed uint64) *PCG {
	return &PCG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *PCG) Float64() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.Float64()
}

func (p *PCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.IntN(n)
}
