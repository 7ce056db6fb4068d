package clock

import "time"

// Clock abstrai o relógio de parede para que a simulação possa ser testada
type Clock interface {
	Now() time.Time
}

// RealClock usa o relógio do sistema
type RealClock struct{}

func New() *RealClock { return &RealClock{} }

func (c *RealClock) Now() time.Time { return time.Now() }
