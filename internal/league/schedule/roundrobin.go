package schedule

// Fixture referencia times pelo índice na lista de times
type Fixture struct {
	Home int
	Away int
}

// RoundRobin gera um calendário de ida e volta pelo método do círculo.
// Com n ímpar um "bye" é inserido e quem pega o bye descansa na rodada.
// O segundo turno repete o primeiro com mando invertido.
func RoundRobin(n int) [][]Fixture {
	if n < 2 {
		return nil
	}
	const bye = -1
	slots := make([]int, 0, n+1)
	for i := 0; i < n; i++ {
		slots = append(slots, i)
	}
	if n%2 == 1 {
		slots = append(slots, bye)
	}
	size := len(slots)

	first := make([][]Fixture, 0, size-1)
	for r := 0; r < size-1; r++ {
		var round []Fixture
		for i := 0; i < size/2; i++ {
			a, b := slots[i], slots[size-1-i]
			if a == bye || b == bye {
				continue
			}
			// alterna o mando para ninguém jogar sempre em casa
			if (r+i)%2 == 0 {
				round = append(round, Fixture{Home: a, Away: b})
			} else {
				round = append(round, Fixture{Home: b, Away: a})
			}
		}
		first = append(first, round)

		// rotaciona todos menos o primeiro
		last := slots[size-1]
		copy(slots[2:], slots[1:size-1])
		slots[1] = last
	}

	out := make([][]Fixture, 0, 2*len(first))
	out = append(out, first...)
	for _, round := range first {
		back := make([]Fixture, 0, len(round))
		for _, fx := range round {
			back = append(back, Fixture{Home: fx.Away, Away: fx.Home})
		}
		out = append(out, back)
	}
	return out
}
