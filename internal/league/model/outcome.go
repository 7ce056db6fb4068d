package model

type Outcome int

const (
	OutcomeAway Outcome = -1
	OutcomeDraw Outcome = 0
	OutcomeHome Outcome = 1
)

// ResultOf classifica um placar em vitória do mandante, empate ou vitória do visitante
func ResultOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHome
	case home < away:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}
