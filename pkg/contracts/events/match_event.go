package events

import "time"

// Evento publicado no tópico "match_events" (kickoff, gol, cartão, final)
type MatchEvent struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"` // "kickoff" | "goal" | "card" | "full_time"
	MatchID   int64     `json:"match_id"`
	Jornada   int       `json:"jornada,omitempty"`
	HomeTeam  string    `json:"home_team,omitempty"`
	AwayTeam  string    `json:"away_team,omitempty"`
	Team      string    `json:"team,omitempty"`
	Player    string    `json:"player,omitempty"`
	Type      string    `json:"type,omitempty"` // goal | yellow_card | red_card
	Minute    int       `json:"minute"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Status    string    `json:"status,omitempty"`
	Text      string    `json:"text"`
	Ts        time.Time `json:"ts"`
}
