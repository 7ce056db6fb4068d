package events

import "time"

// Evento emitido quando uma aposta é liquidada no apito final
type BetSettled struct {
	EventID      string    `json:"event_id"`
	BetID        int64     `json:"bet_id"`
	UserID       int64     `json:"user_id"`
	MatchID      int64     `json:"match_id"`
	PredHome     int       `json:"pred_home"`
	PredAway     int       `json:"pred_away"`
	FinalHome    int       `json:"final_home"`
	FinalAway    int       `json:"final_away"`
	PointsEarned int       `json:"points_earned"`
	Ts           time.Time `json:"ts"`
}
