package events

import "encoding/json"

// LiveUpdate é o envelope publicado no canal Redis e repassado aos clientes
// websocket inscritos no partido
type LiveUpdate struct {
	MatchID int64           `json:"matchId"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}
