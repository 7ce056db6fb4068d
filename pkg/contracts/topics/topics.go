package topics

const (
	// Partidas
	MatchEvents = "match_events"

	// Apostas
	BetSettled = "bet_settled"

	// Canal Redis consumido pelo websocket
	LiveUpdatesChannel = "league_live_updates"
)
