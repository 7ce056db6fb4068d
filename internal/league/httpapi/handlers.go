package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

type placeBetRequest struct {
	UserID    int64 `json:"userId"`
	MatchID   int64 `json:"matchId"`
	HomeScore *int  `json:"homeScore"`
	AwayScore *int  `json:"awayScore"`
}

type registerUserRequest struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type postMessageRequest struct {
	MatchID  int64  `json:"matchId"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	var (
		ms  []model.Match
		err error
	)
	if r.URL.Query().Get("all") == "true" {
		ms, err = a.Engine.Matches(r.Context())
	} else {
		ms, err = a.Engine.CurrentMatches(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ms))
}

func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid match id")
		return
	}
	m, err := a.Engine.Match(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if req.UserID <= 0 || req.MatchID <= 0 || req.HomeScore == nil || req.AwayScore == nil {
		badRequest(w, "userId, matchId, homeScore and awayScore are required")
		return
	}
	b, err := a.Engine.PlaceBet(r.Context(), req.UserID, req.MatchID, *req.HomeScore, *req.AwayScore)
	if err != nil {
		a.log().Info("bet rejected",
			zap.Int64("user_id", req.UserID), zap.Int64("match_id", req.MatchID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) userBets(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid user id")
		return
	}
	bets, err := a.Engine.UserBets(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bets))
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := a.Engine.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

func (a *API) standings(w http.ResponseWriter, r *http.Request) {
	table, err := a.Engine.Standings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(table))
}

func (a *API) results(w http.ResponseWriter, r *http.Request) {
	j, err := strconv.Atoi(chi.URLParam(r, "jornada"))
	if err != nil || j <= 0 {
		badRequest(w, "invalid jornada")
		return
	}
	ms, err := a.Engine.Results(r.Context(), j)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ms))
}

func (a *API) teamPlayers(w http.ResponseWriter, r *http.Request) {
	ps, err := a.Engine.TeamPlayers(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ps))
}

func (a *API) topScorers(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	ps, err := a.Engine.TopScorers(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ps))
}

func (a *API) simulationState(w http.ResponseWriter, r *http.Request) {
	st, err := a.Engine.SimulationState(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	u := model.User{ID: req.ID, Username: req.Username, Email: req.Email, Avatar: req.Avatar}
	if u.Avatar == "" {
		u.Avatar = "account_circle"
	}
	if err := a.Engine.RegisterUser(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}
	got, err := a.Engine.User(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, got)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid user id")
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	u, err := a.Engine.UpdateProfile(r.Context(), id, req.Username, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) listMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "matchId")
	if !ok {
		badRequest(w, "invalid match id")
		return
	}
	msgs, err := a.Chat.List(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(msgs))
}

func (a *API) postMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if _, err := a.Engine.Match(r.Context(), req.MatchID); err != nil {
		writeError(w, err)
		return
	}
	msg, err := a.Chat.Post(r.Context(), req.MatchID, req.Username, req.Text, false)
	if err != nil && msg.ID == "" {
		writeError(w, err)
		return
	}
	if err != nil {
		// gravou mas não publicou ao vivo
		a.log().Warn("chat message not broadcast", zap.Int64("match_id", req.MatchID), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, msg)
}

// nonNil garante "[]" em vez de "null" no JSON
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
