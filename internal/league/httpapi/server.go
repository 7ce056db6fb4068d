package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/league/engine"
	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Chat é o histórico de mensagens por partido
type Chat interface {
	Post(ctx context.Context, matchID int64, username, text string, system bool) (model.ChatMessage, error)
	List(ctx context.Context, matchID int64) ([]model.ChatMessage, error)
}

// API expõe os endpoints REST da liga. Tudo sob /api espera o gate de
// inicialização; /ws não depende dele.
type API struct {
	Engine *engine.Engine
	Chat   Chat
	WS     http.HandlerFunc
	Log    *zap.Logger

	AllowedOrigins []string
	GateWait       time.Duration
}

// Router retorna o roteador HTTP com os endpoints REST, CORS aplicado
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if a.WS != nil {
		r.Get("/ws", a.WS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(a.awaitInit)

		r.Get("/matches", a.listMatches)              // jornada corrente (?all=true para o calendário)
		r.Get("/matches/{id}", a.getMatch)            // partido com eventos
		r.Post("/bets", a.placeBet)                   // palpite
		r.Get("/bets/user/{id}", a.userBets)          // apostas do usuário
		r.Get("/leaderboard", a.leaderboard)          // ranking de apostadores
		r.Get("/league/standings", a.standings)       // tabela
		r.Get("/league/results/{jornada}", a.results) // resultados de uma jornada
		r.Get("/teams/{name}/players", a.teamPlayers) // elenco
		r.Get("/players/top-scorers", a.topScorers)   // pichichi
		r.Get("/simulation/state", a.simulationState) // relógio
		r.Post("/users", a.registerUser)              // chamado pela camada de auth
		r.Put("/users/{id}", a.updateProfile)         // perfil
		r.Get("/messages/{matchId}", a.listMessages)  // chat
		r.Post("/messages", a.postMessage)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   a.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// awaitInit segura o request até o gate resolver (limitado por GateWait).
// Gate falho ou ainda pendente vira 503.
func (a *API) awaitInit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if a.GateWait > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.GateWait)
			defer cancel()
		}
		if err := a.Engine.Gate().Wait(ctx); err != nil {
			a.log().Warn("request rejected, engine unavailable", zap.String("path", r.URL.Path), zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error":   "Servicio inicializándose, por favor reintente",
				"details": err.Error(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) log() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
