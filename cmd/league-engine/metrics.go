package main

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/radieske/betbuddy-league/internal/league/engine"
	"github.com/radieske/betbuddy-league/internal/league/notify"
	"github.com/radieske/betbuddy-league/internal/league/writebehind"
)

// Métricas Prometheus do motor da liga
var (
	tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "league_tick_duration_seconds",
		Help:    "duração de cada tick da simulação",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
	matchEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "league_match_events_total",
		Help: "eventos gerados por tipo",
	}, []string{"type"})
	matchesFinished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "league_matches_finished_total",
		Help: "partidos finalizados",
	})
	betsPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "league_bets_placed_total",
		Help: "apostas aceitas",
	})
	betsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "league_bets_rejected_total",
		Help: "apostas rejeitadas por motivo",
	}, []string{"reason"})
	betsSettled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "league_bets_settled_total",
		Help: "apostas liquidadas",
	})
	wbApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "league_writebehind_applied_total",
		Help: "mutações gravadas no Postgres",
	})
	wbErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "league_writebehind_errors_total",
		Help: "falhas de gravação por tipo de mutação",
	}, []string{"kind"})
	wbDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "league_writebehind_pending",
		Help: "mutações aguardando gravação",
	})
	notifyDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "league_notifications_delivered_total",
		Help: "notificações entregues por sink",
	}, []string{"sink"})
	notifyErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "league_notifications_errors_total",
		Help: "falhas de entrega por sink",
	}, []string{"sink"})
	notifyDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "league_notifications_dropped_total",
		Help: "notificações descartadas com buffer cheio",
	})
)

func init() {
	prometheus.MustRegister(
		tickDuration, matchEvents, matchesFinished,
		betsPlaced, betsRejected, betsSettled,
		wbApplied, wbErrors, wbDepth,
		notifyDelivered, notifyErrors, notifyDropped,
	)
}

func engineHooks() engine.Hooks {
	return engine.Hooks{
		OnTick:          func(d time.Duration) { tickDuration.Observe(d.Seconds()) },
		OnGoal:          func() { matchEvents.WithLabelValues("goal").Inc() },
		OnCard:          func() { matchEvents.WithLabelValues("card").Inc() },
		OnMatchFinished: func() { matchesFinished.Inc() },
		OnBetsSettled:   func(n int) { betsSettled.Add(float64(n)) },
		OnBetPlaced:     func() { betsPlaced.Inc() },
		OnBetRejected:   func(reason string) { betsRejected.WithLabelValues(reason).Inc() },
	}
}

func instrumentQueue(q *writebehind.Queue) {
	q.OnApplied = func() { wbApplied.Inc() }
	q.OnError = func(key string) { wbErrors.WithLabelValues(mutationKind(key)).Inc() }
	q.OnDepth = func(n int) { wbDepth.Set(float64(n)) }
}

func instrumentNotifier(n *notify.Notifier) {
	n.OnDelivered = func(sink string) { notifyDelivered.WithLabelValues(sink).Inc() }
	n.OnError = func(sink string) { notifyErrors.WithLabelValues(sink).Inc() }
	n.OnDropped = func() { notifyDropped.Inc() }
}

// mutationKind corta o id da chave ("match:12" -> "match") para não explodir
// a cardinalidade do label
func mutationKind(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}
