package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/dependencies/clock"
	"github.com/radieske/betbuddy-league/internal/dependencies/random"
	"github.com/radieske/betbuddy-league/internal/league/chat"
	"github.com/radieske/betbuddy-league/internal/league/engine"
	"github.com/radieske/betbuddy-league/internal/league/generator"
	"github.com/radieske/betbuddy-league/internal/league/httpapi"
	"github.com/radieske/betbuddy-league/internal/league/mirror"
	"github.com/radieske/betbuddy-league/internal/league/model"
	"github.com/radieske/betbuddy-league/internal/league/notify"
	"github.com/radieske/betbuddy-league/internal/league/schedule"
	"github.com/radieske/betbuddy-league/internal/league/store"
	"github.com/radieske/betbuddy-league/internal/league/writebehind"
	"github.com/radieske/betbuddy-league/internal/league/ws"
	"github.com/radieske/betbuddy-league/internal/shared/cache"
	"github.com/radieske/betbuddy-league/internal/shared/config"
	"github.com/radieske/betbuddy-league/internal/shared/db"
	"github.com/radieske/betbuddy-league/internal/shared/kafka"
	"github.com/radieske/betbuddy-league/internal/shared/logger"
	"github.com/radieske/betbuddy-league/internal/shared/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres com pool pequeno: só a fila write-behind e a carga inicial usam
	pool := db.DefaultPool()
	pool.MaxConns = cfg.PostgresMaxConns
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, pool)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected", zap.Int("max_conns", pool.MaxConns))

	redisClient, err := cache.ConnectRedis(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	matchWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchEvents)
	defer matchWriter.Close()
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()
	log.Info("kafka writers ready",
		zap.String("match_topic", cfg.TopicMatchEvents),
		zap.String("settled_topic", cfg.TopicBetSettled))

	repo := store.NewPostgres(pg)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	clk := clock.New()

	// Fan-out de notificações: Redis (ws), Kafka e mensagens de sistema no chat
	broadcaster := notify.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel)
	chatStore := chat.NewStore(redisClient, chat.Config{History: cfg.ChatHistory, TTL: cfg.ChatTTL}, clk, broadcaster)
	notifier := notify.New(cfg.NotifyBuffer, cfg.NotifySinkTimeout, log.Named("notify"),
		broadcaster,
		notify.NewKafkaSink(matchWriter, settledWriter),
		notify.NewChatSink(chatStore),
	)
	instrumentNotifier(notifier)

	queue := writebehind.New(repo, writebehind.Config{
		Interval:    cfg.WriteBehindInterval,
		MaxAttempts: cfg.WriteBehindMaxAttempts,
	}, log.Named("writebehind"))
	instrumentQueue(queue)

	rnd := random.New()
	if cfg.RandomSeed != 0 {
		rnd = random.NewSeeded(cfg.RandomSeed)
	}

	engCfg := engine.Config{
		TickInterval:    cfg.TickInterval,
		MatchLength:     cfg.MatchLength,
		BetCutoffMinute: cfg.BetCutoffMinute,
		JornadaBreak:    cfg.JornadaBreak,
		CheckpointEvery: cfg.CheckpointEvery,
	}
	eng := engine.New(engine.Options{
		Config:    engCfg,
		Mirror:    mirror.New(queue, clk),
		Generator: generator.New(generator.DefaultConfig(), rnd),
		Clock:     clk,
		Notifier:  notifier,
		Log:       log.Named("engine"),
	})
	eng.Hooks = engineHooks()

	// /metrics e /healthz
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.All(
		func(context.Context) error {
			if eng.Gate().Ready() {
				return nil
			}
			if err := eng.Gate().Err(); err != nil {
				return err
			}
			return errors.New("league still initializing")
		},
		repo.Ping,
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	))
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// WebSocket: o hub recebe as atualizações pelo Pub/Sub, não direto do motor
	allowOrigin := func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(cfg.CORSAllowedOrigins, origin)
	}
	hub := ws.NewHub(allowOrigin, log.Named("ws"))
	if err := ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub); err != nil {
		log.Fatal("redis subscribe failed", zap.Error(err))
	}

	api := &httpapi.API{
		Engine:         eng,
		Chat:           chatStore,
		WS:             hub.HandleWS,
		Log:            log.Named("http"),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		GateWait:       cfg.GateWaitTimeout,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Fila e notificador rodam num contexto próprio: só param depois do
	// último tick
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go queue.Run(bgCtx)
	go notifier.Run(bgCtx)

	// Carga inicial em background; até resolver a API responde 503
	go func() {
		err := eng.Initialize(ctx, func(ctx context.Context) (*model.Snapshot, error) {
			snap, seeded, err := repo.LoadOrSeed(ctx, func() (*model.Snapshot, error) {
				league, err := schedule.LoadLeague(cfg.LeagueSeedFile)
				if err != nil {
					return nil, err
				}
				return league.Build(clk.Now().Add(cfg.TickInterval), engCfg.JornadaSpan()), nil
			})
			if seeded {
				log.Info("empty database seeded with a new league")
			}
			return snap, err
		})
		if err != nil {
			log.Error("initialization failed, serving 503 until restart", zap.Error(err))
		}
	}()

	sched := engine.NewScheduler(eng)
	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Error("scheduler not started", zap.Error(err))
		}
	}()

	log.Info("league-engine started")
	<-ctx.Done()
	log.Info("shutdown requested")

	// Ordem: para o relógio (o tick corrente termina), fecha HTTP, entrega as
	// notificações pendentes e grava o que resta na fila.
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	bgCancel()
	notifier.Drain(shutdownCtx)
	if err := queue.Close(shutdownCtx); err != nil {
		log.Error("write-behind not fully flushed", zap.Int("pending", queue.Len()), zap.Error(err))
	}
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("league-engine stopped")
}
