package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/league/engine"
	"github.com/radieske/betbuddy-league/internal/league/model"
	"github.com/radieske/betbuddy-league/internal/league/schedule"
	"github.com/radieske/betbuddy-league/internal/league/store"
	"github.com/radieske/betbuddy-league/internal/shared/config"
	"github.com/radieske/betbuddy-league/internal/shared/db"
	"github.com/radieske/betbuddy-league/internal/shared/logger"
)

// league-admin: tarefas de manutenção do banco da liga (fora do motor)
func main() {
	cfg := config.Load()
	cfg.ServiceName = "league-admin"

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cfg, log).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "league-admin",
		Short:        "Database maintenance for the league engine",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfg.PostgresDSN, "dsn", cfg.PostgresDSN, "Postgres DSN (default from POSTGRES_DSN)")

	cmd.AddCommand(newMigrateCmd(cfg, log))
	cmd.AddCommand(newResetCmd(cfg, log))
	cmd.AddCommand(newSeedCmd(cfg, log))
	cmd.AddCommand(newStatusCmd(cfg))
	return cmd
}

// withStore abre a conexão, roda fn e fecha
func withStore(ctx context.Context, cfg *config.Config, fn func(*store.Postgres) error) error {
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.DefaultPool())
	if err != nil {
		return err
	}
	defer pg.Close()
	return fn(store.NewPostgres(pg))
}

func newMigrateCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the league tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), cfg, func(p *store.Postgres) error {
				if err := p.Migrate(cmd.Context()); err != nil {
					return err
				}
				log.Info("schema migrated")
				return nil
			})
		},
	}
}

func newResetCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Drop every league table and recreate the schema (destroys all data)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to drop tables without --yes")
			}
			return withStore(cmd.Context(), cfg, func(p *store.Postgres) error {
				if err := p.Reset(cmd.Context()); err != nil {
					return err
				}
				if err := p.Migrate(cmd.Context()); err != nil {
					return err
				}
				log.Warn("database reset, league data dropped")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm dropping all league data")
	return cmd
}

func newSeedCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	var (
		file  string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed an empty database with a new league and its full calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			league, err := schedule.LoadLeague(file)
			if err != nil {
				return err
			}
			span := engine.Config{
				TickInterval: cfg.TickInterval,
				MatchLength:  cfg.MatchLength,
				JornadaBreak: cfg.JornadaBreak,
			}.JornadaSpan()

			return withStore(cmd.Context(), cfg, func(p *store.Postgres) error {
				if err := p.Migrate(cmd.Context()); err != nil {
					return err
				}
				empty, err := p.IsEmpty(cmd.Context())
				if err != nil {
					return err
				}
				if !empty {
					return errors.New("database already has a league; run reset-db --yes first")
				}
				snap := league.Build(time.Now().UTC().Add(delay), span)
				if err := p.Seed(cmd.Context(), snap); err != nil {
					return err
				}
				log.Info("league seeded",
					zap.String("league", league.Name),
					zap.Int("teams", len(snap.Teams)),
					zap.Int("matches", len(snap.Matches)),
					zap.Duration("jornada_span", span))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", cfg.LeagueSeedFile, "League seed YAML (default: built-in league)")
	cmd.Flags().DurationVar(&delay, "start-in", time.Minute, "Delay until the first kickoff")
	return cmd
}

func newStatusCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the persisted simulation checkpoint and match counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), cfg, func(p *store.Postgres) error {
				snap, err := p.LoadAll(cmd.Context())
				if err != nil {
					return err
				}
				counts := map[model.MatchStatus]int{}
				for _, m := range snap.Matches {
					counts[m.Status]++
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "jornada:   %d\n", snap.Checkpoint.Jornada)
				fmt.Fprintf(out, "tick:      %d\n", snap.Checkpoint.Tick)
				fmt.Fprintf(out, "complete:  %t\n", snap.Checkpoint.SeasonComplete)
				fmt.Fprintf(out, "matches:   %d pending, %d live, %d finished\n",
					counts[model.StatusPending], counts[model.StatusLive], counts[model.StatusFinished])
				fmt.Fprintf(out, "bets:      %d\n", len(snap.Bets))
				return nil
			})
		},
	}
}
