package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

var ErrUnknownMutation = errors.New("unknown mutation")

// Apply grava uma mutação vinda da fila write-behind. Todas as escritas são
// upserts de valor absoluto, então reaplicar é seguro.
func (p *Postgres) Apply(ctx context.Context, mut model.Mutation) error {
	switch m := mut.(type) {
	case model.MatchUpsert:
		return p.upsertMatch(ctx, p.db, m.Match)
	case model.BetUpsert:
		return p.upsertBet(ctx, m.Bet)
	case model.UserPoints:
		_, err := p.db.ExecContext(ctx, `UPDATE users SET points = $2 WHERE id = $1`, m.UserID, m.Points)
		return err
	case model.UserProfile:
		_, err := p.db.ExecContext(ctx, `UPDATE users SET username = $2, avatar = $3 WHERE id = $1`,
			m.UserID, m.Username, m.Avatar)
		return err
	case model.PlayerGoals:
		_, err := p.db.ExecContext(ctx, `UPDATE players SET goals = $2 WHERE id = $1`, m.PlayerID, m.Goals)
		return err
	case model.StandingsReplace:
		return p.replaceStandings(ctx, m.Standings)
	case model.CheckpointSave:
		return p.saveCheckpoint(ctx, p.db, m.Checkpoint)
	}
	return fmt.Errorf("%w: %T", ErrUnknownMutation, mut)
}

// execer cobre *sql.DB e *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (p *Postgres) upsertMatch(ctx context.Context, db execer, m model.Match) error {
	events, err := encodeEvents(m.Events)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO matches
		  (id, jornada, home_team_id, away_team_id, home_score, away_score, minute, status, kickoff, league, events)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
		  home_score = EXCLUDED.home_score,
		  away_score = EXCLUDED.away_score,
		  minute     = EXCLUDED.minute,
		  status     = EXCLUDED.status,
		  kickoff    = EXCLUDED.kickoff,
		  events     = EXCLUDED.events
	`
	_, err = db.ExecContext(ctx, q,
		m.ID, m.Jornada, m.HomeTeamID, m.AwayTeamID, m.HomeScore, m.AwayScore,
		m.Minute, string(m.Status), m.Kickoff, m.League, events,
	)
	return err
}

// upsertBet nunca apaga uma liquidação já gravada
func (p *Postgres) upsertBet(ctx context.Context, b model.Bet) error {
	const q = `
		INSERT INTO bets (id, user_id, match_id, home_score, away_score, points_earned, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
		  points_earned = COALESCE(bets.points_earned, EXCLUDED.points_earned)
	`
	_, err := p.db.ExecContext(ctx, q,
		b.ID, b.UserID, b.MatchID, b.HomeScore, b.AwayScore, nullInt(b.PointsEarned), b.CreatedAt)
	return err
}

func (p *Postgres) replaceStandings(ctx context.Context, table []model.Standing) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := writeStandings(ctx, tx, table); err != nil {
		return err
	}
	return tx.Commit()
}

func writeStandings(ctx context.Context, tx *sql.Tx, table []model.Standing) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM standings`); err != nil {
		return err
	}
	for i, s := range table {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO standings
			  (team_id, position, played, won, drawn, lost, goals_for, goals_against, points)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			s.TeamID, i+1, s.Played, s.Won, s.Drawn, s.Lost, s.GoalsFor, s.GoalsAgainst, s.Points); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) saveCheckpoint(ctx context.Context, db execer, cp model.Checkpoint) error {
	var last sql.NullTime
	if !cp.LastTickAt.IsZero() {
		last = sql.NullTime{Time: cp.LastTickAt, Valid: true}
	}
	const q = `
		INSERT INTO simulation_state (id, jornada, tick, last_tick_at, season_complete)
		VALUES (1,$1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET
		  jornada         = EXCLUDED.jornada,
		  tick            = EXCLUDED.tick,
		  last_tick_at    = EXCLUDED.last_tick_at,
		  season_complete = EXCLUDED.season_complete
	`
	_, err := db.ExecContext(ctx, q, cp.Jornada, cp.Tick, last, cp.SeasonComplete)
	return err
}
