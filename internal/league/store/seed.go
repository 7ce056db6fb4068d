package store

import (
	"context"
	"fmt"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Seed grava uma liga nova (times, elencos, calendário, usuários de demo e
// checkpoint) numa única transação. Espera um banco vazio.
func (p *Postgres) Seed(ctx context.Context, snap *model.Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range snap.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, points, avatar) VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (email) DO NOTHING`,
			u.ID, u.Username, u.Email, u.Points, u.Avatar); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	for _, t := range snap.Teams {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teams (id, name, strength) VALUES ($1,$2,$3)`, t.ID, t.Name, t.Strength); err != nil {
			return fmt.Errorf("seed team %s: %w", t.Name, err)
		}
	}
	for _, pl := range snap.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO players (id, team_id, name, avatar_url, goals) VALUES ($1,$2,$3,$4,$5)`,
			pl.ID, pl.TeamID, pl.Name, pl.AvatarURL, pl.Goals); err != nil {
			return fmt.Errorf("seed player %s: %w", pl.Name, err)
		}
	}
	for _, m := range snap.Matches {
		if err := p.upsertMatch(ctx, tx, m); err != nil {
			return fmt.Errorf("seed match %d: %w", m.ID, err)
		}
	}
	if err := writeStandings(ctx, tx, snap.Standings); err != nil {
		return fmt.Errorf("seed standings: %w", err)
	}
	if err := p.saveCheckpoint(ctx, tx, snap.Checkpoint); err != nil {
		return fmt.Errorf("seed checkpoint: %w", err)
	}

	// ids foram inseridos explicitamente; as sequences precisam acompanhar
	for _, t := range []string{"users", "teams", "players", "matches", "bets"} {
		q := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s','id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`, t, t)
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("sync sequence %s: %w", t, err)
		}
	}
	return tx.Commit()
}

// LoadOrSeed carrega a liga; num banco vazio grava antes o snapshot de build.
// seeded indica se houve semeadura.
func (p *Postgres) LoadOrSeed(ctx context.Context, build func() (*model.Snapshot, error)) (snap *model.Snapshot, seeded bool, err error) {
	empty, err := p.IsEmpty(ctx)
	if err != nil {
		return nil, false, err
	}
	if empty {
		fresh, err := build()
		if err != nil {
			return nil, false, fmt.Errorf("build league: %w", err)
		}
		if err := p.Seed(ctx, fresh); err != nil {
			return nil, false, err
		}
		seeded = true
	}
	snap, err = p.LoadAll(ctx)
	if err != nil {
		return nil, seeded, err
	}
	return snap, seeded, nil
}
