package store

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	username   TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL DEFAULT '',
	points     INTEGER NOT NULL DEFAULT 0,
	avatar     TEXT NOT NULL DEFAULT 'account_circle',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS teams (
	id       BIGSERIAL PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE,
	strength INTEGER NOT NULL DEFAULT 50
);

CREATE TABLE IF NOT EXISTS players (
	id         BIGSERIAL PRIMARY KEY,
	team_id    BIGINT NOT NULL REFERENCES teams(id),
	name       TEXT NOT NULL,
	avatar_url TEXT NOT NULL DEFAULT '',
	goals      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS matches (
	id           BIGSERIAL PRIMARY KEY,
	jornada      INTEGER NOT NULL,
	home_team_id BIGINT NOT NULL REFERENCES teams(id),
	away_team_id BIGINT NOT NULL REFERENCES teams(id),
	home_score   INTEGER NOT NULL DEFAULT 0,
	away_score   INTEGER NOT NULL DEFAULT 0,
	minute       INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','live','finished')),
	kickoff      TIMESTAMPTZ NOT NULL,
	league       TEXT NOT NULL DEFAULT '',
	events       JSONB NOT NULL DEFAULT '[]'::jsonb
);
CREATE INDEX IF NOT EXISTS idx_matches_jornada ON matches(jornada);

CREATE TABLE IF NOT EXISTS bets (
	id            BIGSERIAL PRIMARY KEY,
	user_id       BIGINT NOT NULL REFERENCES users(id),
	match_id      BIGINT NOT NULL REFERENCES matches(id),
	home_score    INTEGER NOT NULL,
	away_score    INTEGER NOT NULL,
	points_earned INTEGER,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, match_id)
);

CREATE TABLE IF NOT EXISTS standings (
	team_id       BIGINT PRIMARY KEY REFERENCES teams(id),
	position      INTEGER NOT NULL,
	played        INTEGER NOT NULL DEFAULT 0,
	won           INTEGER NOT NULL DEFAULT 0,
	drawn         INTEGER NOT NULL DEFAULT 0,
	lost          INTEGER NOT NULL DEFAULT 0,
	goals_for     INTEGER NOT NULL DEFAULT 0,
	goals_against INTEGER NOT NULL DEFAULT 0,
	points        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS simulation_state (
	id              INTEGER PRIMARY KEY CHECK (id = 1),
	jornada         INTEGER NOT NULL DEFAULT 1,
	tick            BIGINT NOT NULL DEFAULT 0,
	last_tick_at    TIMESTAMPTZ,
	season_complete BOOLEAN NOT NULL DEFAULT false
);
`

// dropOrder respeita as FKs; messages e notifications vêm da versão antiga
// do banco e são removidas se existirem.
var dropOrder = []string{
	"notifications", "simulation_state", "messages", "standings",
	"bets", "matches", "players", "teams", "users",
}

// Migrate cria as tabelas que faltam. Idempotente.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Reset apaga todas as tabelas da liga. Operação destrutiva, só via CLI.
func (p *Postgres) Reset(ctx context.Context) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, t := range dropOrder {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+t+` CASCADE`); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
	}
	return tx.Commit()
}
