package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Postgres é o store durável da liga. O espelho em memória é a fonte da
// verdade durante o processo; aqui só entram LoadAll no boot e as mutações
// vindas da fila write-behind.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// IsEmpty indica banco sem liga semeada (nenhum time)
func (p *Postgres) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&n); err != nil {
		return false, fmt.Errorf("count teams: %w", err)
	}
	return n == 0, nil
}

// LoadAll lê todas as tabelas necessárias para a simulação
func (p *Postgres) LoadAll(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	var err error
	if snap.Users, err = p.loadUsers(ctx); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if snap.Teams, err = p.loadTeams(ctx); err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	if snap.Players, err = p.loadPlayers(ctx); err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	if snap.Matches, err = p.loadMatches(ctx); err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	if snap.Bets, err = p.loadBets(ctx); err != nil {
		return nil, fmt.Errorf("load bets: %w", err)
	}
	if snap.Standings, err = p.loadStandings(ctx); err != nil {
		return nil, fmt.Errorf("load standings: %w", err)
	}
	if snap.Checkpoint, err = p.loadCheckpoint(ctx); err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return snap, nil
}

func (p *Postgres) loadUsers(ctx context.Context) ([]model.User, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, username, email, points, avatar FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Points, &u.Avatar); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (p *Postgres) loadTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name, strength FROM teams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Strength); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) loadPlayers(ctx context.Context) ([]model.Player, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT p.id, p.team_id, t.name, p.name, p.avatar_url, p.goals
		FROM players p JOIN teams t ON t.id = p.team_id
		ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Player
	for rows.Next() {
		var pl model.Player
		if err := rows.Scan(&pl.ID, &pl.TeamID, &pl.TeamName, &pl.Name, &pl.AvatarURL, &pl.Goals); err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

func (p *Postgres) loadMatches(ctx context.Context) ([]model.Match, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT m.id, m.jornada, m.home_team_id, m.away_team_id, h.name, a.name,
		       m.home_score, m.away_score, m.minute, m.status, m.kickoff, m.league, m.events
		FROM matches m
		JOIN teams h ON h.id = m.home_team_id
		JOIN teams a ON a.id = m.away_team_id
		ORDER BY m.jornada, m.kickoff, m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Match
	for rows.Next() {
		var (
			m      model.Match
			status string
			events []byte
		)
		if err := rows.Scan(&m.ID, &m.Jornada, &m.HomeTeamID, &m.AwayTeamID, &m.Home, &m.Away,
			&m.HomeScore, &m.AwayScore, &m.Minute, &status, &m.Kickoff, &m.League, &events); err != nil {
			return nil, err
		}
		m.Status = model.MatchStatus(status)
		if m.Events, err = decodeEvents(events); err != nil {
			return nil, fmt.Errorf("match %d: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Postgres) loadBets(ctx context.Context) ([]model.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, match_id, home_score, away_score, points_earned, created_at
		FROM bets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Bet
	for rows.Next() {
		var (
			b   model.Bet
			pts sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.MatchID, &b.HomeScore, &b.AwayScore, &pts, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.PointsEarned = intPtr(pts)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) loadStandings(ctx context.Context) ([]model.Standing, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT s.team_id, t.name, t.strength, s.played, s.won, s.drawn, s.lost,
		       s.goals_for, s.goals_against, s.points
		FROM standings s JOIN teams t ON t.id = s.team_id
		ORDER BY s.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Standing
	for rows.Next() {
		var s model.Standing
		if err := rows.Scan(&s.TeamID, &s.Name, &s.Strength, &s.Played, &s.Won, &s.Drawn, &s.Lost,
			&s.GoalsFor, &s.GoalsAgainst, &s.Points); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) loadCheckpoint(ctx context.Context) (model.Checkpoint, error) {
	var (
		cp     model.Checkpoint
		lastAt sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT jornada, tick, last_tick_at, season_complete FROM simulation_state WHERE id = 1`).
		Scan(&cp.Jornada, &cp.Tick, &lastAt, &cp.SeasonComplete)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Checkpoint{Jornada: 1}, nil
	}
	if err != nil {
		return cp, err
	}
	if lastAt.Valid {
		cp.LastTickAt = lastAt.Time
	}
	return cp, nil
}

func decodeEvents(raw []byte) ([]model.MatchEvent, error) {
	out := []model.MatchEvent{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return out, nil
}

func encodeEvents(evs []model.MatchEvent) ([]byte, error) {
	if evs == nil {
		evs = []model.MatchEvent{}
	}
	return json.Marshal(evs)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
