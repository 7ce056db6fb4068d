package model

import "strconv"

// Mutation é uma escrita pendente para o store durável. Todas carregam estado
// absoluto, então reentregar a mesma mutação é idempotente. Key agrupa
// mutações que se sobrescrevem (a mais nova vence).
type Mutation interface {
	Key() string
}

type MatchUpsert struct{ Match Match }

func (m MatchUpsert) Key() string { return "match:" + strconv.FormatInt(m.Match.ID, 10) }

type BetUpsert struct{ Bet Bet }

func (m BetUpsert) Key() string { return "bet:" + strconv.FormatInt(m.Bet.ID, 10) }

type UserPoints struct {
	UserID int64
	Points int
}

func (m UserPoints) Key() string { return "user:" + strconv.FormatInt(m.UserID, 10) + ":points" }

type UserProfile struct {
	UserID   int64
	Username string
	Avatar   string
}

func (m UserProfile) Key() string { return "user:" + strconv.FormatInt(m.UserID, 10) + ":profile" }

type PlayerGoals struct {
	PlayerID int64
	Goals    int
}

func (m PlayerGoals) Key() string { return "player:" + strconv.FormatInt(m.PlayerID, 10) }

type StandingsReplace struct{ Standings []Standing }

func (StandingsReplace) Key() string { return "standings" }

type CheckpointSave struct{ Checkpoint Checkpoint }

func (CheckpointSave) Key() string { return "checkpoint" }
