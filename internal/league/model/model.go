package model

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	StatusPending  MatchStatus = "pending"
	StatusLive     MatchStatus = "live"
	StatusFinished MatchStatus = "finished"
)

// Valid indica se o status pertence à máquina de estados
func (s MatchStatus) Valid() bool {
	switch s {
	case StatusPending, StatusLive, StatusFinished:
		return true
	}
	return false
}

type EventType string

const (
	EventGoal       EventType = "goal"
	EventYellowCard EventType = "yellow_card"
	EventRedCard    EventType = "red_card"
)

// User é o apostador. Points só muda via liquidação de apostas.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Points       int    `json:"points"`
	Avatar       string `json:"avatar"`
}

// Team com o rating de força usado pelo gerador de eventos
type Team struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Strength int    `json:"strength"`
}

type Player struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"teamId"`
	TeamName  string `json:"team_name"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Goals     int    `json:"goals"`
}

// MatchEvent é imutável depois de anexado ao partido.
type MatchEvent struct {
	Type      EventType `json:"type"`
	TeamID    int64     `json:"teamId"`
	Team      string    `json:"team"`
	PlayerID  int64     `json:"playerId,omitempty"`
	Player    string    `json:"player,omitempty"`
	Minute    int       `json:"minute"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	Score     string    `json:"score"`
}

type Match struct {
	ID         int64        `json:"id"`
	Jornada    int          `json:"jornada"`
	HomeTeamID int64        `json:"homeTeamId"`
	AwayTeamID int64        `json:"awayTeamId"`
	Home       string       `json:"home"`
	Away       string       `json:"away"`
	HomeScore  int          `json:"homeScore"`
	AwayScore  int          `json:"awayScore"`
	Minute     int          `json:"minute"`
	Status     MatchStatus  `json:"status"`
	Kickoff    time.Time    `json:"time"`
	League     string       `json:"league"`
	Events     []MatchEvent `json:"events"`
}

// Clone devolve uma cópia profunda (o slice de eventos não é compartilhado)
func (m Match) Clone() Match {
	out := m
	out.Events = make([]MatchEvent, len(m.Events))
	copy(out.Events, m.Events)
	return out
}

// GoalCounts conta os gols registrados no log de eventos por lado
func (m Match) GoalCounts() (home, away int) {
	for _, ev := range m.Events {
		if ev.Type != EventGoal {
			continue
		}
		switch ev.TeamID {
		case m.HomeTeamID:
			home++
		case m.AwayTeamID:
			away++
		}
	}
	return home, away
}

// ScoreLine formata o placar "h-a"
func ScoreLine(home, away int) string {
	return fmt.Sprintf("%d-%d", home, away)
}

// Bet: no máximo uma por (usuário, partido). PointsEarned é nil até a liquidação.
type Bet struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	MatchID      int64     `json:"matchId"`
	HomeScore    int       `json:"homeScore"`
	AwayScore    int       `json:"awayScore"`
	PointsEarned *int      `json:"pointsEarned"`
	CreatedAt    time.Time `json:"createdAt"`
	Match        *Match    `json:"match,omitempty"`
}

func (b Bet) Settled() bool { return b.PointsEarned != nil }

// Standing é a linha da tabela. Tags JSON seguem o contrato do app (pj, pg, pe...).
type Standing struct {
	TeamID       int64  `json:"teamId"`
	Name         string `json:"name"`
	Strength     int    `json:"strength"`
	Played       int    `json:"pj"`
	Won          int    `json:"pg"`
	Drawn        int    `json:"pe"`
	Lost         int    `json:"pp"`
	GoalsFor     int    `json:"gf"`
	GoalsAgainst int    `json:"gc"`
	Points       int    `json:"pts"`
}

func (s Standing) GoalDiff() int { return s.GoalsFor - s.GoalsAgainst }

// Checkpoint é o estado durável do relógio da simulação
type Checkpoint struct {
	Jornada        int       `json:"jornada"`
	Tick           int64     `json:"tick"`
	LastTickAt     time.Time `json:"lastTickAt"`
	SeasonComplete bool      `json:"seasonComplete"`
}

type ChatMessage struct {
	ID       string    `json:"id"`
	MatchID  int64     `json:"matchId"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	Time     time.Time `json:"time"`
	System   bool      `json:"system,omitempty"`
}

type NotificationKind string

const (
	NotifyKickoff    NotificationKind = "kickoff"
	NotifyMinute     NotificationKind = "minute"
	NotifyGoal       NotificationKind = "goal"
	NotifyCard       NotificationKind = "card"
	NotifyFullTime   NotificationKind = "full_time"
	NotifyBetSettled NotificationKind = "bet_settled"
)

// Notification é efêmera: não faz parte do estado da simulação.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	MatchID   int64            `json:"matchId"`
	UserID    int64            `json:"userId,omitempty"`
	Text      string           `json:"text"`
	Match     *Match           `json:"match,omitempty"`
	Event     *MatchEvent      `json:"event,omitempty"`
	Bet       *Bet             `json:"bet,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Snapshot é o conteúdo completo carregado do store (loadAll)
type Snapshot struct {
	Users      []User
	Teams      []Team
	Players    []Player
	Matches    []Match
	Bets       []Bet
	Standings  []Standing
	Checkpoint Checkpoint
}

// Empty indica um banco ainda sem liga semeada
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Teams) == 0 && len(s.Matches) == 0)
}
