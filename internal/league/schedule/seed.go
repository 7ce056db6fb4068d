package schedule

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

//go:embed league.yaml
var defaultLeague []byte

// League é o arquivo de semente da liga (times, elencos, usuários de demo)
type League struct {
	Name  string     `yaml:"name"`
	Teams []TeamSeed `yaml:"teams"`
	Users []UserSeed `yaml:"users"`
}

type TeamSeed struct {
	Name     string   `yaml:"name"`
	Strength int      `yaml:"strength"`
	Players  []string `yaml:"players"`
}

type UserSeed struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Avatar   string `yaml:"avatar"`
}

// LoadLeague lê a semente de path; path vazio usa a liga embutida
func LoadLeague(path string) (*League, error) {
	data := defaultLeague
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read league seed: %w", err)
		}
		data = b
	}
	return ParseLeague(data)
}

func ParseLeague(data []byte) (*League, error) {
	var l League
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse league seed: %w", err)
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *League) validate() error {
	if len(l.Teams) < 2 {
		return fmt.Errorf("%w: league needs at least two teams", model.ErrInvalidInput)
	}
	seen := map[string]bool{}
	for _, t := range l.Teams {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if key == "" {
			return fmt.Errorf("%w: team without name", model.ErrInvalidInput)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate team %q", model.ErrInvalidInput, t.Name)
		}
		if t.Strength < 0 {
			return fmt.Errorf("%w: team %q has negative strength", model.ErrInvalidInput, t.Name)
		}
		seen[key] = true
	}
	return nil
}

// Build monta o snapshot inicial: ids sequenciais, calendário ida e volta e
// checkpoint apontando para a jornada 1. A jornada j começa em
// start + (j-1)*interval.
func (l *League) Build(start time.Time, interval time.Duration) *model.Snapshot {
	snap := &model.Snapshot{Checkpoint: model.Checkpoint{Jornada: 1}}

	var playerID int64 = 1
	for i, ts := range l.Teams {
		team := model.Team{ID: int64(i + 1), Name: ts.Name, Strength: ts.Strength}
		snap.Teams = append(snap.Teams, team)
		for _, name := range ts.Players {
			snap.Players = append(snap.Players, model.Player{
				ID: playerID, TeamID: team.ID, TeamName: team.Name, Name: name,
			})
			playerID++
		}
	}

	for i, us := range l.Users {
		avatar := us.Avatar
		if avatar == "" {
			avatar = "account_circle"
		}
		snap.Users = append(snap.Users, model.User{
			ID: int64(i + 1), Username: us.Username, Email: us.Email, Avatar: avatar,
		})
	}

	var matchID int64 = 1
	for j, round := range RoundRobin(len(snap.Teams)) {
		jornada := j + 1
		kickoff := start.Add(time.Duration(j) * interval)
		for _, fx := range round {
			home, away := snap.Teams[fx.Home], snap.Teams[fx.Away]
			snap.Matches = append(snap.Matches, model.Match{
				ID:         matchID,
				Jornada:    jornada,
				HomeTeamID: home.ID,
				AwayTeamID: away.ID,
				Home:       home.Name,
				Away:       away.Name,
				Status:     model.StatusPending,
				Kickoff:    kickoff,
				League:     l.Name,
				Events:     []model.MatchEvent{},
			})
			matchID++
		}
	}
	return snap
}
