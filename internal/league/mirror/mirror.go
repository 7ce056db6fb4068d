package mirror

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/radieske/betbuddy-league/internal/dependencies/clock"
	"github.com/radieske/betbuddy-league/internal/league/model"
	"github.com/radieske/betbuddy-league/internal/league/standings"
)

// Sink recebe as mutações confirmadas para escrita assíncrona no store.
// Enqueue não pode bloquear.
type Sink interface {
	Enqueue(muts ...model.Mutation)
}

// ErrInconsistent indica dados carregados que violam invariantes do domínio
var ErrInconsistent = errors.New("inconsistent league data")

type betKey struct {
	userID  int64
	matchID int64
}

type state struct {
	users       map[int64]*model.User
	teams       map[int64]*model.Team
	teamByName  map[string]int64
	players     map[int64]*model.Player
	squads      map[int64][]int64
	matches     map[int64]*model.Match
	matchOrder  []int64
	bets        map[int64]*model.Bet
	betOrder    []int64
	betIndex    map[betKey]int64
	standings   []model.Standing
	checkpoint  model.Checkpoint
	lastJornada int
	nextBetID   int64
}

// Mirror é a cópia autoritativa em memória de toda a liga durante a vida do
// processo. Escritores (Update, Load) se revezam em mu e, ao terminar,
// publicam uma cópia imutável do estado em view. Leituras só carregam view:
// nunca esperam um tick e veem o estado antes ou depois de cada Update,
// nunca uma mistura.
//
// Apostas novas não passam por mu: PlaceBet valida contra view e guarda a
// aposta no inbox (sob betMu). O próximo Update move o inbox para o estado.
type Mirror struct {
	mu   sync.Mutex
	s    *state
	view atomic.Pointer[state]

	betMu      sync.Mutex
	inbox      []model.Bet
	inboxIndex map[betKey]int64
	nextBetID  int64

	sink  Sink
	clock clock.Clock
}

func New(sink Sink, clk clock.Clock) *Mirror {
	if clk == nil {
		clk = clock.New()
	}
	m := &Mirror{
		s:          newState(),
		inboxIndex: map[betKey]int64{},
		nextBetID:  1,
		sink:       sink,
		clock:      clk,
	}
	m.view.Store(m.s.clone())
	return m
}

func newState() *state {
	return &state{
		users:      map[int64]*model.User{},
		teams:      map[int64]*model.Team{},
		teamByName: map[string]int64{},
		players:    map[int64]*model.Player{},
		squads:     map[int64][]int64{},
		matches:    map[int64]*model.Match{},
		bets:       map[int64]*model.Bet{},
		betIndex:   map[betKey]int64{},
		nextBetID:  1,
	}
}

// Load substitui o estado pelo snapshot, validando referências e invariantes.
// Estado derivado (tabela, gols de jogadores, pontos de usuários) é recalculado
// a partir dos partidos e apostas. Devolve a lista de correções aplicadas.
func (m *Mirror) Load(snap *model.Snapshot) ([]string, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInconsistent)
	}
	s := newState()
	var fixes []string

	for i := range snap.Teams {
		t := snap.Teams[i]
		if _, dup := s.teams[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate team id %d", ErrInconsistent, t.ID)
		}
		s.teams[t.ID] = &t
		s.teamByName[strings.ToLower(t.Name)] = t.ID
	}
	for i := range snap.Users {
		u := snap.Users[i]
		s.users[u.ID] = &u
	}
	for i := range snap.Players {
		p := snap.Players[i]
		team, ok := s.teams[p.TeamID]
		if !ok {
			return nil, fmt.Errorf("%w: player %d references unknown team %d", ErrInconsistent, p.ID, p.TeamID)
		}
		p.TeamName = team.Name
		s.players[p.ID] = &p
		s.squads[p.TeamID] = append(s.squads[p.TeamID], p.ID)
	}
	for i := range snap.Matches {
		mt := snap.Matches[i].Clone()
		if err := validateMatch(s, mt); err != nil {
			return nil, err
		}
		s.matches[mt.ID] = &mt
		s.matchOrder = append(s.matchOrder, mt.ID)
		s.lastJornada = max(s.lastJornada, mt.Jornada)
	}
	s.sortMatches()

	for i := range snap.Bets {
		b := snap.Bets[i]
		b.Match = nil
		if _, ok := s.users[b.UserID]; !ok {
			return nil, fmt.Errorf("%w: bet %d references unknown user %d", ErrInconsistent, b.ID, b.UserID)
		}
		mt, ok := s.matches[b.MatchID]
		if !ok {
			return nil, fmt.Errorf("%w: bet %d references unknown match %d", ErrInconsistent, b.ID, b.MatchID)
		}
		if b.Settled() && mt.Status != model.StatusFinished {
			return nil, fmt.Errorf("%w: bet %d settled before match %d finished", ErrInconsistent, b.ID, mt.ID)
		}
		k := betKey{b.UserID, b.MatchID}
		if _, dup := s.betIndex[k]; dup {
			return nil, fmt.Errorf("%w: duplicate bet for user %d match %d", ErrInconsistent, b.UserID, b.MatchID)
		}
		s.bets[b.ID] = &b
		s.betOrder = append(s.betOrder, b.ID)
		s.betIndex[k] = b.ID
		s.nextBetID = max(s.nextBetID, b.ID+1)
	}
	sort.Slice(s.betOrder, func(i, j int) bool { return s.betOrder[i] < s.betOrder[j] })

	fixes = append(fixes, s.reconcile()...)

	s.checkpoint = snap.Checkpoint
	if s.checkpoint.Jornada < 1 && s.lastJornada > 0 {
		s.checkpoint.Jornada = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.betMu.Lock()
	defer m.betMu.Unlock()
	m.s = s
	m.inbox = nil
	m.inboxIndex = map[betKey]int64{}
	m.nextBetID = s.nextBetID
	m.view.Store(s.clone())
	return fixes, nil
}

func validateMatch(s *state, mt model.Match) error {
	if !mt.Status.Valid() {
		return fmt.Errorf("%w: match %d has invalid status %q", ErrInconsistent, mt.ID, mt.Status)
	}
	if _, dup := s.matches[mt.ID]; dup {
		return fmt.Errorf("%w: duplicate match id %d", ErrInconsistent, mt.ID)
	}
	if _, ok := s.teams[mt.HomeTeamID]; !ok {
		return fmt.Errorf("%w: match %d references unknown home team %d", ErrInconsistent, mt.ID, mt.HomeTeamID)
	}
	if _, ok := s.teams[mt.AwayTeamID]; !ok {
		return fmt.Errorf("%w: match %d references unknown away team %d", ErrInconsistent, mt.ID, mt.AwayTeamID)
	}
	if mt.HomeScore < 0 || mt.AwayScore < 0 || mt.Minute < 0 {
		return fmt.Errorf("%w: match %d has negative score or minute", ErrInconsistent, mt.ID)
	}
	h, a := mt.GoalCounts()
	if h != mt.HomeScore || a != mt.AwayScore {
		return fmt.Errorf("%w: match %d score %d-%d does not match goal events %d-%d",
			ErrInconsistent, mt.ID, mt.HomeScore, mt.AwayScore, h, a)
	}
	last := 0
	for _, ev := range mt.Events {
		if ev.Minute < last || ev.Minute > mt.Minute {
			return fmt.Errorf("%w: match %d has out-of-order event at minute %d", ErrInconsistent, mt.ID, ev.Minute)
		}
		last = ev.Minute
	}
	return nil
}

// reconcile recalcula estado derivado a partir do histórico
func (s *state) reconcile() []string {
	var fixes []string

	goals := map[int64]int{}
	for _, id := range s.matchOrder {
		for _, ev := range s.matches[id].Events {
			if ev.Type == model.EventGoal && ev.PlayerID != 0 {
				goals[ev.PlayerID]++
			}
		}
	}
	for _, p := range s.players {
		if p.Goals != goals[p.ID] {
			fixes = append(fixes, fmt.Sprintf("player %d goals %d -> %d", p.ID, p.Goals, goals[p.ID]))
			p.Goals = goals[p.ID]
		}
	}

	points := map[int64]int{}
	for _, b := range s.bets {
		if b.Settled() {
			points[b.UserID] += *b.PointsEarned
		}
	}
	for _, u := range s.users {
		if u.Points != points[u.ID] {
			fixes = append(fixes, fmt.Sprintf("user %d points %d -> %d", u.ID, u.Points, points[u.ID]))
			u.Points = points[u.ID]
		}
	}

	s.standings = standings.Compute(s.teamList(), s.finishedMatches())
	return fixes
}

// clone copia o estado inteiro. A cópia publicada em view nunca é mutada.
func (s *state) clone() *state {
	c := &state{
		users:       cloneValues(s.users),
		teams:       cloneValues(s.teams),
		teamByName:  maps.Clone(s.teamByName),
		players:     cloneValues(s.players),
		squads:      make(map[int64][]int64, len(s.squads)),
		matches:     make(map[int64]*model.Match, len(s.matches)),
		matchOrder:  slices.Clone(s.matchOrder),
		bets:        cloneValues(s.bets),
		betOrder:    slices.Clone(s.betOrder),
		betIndex:    maps.Clone(s.betIndex),
		standings:   slices.Clone(s.standings),
		checkpoint:  s.checkpoint,
		lastJornada: s.lastJornada,
		nextBetID:   s.nextBetID,
	}
	for id, squad := range s.squads {
		c.squads[id] = slices.Clone(squad)
	}
	for id, mt := range s.matches {
		mc := mt.Clone()
		c.matches[id] = &mc
	}
	return c
}

func cloneValues[T any](src map[int64]*T) map[int64]*T {
	out := make(map[int64]*T, len(src))
	for k, v := range src {
		c := *v
		out[k] = &c
	}
	return out
}

// insertBet acrescenta uma aposta já validada; ids chegam em ordem crescente
func (s *state) insertBet(b model.Bet) {
	b.Match = nil
	s.bets[b.ID] = &b
	s.betOrder = append(s.betOrder, b.ID)
	s.betIndex[betKey{b.UserID, b.MatchID}] = b.ID
	s.nextBetID = max(s.nextBetID, b.ID+1)
}

func (s *state) sortMatches() {
	sort.SliceStable(s.matchOrder, func(i, j int) bool {
		a, b := s.matches[s.matchOrder[i]], s.matches[s.matchOrder[j]]
		if a.Jornada != b.Jornada {
			return a.Jornada < b.Jornada
		}
		if !a.Kickoff.Equal(b.Kickoff) {
			return a.Kickoff.Before(b.Kickoff)
		}
		return a.ID < b.ID
	})
}

func (s *state) teamList() []model.Team {
	out := make([]model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *state) finishedMatches() []model.Match {
	var out []model.Match
	for _, id := range s.matchOrder {
		if mt := s.matches[id]; mt.Status == model.StatusFinished {
			out = append(out, *mt)
		}
	}
	return out
}

// Update executa fn com acesso exclusivo ao estado, depois de mover para ele
// as apostas do inbox. Ao final publica a nova view. As mutações registradas
// na Tx são enviadas ao sink ainda sob o lock, para a fila receber na mesma
// ordem em que o estado mudou (Enqueue não bloqueia). fn deve validar antes
// de mutar: um erro não desfaz mudanças já feitas, apenas descarta o envio.
func (m *Mirror) Update(fn func(tx *Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := m.mergeInbox()
	tx := &Tx{s: m.s, touched: map[string]int{}}
	err := fn(tx)
	m.view.Store(m.s.clone())
	m.dropMerged(merged)
	if err != nil {
		return err
	}
	if m.sink != nil && len(tx.muts) > 0 {
		m.sink.Enqueue(tx.muts...)
	}
	return nil
}

// mergeInbox copia para o estado as apostas aceitas até agora. Elas só saem
// do inbox depois que a view com elas é publicada (dropMerged), então um
// leitor sempre as encontra em um dos dois.
func (m *Mirror) mergeInbox() int {
	m.betMu.Lock()
	accepted := m.inbox
	m.betMu.Unlock()
	for _, b := range accepted {
		m.s.insertBet(b)
	}
	return len(accepted)
}

func (m *Mirror) dropMerged(n int) {
	if n == 0 {
		return
	}
	m.betMu.Lock()
	defer m.betMu.Unlock()
	for _, b := range m.inbox[:n] {
		delete(m.inboxIndex, betKey{b.UserID, b.MatchID})
	}
	m.inbox = slices.Clone(m.inbox[n:])
}

func (m *Mirror) now() time.Time { return m.clock.Now() }
