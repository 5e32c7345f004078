package draft

import (
	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// Sealed hands every player their boosters outright. With teams, members
// share one pool holding every booster dealt to the team.
type Sealed struct {
	kind    game.Kind
	players []string
	pools   map[string][]*cards.UniqueCard
	teams   [][]*cards.UniqueCard
	teamOf  map[string]int
}

// NewSealed deals boosters[round][seat] to players[seat].
func NewSealed(players []string, boosters [][]booster.Booster) (*Sealed, error) {
	s := &Sealed{
		kind:    game.SEALED,
		players: append([]string(nil), players...),
		pools:   make(map[string][]*cards.UniqueCard, len(players)),
	}
	for _, round := range boosters {
		if len(round) != len(players) {
			return nil, game.Validation("sealed round has %d boosters for %d players", len(round), len(players))
		}
		for seat, b := range round {
			s.pools[players[seat]] = append(s.pools[players[seat]], b...)
		}
	}
	return s, nil
}

// NewTeamSealed deals boosters[round][team] to each team's shared pool.
// Players missing from teams are rejected.
func NewTeamSealed(players []string, teams [][]string, boosters [][]booster.Booster) (*Sealed, error) {
	s := &Sealed{
		kind:    game.TEAM_SEALED,
		players: append([]string(nil), players...),
		teams:   make([][]*cards.UniqueCard, len(teams)),
		teamOf:  make(map[string]int, len(players)),
	}
	for t, team := range teams {
		if len(team) == 0 {
			return nil, game.Validation("team %d is empty", t)
		}
		for _, p := range team {
			if seatOf(players, p) < 0 {
				return nil, game.Validation("team member %s is not in the session", p)
			}
			if _, dup := s.teamOf[p]; dup {
				return nil, game.Validation("%s is in more than one team", p)
			}
			s.teamOf[p] = t
		}
	}
	for _, p := range players {
		if _, ok := s.teamOf[p]; !ok {
			return nil, game.Validation("%s is not assigned to a team", p)
		}
	}
	for _, round := range boosters {
		if len(round) != len(teams) {
			return nil, game.Validation("team sealed round has %d boosters for %d teams", len(round), len(teams))
		}
		for t, b := range round {
			s.teams[t] = append(s.teams[t], b...)
		}
	}
	return s, nil
}

func (s *Sealed) Kind() game.Kind {
	return s.kind
}

func (s *Sealed) Players() []string {
	return s.players
}

func (s *Sealed) IsComplete() bool {
	return true
}

func (s *Sealed) Pick(string, Selection) (Result, error) {
	return Result{}, game.Validation("%s has no picks", s.kind)
}

func (s *Sealed) Pool(userID string) []*cards.UniqueCard {
	if s.teamOf == nil {
		return s.pools[userID]
	}
	t, ok := s.teamOf[userID]
	if !ok {
		return nil
	}
	return s.teams[t]
}

// Team returns the index of userID's team, or -1.
func (s *Sealed) Team(userID string) int {
	if t, ok := s.teamOf[userID]; ok {
		return t
	}
	return -1
}
