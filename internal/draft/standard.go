package draft

import (
	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// Standard is the simultaneous pass-the-pack draft. Boosters move one seat
// after every pick round, left on even boosters and right on odd ones.
type Standard struct {
	players   []string
	rounds    [][]booster.Booster
	round     int
	pick      int
	held      []booster.Booster
	picked    []bool
	pickCount int
	burnCount int
	discardAt int
	pools     map[string][]*cards.UniqueCard
	burned    []*cards.UniqueCard
	discarded []*cards.UniqueCard
	total     int
	complete  bool
}

func NewStandard(players []string, rounds [][]booster.Booster, pickCount, burnCount, discardAt int) (*Standard, error) {
	if len(players) < 2 {
		return nil, game.ErrNotEnoughPlayers
	}
	if pickCount < 1 {
		return nil, game.Validation("pick count must be at least 1")
	}
	for r, round := range rounds {
		if len(round) != len(players) {
			return nil, game.Validation("round %d has %d boosters for %d players", r, len(round), len(players))
		}
	}
	s := &Standard{
		players:   append([]string(nil), players...),
		rounds:    rounds,
		picked:    make([]bool, len(players)),
		pickCount: pickCount,
		burnCount: burnCount,
		discardAt: discardAt,
		pools:     make(map[string][]*cards.UniqueCard, len(players)),
		total:     booster.Count(rounds),
	}
	s.startRound()
	return s, nil
}

func (s *Standard) Kind() game.Kind {
	return game.STANDARD
}

func (s *Standard) Players() []string {
	return s.players
}

func (s *Standard) IsComplete() bool {
	return s.complete
}

func (s *Standard) BoosterNumber() int {
	return s.round
}

func (s *Standard) PickNumber() int {
	return s.pick
}

func (s *Standard) Rounds() int {
	return len(s.rounds)
}

// Booster returns the booster waiting for userID, nil once they picked this round.
func (s *Standard) Booster(userID string) booster.Booster {
	seat := seatOf(s.players, userID)
	if seat < 0 || s.complete || s.picked[seat] {
		return nil
	}
	return s.held[seat]
}

func (s *Standard) HasPicked(userID string) bool {
	seat := seatOf(s.players, userID)
	return seat >= 0 && (s.complete || s.picked[seat])
}

// Pending lists the players that still owe a pick this round.
func (s *Standard) Pending() []string {
	var out []string
	if s.complete {
		return out
	}
	for seat, p := range s.players {
		if !s.picked[seat] {
			out = append(out, p)
		}
	}
	return out
}

// Required returns how many cards userID must pick and burn from the current
// booster. A booster too small for both finishes early with fewer burns.
func (s *Standard) Required(userID string) (picks, burns int) {
	b := s.Booster(userID)
	picks = s.pickCount
	if picks > len(b) {
		picks = len(b)
	}
	burns = s.burnCount
	if burns > len(b)-picks {
		burns = len(b) - picks
	}
	return picks, burns
}

func (s *Standard) Pool(userID string) []*cards.UniqueCard {
	return s.pools[userID]
}

func (s *Standard) Burned() []*cards.UniqueCard {
	return s.burned
}

func (s *Standard) Discarded() []*cards.UniqueCard {
	return s.discarded
}

func (s *Standard) Total() int {
	return s.total
}

// Remaining counts the cards still held or not yet opened.
func (s *Standard) Remaining() int {
	n := 0
	if s.complete {
		return n
	}
	for _, b := range s.held {
		n += len(b)
	}
	for r := s.round + 1; r < len(s.rounds); r++ {
		for _, b := range s.rounds[r] {
			n += len(b)
		}
	}
	return n
}

func (s *Standard) Pick(userID string, sel Selection) (Result, error) {
	seat := seatOf(s.players, userID)
	if seat < 0 {
		return Result{}, game.Validation("%s is not seated in this draft", userID)
	}
	if s.complete {
		return Result{}, game.ErrNotDrafting
	}
	if s.picked[seat] {
		return Result{}, game.State(game.CodeNotYourTurn, "already picked this round, waiting for the other players")
	}

	held := s.held[seat]
	picks, burns := s.Required(userID)
	if len(sel.Picks) != picks {
		return Result{}, game.Validation("expected %d picked cards, got %d", picks, len(sel.Picks))
	}
	if len(sel.Burns) != burns {
		return Result{}, game.Validation("expected %d burned cards, got %d", burns, len(sel.Burns))
	}
	seen := make(map[int]bool, picks+burns)
	for _, id := range append(append([]int(nil), sel.Picks...), sel.Burns...) {
		if seen[id] {
			return Result{}, game.Validation("card %d selected twice", id)
		}
		seen[id] = true
		if cards.Find(held, id) < 0 {
			return Result{}, game.Validation("card %d is not in your booster", id)
		}
	}

	held, taken := removeCards(held, sel.Picks)
	held, burnt := removeCards(held, sel.Burns)
	for _, c := range burnt {
		c.Burned = true
	}
	s.held[seat] = held
	s.pools[userID] = append(s.pools[userID], taken...)
	s.burned = append(s.burned, burnt...)
	s.picked[seat] = true

	res := Result{Taken: taken}
	if s.allPicked() {
		res.RoundAdvanced = true
		res.BoosterAdvanced = s.advance()
		res.Complete = s.complete
	}
	return res, nil
}

func (s *Standard) allPicked() bool {
	for _, p := range s.picked {
		if !p {
			return false
		}
	}
	return true
}

// advance passes the boosters, or opens the next round once no legal pick is
// left. It reports whether a new round was opened.
func (s *Standard) advance() bool {
	if s.exhausted() {
		for _, b := range s.held {
			s.discarded = append(s.discarded, b...)
		}
		s.round++
		s.startRound()
		return true
	}
	n := len(s.players)
	next := make([]booster.Booster, n)
	for seat, b := range s.held {
		to := (seat + 1) % n
		if s.round%2 == 1 {
			to = (seat - 1 + n) % n
		}
		next[to] = b
	}
	s.held = next
	s.pick++
	s.resetPicked()
	if s.allPicked() {
		return s.advance()
	}
	return false
}

func (s *Standard) exhausted() bool {
	largest := 0
	for _, b := range s.held {
		if len(b) > largest {
			largest = len(b)
		}
	}
	return largest == 0 || (s.discardAt > 0 && largest <= s.discardAt)
}

func (s *Standard) startRound() {
	s.pick = 0
	if s.round >= len(s.rounds) {
		s.complete = true
		s.held = nil
		return
	}
	s.held = make([]booster.Booster, len(s.players))
	for seat, b := range s.rounds[s.round] {
		s.held[seat] = append(booster.Booster(nil), b...)
	}
	s.resetPicked()
	if s.allPicked() {
		s.advance()
	}
}

// resetPicked clears the round marks. Seats holding an empty booster have
// nothing to pick and count as done.
func (s *Standard) resetPicked() {
	for seat := range s.picked {
		s.picked[seat] = len(s.held[seat]) == 0
	}
}
