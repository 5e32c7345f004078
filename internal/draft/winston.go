package draft

import (
	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// Winston is the two player pile draft. The current player looks at piles in
// order and either takes one or adds the top stack card to it and moves on.
type Winston struct {
	players []string
	stack   []*cards.UniqueCard
	piles   [][]*cards.UniqueCard
	current int
	pile    int
	pools   map[string][]*cards.UniqueCard
	total   int
}

func NewWinston(players []string, boosters []booster.Booster, pileCount int) (*Winston, error) {
	if len(players) != 2 {
		return nil, game.Validation("winston drafts need exactly 2 players, got %d", len(players))
	}
	if pileCount < 1 {
		return nil, game.Validation("winston drafts need at least one pile")
	}
	w := &Winston{
		players: append([]string(nil), players...),
		piles:   make([][]*cards.UniqueCard, pileCount),
		pools:   make(map[string][]*cards.UniqueCard, 2),
	}
	for _, b := range boosters {
		w.stack = append(w.stack, b...)
	}
	w.total = len(w.stack)
	if w.total < pileCount {
		return nil, game.Supply("%d cards cannot seed %d piles", w.total, pileCount)
	}
	for i := range w.piles {
		w.piles[i] = []*cards.UniqueCard{w.draw()}
	}
	return w, nil
}

func (w *Winston) Kind() game.Kind {
	return game.WINSTON
}

func (w *Winston) Players() []string {
	return w.players
}

func (w *Winston) CurrentPlayer() string {
	if w.IsComplete() {
		return ""
	}
	return w.players[w.current]
}

// CurrentPile is the index of the pile the current player is looking at.
func (w *Winston) CurrentPile() int {
	return w.pile
}

func (w *Winston) Piles() [][]*cards.UniqueCard {
	return w.piles
}

func (w *Winston) StackSize() int {
	return len(w.stack)
}

func (w *Winston) Total() int {
	return w.total
}

func (w *Winston) Pool(userID string) []*cards.UniqueCard {
	return w.pools[userID]
}

func (w *Winston) IsComplete() bool {
	if len(w.stack) > 0 {
		return false
	}
	for _, p := range w.piles {
		if len(p) > 0 {
			return false
		}
	}
	return true
}

func (w *Winston) Pick(userID string, sel Selection) (Result, error) {
	switch sel.Action {
	case TakePile:
		return w.Take(userID)
	case SkipPile:
		return w.Skip(userID)
	}
	return Result{}, game.Validation("unknown winston action %q", sel.Action)
}

// Take gives the current pile to the player, refills it from the stack and
// passes the turn.
func (w *Winston) Take(userID string) (Result, error) {
	if err := w.checkTurn(userID); err != nil {
		return Result{}, err
	}
	taken := w.piles[w.pile]
	w.pools[userID] = append(w.pools[userID], taken...)
	w.piles[w.pile] = nil
	if c := w.draw(); c != nil {
		w.piles[w.pile] = []*cards.UniqueCard{c}
	}
	w.endTurn()
	return Result{Taken: taken, RoundAdvanced: true, Complete: w.IsComplete()}, nil
}

// Skip grows the current pile by one stack card and moves to the next
// non-empty pile. Skipping the last pile takes the top stack card blind.
func (w *Winston) Skip(userID string) (Result, error) {
	if err := w.checkTurn(userID); err != nil {
		return Result{}, err
	}
	next := w.nextPile(w.pile + 1)
	if next < 0 && len(w.stack) == 0 {
		return Result{}, game.Validation("the last pile cannot be skipped once the stack is empty")
	}
	if c := w.draw(); c != nil {
		w.piles[w.pile] = append(w.piles[w.pile], c)
	}
	if next >= 0 {
		w.pile = next
		return Result{}, nil
	}
	var taken []*cards.UniqueCard
	if c := w.draw(); c != nil {
		taken = append(taken, c)
		w.pools[userID] = append(w.pools[userID], c)
	}
	w.endTurn()
	return Result{Taken: taken, RoundAdvanced: true, Complete: w.IsComplete()}, nil
}

func (w *Winston) checkTurn(userID string) error {
	if seatOf(w.players, userID) < 0 {
		return game.Validation("%s is not seated in this draft", userID)
	}
	if w.IsComplete() {
		return game.ErrNotDrafting
	}
	if w.players[w.current] != userID {
		return game.ErrNotYourTurn
	}
	return nil
}

func (w *Winston) endTurn() {
	w.current = (w.current + 1) % len(w.players)
	w.pile = w.nextPile(0)
	if w.pile < 0 {
		w.pile = 0
	}
}

func (w *Winston) nextPile(from int) int {
	for i := from; i < len(w.piles); i++ {
		if len(w.piles[i]) > 0 {
			return i
		}
	}
	return -1
}

func (w *Winston) draw() *cards.UniqueCard {
	if len(w.stack) == 0 {
		return nil
	}
	c := w.stack[0]
	w.stack = w.stack[1:]
	return c
}
