package draft

import (
	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// Rochester opens one booster at a time in front of everyone. Boosters take
// turns being opened by each seat and picks snake around the table, forward
// on even boosters and backwards on odd ones.
type Rochester struct {
	players  []string
	boosters []booster.Booster
	index    int
	open     booster.Booster
	pick     int
	pools    map[string][]*cards.UniqueCard
	complete bool
}

func NewRochester(players []string, boosters []booster.Booster) (*Rochester, error) {
	if len(players) < 2 {
		return nil, game.ErrNotEnoughPlayers
	}
	r := &Rochester{
		players:  append([]string(nil), players...),
		boosters: boosters,
		pools:    make(map[string][]*cards.UniqueCard, len(players)),
	}
	r.openNext()
	return r, nil
}

func (r *Rochester) Kind() game.Kind {
	return game.ROCHESTER
}

func (r *Rochester) Players() []string {
	return r.players
}

func (r *Rochester) IsComplete() bool {
	return r.complete
}

// Booster is the open booster every player can see.
func (r *Rochester) Booster() booster.Booster {
	return r.open
}

func (r *Rochester) BoosterNumber() int {
	return r.index
}

func (r *Rochester) PickNumber() int {
	return r.pick
}

func (r *Rochester) Pool(userID string) []*cards.UniqueCard {
	return r.pools[userID]
}

func (r *Rochester) CurrentPlayer() string {
	if r.complete {
		return ""
	}
	return r.players[r.seat()]
}

func (r *Rochester) seat() int {
	n := len(r.players)
	start := r.index % n
	if r.index%2 == 0 {
		return (start + r.pick) % n
	}
	return ((start-r.pick)%n + n) % n
}

func (r *Rochester) Pick(userID string, sel Selection) (Result, error) {
	if seatOf(r.players, userID) < 0 {
		return Result{}, game.Validation("%s is not seated in this draft", userID)
	}
	if r.complete {
		return Result{}, game.ErrNotDrafting
	}
	if r.CurrentPlayer() != userID {
		return Result{}, game.ErrNotYourTurn
	}
	if len(sel.Picks) != 1 {
		return Result{}, game.Validation("expected exactly one picked card, got %d", len(sel.Picks))
	}
	if cards.Find(r.open, sel.Picks[0]) < 0 {
		return Result{}, game.Validation("card %d is not in the open booster", sel.Picks[0])
	}
	rest, taken := removeCards(r.open, sel.Picks)
	r.open = rest
	r.pools[userID] = append(r.pools[userID], taken...)
	r.pick++

	res := Result{Taken: taken, RoundAdvanced: true}
	if len(r.open) == 0 {
		r.index++
		r.openNext()
		res.BoosterAdvanced = true
		res.Complete = r.complete
	}
	return res, nil
}

func (r *Rochester) openNext() {
	r.pick = 0
	for ; r.index < len(r.boosters); r.index++ {
		if len(r.boosters[r.index]) > 0 {
			r.open = append(booster.Booster(nil), r.boosters[r.index]...)
			return
		}
	}
	r.open = nil
	r.complete = true
}
