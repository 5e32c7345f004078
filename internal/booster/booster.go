package booster

import (
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// DuplicateRetries bounds the redraws made when a candidate is already in
// the booster being built. Once exhausted the duplicate is accepted.
const DuplicateRetries = 3

type Booster []*cards.UniqueCard

func (b Booster) Contains(cardID string) bool {
	for _, c := range b {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// Source yields the boosters of one draft. Sources own per-draft state such as
// the pool copies consumed by draws without replacement.
type Source interface {
	Generate(round int) (Booster, error)
}

// supplyChecker is implemented by sources that can tell up front whether they
// hold enough cards for a given number of boosters per round.
type supplyChecker interface {
	CheckSupply(rounds, players int) error
}

// GenerateAll eagerly produces every booster of a draft, indexed
// [round][seat], so that supply problems surface before distribution.
func GenerateAll(src Source, rounds, players int) ([][]Booster, error) {
	if rounds < 1 || players < 1 {
		return nil, game.Validation("a draft needs at least one round and one player")
	}
	if sc, ok := src.(supplyChecker); ok {
		if err := sc.CheckSupply(rounds, players); err != nil {
			return nil, err
		}
	}
	out := make([][]Booster, rounds)
	for r := 0; r < rounds; r++ {
		out[r] = make([]Booster, players)
		for seat := 0; seat < players; seat++ {
			b, err := src.Generate(r)
			if err != nil {
				return nil, err
			}
			out[r][seat] = b
		}
	}
	return out, nil
}

// Predetermined serves uploaded boosters verbatim in upload order.
func Predetermined(lists [][]*cards.Card, rounds, players int, seq *cards.Sequence) ([][]Booster, error) {
	if len(lists) != rounds*players {
		return nil, game.Validation("%d boosters were uploaded but the draft needs exactly %d (%d players x %d boosters)",
			len(lists), rounds*players, players, rounds)
	}
	out := make([][]Booster, rounds)
	for r := 0; r < rounds; r++ {
		out[r] = make([]Booster, players)
		for seat := 0; seat < players; seat++ {
			list := lists[r*players+seat]
			b := make(Booster, len(list))
			for i, c := range list {
				b[i] = seq.New(c, false)
			}
			out[r][seat] = b
		}
	}
	return out, nil
}

// Flatten returns the boosters in round-major order.
func Flatten(rounds [][]Booster) []Booster {
	var out []Booster
	for _, r := range rounds {
		out = append(out, r...)
	}
	return out
}

// Count is the total number of cards across all boosters.
func Count(rounds [][]Booster) int {
	total := 0
	for _, r := range rounds {
		for _, b := range r {
			total += len(b)
		}
	}
	return total
}
