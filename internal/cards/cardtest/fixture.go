// Package cardtest builds synthetic card tables for tests.
package cardtest

import (
	"fmt"

	"github.com/malexanderboyd/godr4ft/internal/cards"
)

// Set describes how many cards of each rarity a synthetic set holds. Commons
// and uncommons cycle through the five colors.
type Set struct {
	Code      string
	Commons   int
	Uncommons int
	Rares     int
	Mythics   int
}

var DefaultSet = Set{Code: "tst", Commons: 60, Uncommons: 30, Rares: 15, Mythics: 5}

func Cards(sets ...Set) []cards.Card {
	if len(sets) == 0 {
		sets = []Set{DefaultSet}
	}
	var list []cards.Card
	for _, s := range sets {
		n := 0
		add := func(rarity cards.Rarity, count int) {
			for i := 0; i < count; i++ {
				n++
				color := cards.Colors[i%len(cards.Colors)]
				list = append(list, cards.Card{
					ID:              fmt.Sprintf("%s-%03d", s.Code, n),
					Name:            fmt.Sprintf("%s %s %d", s.Code, rarity, i),
					Set:             s.Code,
					CollectorNumber: fmt.Sprintf("%d", n),
					Rarity:          rarity,
					Colors:          []cards.Color{color},
					CMC:             1 + i%6,
					Type:            "Creature",
				})
			}
		}
		add(cards.Common, s.Commons)
		add(cards.Uncommon, s.Uncommons)
		add(cards.Rare, s.Rares)
		add(cards.Mythic, s.Mythics)
	}
	return list
}

func Pool(sets ...Set) *cards.Pool {
	p, err := cards.NewPool(Cards(sets...))
	if err != nil {
		panic(err)
	}
	return p
}
