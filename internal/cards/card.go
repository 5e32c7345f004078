package cards

import (
	"strings"
)

type Color string

const (
	White Color = "W"
	Blue  Color = "U"
	Black Color = "B"
	Red   Color = "R"
	Green Color = "G"
)

// Colors lists the five primary colors in WUBRG order.
var Colors = []Color{White, Blue, Black, Red, Green}

type Rarity string

const (
	Common   Rarity = "common"
	Uncommon Rarity = "uncommon"
	Rare     Rarity = "rare"
	Mythic   Rarity = "mythic"
	Special  Rarity = "special"
)

// Rank orders rarities from least to most scarce.
func (r Rarity) Rank() int {
	switch r {
	case Common:
		return 0
	case Uncommon:
		return 1
	case Rare:
		return 2
	case Mythic:
		return 3
	}
	return 4
}

type Face struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Card is never mutated once the pool is built.
type Card struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Set             string  `json:"set"`
	CollectorNumber string  `json:"collectorNumber"`
	Rarity          Rarity  `json:"rarity"`
	Colors          []Color `json:"colors"`
	CMC             int     `json:"cmc"`
	Type            string  `json:"type"`
	Foil            bool    `json:"foil,omitempty"`
	Back            *Face   `json:"back,omitempty"`
}

func (c *Card) HasColor(color Color) bool {
	for _, cc := range c.Colors {
		if cc == color {
			return true
		}
	}
	return false
}

func (c *Card) IsBasicLand() bool {
	return strings.HasPrefix(c.Type, "Basic")
}

// UniqueCard is one physical copy of a card within a draft.
type UniqueCard struct {
	UniqueID int  `json:"uniqueID"`
	Foil     bool `json:"foil,omitempty"`
	Burned   bool `json:"burned,omitempty"`
	*Card
}

// Sequence hands out draft-scoped unique ids.
type Sequence struct {
	next int
}

func (s *Sequence) New(card *Card, foil bool) *UniqueCard {
	s.next++
	return &UniqueCard{UniqueID: s.next, Foil: foil || card.Foil, Card: card}
}

// IDs returns the card ids of a list, keeping order.
func IDs(list []*UniqueCard) []string {
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}

// Find returns the index of the card with uniqueID in list, or -1.
func Find(list []*UniqueCard, uniqueID int) int {
	for i, c := range list {
		if c.UniqueID == uniqueID {
			return i
		}
	}
	return -1
}
