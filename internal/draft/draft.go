package draft

import (
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// Winston actions.
const (
	TakePile = "take"
	SkipPile = "skip"
)

// Selection is the input of a pick. Each variant reads the fields it needs:
// Standard uses Picks and Burns, Rochester a single Picks entry, Grid Choice
// and Winston Action.
type Selection struct {
	Picks  []int  `json:"picks,omitempty"`
	Burns  []int  `json:"burns,omitempty"`
	Choice int    `json:"choice,omitempty"`
	Action string `json:"action,omitempty"`
}

type Result struct {
	Taken           []*cards.UniqueCard
	RoundAdvanced   bool
	BoosterAdvanced bool
	Complete        bool
}

// State is the capability set shared by every draft variant.
type State interface {
	Kind() game.Kind
	Players() []string
	Pick(userID string, sel Selection) (Result, error)
	IsComplete() bool
	Pool(userID string) []*cards.UniqueCard
}

// TurnBased variants let exactly one player act at a time.
type TurnBased interface {
	State
	CurrentPlayer() string
}

func seatOf(players []string, userID string) int {
	for i, p := range players {
		if p == userID {
			return i
		}
	}
	return -1
}

func removeCards(list []*cards.UniqueCard, ids []int) ([]*cards.UniqueCard, []*cards.UniqueCard) {
	var taken []*cards.UniqueCard
	for _, id := range ids {
		if i := cards.Find(list, id); i >= 0 {
			taken = append(taken, list[i])
			list = append(list[:i], list[i+1:]...)
		}
	}
	return list, taken
}
