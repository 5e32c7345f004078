package models

import "github.com/malexanderboyd/godr4ft/internal/cards"

// WinstonSyncPayload shows pile sizes to everyone; only the current player
// gets the cards of the pile they are looking at.
type WinstonSyncPayload struct {
	CurrentPlayer string              `json:"currentPlayer"`
	CurrentPile   int                 `json:"currentPile"`
	PileSizes     []int               `json:"pileSizes"`
	StackSize     int                 `json:"stackSize"`
	Pile          []*cards.UniqueCard `json:"pile,omitempty"`
}

type GridSyncPayload struct {
	CurrentPlayer string              `json:"currentPlayer"`
	BoosterNumber int                 `json:"boosterNumber"`
	BoosterCount  int                 `json:"boosterCount"`
	Cells         []*cards.UniqueCard `json:"cells"`
}

type RochesterSyncPayload struct {
	CurrentPlayer string              `json:"currentPlayer"`
	BoosterNumber int                 `json:"boosterNumber"`
	PickNumber    int                 `json:"pickNumber"`
	Booster       []*cards.UniqueCard `json:"booster"`
}

type TimerPayload struct {
	Countdown int `json:"countdown"`
}

type EndDraftPayload struct {
	Complete bool `json:"complete"`
}
