package models

import "github.com/malexanderboyd/godr4ft/internal/cards"

// DraftStatePayload is one player's view of a standard draft. Booster is
// empty once the player picked and waits for the table.
type DraftStatePayload struct {
	BoosterNumber int                 `json:"boosterNumber"`
	PickNumber    int                 `json:"pickNumber"`
	Booster       []*cards.UniqueCard `json:"booster"`
	PicksRequired int                 `json:"picksRequired"`
	BurnsRequired int                 `json:"burnsRequired"`
}

// SelectionPayload is a player's pool: the sealed distribution, or the
// cards picked so far.
type SelectionPayload struct {
	Pool []*cards.UniqueCard `json:"pool"`
	Team int                 `json:"team,omitempty"`
}

// RejoinPayload lets a returning client rebuild its view without picking again.
type RejoinPayload struct {
	Kind          string              `json:"kind"`
	Pool          []*cards.UniqueCard `json:"pool"`
	ReplacedByBot bool                `json:"replacedByBot,omitempty"`
	State         interface{}         `json:"state,omitempty"`
}

type StartDraftPayload struct {
	Kind    string      `json:"kind"`
	Players []string    `json:"players"`
	Options interface{} `json:"options"`
}
