package game

import (
	"fmt"

	"go.uber.org/multierr"
)

type Kind string

const (
	STANDARD    Kind = "standard"
	WINSTON     Kind = "winston"
	GRID        Kind = "grid"
	ROCHESTER   Kind = "rochester"
	SEALED      Kind = "sealed"
	TEAM_SEALED Kind = "teamSealed"
)

// TurnBased reports whether exactly one player may act at a time.
func (k Kind) TurnBased() bool {
	switch k {
	case WINSTON, GRID, ROCHESTER:
		return true
	}
	return false
}

func (k Kind) Valid() bool {
	switch k {
	case STANDARD, WINSTON, GRID, ROCHESTER, SEALED, TEAM_SEALED:
		return true
	}
	return false
}

type RarityCounts struct {
	Common   int `json:"common" toml:"common"`
	Uncommon int `json:"uncommon" toml:"uncommon"`
	Rare     int `json:"rare" toml:"rare"`
}

func (rc RarityCounts) Total() int {
	return rc.Common + rc.Uncommon + rc.Rare
}

type Options struct {
	Kind                     Kind           `json:"kind" toml:"kind"`
	BoostersPerPlayer        int            `json:"boostersPerPlayer" toml:"boosters_per_player"`
	Bots                     int            `json:"bots" toml:"bots"`
	OwnerIsPlayer            bool           `json:"ownerIsPlayer" toml:"owner_is_player"`
	SetRestriction           []string       `json:"setRestriction" toml:"set_restriction"`
	RarityCounts             RarityCounts   `json:"rarityCounts" toml:"rarity_counts"`
	MythicPromotion          bool           `json:"mythicPromotion" toml:"mythic_promotion"`
	ColorBalance             bool           `json:"colorBalance" toml:"color_balance"`
	MaxDuplicates            map[string]int `json:"maxDuplicates" toml:"max_duplicates"`
	DuplicateProtection      bool           `json:"duplicateProtection" toml:"duplicate_protection"`
	UseCollections           bool           `json:"useCollections" toml:"use_collections"`
	PickCount                int            `json:"pickCount" toml:"pick_count"`
	BurnCount                int            `json:"burnCount" toml:"burn_count"`
	DiscardRemainingCardsAt  int            `json:"discardRemainingCardsAt" toml:"discard_remaining_cards_at"`
	PickTimer                string         `json:"pickTimer" toml:"pick_timer"`
	WinstonPileCount         int            `json:"winstonPileCount" toml:"winston_pile_count"`
	Teams                    [][]string     `json:"teams" toml:"teams"`
	UseCustomCardList        bool           `json:"useCustomCardList" toml:"use_custom_card_list"`
	UsePredeterminedBoosters bool           `json:"usePredeterminedBoosters" toml:"use_predetermined_boosters"`
}

func DefaultOptions() Options {
	return Options{
		Kind:              STANDARD,
		BoostersPerPlayer: 3,
		OwnerIsPlayer:     true,
		RarityCounts:      RarityCounts{Common: 10, Uncommon: 3, Rare: 1},
		MythicPromotion:   true,
		ColorBalance:      true,
		MaxDuplicates: map[string]int{
			"common":   8,
			"uncommon": 4,
			"rare":     2,
			"mythic":   1,
		},
		DuplicateProtection: true,
		PickCount:           1,
		BurnCount:           0,
		WinstonPileCount:    3,
	}
}

// Validate reports every problem found, not only the first.
func (o Options) Validate() error {
	var err error
	if !o.Kind.Valid() {
		err = multierr.Append(err, fmt.Errorf("unknown draft kind %q", o.Kind))
	}
	if o.BoostersPerPlayer < 1 {
		err = multierr.Append(err, fmt.Errorf("boostersPerPlayer must be at least 1, got %d", o.BoostersPerPlayer))
	}
	if o.Bots < 0 {
		err = multierr.Append(err, fmt.Errorf("bots must not be negative, got %d", o.Bots))
	}
	if o.PickCount < 1 {
		err = multierr.Append(err, fmt.Errorf("pickCount must be at least 1, got %d", o.PickCount))
	}
	if o.BurnCount < 0 {
		err = multierr.Append(err, fmt.Errorf("burnCount must not be negative, got %d", o.BurnCount))
	}
	if o.DiscardRemainingCardsAt < 0 {
		err = multierr.Append(err, fmt.Errorf("discardRemainingCardsAt must not be negative, got %d", o.DiscardRemainingCardsAt))
	}
	if o.RarityCounts.Common < 0 || o.RarityCounts.Uncommon < 0 || o.RarityCounts.Rare < 0 {
		err = multierr.Append(err, fmt.Errorf("rarity counts must not be negative"))
	}
	if !o.UseCustomCardList && !o.UsePredeterminedBoosters && o.RarityCounts.Total() == 0 {
		err = multierr.Append(err, fmt.Errorf("rarity counts describe an empty booster"))
	}
	for rarity, n := range o.MaxDuplicates {
		if n < 1 {
			err = multierr.Append(err, fmt.Errorf("maxDuplicates[%s] must be at least 1, got %d", rarity, n))
		}
	}
	if o.Kind == WINSTON && o.WinstonPileCount < 3 {
		err = multierr.Append(err, fmt.Errorf("winstonPileCount must be at least 3, got %d", o.WinstonPileCount))
	}
	if _, ok := timerTiers[o.PickTimer]; !ok && o.PickTimer != "" {
		err = multierr.Append(err, fmt.Errorf("unknown pick timer %q", o.PickTimer))
	}
	return err
}

// Clone returns a copy that shares no slices or maps with o.
func (o Options) Clone() Options {
	c := o
	c.SetRestriction = append([]string(nil), o.SetRestriction...)
	if o.MaxDuplicates != nil {
		c.MaxDuplicates = make(map[string]int, len(o.MaxDuplicates))
		for k, v := range o.MaxDuplicates {
			c.MaxDuplicates[k] = v
		}
	}
	if o.Teams != nil {
		c.Teams = make([][]string, len(o.Teams))
		for i, team := range o.Teams {
			c.Teams[i] = append([]string(nil), team...)
		}
	}
	return c
}
