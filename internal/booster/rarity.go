package booster

import (
	"math/rand/v2"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// MythicRate is the chance that the rare slot is promoted to a mythic.
const MythicRate = 1.0 / 8

type RarityOptions struct {
	Sets                []string
	Counts              game.RarityCounts
	MythicPromotion     bool
	ColorBalance        bool
	MaxDuplicates       map[string]int
	DuplicateProtection bool
	// Collection, when not nil, caps each card's copies at the owned count.
	Collection map[string]int
}

func RarityOptionsFrom(o game.Options) RarityOptions {
	return RarityOptions{
		Sets:                o.SetRestriction,
		Counts:              o.RarityCounts,
		MythicPromotion:     o.MythicPromotion,
		ColorBalance:        o.ColorBalance,
		MaxDuplicates:       o.MaxDuplicates,
		DuplicateProtection: o.DuplicateProtection,
	}
}

// copies is the ephemeral per-draft supply of one rarity: one entry per
// physical copy still available.
type copies struct {
	list []*cards.Card
}

func (c *copies) colors() int {
	seen := make(map[cards.Color]bool)
	for _, card := range c.list {
		for _, color := range card.Colors {
			seen[color] = true
		}
	}
	n := 0
	for _, color := range cards.Colors {
		if seen[color] {
			n++
		}
	}
	return n
}

func (c *copies) take(i int) *cards.Card {
	card := c.list[i]
	last := len(c.list) - 1
	c.list[i] = c.list[last]
	c.list = c.list[:last]
	return card
}

// RaritySource fills fixed counts per rarity from the set pool.
type RaritySource struct {
	opts  RarityOptions
	rng   *rand.Rand
	seq   *cards.Sequence
	pools map[cards.Rarity]*copies
}

func NewRaritySource(pool *cards.Pool, opts RarityOptions, rng *rand.Rand, seq *cards.Sequence) (*RaritySource, error) {
	s := &RaritySource{
		opts:  opts,
		rng:   rng,
		seq:   seq,
		pools: make(map[cards.Rarity]*copies),
	}
	for rarity, list := range pool.ByRarity(opts.Sets) {
		c := &copies{}
		for _, card := range list {
			if card.IsBasicLand() {
				continue
			}
			n := s.maxCopies(card)
			for i := 0; i < n; i++ {
				c.list = append(c.list, card)
			}
		}
		s.pools[rarity] = c
	}
	if s.size(cards.Common)+s.size(cards.Uncommon)+s.size(cards.Rare)+s.size(cards.Mythic) == 0 {
		return nil, game.Supply("the selected sets contain no draftable cards")
	}
	return s, nil
}

func (s *RaritySource) maxCopies(card *cards.Card) int {
	n, ok := s.opts.MaxDuplicates[string(card.Rarity)]
	if !ok || n < 1 {
		n = 1
	}
	if s.opts.Collection != nil {
		owned := s.opts.Collection[card.ID]
		if owned < n {
			n = owned
		}
	}
	return n
}

func (s *RaritySource) size(r cards.Rarity) int {
	if c, ok := s.pools[r]; ok {
		return len(c.list)
	}
	return 0
}

func (s *RaritySource) CheckSupply(rounds, players int) error {
	boosters := rounds * players
	if need := s.opts.Counts.Common * boosters; s.size(cards.Common) < need {
		return game.Supply("not enough commons: %d needed, %d available", need, s.size(cards.Common))
	}
	if need := s.opts.Counts.Uncommon * boosters; s.size(cards.Uncommon) < need {
		return game.Supply("not enough uncommons: %d needed, %d available", need, s.size(cards.Uncommon))
	}
	if need := s.opts.Counts.Rare * boosters; s.size(cards.Rare)+s.size(cards.Mythic) < need {
		return game.Supply("not enough rares and mythics: %d needed, %d available", need, s.size(cards.Rare)+s.size(cards.Mythic))
	}
	return nil
}

// Generate builds one booster: rare slot first, then uncommons, then commons.
func (s *RaritySource) Generate(round int) (Booster, error) {
	var b Booster
	for i := 0; i < s.opts.Counts.Rare; i++ {
		rarity := cards.Rare
		if s.size(cards.Rare) == 0 || (s.opts.MythicPromotion && s.size(cards.Mythic) > 0 && s.rng.Float64() < MythicRate) {
			rarity = cards.Mythic
		}
		card, err := s.draw(rarity, b, nil)
		if err != nil {
			return nil, err
		}
		b = append(b, s.seq.New(card, false))
	}
	for i := 0; i < s.opts.Counts.Uncommon; i++ {
		card, err := s.draw(cards.Uncommon, b, nil)
		if err != nil {
			return nil, err
		}
		b = append(b, s.seq.New(card, false))
	}
	commons, err := s.commons(b)
	if err != nil {
		return nil, err
	}
	return append(b, commons...), nil
}

func (s *RaritySource) commons(pack Booster) (Booster, error) {
	want := s.opts.Counts.Common
	var out Booster
	pool := s.pools[cards.Common]
	if s.opts.ColorBalance && want >= len(cards.Colors) && pool != nil && pool.colors() == len(cards.Colors) {
		for _, color := range cards.Colors {
			color := color
			card, err := s.draw(cards.Common, append(pack, out...), func(c *cards.Card) bool { return c.HasColor(color) })
			if err != nil {
				return nil, err
			}
			out = append(out, s.seq.New(card, false))
		}
	}
	for len(out) < want {
		card, err := s.draw(cards.Common, append(pack, out...), nil)
		if err != nil {
			return nil, err
		}
		out = append(out, s.seq.New(card, false))
	}
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

// draw removes one copy of the given rarity from the supply. When filter is
// set only matching copies are eligible.
func (s *RaritySource) draw(rarity cards.Rarity, pack Booster, filter func(*cards.Card) bool) (*cards.Card, error) {
	pool, ok := s.pools[rarity]
	if !ok || len(pool.list) == 0 {
		return nil, game.Supply("ran out of %s cards", rarity)
	}
	eligible := make([]int, 0, len(pool.list))
	for i, c := range pool.list {
		if filter == nil || filter(c) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		internal.GetLogger().Debugw("color balance relaxed, no matching copy left", "rarity", rarity, "supply", len(pool.list))
		return s.draw(rarity, pack, nil)
	}
	idx := eligible[s.rng.IntN(len(eligible))]
	if s.opts.DuplicateProtection {
		for retry := 0; retry < DuplicateRetries && pack.Contains(pool.list[idx].ID); retry++ {
			idx = eligible[s.rng.IntN(len(eligible))]
		}
		if pack.Contains(pool.list[idx].ID) {
			internal.GetLogger().Debugw("accepting duplicate after retries", "rarity", rarity, "card", pool.list[idx].ID, "retries", DuplicateRetries)
		}
	}
	return pool.take(idx), nil
}
