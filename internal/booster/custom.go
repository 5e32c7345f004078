package booster

import (
	"math/rand/v2"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/cardlist"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// sheetState is the per-draft copy of a sheet. Draws without replacement
// decrement remaining; the list itself is never touched.
type sheetState struct {
	sheet     *cardlist.Sheet
	cards     []*cards.Card
	remaining []int
	total     int

	// fixed collation
	order  []int
	cursor int
	drawn  int
}

// CustomSource builds boosters from a custom card list.
type CustomSource struct {
	list                *cardlist.List
	rng                 *rand.Rand
	seq                 *cards.Sequence
	withReplacement     bool
	duplicateProtection bool
	layouts             []*cardlist.Layout
	sheets              map[string]*sheetState
}

func NewCustomSource(list *cardlist.List, pool *cards.Pool, duplicateProtection bool, rng *rand.Rand, seq *cards.Sequence) (*CustomSource, error) {
	s := &CustomSource{
		list:                list,
		rng:                 rng,
		seq:                 seq,
		withReplacement:     list.Settings.WithReplacement,
		duplicateProtection: duplicateProtection,
		layouts:             list.EffectiveLayouts(),
		sheets:              make(map[string]*sheetState, len(list.Sheets)),
	}
	for _, sheet := range list.Sheets {
		st := &sheetState{sheet: sheet}
		for i, e := range sheet.Entries {
			card, ok := pool.Get(e.CardID)
			if !ok {
				return nil, game.Validation("card %q of sheet %q is not in the card table", e.CardID, sheet.Name)
			}
			st.cards = append(st.cards, card)
			st.remaining = append(st.remaining, e.Count)
			st.total += e.Count
			if sheet.Fixed {
				for n := 0; n < e.Count; n++ {
					st.order = append(st.order, i)
				}
			}
		}
		if sheet.Fixed && len(st.order) > 0 {
			st.cursor = rng.IntN(len(st.order))
		}
		s.sheets[sheet.Name] = st
	}
	return s, nil
}

func (s *CustomSource) layoutFor(round int) *cardlist.Layout {
	if seq := s.list.Settings.LayoutSequence; len(seq) > 0 {
		return s.list.Layout(seq[round%len(seq)])
	}
	if len(s.layouts) == 1 {
		return s.layouts[0]
	}
	total := 0
	for _, l := range s.layouts {
		total += l.Weight
	}
	pick := s.rng.IntN(total)
	for _, l := range s.layouts {
		pick -= l.Weight
		if pick < 0 {
			return l
		}
	}
	return s.layouts[len(s.layouts)-1]
}

// CheckSupply fails when a list without replacement cannot fill the whole
// draft. Demand of every slot bound to a single sheet is checked per sheet
// when the layout of each round is known.
func (s *CustomSource) CheckSupply(rounds, players int) error {
	if s.withReplacement {
		return nil
	}
	needed := 0
	perSheet := make(map[string]int)
	for r := 0; r < rounds; r++ {
		var layout *cardlist.Layout
		if len(s.list.Settings.LayoutSequence) > 0 || len(s.layouts) == 1 {
			layout = s.layoutFor(r)
		}
		if layout == nil {
			largest := 0
			for _, l := range s.layouts {
				if l.Size() > largest {
					largest = l.Size()
				}
			}
			needed += largest * players
			continue
		}
		needed += layout.Size() * players
		for _, slot := range layout.Slots {
			if len(slot.Sheets) == 1 {
				perSheet[slot.Sheets[0].Sheet] += slot.Count * players
			}
		}
	}
	if available := s.list.Size(); available < needed {
		return game.Supply("the card list holds %d cards but the draft needs %d without replacement", available, needed)
	}
	for _, sheet := range s.list.Sheets {
		if need := perSheet[sheet.Name]; need > s.sheets[sheet.Name].total {
			return game.Supply("sheet %q holds %d cards but the draft needs %d without replacement", sheet.Name, s.sheets[sheet.Name].total, need)
		}
	}
	return nil
}

func (s *CustomSource) Generate(round int) (Booster, error) {
	layout := s.layoutFor(round)
	var b Booster
	for _, slot := range layout.Slots {
		for i := 0; i < slot.Count; i++ {
			st, err := s.pickSheet(slot)
			if err != nil {
				return nil, err
			}
			card, foil, err := s.drawFrom(st, b)
			if err != nil {
				return nil, err
			}
			b = append(b, s.seq.New(card, foil || slot.Foil))
		}
	}
	return b, nil
}

func (s *CustomSource) available(st *sheetState) int {
	if s.withReplacement {
		return st.total
	}
	if st.sheet.Fixed {
		return len(st.order) - st.drawn
	}
	n := 0
	for _, r := range st.remaining {
		n += r
	}
	return n
}

// pickSheet selects one of the slot's sheets with probability proportional to
// its weight, ignoring sheets that are exhausted.
func (s *CustomSource) pickSheet(slot cardlist.Slot) (*sheetState, error) {
	total := 0
	for _, sw := range slot.Sheets {
		if s.available(s.sheets[sw.Sheet]) > 0 {
			total += sw.Weight
		}
	}
	if total == 0 {
		return nil, game.Supply("sheets %v ran out of cards", sheetNames(slot))
	}
	pick := s.rng.IntN(total)
	for _, sw := range slot.Sheets {
		st := s.sheets[sw.Sheet]
		if s.available(st) == 0 {
			continue
		}
		pick -= sw.Weight
		if pick < 0 {
			return st, nil
		}
	}
	return nil, game.Supply("sheets %v ran out of cards", sheetNames(slot))
}

func (s *CustomSource) drawFrom(st *sheetState, pack Booster) (*cards.Card, bool, error) {
	if st.sheet.Fixed {
		i := st.order[st.cursor%len(st.order)]
		st.cursor++
		st.drawn++
		return st.cards[i], st.sheet.Entries[i].Foil, nil
	}
	weights := st.remaining
	if s.withReplacement {
		weights = nil
	}
	idx := s.weighted(st, weights)
	if idx < 0 {
		return nil, false, game.Supply("sheet %q ran out of cards", st.sheet.Name)
	}
	if s.duplicateProtection {
		for retry := 0; retry < DuplicateRetries && pack.Contains(st.cards[idx].ID); retry++ {
			idx = s.weighted(st, weights)
		}
		if pack.Contains(st.cards[idx].ID) {
			internal.GetLogger().Debugw("accepting duplicate after retries", "sheet", st.sheet.Name, "card", st.cards[idx].ID, "retries", DuplicateRetries)
		}
	}
	if !s.withReplacement {
		st.remaining[idx]--
	}
	return st.cards[idx], st.sheet.Entries[idx].Foil, nil
}

// weighted picks an entry index with weight equal to its count, or to the
// given remaining counts when not nil.
func (s *CustomSource) weighted(st *sheetState, remaining []int) int {
	weight := func(i int) int {
		if remaining != nil {
			return remaining[i]
		}
		return st.sheet.Entries[i].Count
	}
	total := 0
	for i := range st.cards {
		total += weight(i)
	}
	if total == 0 {
		return -1
	}
	pick := s.rng.IntN(total)
	for i := range st.cards {
		pick -= weight(i)
		if pick < 0 {
			return i
		}
	}
	return -1
}

func sheetNames(slot cardlist.Slot) []string {
	names := make([]string, len(slot.Sheets))
	for i, sw := range slot.Sheets {
		names[i] = sw.Sheet
	}
	return names
}
