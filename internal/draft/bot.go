package draft

import (
	"sort"

	"github.com/malexanderboyd/godr4ft/internal/cards"
)

// Scores used when no rating is known for a card.
var rarityScore = map[cards.Rarity]float64{
	cards.Common:   1,
	cards.Uncommon: 2,
	cards.Rare:     3.5,
	cards.Mythic:   4,
	cards.Special:  3,
}

const (
	colorBonus       = 0.5
	colorCommitPicks = 5
)

// Bot picks for a seat that has no human behind it, and for humans whose
// pick timer ran out.
type Bot struct {
	ratings map[string]float64
	picked  []*cards.UniqueCard
	colors  map[cards.Color]int
}

func NewBot() *Bot {
	return &Bot{colors: make(map[cards.Color]int)}
}

// SetRatings replaces the card ratings, keyed by card name.
func (b *Bot) SetRatings(ratings map[string]float64) {
	b.ratings = make(map[string]float64, len(ratings))
	for name, r := range ratings {
		b.ratings[cards.NormalizeName(name)] = r
	}
}

func (b *Bot) HasRatings() bool {
	return len(b.ratings) > 0
}

// Observe records cards that ended up in the bot's pool.
func (b *Bot) Observe(taken []*cards.UniqueCard) {
	for _, c := range taken {
		b.picked = append(b.picked, c)
		for _, color := range c.Colors {
			b.colors[color]++
		}
	}
}

func (b *Bot) Score(c *cards.UniqueCard) float64 {
	score, ok := b.ratings[cards.NormalizeName(c.Name)]
	if !ok {
		score = rarityScore[c.Rarity]
	}
	if len(b.picked) >= colorCommitPicks {
		for _, color := range b.topColors() {
			if c.HasColor(color) {
				score += colorBonus
				break
			}
		}
	}
	return score
}

func (b *Bot) topColors() []cards.Color {
	out := append([]cards.Color(nil), cards.Colors...)
	sort.SliceStable(out, func(i, j int) bool {
		return b.colors[out[i]] > b.colors[out[j]]
	})
	return out[:2]
}

// ranked orders list from best to worst; ties go to the lowest unique id.
func (b *Bot) ranked(list []*cards.UniqueCard) []*cards.UniqueCard {
	out := append([]*cards.UniqueCard(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := b.Score(out[i]), b.Score(out[j])
		if si != sj {
			return si > sj
		}
		return out[i].UniqueID < out[j].UniqueID
	})
	return out
}

// Choose selects picks best cards and burns worst cards from a booster.
func (b *Bot) Choose(list []*cards.UniqueCard, picks, burns int) Selection {
	ranked := b.ranked(list)
	var sel Selection
	for i := 0; i < picks && i < len(ranked); i++ {
		sel.Picks = append(sel.Picks, ranked[i].UniqueID)
	}
	for i := 0; i < burns && len(ranked)-1-i >= picks; i++ {
		sel.Burns = append(sel.Burns, ranked[len(ranked)-1-i].UniqueID)
	}
	return sel
}

// ChooseWinston takes a big or strong pile, and always takes the last one.
func (b *Bot) ChooseWinston(pile []*cards.UniqueCard, last bool) Selection {
	if last || len(pile) >= 3 {
		return Selection{Action: TakePile}
	}
	for _, c := range pile {
		if b.Score(c) >= rarityScore[cards.Rare] {
			return Selection{Action: TakePile}
		}
	}
	return Selection{Action: SkipPile}
}

// ChooseGrid takes the line whose cards score highest in total.
func (b *Bot) ChooseGrid(cells []*cards.UniqueCard) Selection {
	best, bestScore := -1, 0.0
	for choice := 0; choice < 2*GridSide; choice++ {
		sum, n := 0.0, 0
		for _, i := range line(choice) {
			if i < len(cells) && cells[i] != nil {
				sum += b.Score(cells[i])
				n++
			}
		}
		if n > 0 && (best < 0 || sum > bestScore) {
			best, bestScore = choice, sum
		}
	}
	return Selection{Choice: best}
}

// ChooseFor builds the bot's selection for userID in any draft variant.
// ok is false when userID has nothing to do right now.
func (b *Bot) ChooseFor(st State, userID string) (Selection, bool) {
	switch d := st.(type) {
	case *Standard:
		list := d.Booster(userID)
		if list == nil {
			return Selection{}, false
		}
		picks, burns := d.Required(userID)
		return b.Choose(list, picks, burns), true
	case *Rochester:
		if d.CurrentPlayer() != userID {
			return Selection{}, false
		}
		return b.Choose(d.Booster(), 1, 0), true
	case *Winston:
		if d.CurrentPlayer() != userID {
			return Selection{}, false
		}
		pile := d.CurrentPile()
		return b.ChooseWinston(d.Piles()[pile], d.nextPile(pile+1) < 0), true
	case *Grid:
		if d.CurrentPlayer() != userID {
			return Selection{}, false
		}
		return b.ChooseGrid(d.Cells()), true
	}
	return Selection{}, false
}
