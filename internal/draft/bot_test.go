package draft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/draft"
)

func uniqueCards(rarities ...cards.Rarity) []*cards.UniqueCard {
	seq := &cards.Sequence{}
	var out []*cards.UniqueCard
	for i, r := range rarities {
		c := &cards.Card{
			ID:     string(r) + string(rune('a'+i)),
			Name:   string(r) + " " + string(rune('a'+i)),
			Rarity: r,
			Colors: []cards.Color{cards.Colors[i%len(cards.Colors)]},
		}
		out = append(out, seq.New(c, false))
	}
	return out
}

func TestBotPrefersRarityWithoutRatings(t *testing.T) {
	list := uniqueCards(cards.Common, cards.Rare, cards.Uncommon, cards.Mythic, cards.Common)
	sel := draft.NewBot().Choose(list, 1, 2)
	assert.Equal(t, []int{list[3].UniqueID}, sel.Picks)
	// Ties on score go to the lowest unique id, so the last common burns first.
	assert.Equal(t, []int{list[4].UniqueID, list[0].UniqueID}, sel.Burns)
}

func TestBotRatingsOverrideRarity(t *testing.T) {
	list := uniqueCards(cards.Common, cards.Mythic)
	bot := draft.NewBot()
	bot.SetRatings(map[string]float64{"COMMON a": 9})
	assert.True(t, bot.HasRatings())
	sel := bot.Choose(list, 1, 0)
	assert.Equal(t, []int{list[0].UniqueID}, sel.Picks)
}

func TestBotFavoursItsColors(t *testing.T) {
	bot := draft.NewBot()
	seq := &cards.Sequence{}
	red := &cards.Card{ID: "r", Name: "red", Rarity: cards.Common, Colors: []cards.Color{cards.Red}}
	blue := &cards.Card{ID: "u", Name: "blue", Rarity: cards.Common, Colors: []cards.Color{cards.Blue}}
	green := &cards.Card{ID: "g", Name: "green", Rarity: cards.Common, Colors: []cards.Color{cards.Green}}
	for i := 0; i < 5; i++ {
		bot.Observe([]*cards.UniqueCard{seq.New(red, false)})
	}
	g, r := seq.New(green, false), seq.New(red, false)
	assert.Greater(t, bot.Score(r), bot.Score(g))
	assert.Equal(t, bot.Score(seq.New(blue, false)), bot.Score(g))
}

func TestBotWinstonHeuristic(t *testing.T) {
	bot := draft.NewBot()
	assert.Equal(t, draft.SkipPile, bot.ChooseWinston(uniqueCards(cards.Common), false).Action)
	assert.Equal(t, draft.TakePile, bot.ChooseWinston(uniqueCards(cards.Common, cards.Common, cards.Common), false).Action)
	assert.Equal(t, draft.TakePile, bot.ChooseWinston(uniqueCards(cards.Rare), false).Action)
	assert.Equal(t, draft.TakePile, bot.ChooseWinston(uniqueCards(cards.Common), true).Action)
}

func TestBotGridTakesBestLine(t *testing.T) {
	cells := uniqueCards(
		cards.Common, cards.Common, cards.Mythic,
		cards.Common, cards.Common, cards.Mythic,
		cards.Common, cards.Common, cards.Rare,
	)
	assert.Equal(t, 5, draft.NewBot().ChooseGrid(cells).Choice)

	// Rows are left with two cards each, the first column keeps three.
	cells[2], cells[5], cells[8] = nil, nil, nil
	assert.Equal(t, 3, draft.NewBot().ChooseGrid(cells).Choice)
}
