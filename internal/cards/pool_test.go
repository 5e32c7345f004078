package cards_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/cards/cardtest"
)

func TestNewPoolRejectsDuplicateIDs(t *testing.T) {
	_, err := cards.NewPool([]cards.Card{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}})
	require.Error(t, err)
}

func TestPoolByRarityRestrictsSets(t *testing.T) {
	p := cardtest.Pool(
		cardtest.Set{Code: "aaa", Commons: 5, Rares: 1},
		cardtest.Set{Code: "bbb", Commons: 7},
	)

	all := p.ByRarity(nil)
	assert.Len(t, all[cards.Common], 12)

	onlyA := p.ByRarity([]string{"AAA"})
	assert.Len(t, onlyA[cards.Common], 5)
	assert.Len(t, onlyA[cards.Rare], 1)
	assert.Equal(t, []string{"aaa", "bbb"}, p.Sets())
}

func TestPoolLookup(t *testing.T) {
	p, err := cards.LoadPool(strings.NewReader(`[
		{"id":"1","name":"Lightning Bolt","set":"LEA","collectorNumber":"161","rarity":"common","colors":["R"]},
		{"id":"2","name":"Lightning Bolt","set":"M10","collectorNumber":"146","rarity":"common","colors":["R"]},
		{"id":"3","name":"Fire // Ice","set":"APC","collectorNumber":"128","rarity":"uncommon","colors":["R","U"]}
	]`))
	require.NoError(t, err)

	c, ok := p.Lookup("lightning bolt", "", "")
	require.True(t, ok)
	assert.Equal(t, "1", c.ID)

	c, ok = p.Lookup("Lightning Bolt", "m10", "")
	require.True(t, ok)
	assert.Equal(t, "2", c.ID)

	_, ok = p.Lookup("Lightning Bolt", "m10", "999")
	assert.False(t, ok)

	c, ok = p.Lookup("Fire // Ice", "", "")
	require.True(t, ok)
	assert.True(t, c.HasColor(cards.Blue))
}

func TestSequenceAssignsDistinctIDs(t *testing.T) {
	p := cardtest.Pool()
	c, _ := p.Get("tst-001")
	var seq cards.Sequence
	a := seq.New(c, false)
	b := seq.New(c, true)
	assert.NotEqual(t, a.UniqueID, b.UniqueID)
	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.Foil)
	assert.Equal(t, 1, cards.Find([]*cards.UniqueCard{a, b}, b.UniqueID))
	assert.Equal(t, -1, cards.Find([]*cards.UniqueCard{a, b}, 42))
}
