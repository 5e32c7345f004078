package booster_test

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cardlist"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/cards/cardtest"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func defaultRarityOptions() booster.RarityOptions {
	return booster.RarityOptionsFrom(game.DefaultOptions())
}

func TestRaritySourceBoosterShape(t *testing.T) {
	pool := cardtest.Pool()
	src, err := booster.NewRaritySource(pool, defaultRarityOptions(), newRNG(1), &cards.Sequence{})
	require.NoError(t, err)

	rounds, err := booster.GenerateAll(src, 3, 8)
	require.NoError(t, err)
	require.Len(t, rounds, 3)

	seen := make(map[int]bool)
	for _, round := range rounds {
		require.Len(t, round, 8)
		for _, b := range round {
			require.Len(t, b, 14)
			assert.Contains(t, []cards.Rarity{cards.Rare, cards.Mythic}, b[0].Rarity)
			for _, c := range b[1:4] {
				assert.Equal(t, cards.Uncommon, c.Rarity)
			}
			for _, c := range b[4:] {
				assert.Equal(t, cards.Common, c.Rarity)
			}
			for _, c := range b {
				assert.False(t, seen[c.UniqueID], "unique id %d reused", c.UniqueID)
				seen[c.UniqueID] = true
			}
		}
	}
	assert.Equal(t, 3*8*14, booster.Count(rounds))
}

func TestColorBalanceEveryColorAmongCommons(t *testing.T) {
	pool := cardtest.Pool()
	for seed := uint64(0); seed < 200; seed++ {
		src, err := booster.NewRaritySource(pool, defaultRarityOptions(), newRNG(seed), &cards.Sequence{})
		require.NoError(t, err)
		rounds, err := booster.GenerateAll(src, 3, 8)
		require.NoError(t, err)
		for _, b := range booster.Flatten(rounds) {
			for _, color := range cards.Colors {
				found := false
				for _, c := range b {
					if c.Rarity == cards.Common && c.HasColor(color) {
						found = true
						break
					}
				}
				require.Truef(t, found, "seed %d: booster without a %s common", seed, color)
			}
		}
	}
}

func TestColorBalanceSkippedWhenCommonsLackColors(t *testing.T) {
	pool := cardtest.Pool(cardtest.Set{Code: "few", Commons: 3, Uncommons: 3, Rares: 2})
	opts := defaultRarityOptions()
	opts.MaxDuplicates = map[string]int{"common": 100, "uncommon": 100, "rare": 100}

	src, err := booster.NewRaritySource(pool, opts, newRNG(3), &cards.Sequence{})
	require.NoError(t, err)
	rounds, err := booster.GenerateAll(src, 1, 2)
	require.NoError(t, err)
	assert.Len(t, rounds[0][0], 14)
}

func TestMaxDuplicatesBoundCopiesAcrossDraft(t *testing.T) {
	pool := cardtest.Pool()
	opts := defaultRarityOptions()
	src, err := booster.NewRaritySource(pool, opts, newRNG(5), &cards.Sequence{})
	require.NoError(t, err)
	rounds, err := booster.GenerateAll(src, 3, 8)
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, b := range booster.Flatten(rounds) {
		for _, c := range b {
			counts[c.ID]++
		}
	}
	for id, n := range counts {
		card, _ := pool.Get(id)
		assert.LessOrEqualf(t, n, opts.MaxDuplicates[string(card.Rarity)], "card %s", id)
	}
}

func TestRaritySupplyCheckedUpFront(t *testing.T) {
	pool := cardtest.Pool(cardtest.Set{Code: "tiny", Commons: 10, Uncommons: 3, Rares: 1})
	opts := defaultRarityOptions()
	opts.MaxDuplicates = map[string]int{"common": 1, "uncommon": 1, "rare": 1, "mythic": 1}

	src, err := booster.NewRaritySource(pool, opts, newRNG(1), &cards.Sequence{})
	require.NoError(t, err)
	_, err = booster.GenerateAll(src, 3, 2)
	require.Error(t, err)
	assert.Equal(t, game.SupplyError, game.KindOf(err))
	assert.Equal(t, game.CodeSupply, game.CodeOf(err))
}

func TestCollectionRestrictsPool(t *testing.T) {
	pool := cardtest.Pool()
	opts := defaultRarityOptions()
	opts.Collection = map[string]int{"tst-001": 1}

	src, err := booster.NewRaritySource(pool, opts, newRNG(1), &cards.Sequence{})
	require.NoError(t, err)
	_, err = booster.GenerateAll(src, 1, 1)
	require.Error(t, err)
	assert.Equal(t, game.SupplyError, game.KindOf(err))
}

func TestDuplicateProtectionIsBestEffort(t *testing.T) {
	pool := cardtest.Pool(cardtest.Set{Code: "one", Commons: 1})
	opts := defaultRarityOptions()
	opts.Counts = game.RarityCounts{Common: 3}
	opts.ColorBalance = false

	src, err := booster.NewRaritySource(pool, opts, newRNG(9), &cards.Sequence{})
	require.NoError(t, err)
	b, err := src.Generate(0)
	require.NoError(t, err)
	require.Len(t, b, 3)
	assert.Equal(t, b[0].ID, b[1].ID)
}

func TestRelaxedDrawsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	internal.SetLogger(zap.New(core), true)
	t.Cleanup(func() { internal.SetLogger(zap.NewNop(), false) })

	pool := cardtest.Pool(cardtest.Set{Code: "one", Commons: 1})
	opts := defaultRarityOptions()
	opts.Counts = game.RarityCounts{Common: 2}
	opts.ColorBalance = false
	src, err := booster.NewRaritySource(pool, opts, newRNG(3), &cards.Sequence{})
	require.NoError(t, err)
	_, err = src.Generate(0)
	require.NoError(t, err)

	dups := logs.FilterMessage("accepting duplicate after retries").All()
	require.Len(t, dups, 1)
	assert.Equal(t, "common", fmt.Sprint(dups[0].ContextMap()["rarity"]))
}

func TestMythicPromotionHappens(t *testing.T) {
	pool := cardtest.Pool()
	mythics := 0
	for seed := uint64(0); seed < 200; seed++ {
		src, err := booster.NewRaritySource(pool, defaultRarityOptions(), newRNG(seed), &cards.Sequence{})
		require.NoError(t, err)
		b, err := src.Generate(0)
		require.NoError(t, err)
		if b[0].Rarity == cards.Mythic {
			mythics++
		}
	}
	assert.Greater(t, mythics, 0)
	assert.Less(t, mythics, 60)
}

const sheetList = `
[Settings]
withReplacement = false
[Layouts]
- Pack
	1 Rares
	4 Commons
[Rares]
3 tst rare 0
3 tst rare 1
[Commons]
%s
`

func commonsLines(n, copies int) string {
	var lines []string
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf("%d tst common %d", copies, i))
	}
	return strings.Join(lines, "\n")
}

func TestWithoutReplacementNeverExceedsSheetCount(t *testing.T) {
	pool := cardtest.Pool()
	list, err := cardlist.Parse(fmt.Sprintf(sheetList, commonsLines(12, 2)), pool)
	require.NoError(t, err)

	for seed := uint64(0); seed < 50; seed++ {
		src, err := booster.NewCustomSource(list, pool, true, newRNG(seed), &cards.Sequence{})
		require.NoError(t, err)
		rounds, err := booster.GenerateAll(src, 3, 2)
		require.NoError(t, err)

		counts := make(map[string]int)
		for _, b := range booster.Flatten(rounds) {
			require.Len(t, b, 5)
			for _, c := range b {
				counts[c.ID]++
			}
		}
		for _, sheet := range list.Sheets {
			for _, e := range sheet.Entries {
				assert.LessOrEqual(t, counts[e.CardID], e.Count)
			}
		}
	}
}

func TestWithoutReplacementSupplyErrorBeforeGeneration(t *testing.T) {
	pool := cardtest.Pool()
	list, err := cardlist.Parse(fmt.Sprintf(sheetList, commonsLines(3, 1)), pool)
	require.NoError(t, err)

	src, err := booster.NewCustomSource(list, pool, true, newRNG(1), &cards.Sequence{})
	require.NoError(t, err)
	_, err = booster.GenerateAll(src, 3, 2)
	require.Error(t, err)
	assert.Equal(t, game.SupplyError, game.KindOf(err))
}

func TestWithReplacementNeverExhausts(t *testing.T) {
	pool := cardtest.Pool()
	list, err := cardlist.Parse("[Settings]\nwithReplacement = true\ncardsPerBooster = 15\n[Only]\ntst common 0\ntst common 1\n", pool)
	require.NoError(t, err)

	src, err := booster.NewCustomSource(list, pool, true, newRNG(1), &cards.Sequence{})
	require.NoError(t, err)
	rounds, err := booster.GenerateAll(src, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, 3*8*15, booster.Count(rounds))
}

func TestLayoutSequenceAndSlotFoil(t *testing.T) {
	pool := cardtest.Pool()
	text := `
[Settings]
withReplacement = true
layoutSequence = ["Big", "Small"]
[Layouts]
- Big
	3 A
	1 B +F
- Small
	1 A
[A]
tst common 0
[B]
tst rare 0
`
	list, err := cardlist.Parse(text, pool)
	require.NoError(t, err)
	src, err := booster.NewCustomSource(list, pool, false, newRNG(2), &cards.Sequence{})
	require.NoError(t, err)

	rounds, err := booster.GenerateAll(src, 3, 2)
	require.NoError(t, err)
	assert.Len(t, rounds[0][0], 4)
	assert.True(t, rounds[0][1][3].Foil)
	assert.False(t, rounds[0][1][0].Foil)
	assert.Len(t, rounds[1][0], 1)
	assert.Len(t, rounds[2][1], 4)
}

func TestFixedCollationDrawsInOrder(t *testing.T) {
	pool := cardtest.Pool()
	list, err := cardlist.Parse("[S(3) fixed]\ntst common 0\ntst common 1\ntst common 2\ntst common 3\n", pool)
	require.NoError(t, err)

	src, err := booster.NewCustomSource(list, pool, false, newRNG(4), &cards.Sequence{})
	require.NoError(t, err)
	b, err := src.Generate(0)
	require.NoError(t, err)
	require.Len(t, b, 3)

	order := []string{"tst-001", "tst-002", "tst-003", "tst-004"}
	start := -1
	for i, id := range order {
		if id == b[0].ID {
			start = i
		}
	}
	require.NotEqual(t, -1, start)
	for i, c := range b {
		assert.Equal(t, order[(start+i)%len(order)], c.ID)
	}
}

func TestFormattedListGeneratesSameBoosters(t *testing.T) {
	pool := cardtest.Pool()
	list, err := cardlist.Parse(fmt.Sprintf(sheetList, commonsLines(20, 3)), pool)
	require.NoError(t, err)
	text, err := cardlist.Format(list, pool)
	require.NoError(t, err)
	again, err := cardlist.Parse(text, pool)
	require.NoError(t, err)

	for seed := uint64(0); seed < 20; seed++ {
		a, err := booster.NewCustomSource(list, pool, true, newRNG(seed), &cards.Sequence{})
		require.NoError(t, err)
		b, err := booster.NewCustomSource(again, pool, true, newRNG(seed), &cards.Sequence{})
		require.NoError(t, err)
		ra, err := booster.GenerateAll(a, 3, 2)
		require.NoError(t, err)
		rb, err := booster.GenerateAll(b, 3, 2)
		require.NoError(t, err)
		for i, bs := range booster.Flatten(ra) {
			assert.Equal(t, cards.IDs(bs), cards.IDs(booster.Flatten(rb)[i]))
		}
	}
}

func TestPredeterminedRequiresExactCount(t *testing.T) {
	pool := cardtest.Pool()
	c1, _ := pool.Get("tst-001")
	c2, _ := pool.Get("tst-002")
	lists := [][]*cards.Card{{c1}, {c2}, {c1, c2}}

	_, err := booster.Predetermined(lists, 2, 2, &cards.Sequence{})
	require.Error(t, err)
	assert.Equal(t, game.ValidationError, game.KindOf(err))

	rounds, err := booster.Predetermined(append(lists, []*cards.Card{c2}), 2, 2, &cards.Sequence{})
	require.NoError(t, err)
	assert.Equal(t, []string{"tst-001"}, cards.IDs(rounds[0][0]))
	assert.Equal(t, []string{"tst-002"}, cards.IDs(rounds[0][1]))
	assert.Equal(t, []string{"tst-001", "tst-002"}, cards.IDs(rounds[1][0]))
	assert.Equal(t, []string{"tst-002"}, cards.IDs(rounds[1][1]))
}
