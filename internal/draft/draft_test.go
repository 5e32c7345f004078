package draft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/cards/cardtest"
	"github.com/malexanderboyd/godr4ft/internal/draft"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// makeRounds deals rounds x players boosters of size cards, walking the
// synthetic table in order.
func makeRounds(rounds, players, size int) [][]booster.Booster {
	list := cardtest.Cards()
	seq := &cards.Sequence{}
	n := 0
	out := make([][]booster.Booster, rounds)
	for r := range out {
		out[r] = make([]booster.Booster, players)
		for seat := range out[r] {
			b := make(booster.Booster, 0, size)
			for i := 0; i < size; i++ {
				b = append(b, seq.New(&list[n%len(list)], false))
				n++
			}
			out[r][seat] = b
		}
	}
	return out
}

func firstIDs(b booster.Booster, n int) []int {
	var out []int
	for i := 0; i < n && i < len(b); i++ {
		out = append(out, b[i].UniqueID)
	}
	return out
}

// accounted sums every card the draft still tracks, wherever it sits.
func accounted(d *draft.Standard, players []string) int {
	n := d.Remaining() + len(d.Burned()) + len(d.Discarded())
	for _, p := range players {
		n += len(d.Pool(p))
	}
	return n
}

func TestStandardCompletesAfterEveryCardIsPicked(t *testing.T) {
	players := []string{"a", "b", "c"}
	rounds := makeRounds(3, 3, 15)
	d, err := draft.NewStandard(players, rounds, 1, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 135, d.Total())

	picks := 0
	for !d.IsComplete() {
		pending := d.Pending()
		require.NotEmpty(t, pending)
		for _, p := range pending {
			_, err := d.Pick(p, draft.Selection{Picks: firstIDs(d.Booster(p), 1)})
			require.NoError(t, err)
			picks++
			require.Equal(t, d.Total(), accounted(d, players), "after pick %d", picks)
		}
	}
	assert.Equal(t, 135, picks)
	for _, p := range players {
		assert.Len(t, d.Pool(p), 3*15)
	}
	assert.Equal(t, 0, d.Remaining())
}

func TestStandardDiscardKeepsCardAccounting(t *testing.T) {
	players := []string{"a", "b"}
	rounds := makeRounds(2, 2, 15)
	d, err := draft.NewStandard(players, rounds, 1, 0, 5)
	require.NoError(t, err)

	for !d.IsComplete() {
		for _, p := range d.Pending() {
			_, err := d.Pick(p, draft.Selection{Picks: firstIDs(d.Booster(p), 1)})
			require.NoError(t, err)
			require.Equal(t, d.Total(), accounted(d, players))
		}
	}
	assert.NotEmpty(t, d.Discarded())
	assert.Equal(t, 0, d.Remaining())
}

func TestStandardPassDirectionAlternates(t *testing.T) {
	players := []string{"a", "b", "c"}
	rounds := makeRounds(2, 3, 15)
	d, err := draft.NewStandard(players, rounds, 1, 0, 0)
	require.NoError(t, err)

	// First booster goes left: seat 0 receives seat 2's booster.
	for _, p := range players {
		_, err := d.Pick(p, draft.Selection{Picks: firstIDs(d.Booster(p), 1)})
		require.NoError(t, err)
	}
	assert.Equal(t, rounds[0][2][1].UniqueID, d.Booster("a")[0].UniqueID)

	for d.BoosterNumber() == 0 {
		for _, p := range d.Pending() {
			_, err := d.Pick(p, draft.Selection{Picks: firstIDs(d.Booster(p), 1)})
			require.NoError(t, err)
		}
	}

	// Second booster goes right: seat 0 receives seat 1's booster.
	for _, p := range players {
		_, err := d.Pick(p, draft.Selection{Picks: firstIDs(d.Booster(p), 1)})
		require.NoError(t, err)
	}
	assert.Equal(t, rounds[1][1][1].UniqueID, d.Booster("a")[0].UniqueID)
}

func TestStandardBurnsKeepCardAccounting(t *testing.T) {
	players := []string{"a", "b"}
	rounds := makeRounds(2, 2, 15)
	d, err := draft.NewStandard(players, rounds, 1, 2, 0)
	require.NoError(t, err)
	total := d.Total()
	require.Equal(t, 60, total)

	picks := 0
	for !d.IsComplete() {
		for _, p := range d.Pending() {
			b := d.Booster(p)
			n, burns := d.Required(p)
			ids := firstIDs(b, n+burns)
			_, err := d.Pick(p, draft.Selection{Picks: ids[:n], Burns: ids[n:]})
			require.NoError(t, err)
			picks++

			picked := len(d.Pool("a")) + len(d.Pool("b"))
			assert.Equal(t, total, d.Remaining()+picked+len(d.Burned())+len(d.Discarded()))
		}
	}
	// Every pick removes 3 cards from a 15 card booster.
	assert.Equal(t, 2*2*5, picks)
	assert.Len(t, d.Burned(), 40)
	for _, c := range d.Burned() {
		assert.True(t, c.Burned)
	}
}

func TestStandardDiscardsRemainingCards(t *testing.T) {
	players := []string{"a", "b"}
	d, err := draft.NewStandard(players, makeRounds(1, 2, 15), 1, 0, 5)
	require.NoError(t, err)

	for !d.IsComplete() {
		for _, p := range d.Pending() {
			_, err := d.Pick(p, draft.Selection{Picks: firstIDs(d.Booster(p), 1)})
			require.NoError(t, err)
		}
	}
	assert.Len(t, d.Pool("a"), 10)
	assert.Len(t, d.Discarded(), 10)
}

func TestStandardRejectsBadPicks(t *testing.T) {
	players := []string{"a", "b"}
	d, err := draft.NewStandard(players, makeRounds(1, 2, 15), 1, 1, 0)
	require.NoError(t, err)

	b := d.Booster("a")
	_, err = d.Pick("a", draft.Selection{Picks: firstIDs(b, 1)})
	assert.Equal(t, game.CodeValidation, game.CodeOf(err), "missing burn")

	_, err = d.Pick("a", draft.Selection{Picks: []int{b[0].UniqueID}, Burns: []int{b[0].UniqueID}})
	assert.Equal(t, game.CodeValidation, game.CodeOf(err), "same card twice")

	other := d.Booster("b")
	_, err = d.Pick("a", draft.Selection{Picks: []int{other[0].UniqueID}, Burns: []int{b[1].UniqueID}})
	assert.Equal(t, game.CodeValidation, game.CodeOf(err), "card from another booster")

	_, err = d.Pick("a", draft.Selection{Picks: []int{b[0].UniqueID}, Burns: []int{b[1].UniqueID}})
	require.NoError(t, err)
	assert.Nil(t, d.Booster("a"))
	assert.True(t, d.HasPicked("a"))

	_, err = d.Pick("a", draft.Selection{Picks: []int{b[2].UniqueID}, Burns: []int{b[3].UniqueID}})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	assert.Equal(t, []string{"b"}, d.Pending())
}

func TestStandardKeepsSourceBoostersIntact(t *testing.T) {
	rounds := makeRounds(1, 2, 15)
	d, err := draft.NewStandard([]string{"a", "b"}, rounds, 1, 0, 0)
	require.NoError(t, err)
	_, err = d.Pick("a", draft.Selection{Picks: firstIDs(d.Booster("a"), 1)})
	require.NoError(t, err)
	assert.Len(t, rounds[0][0], 15)
}

func TestWinstonTakeAndSkip(t *testing.T) {
	boosters := booster.Flatten(makeRounds(6, 1, 15))
	w, err := draft.NewWinston([]string{"p1", "p2"}, boosters, 3)
	require.NoError(t, err)
	require.Equal(t, 87, w.StackSize())
	assert.Equal(t, "p1", w.CurrentPlayer())

	_, err = w.Pick("p2", draft.Selection{Action: draft.TakePile})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	res, err := w.Pick("p1", draft.Selection{Action: draft.TakePile})
	require.NoError(t, err)
	assert.Len(t, res.Taken, 1)
	assert.Len(t, w.Pool("p1"), 1)
	assert.Len(t, w.Piles()[0], 1)
	assert.Equal(t, 86, w.StackSize())
	assert.Equal(t, "p2", w.CurrentPlayer())

	for pile := 0; pile < 2; pile++ {
		assert.Equal(t, pile, w.CurrentPile())
		res, err = w.Skip("p2")
		require.NoError(t, err)
		assert.Empty(t, res.Taken)
		assert.Len(t, w.Piles()[pile], 2)
	}
	res, err = w.Skip("p2")
	require.NoError(t, err)
	assert.Len(t, res.Taken, 1, "skipping the last pile takes a stack card")
	assert.Len(t, w.Piles()[2], 2)
	assert.Equal(t, 82, w.StackSize())
	assert.Equal(t, "p1", w.CurrentPlayer())
	assert.Equal(t, 0, w.CurrentPile())

	bot := draft.NewBot()
	for !w.IsComplete() {
		p := w.CurrentPlayer()
		sel, ok := bot.ChooseFor(w, p)
		require.True(t, ok)
		_, err := w.Pick(p, sel)
		require.NoError(t, err)
	}
	assert.Equal(t, 90, len(w.Pool("p1"))+len(w.Pool("p2")))
}

func TestWinstonLastPileNeedsStack(t *testing.T) {
	w, err := draft.NewWinston([]string{"p1", "p2"}, makeRounds(1, 1, 3)[0], 3)
	require.NoError(t, err)
	require.Equal(t, 0, w.StackSize())

	_, err = w.Skip("p1")
	require.NoError(t, err)
	_, err = w.Skip("p1")
	require.NoError(t, err)
	_, err = w.Skip("p1")
	assert.Equal(t, game.CodeValidation, game.CodeOf(err))

	_, err = w.Take("p1")
	require.NoError(t, err)
	assert.Equal(t, "p2", w.CurrentPlayer())
}

func TestWinstonNeedsTwoPlayers(t *testing.T) {
	_, err := draft.NewWinston([]string{"p1"}, makeRounds(1, 1, 15)[0], 3)
	assert.Equal(t, game.CodeValidation, game.CodeOf(err))
}

func TestGridRowsAndColumns(t *testing.T) {
	boosters := booster.Flatten(makeRounds(2, 1, 9))
	g, err := draft.NewGrid([]string{"p1", "p2"}, boosters)
	require.NoError(t, err)
	assert.Equal(t, "p1", g.CurrentPlayer())

	_, err = g.Pick("p1", draft.Selection{Choice: 6})
	assert.Equal(t, game.CodeValidation, game.CodeOf(err))

	res, err := g.Pick("p1", draft.Selection{Choice: 0})
	require.NoError(t, err)
	assert.Equal(t, firstIDs(boosters[0], 3), firstIDs(res.Taken, 3))
	assert.False(t, res.BoosterAdvanced)
	assert.Equal(t, "p2", g.CurrentPlayer())

	_, err = g.Pick("p2", draft.Selection{Choice: 0})
	assert.Equal(t, game.CodeValidation, game.CodeOf(err), "row 0 is empty")

	res, err = g.Pick("p2", draft.Selection{Choice: 3})
	require.NoError(t, err)
	require.Len(t, res.Taken, 2)
	assert.Equal(t, boosters[0][3].UniqueID, res.Taken[0].UniqueID)
	assert.Equal(t, boosters[0][6].UniqueID, res.Taken[1].UniqueID)
	assert.True(t, res.BoosterAdvanced)
	assert.Len(t, g.Discarded(), 4)

	// The second grid opens with the other player.
	assert.Equal(t, 1, g.BoosterNumber())
	assert.Equal(t, "p2", g.CurrentPlayer())
	_, err = g.Pick("p1", draft.Selection{Choice: 1})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	_, err = g.Pick("p2", draft.Selection{Choice: 5})
	require.NoError(t, err)
	res, err = g.Pick("p1", draft.Selection{Choice: 1})
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.True(t, g.IsComplete())
	assert.Len(t, g.Pool("p1"), 5)
	assert.Len(t, g.Pool("p2"), 5)
}

func TestRochesterSnakeOrder(t *testing.T) {
	players := []string{"a", "b", "c"}
	boosters := booster.Flatten(makeRounds(3, 1, 4))
	r, err := draft.NewRochester(players, boosters)
	require.NoError(t, err)

	var order []string
	for !r.IsComplete() {
		p := r.CurrentPlayer()
		order = append(order, p)
		_, err := r.Pick(p, draft.Selection{Picks: firstIDs(r.Booster(), 1)})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{
		"a", "b", "c", "a",
		"b", "a", "c", "b",
		"c", "a", "b", "c",
	}, order)
}

func TestRochesterRejectsOutOfTurn(t *testing.T) {
	r, err := draft.NewRochester([]string{"a", "b"}, booster.Flatten(makeRounds(1, 1, 4)))
	require.NoError(t, err)
	_, err = r.Pick("b", draft.Selection{Picks: firstIDs(r.Booster(), 1)})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	_, err = r.Pick("a", draft.Selection{Picks: firstIDs(r.Booster(), 2)})
	assert.Equal(t, game.CodeValidation, game.CodeOf(err))
}

func TestSealedPools(t *testing.T) {
	s, err := draft.NewSealed([]string{"a", "b"}, makeRounds(3, 2, 15))
	require.NoError(t, err)
	assert.True(t, s.IsComplete())
	assert.Len(t, s.Pool("a"), 45)
	assert.Len(t, s.Pool("b"), 45)
	_, err = s.Pick("a", draft.Selection{})
	assert.Equal(t, game.CodeValidation, game.CodeOf(err))
}

func TestTeamSealedSharesPools(t *testing.T) {
	players := []string{"a", "b", "c", "d"}
	teams := [][]string{{"a", "c"}, {"b", "d"}}
	s, err := draft.NewTeamSealed(players, teams, makeRounds(2, 2, 15))
	require.NoError(t, err)
	assert.Equal(t, game.TEAM_SEALED, s.Kind())
	assert.Len(t, s.Pool("a"), 30)
	assert.Equal(t, s.Pool("a"), s.Pool("c"))
	assert.NotEqual(t, s.Pool("a"), s.Pool("b"))
	assert.Equal(t, 1, s.Team("d"))

	_, err = draft.NewTeamSealed(players, [][]string{{"a", "b"}, {"c"}}, makeRounds(2, 2, 15))
	assert.Equal(t, game.CodeValidation, game.CodeOf(err), "d has no team")
}
