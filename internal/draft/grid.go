package draft

import (
	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

const (
	GridSide = 3
	GridSize = GridSide * GridSide
	// GridPicks is the number of lines taken from each grid before the rest
	// is discarded.
	GridPicks = 2
)

// Grid is the two player 3x3 draft. Choices 0-2 take a row, 3-5 a column.
// Players alternate and the first picker alternates between grids.
type Grid struct {
	players   []string
	boosters  []booster.Booster
	index     int
	grid      []*cards.UniqueCard
	picks     int
	pools     map[string][]*cards.UniqueCard
	discarded []*cards.UniqueCard
	complete  bool
}

func NewGrid(players []string, boosters []booster.Booster) (*Grid, error) {
	if len(players) != 2 {
		return nil, game.Validation("grid drafts need exactly 2 players, got %d", len(players))
	}
	if len(boosters) == 0 {
		return nil, game.Supply("grid drafts need at least one booster")
	}
	g := &Grid{
		players:  append([]string(nil), players...),
		boosters: boosters,
		pools:    make(map[string][]*cards.UniqueCard, 2),
	}
	g.deal()
	return g, nil
}

func (g *Grid) Kind() game.Kind {
	return game.GRID
}

func (g *Grid) Players() []string {
	return g.players
}

func (g *Grid) IsComplete() bool {
	return g.complete
}

func (g *Grid) CurrentPlayer() string {
	if g.complete {
		return ""
	}
	return g.players[(g.index+g.picks)%2]
}

// Cells returns the grid in row-major order. Taken cells are nil.
func (g *Grid) Cells() []*cards.UniqueCard {
	return g.grid
}

func (g *Grid) BoosterNumber() int {
	return g.index
}

func (g *Grid) BoosterCount() int {
	return len(g.boosters)
}

func (g *Grid) Pool(userID string) []*cards.UniqueCard {
	return g.pools[userID]
}

func (g *Grid) Discarded() []*cards.UniqueCard {
	return g.discarded
}

func (g *Grid) Pick(userID string, sel Selection) (Result, error) {
	if seatOf(g.players, userID) < 0 {
		return Result{}, game.Validation("%s is not seated in this draft", userID)
	}
	if g.complete {
		return Result{}, game.ErrNotDrafting
	}
	if g.CurrentPlayer() != userID {
		return Result{}, game.ErrNotYourTurn
	}
	if sel.Choice < 0 || sel.Choice >= 2*GridSide {
		return Result{}, game.Validation("grid choice must be between 0 and %d, got %d", 2*GridSide-1, sel.Choice)
	}
	var taken []*cards.UniqueCard
	for _, i := range line(sel.Choice) {
		if g.grid[i] != nil {
			taken = append(taken, g.grid[i])
			g.grid[i] = nil
		}
	}
	if len(taken) == 0 {
		return Result{}, game.Validation("line %d is empty", sel.Choice)
	}
	g.pools[userID] = append(g.pools[userID], taken...)
	g.picks++

	res := Result{Taken: taken, RoundAdvanced: true}
	if g.picks >= GridPicks || !g.hasLine() {
		for _, c := range g.grid {
			if c != nil {
				g.discarded = append(g.discarded, c)
			}
		}
		g.index++
		g.deal()
		res.BoosterAdvanced = true
		res.Complete = g.complete
	}
	return res, nil
}

func (g *Grid) deal() {
	g.picks = 0
	g.grid = make([]*cards.UniqueCard, GridSize)
	for ; g.index < len(g.boosters); g.index++ {
		b := g.boosters[g.index]
		if len(b) == 0 {
			continue
		}
		copy(g.grid, b)
		if len(b) > GridSize {
			g.discarded = append(g.discarded, b[GridSize:]...)
		}
		return
	}
	g.complete = true
	g.grid = nil
}

func (g *Grid) hasLine() bool {
	for _, c := range g.grid {
		if c != nil {
			return true
		}
	}
	return false
}

func line(choice int) []int {
	out := make([]int, 0, GridSide)
	for k := 0; k < GridSide; k++ {
		if choice < GridSide {
			out = append(out, choice*GridSide+k)
		} else {
			out = append(out, k*GridSide+choice-GridSide)
		}
	}
	return out
}
