package director

import (
	"context"
	"fmt"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/director/models"
	"github.com/malexanderboyd/godr4ft/internal/draft"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// StartDraft generates every booster up front, then seats humans followed by
// bots and hands out the first views.
func (s *Session) StartDraft(userID string) error {
	if err := s.requireIdle(userID); err != nil {
		return err
	}
	opts := s.Options
	if err := opts.Validate(); err != nil {
		return game.Validation("invalid options: %v", err)
	}
	if opts.Kind == game.ROCHESTER && opts.Bots > 0 {
		return game.Validation("rochester drafts cannot seat bots")
	}
	if opts.Kind == game.TEAM_SEALED && opts.Bots > 0 {
		return game.Validation("team sealed cannot seat bots, every seat must be on a team")
	}

	humans := s.playingHumans()
	players := append([]string(nil), humans...)
	botSeats := make(map[string]bool, opts.Bots)
	for n := 1; len(botSeats) < opts.Bots; n++ {
		id := fmt.Sprintf("bot-%d", n)
		if contains(s.Users, id) {
			continue
		}
		botSeats[id] = true
		s.names[id] = botName(len(botSeats))
		players = append(players, id)
	}
	if len(players) < 2 {
		return game.ErrNotEnoughPlayers
	}

	rounds, err := s.generate(opts, len(players))
	if err != nil {
		return err
	}
	st, err := s.newState(opts, players, rounds)
	if err != nil {
		return err
	}

	s.generation++
	s.draft = st
	s.players = players
	s.botSeats = botSeats
	s.disconnected = make(map[string]bool)
	s.replaced = make(map[string]bool)
	s.bots = make(map[string]*draft.Bot, len(players))
	for _, p := range players {
		s.bots[p] = draft.NewBot()
	}
	s.log = newDraftLog(s, rounds)
	internal.GetLogger().Infow("draft started", "session", s.ID, "kind", opts.Kind, "players", len(players),
		"bots", len(botSeats), "cards", booster.Count(rounds))

	start := models.NewMessage(models.StartDraft, models.StartDraftPayload{
		Kind:    string(opts.Kind),
		Players: players,
		Options: opts,
	})
	for _, u := range s.Users {
		if s.isPlayer(u) {
			s.hub.Send(u, start)
		} else {
			s.hub.Send(u, models.NewMessage(models.StartSpectating, nil))
		}
	}
	s.broadcastUsers()

	if sealed, ok := st.(*draft.Sealed); ok {
		for _, p := range humans {
			s.hub.Send(p, models.NewMessage(models.SetCardSelection, models.SelectionPayload{
				Pool: sealed.Pool(p),
				Team: sealed.Team(p),
			}))
		}
		s.endDraft(true)
		return nil
	}

	s.fetchRatings(rounds)
	return s.advance()
}

func (s *Session) generate(opts game.Options, seats int) ([][]booster.Booster, error) {
	seq := &cards.Sequence{}
	rounds := opts.BoostersPerPlayer
	switch {
	case opts.UsePredeterminedBoosters:
		return booster.Predetermined(s.Boosters, rounds, seats, seq)
	case opts.UseCustomCardList:
		if s.CustomList == nil {
			return nil, game.Validation("no custom card list has been uploaded")
		}
		src, err := booster.NewCustomSource(s.CustomList, s.pool, opts.DuplicateProtection, s.rng, seq)
		if err != nil {
			return nil, err
		}
		return booster.GenerateAll(src, rounds, seats)
	}
	ro := booster.RarityOptionsFrom(opts)
	if opts.UseCollections {
		ro.Collection = s.sharedCollection()
	}
	src, err := booster.NewRaritySource(s.pool, ro, s.rng, seq)
	if err != nil {
		return nil, err
	}
	return booster.GenerateAll(src, rounds, seats)
}

// sharedCollection is the per card minimum over the players that uploaded a
// collection, nil when nobody did.
func (s *Session) sharedCollection() map[string]int {
	var shared map[string]int
	for _, u := range s.playingHumans() {
		col := s.hub.Collection(u)
		if col == nil {
			continue
		}
		if shared == nil {
			shared = make(map[string]int, len(col))
			for id, n := range col {
				shared[id] = n
			}
			continue
		}
		for id, n := range shared {
			if col[id] < n {
				shared[id] = col[id]
			}
		}
	}
	return shared
}

func (s *Session) newState(opts game.Options, players []string, rounds [][]booster.Booster) (draft.State, error) {
	switch opts.Kind {
	case game.STANDARD:
		d, err := draft.NewStandard(players, rounds, opts.PickCount, opts.BurnCount, opts.DiscardRemainingCardsAt)
		if err != nil {
			return nil, err
		}
		return d, nil
	case game.WINSTON:
		d, err := draft.NewWinston(players, booster.Flatten(rounds), opts.WinstonPileCount)
		if err != nil {
			return nil, err
		}
		return d, nil
	case game.GRID:
		d, err := draft.NewGrid(players, booster.Flatten(rounds))
		if err != nil {
			return nil, err
		}
		return d, nil
	case game.ROCHESTER:
		d, err := draft.NewRochester(players, booster.Flatten(rounds))
		if err != nil {
			return nil, err
		}
		return d, nil
	case game.SEALED:
		d, err := draft.NewSealed(players, rounds)
		if err != nil {
			return nil, err
		}
		return d, nil
	case game.TEAM_SEALED:
		teamRounds, err := poolByTeam(players, opts.Teams, rounds)
		if err != nil {
			return nil, err
		}
		d, err := draft.NewTeamSealed(players, opts.Teams, teamRounds)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, game.Validation("unknown draft kind %q", opts.Kind)
}

// poolByTeam merges each round's boosters of a team's members into one.
func poolByTeam(players []string, teams [][]string, rounds [][]booster.Booster) ([][]booster.Booster, error) {
	if len(teams) == 0 {
		return nil, game.Validation("team sealed needs teams")
	}
	out := make([][]booster.Booster, len(rounds))
	for r, round := range rounds {
		out[r] = make([]booster.Booster, len(teams))
		for t, team := range teams {
			for _, member := range team {
				seat := -1
				for i, p := range players {
					if p == member {
						seat = i
					}
				}
				if seat < 0 {
					return nil, game.Validation("team member %s is not seated", member)
				}
				out[r][t] = append(out[r][t], round[seat]...)
			}
		}
	}
	return out, nil
}

func (s *Session) PickCard(userID string, picks, burns []int) error {
	if s.draft == nil {
		return game.ErrNotDrafting
	}
	switch s.draft.Kind() {
	case game.STANDARD, game.ROCHESTER:
		return s.pick(userID, draft.Selection{Picks: picks, Burns: burns})
	}
	return game.Validation("pickCard is not a %s action", s.draft.Kind())
}

func (s *Session) WinstonTakePile(userID string) error {
	return s.winston(userID, draft.TakePile)
}

func (s *Session) WinstonSkipPile(userID string) error {
	return s.winston(userID, draft.SkipPile)
}

func (s *Session) winston(userID, action string) error {
	if s.draft == nil {
		return game.ErrNotDrafting
	}
	if s.draft.Kind() != game.WINSTON {
		return game.Validation("not a winston draft")
	}
	return s.pick(userID, draft.Selection{Action: action})
}

func (s *Session) GridPick(userID string, choice int) error {
	if s.draft == nil {
		return game.ErrNotDrafting
	}
	if s.draft.Kind() != game.GRID {
		return game.Validation("not a grid draft")
	}
	return s.pick(userID, draft.Selection{Choice: choice})
}

func (s *Session) pick(userID string, sel draft.Selection) error {
	if !s.isPlayer(userID) {
		return game.Validation("%s is not drafting", userID)
	}
	if s.replaced[userID] {
		return game.State(game.CodeNotYourTurn, "a bot picks for you until this draft ends")
	}
	if tb, ok := s.draft.(draft.TurnBased); ok && tb.CurrentPlayer() != userID {
		return game.ErrNotYourTurn
	}
	res, err := s.draft.Pick(userID, sel)
	if err != nil {
		return err
	}
	s.record(userID, sel, res)
	return s.advance()
}

func (s *Session) record(userID string, sel draft.Selection, res draft.Result) {
	s.log.record(userID, sel, res)
	if bot := s.bots[userID]; bot != nil {
		bot.Observe(res.Taken)
	}
	if len(res.Taken) > 0 && !s.botControlled(userID) {
		s.hub.Send(userID, models.NewMessage(models.SetCardSelection, models.SelectionPayload{
			Pool: s.draft.Pool(userID),
		}))
	}
}

// advance lets bots act, then either ends the draft or pushes fresh views.
func (s *Session) advance() error {
	if s.draft == nil {
		return game.Internal(fmt.Errorf("advance without a draft in session %s", s.ID))
	}
	if err := s.runBots(); err != nil {
		return err
	}
	if s.draft.IsComplete() {
		s.endDraft(true)
		return nil
	}
	s.broadcastViews()
	s.syncTimer()
	return nil
}

// runBots makes every bot controlled seat act until only humans are owed a
// move.
func (s *Session) runBots() error {
	for !s.draft.IsComplete() {
		progressed := false
		for _, p := range s.players {
			if !s.botControlled(p) {
				continue
			}
			sel, ok := s.bots[p].ChooseFor(s.draft, p)
			if !ok {
				continue
			}
			res, err := s.draft.Pick(p, sel)
			if err != nil {
				return game.Internal(fmt.Errorf("bot pick for %s: %w", p, err))
			}
			s.record(p, sel, res)
			progressed = true
			if s.draft.IsComplete() {
				return nil
			}
		}
		if !progressed {
			return nil
		}
	}
	return nil
}

// ReplaceDisconnectedPlayers hands every disconnected seat to a bot.
func (s *Session) ReplaceDisconnectedPlayers(userID string) error {
	if err := s.requireOwner(userID); err != nil {
		return err
	}
	if s.draft == nil {
		return game.ErrNotDrafting
	}
	replaced := 0
	for p := range s.disconnected {
		if !s.replaced[p] {
			s.replaced[p] = true
			replaced++
		}
	}
	if replaced == 0 {
		return nil
	}
	internal.GetLogger().Infow("disconnected players replaced by bots", "session", s.ID, "replaced", replaced)
	s.broadcastUsers()
	return s.advance()
}

func (s *Session) StopDraft(userID string) error {
	if err := s.requireOwner(userID); err != nil {
		return err
	}
	if s.draft == nil {
		return game.ErrNotDrafting
	}
	s.endDraft(false)
	return nil
}

func (s *Session) endDraft(complete bool) {
	s.cancelTimer()
	log := s.log.finish(s, complete)
	s.LastLog = log
	internal.GetLogger().Infow("draft ended", "session", s.ID, "kind", s.draft.Kind(), "complete", complete)

	s.broadcast(models.NewMessage(models.EndDraft, models.EndDraftPayload{Complete: complete}))
	s.broadcast(models.NewMessage(models.DraftLog, log))

	for p := range s.disconnected {
		s.Users = without(s.Users, p)
	}
	s.draft = nil
	s.players = nil
	s.botSeats = nil
	s.bots = nil
	s.disconnected = nil
	s.replaced = nil
	s.log = nil
	s.broadcastUsers()
}

// rejoin replays the user's view. It mutates nothing but the connection
// flag, so repeated rejoins send the same view.
func (s *Session) rejoin(userID string) {
	delete(s.disconnected, userID)
	payload := models.RejoinPayload{
		Kind:          string(s.draft.Kind()),
		Pool:          s.draft.Pool(userID),
		ReplacedByBot: s.replaced[userID],
	}
	if !s.replaced[userID] {
		payload.State = s.viewFor(userID)
	}
	s.hub.Send(userID, models.NewMessage(models.RejoinDraft, payload))
	s.broadcastUsers()
}

func (s *Session) viewFor(userID string) interface{} {
	switch d := s.draft.(type) {
	case *draft.Standard:
		picks, burns := d.Required(userID)
		return models.DraftStatePayload{
			BoosterNumber: d.BoosterNumber(),
			PickNumber:    d.PickNumber(),
			Booster:       d.Booster(userID),
			PicksRequired: picks,
			BurnsRequired: burns,
		}
	case *draft.Winston:
		sizes := make([]int, len(d.Piles()))
		for i, p := range d.Piles() {
			sizes[i] = len(p)
		}
		view := models.WinstonSyncPayload{
			CurrentPlayer: d.CurrentPlayer(),
			CurrentPile:   d.CurrentPile(),
			PileSizes:     sizes,
			StackSize:     d.StackSize(),
		}
		if userID == d.CurrentPlayer() {
			view.Pile = d.Piles()[d.CurrentPile()]
		}
		return view
	case *draft.Grid:
		return models.GridSyncPayload{
			CurrentPlayer: d.CurrentPlayer(),
			BoosterNumber: d.BoosterNumber(),
			BoosterCount:  d.BoosterCount(),
			Cells:         d.Cells(),
		}
	case *draft.Rochester:
		return models.RochesterSyncPayload{
			CurrentPlayer: d.CurrentPlayer(),
			BoosterNumber: d.BoosterNumber(),
			PickNumber:    d.PickNumber(),
			Booster:       d.Booster(),
		}
	}
	return nil
}

func viewType(st draft.State) models.GameMessageType {
	switch st.Kind() {
	case game.WINSTON:
		return models.WinstonDraftSync
	case game.GRID:
		return models.GridDraftSync
	case game.ROCHESTER:
		return models.RochesterDraftSync
	}
	return models.DraftState
}

// broadcastViews sends each human player their own view. Standard drafts
// never show a booster to anyone but its holder; turn-based tables are public
// and go to spectators too.
func (s *Session) broadcastViews() {
	t := viewType(s.draft)
	for _, p := range s.players {
		if s.botControlled(p) {
			continue
		}
		s.hub.Send(p, models.NewMessage(t, s.viewFor(p)))
	}
	if t == models.DraftState {
		return
	}
	for _, u := range s.Users {
		if !s.isPlayer(u) {
			s.sendTableView(u)
		}
	}
}

// sendTableView shows a spectator the public part of a turn-based table.
func (s *Session) sendTableView(userID string) {
	if s.draft == nil || s.draft.Kind() == game.STANDARD {
		return
	}
	s.hub.Send(userID, models.NewMessage(viewType(s.draft), s.viewFor(userID)))
}

func (s *Session) fetchRatings(rounds [][]booster.Booster) {
	if s.rater == nil {
		return
	}
	gen := s.generation
	sets := setsOf(rounds)
	rater := s.rater
	s.hub.Async(s.ID, func(ctx context.Context) func(*Session) {
		ratings, err := rater.Ratings(ctx, sets)
		return func(cur *Session) {
			cur.applyRatings(gen, ratings, err)
		}
	})
}

// applyRatings installs ratings fetched for draft generation gen. Results
// for a draft that ended in the meantime are dropped.
func (s *Session) applyRatings(gen int, ratings map[string]float64, err error) {
	logger := internal.GetLogger()
	if s.draft == nil || s.generation != gen {
		logger.Debugw("dropping ratings for a finished draft", "session", s.ID, "generation", gen)
		return
	}
	if err != nil {
		logger.Warnw("card ratings unavailable, bots use the rarity heuristic", "session", s.ID, "error", err)
		return
	}
	for _, bot := range s.bots {
		bot.SetRatings(ratings)
	}
	logger.Debugw("card ratings applied", "session", s.ID, "ratings", len(ratings))
}
