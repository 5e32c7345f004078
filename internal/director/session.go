package director

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cardlist"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/director/models"
	"github.com/malexanderboyd/godr4ft/internal/draft"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// Hub is what a Session needs from the coordinator. Sessions hold user ids
// only and reach sockets through it.
type Hub interface {
	Send(userID string, msg *models.Message)
	IsConnected(userID string) bool
	Collection(userID string) map[string]int
	// AfterFunc runs fn on the event loop after d if the session still exists.
	AfterFunc(sessionID string, d time.Duration, fn func(*Session)) (stop func())
	// Async runs work off the event loop, then applies the continuation it
	// returns on the loop if the session still exists.
	Async(sessionID string, work func(ctx context.Context) func(*Session))
}

// Rater fetches card ratings for bots.
type Rater interface {
	Ratings(ctx context.Context, sets []string) (map[string]float64, error)
}

type SessionEnv struct {
	Hub   Hub
	Pool  *cards.Pool
	Rater Rater
	RNG   *rand.Rand
}

// Session is the root of one draft table. All methods run on the event loop.
type Session struct {
	ID      string
	Owner   string
	Users   []string
	Options game.Options

	CustomList *cardlist.List
	Boosters   [][]*cards.Card
	LastLog    *DraftLog

	hub   Hub
	pool  *cards.Pool
	rater Rater
	rng   *rand.Rand
	names map[string]string

	draft        draft.State
	generation   int
	players      []string
	botSeats     map[string]bool
	bots         map[string]*draft.Bot
	disconnected map[string]bool
	replaced     map[string]bool
	log          *DraftLog

	stopTimer  func()
	timerToken int
	timerKey   [2]int
}

func NewSession(id, owner string, options game.Options, env SessionEnv) *Session {
	rng := env.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Session{
		ID:      id,
		Owner:   owner,
		Options: options.Clone(),
		hub:     env.Hub,
		pool:    env.Pool,
		rater:   env.Rater,
		rng:     rng,
		names:   make(map[string]string),
	}
}

// Drafting reports whether a draft state is active.
func (s *Session) Drafting() bool {
	return s.draft != nil
}

// Draft exposes the active draft state, nil outside a draft.
func (s *Session) Draft() draft.State {
	return s.draft
}

func (s *Session) Players() []string {
	return s.players
}

// Empty sessions can be dropped from the registry.
func (s *Session) Empty() bool {
	return s.draft == nil && len(s.Users) == 0
}

// KeepWhenEmpty is true for sessions run by a non-playing organizer.
func (s *Session) KeepWhenEmpty() bool {
	return !s.Options.OwnerIsPlayer
}

func (s *Session) UserName(userID string) string {
	if name, ok := s.names[userID]; ok && name != "" {
		return name
	}
	return userID
}

func (s *Session) Join(userID, userName string) {
	if userName != "" {
		s.names[userID] = userName
	}
	if !contains(s.Users, userID) {
		s.Users = append(s.Users, userID)
	}
	if s.Owner == "" {
		s.Owner = userID
	}
	internal.GetLogger().Infow("user joined session", "session", s.ID, "user", userID, "users", len(s.Users))

	s.hub.Send(userID, models.NewMessage(models.SessionOptions, s.Options))
	s.broadcastOwner()
	s.broadcastUsers()
	if s.draft == nil {
		return
	}
	if s.isPlayer(userID) {
		s.rejoin(userID)
		return
	}
	s.hub.Send(userID, models.NewMessage(models.StartSpectating, nil))
	s.sendTableView(userID)
}

// Leave handles a socket that closed. Drafting players are retained as
// disconnected so they can come back.
func (s *Session) Leave(userID string) {
	logger := internal.GetLogger()
	if s.draft != nil && s.isPlayer(userID) {
		s.disconnected[userID] = true
		logger.Infow("player disconnected mid draft", "session", s.ID, "user", userID)
		s.broadcast(models.NewMessage(models.UserDisconnected, models.DisconnectedPayload{
			UserID:   userID,
			UserName: s.UserName(userID),
		}))
		if userID == s.Owner {
			s.promoteInterimOwner()
		}
		s.broadcastUsers()
		return
	}

	s.Users = without(s.Users, userID)
	logger.Infow("user left session", "session", s.ID, "user", userID, "users", len(s.Users))
	if userID == s.Owner {
		switch {
		case s.draft != nil:
			s.promoteInterimOwner()
		case s.Options.OwnerIsPlayer && len(s.Users) > 0:
			s.Owner = s.Users[0]
			s.broadcastOwner()
		}
	}
	s.broadcastUsers()
}

// Depart removes a user that moved to another session. A drafting player's
// seat is handed to a bot for the rest of the draft.
func (s *Session) Depart(userID string) error {
	if s.draft == nil || !s.isPlayer(userID) {
		s.Leave(userID)
		return nil
	}
	s.replaced[userID] = true
	delete(s.disconnected, userID)
	s.Users = without(s.Users, userID)
	if userID == s.Owner {
		s.promoteInterimOwner()
	}
	s.broadcastUsers()
	return s.advance()
}

func (s *Session) promoteInterimOwner() {
	for _, p := range append(append([]string(nil), s.players...), s.Users...) {
		if p == s.Owner || s.botSeats[p] || s.replaced[p] || s.disconnected[p] {
			continue
		}
		if s.hub.IsConnected(p) {
			internal.GetLogger().Infow("interim owner promoted", "session", s.ID, "owner", p, "previous", s.Owner)
			s.Owner = p
			s.broadcastOwner()
			return
		}
	}
}

func (s *Session) requireOwner(userID string) error {
	if userID != s.Owner {
		return game.ErrNotOwner
	}
	return nil
}

func (s *Session) requireIdle(userID string) error {
	if err := s.requireOwner(userID); err != nil {
		return err
	}
	if s.draft != nil {
		return game.ErrAlreadyDrafting
	}
	return nil
}

func (s *Session) SetOptions(userID string, opts game.Options) error {
	if err := s.requireIdle(userID); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return game.Validation("invalid options: %v", err)
	}
	s.Options = opts.Clone()
	s.broadcast(models.NewMessage(models.SessionOptions, s.Options))
	return nil
}

// SetSeating reorders the users. order must be a permutation of Users.
func (s *Session) SetSeating(userID string, order []string) error {
	if err := s.requireIdle(userID); err != nil {
		return err
	}
	if len(order) != len(s.Users) {
		return game.Validation("seating lists %d users, the session has %d", len(order), len(s.Users))
	}
	seen := make(map[string]bool, len(order))
	for _, u := range order {
		if !contains(s.Users, u) || seen[u] {
			return game.Validation("seating must list every user exactly once")
		}
		seen[u] = true
	}
	s.Users = append([]string(nil), order...)
	s.broadcastUsers()
	return nil
}

func (s *Session) RandomizeSeating(userID string) error {
	if err := s.requireIdle(userID); err != nil {
		return err
	}
	s.rng.Shuffle(len(s.Users), func(i, j int) {
		s.Users[i], s.Users[j] = s.Users[j], s.Users[i]
	})
	s.broadcastUsers()
	return nil
}

// SetCustomList parses and installs a custom card list. Settings found in
// the list override the matching options.
func (s *Session) SetCustomList(userID, text string) error {
	if err := s.requireIdle(userID); err != nil {
		return err
	}
	list, err := cardlist.Parse(text, s.pool)
	if err != nil {
		var pe *cardlist.ParseError
		if errors.As(err, &pe) {
			return &game.Error{Kind: game.ValidationError, Code: game.CodeValidation, Message: "invalid card list", Err: pe}
		}
		return game.Validation("invalid card list: %v", err)
	}
	s.CustomList = list
	s.Options.UseCustomCardList = true
	s.Options.UsePredeterminedBoosters = false
	if n := list.Settings.BoostersPerPlayer; n > 0 {
		s.Options.BoostersPerPlayer = n
	}
	if n := list.Settings.PickCount; n > 0 {
		s.Options.PickCount = n
	}
	if n := list.Settings.BurnCount; n > 0 {
		s.Options.BurnCount = n
	}
	s.broadcast(models.NewMessage(models.SessionOptions, s.Options))
	return nil
}

// UploadBoosters installs predetermined boosters given as card id lists.
func (s *Session) UploadBoosters(userID string, lists [][]string) error {
	if err := s.requireIdle(userID); err != nil {
		return err
	}
	if len(lists) == 0 {
		return game.Validation("no boosters uploaded")
	}
	resolved := make([][]*cards.Card, len(lists))
	for i, list := range lists {
		if len(list) == 0 {
			return game.Validation("booster %d is empty", i)
		}
		for _, id := range list {
			c, ok := s.pool.Get(id)
			if !ok {
				return game.Validation("booster %d: unknown card id %q", i, id)
			}
			resolved[i] = append(resolved[i], c)
		}
	}
	s.Boosters = resolved
	s.Options.UsePredeterminedBoosters = true
	s.broadcast(models.NewMessage(models.SessionOptions, s.Options))
	return nil
}

// playingHumans are the users that take a seat, in seating order.
func (s *Session) playingHumans() []string {
	var out []string
	for _, u := range s.Users {
		if u == s.Owner && !s.Options.OwnerIsPlayer {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (s *Session) isPlayer(userID string) bool {
	return contains(s.players, userID)
}

func (s *Session) botControlled(userID string) bool {
	return s.botSeats[userID] || s.replaced[userID]
}

func (s *Session) broadcast(msg *models.Message) {
	for _, u := range s.Users {
		s.hub.Send(u, msg)
	}
}

func (s *Session) broadcastOwner() {
	s.broadcast(models.NewMessage(models.SessionOwner, models.SessionOwnerPayload{Owner: s.Owner}))
}

func (s *Session) broadcastUsers() {
	users := make([]models.SessionUser, 0, len(s.Users)+len(s.botSeats))
	listed := make(map[string]bool)
	add := func(id string) {
		if listed[id] {
			return
		}
		listed[id] = true
		users = append(users, models.SessionUser{
			UserID:       id,
			UserName:     s.UserName(id),
			IsBot:        s.botControlled(id),
			Disconnected: s.disconnected[id],
			Spectator:    s.draft != nil && !s.isPlayer(id),
		})
	}
	if s.draft != nil {
		for _, p := range s.players {
			add(p)
		}
	}
	for _, u := range s.Users {
		add(u)
	}
	s.broadcast(models.NewMessage(models.SessionUsers, users))
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func botName(n int) string {
	return fmt.Sprintf("Bot %d", n)
}

// setsOf lists the set codes found in the boosters.
func setsOf(rounds [][]booster.Booster) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range booster.Flatten(rounds) {
		for _, c := range b {
			if !seen[c.Set] {
				seen[c.Set] = true
				out = append(out, c.Set)
			}
		}
	}
	return out
}
