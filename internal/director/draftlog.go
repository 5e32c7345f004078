package director

import (
	"time"

	"github.com/google/uuid"

	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/draft"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

type PickRecord struct {
	Picks []int `json:"picks"`
	Burns []int `json:"burns,omitempty"`
}

type LogUser struct {
	UserName string       `json:"userName"`
	IsBot    bool         `json:"isBot"`
	Picks    []PickRecord `json:"picks"`
	Cards    []int        `json:"cards"`
}

// DraftLog records the boosters and every pick of one draft. Picks refer to
// unique card ids found in Boosters.
type DraftLog struct {
	ID        string              `json:"id"`
	SessionID string              `json:"sessionID"`
	Time      time.Time           `json:"time"`
	Kind      game.Kind           `json:"kind"`
	Complete  bool                `json:"complete"`
	Boosters  []booster.Booster   `json:"boosters"`
	Users     map[string]*LogUser `json:"users"`
}

func newDraftLog(s *Session, rounds [][]booster.Booster) *DraftLog {
	log := &DraftLog{
		ID:        uuid.NewString(),
		SessionID: s.ID,
		Time:      time.Now().UTC(),
		Kind:      s.Options.Kind,
		Users:     make(map[string]*LogUser, len(s.players)),
	}
	for _, b := range booster.Flatten(rounds) {
		log.Boosters = append(log.Boosters, append(booster.Booster(nil), b...))
	}
	for _, p := range s.players {
		log.Users[p] = &LogUser{UserName: s.UserName(p), IsBot: s.botSeats[p]}
	}
	return log
}

func (l *DraftLog) record(userID string, sel draft.Selection, res draft.Result) {
	u := l.Users[userID]
	if u == nil || (len(res.Taken) == 0 && len(sel.Burns) == 0) {
		return
	}
	u.Picks = append(u.Picks, PickRecord{
		Picks: uniqueIDs(res.Taken),
		Burns: append([]int(nil), sel.Burns...),
	})
}

func (l *DraftLog) finish(s *Session, complete bool) *DraftLog {
	l.Complete = complete
	for id, u := range l.Users {
		u.Cards = uniqueIDs(s.draft.Pool(id))
		if s.replaced[id] {
			u.IsBot = true
		}
	}
	return l
}

func uniqueIDs(list []*cards.UniqueCard) []int {
	ids := make([]int, len(list))
	for i, c := range list {
		ids[i] = c.UniqueID
	}
	return ids
}
