package director

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/malexanderboyd/godr4ft/internal/cardlist"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// sessionSnapshot is what survives a restart of a session that was not
// drafting. Connected users are not kept; they rejoin.
type sessionSnapshot struct {
	ID         string            `json:"id"`
	Owner      string            `json:"owner"`
	Options    game.Options      `json:"options"`
	Names      map[string]string `json:"names,omitempty"`
	CustomList string            `json:"customList,omitempty"`
	Boosters   [][]string        `json:"boosters,omitempty"`
	LastLog    *DraftLog         `json:"lastLog,omitempty"`
}

func (s *Session) snapshot() (*sessionSnapshot, error) {
	if s.draft != nil {
		return nil, game.ErrAlreadyDrafting
	}
	snap := &sessionSnapshot{
		ID:      s.ID,
		Owner:   s.Owner,
		Options: s.Options.Clone(),
		Names:   make(map[string]string, len(s.names)),
		LastLog: s.LastLog,
	}
	for id, name := range s.names {
		snap.Names[id] = name
	}
	if s.CustomList != nil {
		text, err := cardlist.Format(s.CustomList, s.pool)
		if err != nil {
			return nil, fmt.Errorf("format card list of session %s: %w", s.ID, err)
		}
		snap.CustomList = text
	}
	for _, b := range s.Boosters {
		ids := make([]string, len(b))
		for i, c := range b {
			ids[i] = c.ID
		}
		snap.Boosters = append(snap.Boosters, ids)
	}
	return snap, nil
}

func restoreSession(snap *sessionSnapshot, env SessionEnv) (*Session, error) {
	s := NewSession(snap.ID, snap.Owner, snap.Options, env)
	s.LastLog = snap.LastLog
	for id, name := range snap.Names {
		s.names[id] = name
	}
	if snap.CustomList != "" {
		list, err := cardlist.Parse(snap.CustomList, env.Pool)
		if err != nil {
			return nil, fmt.Errorf("restore card list of session %s: %w", snap.ID, err)
		}
		s.CustomList = list
	}
	for i, ids := range snap.Boosters {
		var b []*cards.Card
		for _, id := range ids {
			c, ok := env.Pool.Get(id)
			if !ok {
				return nil, fmt.Errorf("restore booster %d of session %s: unknown card %q", i, snap.ID, id)
			}
			b = append(b, c)
		}
		s.Boosters = append(s.Boosters, b)
	}
	return s, nil
}

func writeSnapshots(path string, snaps []*sessionSnapshot) error {
	data, err := json.MarshalIndent(snaps, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session snapshots: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sessions-*")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// readSnapshots loads snapshots written by writeSnapshots. A missing file is
// not an error.
func readSnapshots(path string) ([]*sessionSnapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	var snaps []*sessionSnapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}
	return snaps, nil
}
