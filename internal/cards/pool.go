package cards

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Pool is the process-wide card table. It is read-only after construction and
// safe for concurrent reads.
type Pool struct {
	byID   map[string]*Card
	byName map[string][]*Card
	bySet  map[string]map[Rarity][]*Card
	ids    []string
}

func NewPool(list []Card) (*Pool, error) {
	p := &Pool{
		byID:   make(map[string]*Card, len(list)),
		byName: make(map[string][]*Card),
		bySet:  make(map[string]map[Rarity][]*Card),
	}
	for i := range list {
		c := list[i]
		if c.ID == "" {
			return nil, fmt.Errorf("card %q has no id", c.Name)
		}
		if _, dup := p.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", c.ID)
		}
		c.Set = strings.ToLower(c.Set)
		card := &c
		p.byID[c.ID] = card
		p.ids = append(p.ids, c.ID)
		key := NormalizeName(c.Name)
		p.byName[key] = append(p.byName[key], card)
		if _, ok := p.bySet[c.Set]; !ok {
			p.bySet[c.Set] = make(map[Rarity][]*Card)
		}
		p.bySet[c.Set][c.Rarity] = append(p.bySet[c.Set][c.Rarity], card)
	}
	sort.Strings(p.ids)
	return p, nil
}

func LoadPool(r io.Reader) (*Pool, error) {
	var list []Card
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode card table: %w", err)
	}
	return NewPool(list)
}

func LoadPoolFile(path string) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open card table: %w", err)
	}
	defer f.Close()
	return LoadPool(f)
}

func (p *Pool) Get(id string) (*Card, bool) {
	c, ok := p.byID[id]
	return c, ok
}

func (p *Pool) Len() int {
	return len(p.byID)
}

// Sets returns the set codes present in the pool, sorted.
func (p *Pool) Sets() []string {
	sets := make([]string, 0, len(p.bySet))
	for s := range p.bySet {
		sets = append(sets, s)
	}
	sort.Strings(sets)
	return sets
}

// ByRarity groups the cards of the given sets by rarity, or of every set when
// sets is empty. Cards are returned in id order so callers can rely on a
// stable iteration order for a given pool.
func (p *Pool) ByRarity(sets []string) map[Rarity][]*Card {
	out := make(map[Rarity][]*Card)
	if len(sets) == 0 {
		sets = p.Sets()
	}
	for _, set := range sets {
		for rarity, list := range p.bySet[strings.ToLower(set)] {
			out[rarity] = append(out[rarity], list...)
		}
	}
	for rarity := range out {
		list := out[rarity]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return out
}

// Lookup resolves a card by name, optionally narrowed by set and collector
// number. When several printings match, the first by id is returned.
func (p *Pool) Lookup(name, set, number string) (*Card, bool) {
	candidates := p.byName[NormalizeName(name)]
	var best *Card
	for _, c := range candidates {
		if set != "" && c.Set != strings.ToLower(set) {
			continue
		}
		if number != "" && c.CollectorNumber != number {
			continue
		}
		if best == nil || c.ID < best.ID {
			best = c
		}
	}
	return best, best != nil
}

// NormalizeName folds case and keeps only the front face of split or
// double faced names.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.Index(name, " // "); i >= 0 {
		name = name[:i]
	}
	return name
}
