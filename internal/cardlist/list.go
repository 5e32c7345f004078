package cardlist

const (
	DefaultSheetName       = "default"
	DefaultCardsPerBooster = 15
)

type Entry struct {
	CardID string
	Count  int
	Foil   bool
}

// Sheet is a named weighted pool of cards. Count, when set by the sheet
// header, is the number of cards the sheet contributes to a booster when the
// list defines no layouts.
type Sheet struct {
	Name    string
	Count   int
	Fixed   bool
	Entries []Entry
}

// Size is the number of physical cards on the sheet.
func (s *Sheet) Size() int {
	total := 0
	for _, e := range s.Entries {
		total += e.Count
	}
	return total
}

type SheetWeight struct {
	Sheet  string
	Weight int
}

type Slot struct {
	Count  int
	Sheets []SheetWeight
	Foil   bool
}

type Layout struct {
	Name   string
	Weight int
	Slots  []Slot
}

func (l *Layout) Size() int {
	total := 0
	for _, s := range l.Slots {
		total += s.Count
	}
	return total
}

type Settings struct {
	Name              string   `toml:"name,omitempty"`
	WithReplacement   bool     `toml:"withReplacement,omitempty"`
	BoostersPerPlayer int      `toml:"boostersPerPlayer,omitempty"`
	PickCount         int      `toml:"pickCount,omitempty"`
	BurnCount         int      `toml:"burnCount,omitempty"`
	CardsPerBooster   int      `toml:"cardsPerBooster,omitempty"`
	LayoutSequence    []string `toml:"layoutSequence,omitempty"`
}

// List is read-only once parsed; a re-upload replaces it wholesale.
type List struct {
	Settings Settings
	Sheets   []*Sheet
	Layouts  []*Layout
}

func (l *List) Sheet(name string) *Sheet {
	for _, s := range l.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (l *List) Layout(name string) *Layout {
	for _, lay := range l.Layouts {
		if lay.Name == name {
			return lay
		}
	}
	return nil
}

func (l *List) CardsPerBooster() int {
	if l.Settings.CardsPerBooster > 0 {
		return l.Settings.CardsPerBooster
	}
	return DefaultCardsPerBooster
}

// Size is the number of physical cards across every sheet.
func (l *List) Size() int {
	total := 0
	for _, s := range l.Sheets {
		total += s.Size()
	}
	return total
}

// EffectiveLayouts returns the declared layouts, or the implicit one derived
// from the sheets when none are declared.
func (l *List) EffectiveLayouts() []*Layout {
	if len(l.Layouts) > 0 {
		return l.Layouts
	}
	implicit := &Layout{Name: DefaultSheetName, Weight: 1}
	for _, s := range l.Sheets {
		if s.Count > 0 {
			implicit.Slots = append(implicit.Slots, Slot{Count: s.Count, Sheets: []SheetWeight{{Sheet: s.Name, Weight: 1}}})
		}
	}
	if len(implicit.Slots) == 0 {
		slot := Slot{Count: l.CardsPerBooster()}
		for _, s := range l.Sheets {
			slot.Sheets = append(slot.Sheets, SheetWeight{Sheet: s.Name, Weight: s.Size()})
		}
		implicit.Slots = []Slot{slot}
	}
	return []*Layout{implicit}
}
