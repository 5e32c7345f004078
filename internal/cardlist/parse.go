package cardlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/malexanderboyd/godr4ft/internal/cards"
)

// ParseError is shown to the list owner as a dialog.
type ParseError struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Footer string `json:"footer,omitempty"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Text)
}

const (
	settingsHeader = "settings"
	layoutsHeader  = "layouts"
)

var (
	headerRe = regexp.MustCompile(`^\[([^\]\(]+?)\s*(?:\((\d+)\))?(?:\s+(fixed))?\]$`)
	cardRe   = regexp.MustCompile(`^(?:(\d+)\s+)?(.+?)(?:\s+\(([A-Za-z0-9]+)\)(?:\s+([^\s+]+))?)?(?:\s+(\+F))?$`)
	layoutRe = regexp.MustCompile(`^-\s*(.+?)\s*(?:\((\d+)\))?$`)
	slotRe   = regexp.MustCompile(`^(\d+)\s+(.+?)(?:\s+(\+F))?$`)
)

type parser struct {
	pool     *cards.Pool
	list     *List
	line     int
	section  string
	sheet    *Sheet
	layout   *Layout
	settings []string
}

// Parse reads a custom card list. Card names are resolved against pool. Any
// error returned is a *ParseError.
func Parse(text string, pool *cards.Pool) (*List, error) {
	p := &parser{pool: pool, list: &List{}}
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Title: "Unreadable list", Text: err.Error()}
	}
	if err := p.flushSettings(); err != nil {
		return nil, err
	}
	if err := p.list.validate(); err != nil {
		return nil, err
	}
	return p.list, nil
}

func (p *parser) errorf(title, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Title:  title,
		Text:   fmt.Sprintf("Line %d: %s", p.line, fmt.Sprintf(format, args...)),
		Footer: "Fix the card list and upload it again.",
	}
}

// number reads a decimal count that must be at least min.
func (p *parser) number(text string, min int, what string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n < min {
		return 0, p.errorf("Invalid number", "%s %q must be an integer of at least %d", what, text, min)
	}
	return n, nil
}

func (p *parser) parseLine(raw string) error {
	line := strings.TrimSpace(raw)
	if strings.HasPrefix(line, "[") && headerRe.MatchString(line) {
		return p.startSection(line)
	}
	if p.section == settingsHeader {
		p.settings = append(p.settings, raw)
		return nil
	}
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return nil
	}
	if p.section == layoutsHeader {
		return p.parseLayoutLine(line)
	}
	return p.parseCardLine(line)
}

func (p *parser) startSection(line string) error {
	if err := p.flushSettings(); err != nil {
		return err
	}
	m := headerRe.FindStringSubmatch(line)
	name := strings.TrimSpace(m[1])
	switch strings.ToLower(name) {
	case settingsHeader:
		p.section = settingsHeader
		return nil
	case layoutsHeader:
		p.section = layoutsHeader
		return nil
	}
	if p.list.Sheet(name) != nil {
		return p.errorf("Duplicate sheet", "sheet %q is declared twice", name)
	}
	sheet := &Sheet{Name: name, Fixed: m[3] != ""}
	if m[2] != "" {
		n, err := p.number(m[2], 0, "sheet count")
		if err != nil {
			return err
		}
		sheet.Count = n
	}
	p.list.Sheets = append(p.list.Sheets, sheet)
	p.section = name
	p.sheet = sheet
	return nil
}

func (p *parser) flushSettings() error {
	if p.section != settingsHeader {
		return nil
	}
	block := strings.Join(p.settings, "\n")
	p.settings = nil
	if err := toml.Unmarshal([]byte(block), &p.list.Settings); err != nil {
		return &ParseError{
			Title:  "Invalid settings",
			Text:   err.Error(),
			Footer: "The [Settings] block uses TOML key = value lines.",
		}
	}
	return nil
}

func (p *parser) parseLayoutLine(line string) error {
	if strings.HasPrefix(line, "-") {
		m := layoutRe.FindStringSubmatch(line)
		if m == nil {
			return p.errorf("Invalid layout", "cannot read layout header %q", line)
		}
		weight := 1
		if m[2] != "" {
			w, err := p.number(m[2], 1, "layout weight")
			if err != nil {
				return err
			}
			weight = w
		}
		if p.list.Layout(m[1]) != nil {
			return p.errorf("Duplicate layout", "layout %q is declared twice", m[1])
		}
		p.layout = &Layout{Name: m[1], Weight: weight}
		p.list.Layouts = append(p.list.Layouts, p.layout)
		return nil
	}
	if p.layout == nil {
		return p.errorf("Invalid layout", "slot %q appears before any '- LayoutName' line", line)
	}
	m := slotRe.FindStringSubmatch(line)
	if m == nil {
		return p.errorf("Invalid slot", "expected '<count> <Sheet>[:weight][, <Sheet>:weight] [+F]', got %q", line)
	}
	count, err := p.number(m[1], 1, "slot count")
	if err != nil {
		return err
	}
	slot := Slot{Count: count, Foil: m[3] != ""}
	for _, part := range strings.Split(m[2], ",") {
		part = strings.TrimSpace(part)
		name, weight := part, 1
		if i := strings.LastIndex(part, ":"); i >= 0 {
			w, err := strconv.Atoi(strings.TrimSpace(part[i+1:]))
			if err != nil || w < 1 {
				return p.errorf("Invalid slot", "weight in %q must be a positive integer", part)
			}
			name, weight = strings.TrimSpace(part[:i]), w
		}
		slot.Sheets = append(slot.Sheets, SheetWeight{Sheet: name, Weight: weight})
	}
	p.layout.Slots = append(p.layout.Slots, slot)
	return nil
}

func (p *parser) parseCardLine(line string) error {
	m := cardRe.FindStringSubmatch(line)
	if m == nil {
		return p.errorf("Invalid card line", "cannot read %q", line)
	}
	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return p.errorf("Invalid card line", "count must be an integer of at least 1 in %q", line)
		}
		count = n
	}
	card, ok := p.pool.Lookup(m[2], m[3], m[4])
	if !ok {
		return &ParseError{
			Title:  "Unknown card",
			Text:   fmt.Sprintf("Line %d: %q could not be found.", p.line, line),
			Footer: "Check the spelling, set code and collector number.",
		}
	}
	if p.sheet == nil {
		p.sheet = &Sheet{Name: DefaultSheetName}
		p.list.Sheets = append(p.list.Sheets, p.sheet)
		p.section = DefaultSheetName
	}
	foil := m[5] != ""
	for i := range p.sheet.Entries {
		e := &p.sheet.Entries[i]
		if e.CardID == card.ID && e.Foil == foil {
			e.Count += count
			return nil
		}
	}
	p.sheet.Entries = append(p.sheet.Entries, Entry{CardID: card.ID, Count: count, Foil: foil})
	return nil
}

func (l *List) validate() *ParseError {
	if l.Size() == 0 {
		return &ParseError{Title: "Empty list", Text: "The card list contains no cards."}
	}
	for _, s := range l.Sheets {
		if len(s.Entries) == 0 {
			return &ParseError{Title: "Empty sheet", Text: fmt.Sprintf("Sheet %q contains no cards.", s.Name)}
		}
	}
	for _, lay := range l.Layouts {
		if lay.Weight < 1 {
			return &ParseError{Title: "Invalid layout", Text: fmt.Sprintf("Layout %q must have a positive weight.", lay.Name)}
		}
		if len(lay.Slots) == 0 {
			return &ParseError{Title: "Invalid layout", Text: fmt.Sprintf("Layout %q has no slots.", lay.Name)}
		}
		for _, slot := range lay.Slots {
			for _, sw := range slot.Sheets {
				if l.Sheet(sw.Sheet) == nil {
					return &ParseError{
						Title:  "Invalid layout",
						Text:   fmt.Sprintf("Layout %q references unknown sheet %q.", lay.Name, sw.Sheet),
						Footer: "Every sheet used by a layout needs a [SheetName] section.",
					}
				}
			}
		}
	}
	for _, name := range l.Settings.LayoutSequence {
		if l.Layout(name) == nil {
			return &ParseError{Title: "Invalid settings", Text: fmt.Sprintf("layoutSequence references unknown layout %q.", name)}
		}
	}
	if l.Settings.BoostersPerPlayer < 0 || l.Settings.PickCount < 0 || l.Settings.BurnCount < 0 || l.Settings.CardsPerBooster < 0 {
		return &ParseError{Title: "Invalid settings", Text: "Counts in the [Settings] block must not be negative."}
	}
	return nil
}
