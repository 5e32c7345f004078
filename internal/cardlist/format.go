package cardlist

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/malexanderboyd/godr4ft/internal/cards"
)

// Format writes l back in the text format accepted by Parse. Parsing the
// output against the same pool yields an equal List.
func Format(l *List, pool *cards.Pool) (string, error) {
	var b strings.Builder
	settings, err := toml.Marshal(l.Settings)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	if s := strings.TrimSpace(string(settings)); s != "" {
		b.WriteString("[Settings]\n")
		b.WriteString(s)
		b.WriteString("\n")
	}
	if len(l.Layouts) > 0 {
		b.WriteString("[Layouts]\n")
		for _, lay := range l.Layouts {
			fmt.Fprintf(&b, "- %s (%d)\n", lay.Name, lay.Weight)
			for _, slot := range lay.Slots {
				parts := make([]string, len(slot.Sheets))
				for i, sw := range slot.Sheets {
					parts[i] = fmt.Sprintf("%s:%d", sw.Sheet, sw.Weight)
				}
				fmt.Fprintf(&b, "\t%d %s", slot.Count, strings.Join(parts, ", "))
				if slot.Foil {
					b.WriteString(" +F")
				}
				b.WriteString("\n")
			}
		}
	}
	for _, s := range l.Sheets {
		b.WriteString("[")
		b.WriteString(s.Name)
		if s.Count > 0 {
			fmt.Fprintf(&b, "(%d)", s.Count)
		}
		if s.Fixed {
			b.WriteString(" fixed")
		}
		b.WriteString("]\n")
		for _, e := range s.Entries {
			card, ok := pool.Get(e.CardID)
			if !ok {
				return "", fmt.Errorf("card %q is not in the card table", e.CardID)
			}
			fmt.Fprintf(&b, "%d %s (%s) %s", e.Count, card.Name, strings.ToUpper(card.Set), card.CollectorNumber)
			if e.Foil {
				b.WriteString(" +F")
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
