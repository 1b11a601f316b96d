package tui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/travelmate/tripplanner/client"
)

// FormatCost renders m with the grouping and decimal marks of tag,
// e.g. "1,299.50" for English.
func FormatCost(tag language.Tag, m client.Money) string {
	return message.NewPrinter(tag).Sprintf("%.2f", m.Float())
}
