package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/syncengine"
	"github.com/travelmate/tripplanner/internal/tui"
)

// displayLanguage picks the number format from LC_ALL or LANG ("de_DE.UTF-8").
func displayLanguage() language.Tag {
	for _, env := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(env)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		if tag, err := language.Parse(strings.ReplaceAll(v, "_", "-")); err == nil {
			return tag
		}
	}
	return language.English
}

func dateRange(s client.Schedule) string {
	start, end := s.StartDate.String(), s.EndDate.String()
	if start == "" && end == "" {
		return "no dates"
	}
	return start + " → " + end
}

func printCards(w io.Writer, cards []syncengine.Card) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No itineraries yet. Create one with `tripplanner itinerary create`.")
		return
	}
	lang := displayLanguage()
	for _, c := range cards {
		s := c.Schedule
		fmt.Fprintf(w, "#%-4d %-28s %-25s %2d items  %s\n",
			s.ID, s.Title, dateRange(s), len(s.Attractions), tui.FormatCost(lang, s.TotalCost))
	}
}

func printSchedule(w io.Writer, s client.Schedule) {
	lang := displayLanguage()
	fmt.Fprintf(w, "#%d %s\n", s.ID, s.Title)
	fmt.Fprintf(w, "  Dates: %s\n", dateRange(s))
	for _, it := range s.Attractions {
		fmt.Fprintf(w, "  - %-32s %12s\n", it.Name, tui.FormatCost(lang, it.Cost))
	}
	fmt.Fprintf(w, "  Total: %s\n", tui.FormatCost(lang, s.TotalCost))
}
