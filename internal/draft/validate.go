package draft

import (
	"strings"
)

// Check names one validation rule.
type Check string

const (
	MissingTitle     Check = "MissingTitle"
	MissingDates     Check = "MissingDates"
	EmptyItinerary   Check = "EmptyItinerary"
	InvalidDateRange Check = "InvalidDateRange"
)

var checkMessages = map[Check]string{
	MissingTitle:     "please fill in the title",
	MissingDates:     "please fill in both dates",
	EmptyItinerary:   "please select at least one attraction",
	InvalidDateRange: "the end date must not be before the start date",
}

// Message is the user-facing text for c.
func (c Check) Message() string {
	if m, ok := checkMessages[c]; ok {
		return m
	}
	return string(c)
}

// ValidationResult lists every failing check in a fixed order.
type ValidationResult struct {
	Failures []Check
}

// OK reports whether the draft may be saved.
func (r ValidationResult) OK() bool { return len(r.Failures) == 0 }

// Has reports whether c failed.
func (r ValidationResult) Has(c Check) bool {
	for _, f := range r.Failures {
		if f == c {
			return true
		}
	}
	return false
}

// Err returns nil when OK, else a *ValidationError led by the first failure.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Check: r.Failures[0], Failures: append([]Check(nil), r.Failures...)}
}

// ValidationError is returned by a save that never reached the network.
type ValidationError struct {
	Check    Check
	Failures []Check
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Message())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate evaluates every rule. The date range is only checked when both
// dates are present.
func (d *Draft) Validate() ValidationResult {
	var res ValidationResult
	if strings.TrimSpace(d.title) == "" {
		res.Failures = append(res.Failures, MissingTitle)
	}
	if d.start.IsZero() || d.end.IsZero() {
		res.Failures = append(res.Failures, MissingDates)
	} else if d.end.Before(d.start) {
		res.Failures = append(res.Failures, InvalidDateRange)
	}
	if len(d.items) == 0 {
		res.Failures = append(res.Failures, EmptyItinerary)
	}
	return res
}
