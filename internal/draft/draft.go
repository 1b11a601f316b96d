// Package draft holds the locally edited itinerary before it is saved.
//
// A Draft is owned by a single editor and is not safe for concurrent
// mutation. totalCost always equals the sum of the items' costs.
package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/travelmate/tripplanner/client"
)

var (
	// ErrNotEditMode is returned by Hydrate on a Create-mode draft.
	ErrNotEditMode = errors.New("draft is not in edit mode")
	// ErrScheduleMismatch is returned when hydrating from another schedule.
	ErrScheduleMismatch = errors.New("schedule id does not match draft")
	// ErrAlreadySaved is returned when saving a draft that was already persisted.
	ErrAlreadySaved = errors.New("draft already saved")
)

// Mode says whether saving creates a new schedule or replaces one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Draft is an itinerary being built or edited. It is not safe for concurrent
// mutation; the sync engine only reads it and marks it saved.
type Draft struct {
	key        string
	mode       Mode
	scheduleID int64

	title string
	start client.Date
	end   client.Date
	items []client.CatalogItem
	total client.Money

	saved bool
}

// New returns an empty Create-mode draft.
func New() *Draft {
	return &Draft{key: uuid.NewString(), mode: ModeCreate}
}

// NewEdit returns an empty Edit-mode draft bound to scheduleID. Call Hydrate
// with the fetched record before editing.
func NewEdit(scheduleID int64) (*Draft, error) {
	if scheduleID <= 0 {
		return nil, fmt.Errorf("schedule id %d: %w", scheduleID, client.ErrInvalidID)
	}
	return &Draft{key: uuid.NewString(), mode: ModeEdit, scheduleID: scheduleID}, nil
}

// Key identifies this draft within the process.
func (d *Draft) Key() string { return d.key }

// Mode reports whether saving creates or replaces a schedule.
func (d *Draft) Mode() Mode { return d.mode }

// ScheduleID is the remote id in Edit mode, zero otherwise.
func (d *Draft) ScheduleID() int64 { return d.scheduleID }

// Title is the itinerary title as entered.
func (d *Draft) Title() string { return d.title }

// StartDate is the first day of the trip.
func (d *Draft) StartDate() client.Date { return d.start }

// EndDate is the last day of the trip.
func (d *Draft) EndDate() client.Date { return d.end }

// TotalCost is the sum of the selected items' costs.
func (d *Draft) TotalCost() client.Money { return d.total }

// Len is the number of selected items.
func (d *Draft) Len() int { return len(d.items) }

// Saved reports whether a save of this draft succeeded.
func (d *Draft) Saved() bool { return d.saved }

// SetTitle replaces the title. Blank titles fail Validate.
func (d *Draft) SetTitle(title string) { d.title = title }

// SetDates sets both dates. Ordering is checked by Validate.
func (d *Draft) SetDates(start, end client.Date) { d.start, d.end = start, end }

// MarkSaved records a successful save. Later saves are refused.
func (d *Draft) MarkSaved() { d.saved = true }

// Items returns a copy of the selected items in insertion order.
func (d *Draft) Items() []client.CatalogItem {
	out := make([]client.CatalogItem, len(d.items))
	copy(out, d.items)
	return out
}

// Contains reports whether an item with id is selected.
func (d *Draft) Contains(id int64) bool {
	return d.indexOf(id) >= 0
}

func (d *Draft) indexOf(id int64) int {
	for i := range d.items {
		if d.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends item unless one with the same id is present. It reports
// whether the draft changed.
func (d *Draft) Add(item client.CatalogItem) bool {
	if d.Contains(item.ID) {
		return false
	}
	d.items = append(d.items, item)
	d.recompute()
	return true
}

// Remove drops the item with id. It reports whether the draft changed.
func (d *Draft) Remove(id int64) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.items = append(d.items[:i:i], d.items[i+1:]...)
	d.recompute()
	return true
}

// Hydrate replaces title, dates and items with the remote record's. Duplicate
// attractions keep their first occurrence; the total is recomputed.
func (d *Draft) Hydrate(s client.Schedule) error {
	if d.mode != ModeEdit {
		return ErrNotEditMode
	}
	if s.ID != d.scheduleID {
		return fmt.Errorf("hydrate %d from %d: %w", d.scheduleID, s.ID, ErrScheduleMismatch)
	}
	d.title = s.Title
	d.start = s.StartDate
	d.end = s.EndDate
	d.items = nil
	for _, it := range s.Attractions {
		if d.indexOf(it.ID) < 0 {
			d.items = append(d.items, it)
		}
	}
	d.recompute()
	return nil
}

func (d *Draft) recompute() {
	var sum client.Money
	for _, it := range d.items {
		sum += it.Cost
	}
	d.total = sum
}

// Payload builds the request body sent on save.
func (d *Draft) Payload(userID int64) client.ScheduleRequest {
	return client.ScheduleRequest{
		UserID:      userID,
		Title:       strings.TrimSpace(d.title),
		StartDate:   d.start,
		EndDate:     d.end,
		Attractions: d.Items(),
		TotalCost:   d.total,
	}
}

// Snapshot is a value copy of a draft's editable state.
type Snapshot struct {
	Key        string
	Mode       Mode
	ScheduleID int64
	Title      string
	StartDate  client.Date
	EndDate    client.Date
	Items      []client.CatalogItem
	TotalCost  client.Money
	Saved      bool
}

// Snapshot captures the current state.
func (d *Draft) Snapshot() Snapshot {
	return Snapshot{
		Key:        d.key,
		Mode:       d.mode,
		ScheduleID: d.scheduleID,
		Title:      d.title,
		StartDate:  d.start,
		EndDate:    d.end,
		Items:      d.Items(),
		TotalCost:  d.total,
		Saved:      d.saved,
	}
}
