package syncengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/travelmate/tripplanner/client"
)

// Card is one saved itinerary in the list. Pending cards are disabled while
// their delete is in flight.
type Card struct {
	Schedule client.Schedule
	Pending  bool
}

// Listing holds the user's saved itineraries. Safe for concurrent use.
type Listing struct {
	api   API
	sess  Session
	ident Identity
	log   zerolog.Logger

	mu    sync.Mutex
	cards []Card
}

// ListingOption configures a Listing.
type ListingOption func(*Listing)

// WithListingLogger sets the listing's logger.
func WithListingLogger(l zerolog.Logger) ListingOption {
	return func(ls *Listing) { ls.log = l }
}

func NewListing(api API, sess Session, ident Identity, opts ...ListingOption) *Listing {
	ls := &Listing{api: api, sess: sess, ident: ident, log: log.Logger}
	for _, opt := range opts {
		opt(ls)
	}
	return ls
}

// List fetches the resolved user's schedules, always scoped by ?userId=,
// and replaces the cards.
func (ls *Listing) List(ctx context.Context) ([]Card, error) {
	if !ls.sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	userID, err := ls.ident.ResolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	schedules, err := ls.api.ListSchedules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	cards := make([]Card, len(schedules))
	for i, s := range schedules {
		cards[i] = Card{Schedule: s}
	}

	ls.mu.Lock()
	ls.cards = cards
	ls.mu.Unlock()
	return ls.Cards(), nil
}

// Cards returns a copy of the current cards.
func (ls *Listing) Cards() []Card {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	out := make([]Card, len(ls.cards))
	copy(out, ls.cards)
	return out
}

func (ls *Listing) indexLocked(id int64) int {
	for i := range ls.cards {
		if ls.cards[i].Schedule.ID == id {
			return i
		}
	}
	return -1
}

func (ls *Listing) setPending(id int64, pending bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if i := ls.indexLocked(id); i >= 0 {
		ls.cards[i].Pending = pending
	}
}

// Delete removes schedule id. Its card is disabled until the remote delete
// settles: on failure it is re-enabled and kept, on success it is dropped.
// Deleting the last card reloads the list.
func (ls *Listing) Delete(ctx context.Context, id int64) error {
	if !ls.sess.Authenticated() {
		return ErrNotAuthenticated
	}

	ls.mu.Lock()
	i := ls.indexLocked(id)
	if i >= 0 {
		if ls.cards[i].Pending {
			ls.mu.Unlock()
			return ErrDeleteInProgress
		}
		ls.cards[i].Pending = true
	}
	hadCard := i >= 0
	ls.mu.Unlock()

	if err := ls.api.DeleteSchedule(ctx, id); err != nil {
		ls.setPending(id, false)
		deletesTotal.WithLabelValues(Classify(err).String()).Inc()
		ls.log.Warn().Err(err).Int64("schedule_id", id).Msg("delete failed")
		return fmt.Errorf("delete itinerary %d: %w", id, err)
	}
	deletesTotal.WithLabelValues(KindNone.String()).Inc()

	ls.mu.Lock()
	if j := ls.indexLocked(id); j >= 0 {
		ls.cards = append(ls.cards[:j:j], ls.cards[j+1:]...)
	}
	empty := hadCard && len(ls.cards) == 0
	ls.mu.Unlock()

	ls.log.Info().Int64("schedule_id", id).Msg("itinerary deleted")
	if empty {
		if _, err := ls.List(ctx); err != nil {
			ls.log.Warn().Err(err).Msg("reload after last delete failed")
		}
	}
	return nil
}
