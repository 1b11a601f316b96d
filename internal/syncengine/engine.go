// Package syncengine persists drafts to the remote API and manages the saved
// itinerary list. All remote calls are gated on the session.
package syncengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/draft"
	"github.com/travelmate/tripplanner/internal/session"
)

// DefaultCapacityLimit is the number of itineraries a user may keep.
const DefaultCapacityLimit = 200

// API is the subset of *client.Client the engine drives.
type API interface {
	ListSchedules(ctx context.Context, userID int64) ([]client.Schedule, error)
	GetSchedule(ctx context.Context, id int64) (*client.Schedule, error)
	CreateSchedule(ctx context.Context, req client.ScheduleRequest) (*client.Schedule, error)
	UpdateSchedule(ctx context.Context, id int64, req client.ScheduleRequest) (*client.Schedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
}

// Session reports whether a usable token exists. *session.Store satisfies it.
type Session interface {
	Authenticated() bool
}

// Identity yields the current user's id. *session.Resolver satisfies it.
type Identity interface {
	ResolveUserID(ctx context.Context) (int64, error)
}

// State is the engine's save lifecycle.
type State int

const (
	StateIdle State = iota
	StateSaving
	StateSaved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine saves one draft at a time. Safe for concurrent use.
type Engine struct {
	api      API
	sess     Session
	ident    Identity
	nav      session.Navigator
	capacity int
	log      zerolog.Logger
	observe  func(State)

	mu       sync.Mutex
	state    State
	inflight string // key of the draft being saved
	group    singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapacityLimit overrides DefaultCapacityLimit. Non-positive values are ignored.
func WithCapacityLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.capacity = n
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithStateObserver registers fn to receive every state transition.
// fn runs with the engine's lock held and must not call back into it.
func WithStateObserver(fn func(State)) Option {
	return func(e *Engine) { e.observe = fn }
}

// New wires an Engine. nav may be nil.
func New(api API, sess Session, ident Identity, nav session.Navigator, opts ...Option) *Engine {
	if nav == nil {
		nav = session.Discard
	}
	e := &Engine{
		api:      api,
		sess:     sess,
		ident:    ident,
		nav:      nav,
		capacity: DefaultCapacityLimit,
		log:      log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CapacityLimit returns the configured itinerary limit.
func (e *Engine) CapacityLimit() int { return e.capacity }

// setStateLocked requires e.mu.
func (e *Engine) setStateLocked(s State) {
	e.state = s
	if e.observe != nil {
		e.observe(s)
	}
}

// Save persists d. The session gate and validation run first and send
// nothing; an already-saved draft is refused. A second Save of the same draft while
// one is in flight shares its result; a different draft gets ErrSaveInProgress.
//
// The remote work runs on the first caller's ctx. A caller whose ctx ends
// returns early while the in-flight save completes.
func (e *Engine) Save(ctx context.Context, d *draft.Draft) (*client.Schedule, error) {
	if !e.sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := d.Validate().Err(); err != nil {
		savesTotal.WithLabelValues(d.Mode().String(), KindValidation.String()).Inc()
		return nil, err
	}

	e.mu.Lock()
	// saved is written under e.mu by the in-flight save.
	if d.Saved() {
		e.mu.Unlock()
		return nil, draft.ErrAlreadySaved
	}
	if e.state == StateSaving && e.inflight != d.Key() {
		e.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	if e.state != StateSaving {
		e.inflight = d.Key()
		e.setStateLocked(StateSaving)
	}
	ch := e.group.DoChan(d.Key(), func() (any, error) {
		return e.save(ctx, d)
	})
	e.mu.Unlock()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*client.Schedule), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// save runs once per in-flight draft and settles the engine state.
func (e *Engine) save(ctx context.Context, d *draft.Draft) (*client.Schedule, error) {
	logger := e.log.With().Str("draft", d.Key()).Str("mode", d.Mode().String()).Logger()

	saved, err := e.persist(ctx, d, logger)

	e.mu.Lock()
	e.inflight = ""
	// A Save that sees the settled state must start a new call.
	e.group.Forget(d.Key())
	if err != nil {
		e.setStateLocked(StateFailed)
		e.setStateLocked(StateIdle)
	} else {
		d.MarkSaved()
		e.setStateLocked(StateSaved)
	}
	e.mu.Unlock()

	savesTotal.WithLabelValues(d.Mode().String(), Classify(err).String()).Inc()
	if err != nil {
		logger.Warn().Err(err).Str("kind", Classify(err).String()).Msg("save failed")
		return nil, err
	}
	logger.Info().Int64("schedule_id", saved.ID).Msg("itinerary saved")
	e.nav.Navigate(session.DestItineraryList, "Itinerary saved")
	return saved, nil
}

func (e *Engine) persist(ctx context.Context, d *draft.Draft, logger zerolog.Logger) (*client.Schedule, error) {
	userID, err := e.ident.ResolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	if d.Mode() == draft.ModeCreate {
		if err := e.checkCapacity(ctx, userID, logger); err != nil {
			return nil, err
		}
	}

	payload := d.Payload(userID)
	var saved *client.Schedule
	if d.Mode() == draft.ModeEdit {
		saved, err = e.api.UpdateSchedule(ctx, d.ScheduleID(), payload)
	} else {
		saved, err = e.api.CreateSchedule(ctx, payload)
	}
	if err != nil {
		return nil, fmt.Errorf("save itinerary: %w", err)
	}
	return saved, nil
}

// checkCapacity is advisory: a failed listing is logged and the save goes on.
func (e *Engine) checkCapacity(ctx context.Context, userID int64, logger zerolog.Logger) error {
	existing, err := e.api.ListSchedules(ctx, userID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if client.IsUnauthorized(err) {
			return fmt.Errorf("capacity check: %w", err)
		}
		capacityCheckFailuresTotal.Inc()
		logger.Warn().Err(err).Msg("capacity check failed; continuing")
		return nil
	}
	if len(existing) >= e.capacity {
		return &CapacityError{Limit: e.capacity, Count: len(existing)}
	}
	return nil
}

// LoadForEdit fetches schedule id into a new Edit-mode draft. When the record
// cannot be fetched the user is sent back to the list.
func (e *Engine) LoadForEdit(ctx context.Context, id int64) (*draft.Draft, error) {
	if !e.sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	d, err := draft.NewEdit(id)
	if err != nil {
		return nil, err
	}
	s, err := e.api.GetSchedule(ctx, id)
	if err != nil {
		if client.IsUnauthorized(err) {
			return nil, err
		}
		e.log.Warn().Err(err).Int64("schedule_id", id).Msg("load for edit failed")
		e.nav.Navigate(session.DestItineraryList, UserMessage(ErrScheduleUnavailable))
		return nil, fmt.Errorf("%w: %w", ErrScheduleUnavailable, err)
	}
	if err := d.Hydrate(*s); err != nil {
		e.nav.Navigate(session.DestItineraryList, UserMessage(ErrScheduleUnavailable))
		return nil, fmt.Errorf("%w: %w", ErrScheduleUnavailable, err)
	}
	return d, nil
}
