package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/localstate"
)

// ErrIdentityUnresolved is returned when no stored record yields a user id.
var ErrIdentityUnresolved = errors.New("session error: user id not found, please log in again")

// FallbackKey is the Resolution.Key reported for the configured fallback id.
const FallbackKey = "fallback"

// Resolution is the outcome of a successful scan.
type Resolution struct {
	UserID int64
	Key    string // storage key the id came from, or FallbackKey
}

// Resolver derives the current user's id from the legacy user keys. It never
// writes to storage.
type Resolver struct {
	state      localstate.Store
	tokens     client.TokenSource
	fallbackID int64
	log        zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFallbackID enables lenient mode: when no record has an id but a token
// is present, id is used. Zero keeps strict mode.
func WithFallbackID(id int64) ResolverOption {
	return func(r *Resolver) { r.fallbackID = id }
}

// WithResolverLogger sets the resolver's logger.
func WithResolverLogger(l zerolog.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

// NewResolver builds a Resolver. tokens is consulted only in lenient mode.
func NewResolver(state localstate.Store, tokens client.TokenSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{state: state, tokens: tokens, log: log.Logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lenient reports whether a fallback id is configured.
func (r *Resolver) Lenient() bool { return r.fallbackID > 0 }

// Resolve scans UserKeys in order and returns the first record carrying an
// id. Unreadable or id-less records are skipped, so an earlier key without
// an id never hides a later one that has it.
func (r *Resolver) Resolve(ctx context.Context) (Resolution, error) {
	for _, key := range UserKeys {
		raw, ok, err := r.state.Get(ctx, key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Resolution{}, ctxErr
			}
			r.log.Warn().Err(err).Str("key", key).Msg("read user record")
			continue
		}
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		id, err := recordID(raw)
		if err != nil {
			r.log.Debug().Err(err).Str("key", key).Msg("skip unparseable user record")
			continue
		}
		if id <= 0 {
			continue
		}
		return Resolution{UserID: id, Key: key}, nil
	}

	if r.Lenient() && r.tokens != nil {
		if tok, ok := r.tokens.Token(); ok && tok != "" {
			r.log.Warn().Int64("user_id", r.fallbackID).Msg("no stored user id; using configured fallback")
			return Resolution{UserID: r.fallbackID, Key: FallbackKey}, nil
		}
	}
	return Resolution{}, ErrIdentityUnresolved
}

// ResolveUserID is Resolve without the provenance.
func (r *Resolver) ResolveUserID(ctx context.Context) (int64, error) {
	res, err := r.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	return res.UserID, nil
}

// storedRecord accepts a bare user record or a full login response.
type storedRecord struct {
	ID   flexID `json:"id"`
	User *struct {
		ID flexID `json:"id"`
	} `json:"user"`
}

func recordID(raw string) (int64, error) {
	var rec storedRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return 0, err
	}
	if rec.ID > 0 {
		return int64(rec.ID), nil
	}
	if rec.User != nil {
		return int64(rec.User.ID), nil
	}
	return 0, nil
}

// flexID decodes an id written as a JSON number or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fv, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || fv != float64(int64(fv)) {
			return fmt.Errorf("id %s is not an integer", s)
		}
		n = int64(fv)
	}
	*f = flexID(n)
	return nil
}
