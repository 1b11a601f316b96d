package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/catalog"
	"github.com/travelmate/tripplanner/internal/config"
	"github.com/travelmate/tripplanner/internal/localstate"
	"github.com/travelmate/tripplanner/internal/session"
	"github.com/travelmate/tripplanner/internal/syncengine"
)

// app is the per-command object graph.
type app struct {
	state    localstate.Store
	session  *session.Store
	client   *client.Client
	resolver *session.Resolver
	engine   *syncengine.Engine
	listing  *syncengine.Listing
	catalog  *catalog.Catalog
	out      io.Writer
}

func newApp(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*app, error) {
	state, err := localstate.Open(ctx, cfg.StateOptions())
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}

	nav := cliNavigator(cmd.ErrOrStderr())
	sess := session.NewStore(state, nav, session.WithLogger(log.Logger))

	opts := []client.Option{
		client.WithHTTPTimeout(cfg.HTTPTimeout),
		client.WithRetry(cfg.RetryAttempts),
		client.WithUnauthorizedHandler(sess.Unauthorized),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	c, err := client.New(cfg.APIURL, sess, opts...)
	if err != nil {
		_ = state.Close()
		return nil, err
	}

	resolver := session.NewResolver(state, sess,
		session.WithFallbackID(cfg.IdentityFallbackID),
		session.WithResolverLogger(log.Logger))

	return &app{
		state:    state,
		session:  sess,
		client:   c,
		resolver: resolver,
		engine: syncengine.New(c, sess, resolver, nav,
			syncengine.WithCapacityLimit(cfg.CapacityLimit),
			syncengine.WithLogger(log.Logger)),
		listing: syncengine.NewListing(c, sess, resolver, syncengine.WithListingLogger(log.Logger)),
		catalog: catalog.New(c),
		out:     cmd.OutOrStdout(),
	}, nil
}

func (a *app) Close() error { return a.state.Close() }

// requireSession runs the authentication gate.
func (a *app) requireSession() error {
	if !a.session.RequireAuthenticated() {
		return syncengine.ErrNotAuthenticated
	}
	return nil
}

// withApp builds the app for one command run and closes it afterwards.
func withApp(cmd *cobra.Command, cfg *config.Config, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("close local state")
		}
	}()
	return fn(ctx, a)
}

// cliNavigator prints where the user is being sent.
func cliNavigator(w io.Writer) session.Navigator {
	return session.NavigatorFunc(func(dest session.Destination, reason string) {
		switch dest {
		case session.DestLogin:
			if reason == "" {
				reason = "Please log in"
			}
			fmt.Fprintf(w, "%s. Run `tripplanner login` to continue.\n", reason)
		case session.DestItineraryList:
			if reason != "" {
				fmt.Fprintf(w, "%s. See `tripplanner itinerary list`.\n", reason)
			}
		}
	})
}
