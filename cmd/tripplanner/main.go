package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/travelmate/tripplanner/internal/syncengine"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Str("kind", syncengine.Classify(err).String()).Msg(syncengine.UserMessage(err))
		stop()
		os.Exit(1)
	}
}
