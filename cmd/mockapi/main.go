package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/travelmate/tripplanner/internal/mockapi"
)

func main() {
	if err := mockapi.Run(); err != nil {
		log.Error().Err(err).Msg("mockapi exited with error")
		os.Exit(1)
	}
}
