package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/travelmate/tripplanner/internal/config"
)

type rootFlags struct {
	apiURL  string
	envFile string
	debug   bool
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	var (
		flags rootFlags
		cfg   = new(config.Config)
	)

	rootCmd := &cobra.Command{
		Use:           "tripplanner",
		Short:         "Build and manage travel itineraries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(flags.envFile); err != nil {
				return err
			}
			loaded, err := config.New()
			if err != nil {
				return err
			}
			if flags.apiURL != "" {
				loaded.APIURL = flags.apiURL
			}
			*cfg = *loaded
			config.InitLogger(cfg.LogLevel, flags.debug || cfg.Debug)
			log.Debug().Str("api_url", cfg.APIURL).Str("command", cmd.CommandPath()).Msg("command starting")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Base URL of the itinerary API (overrides TRIPPLANNER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newLoginCmd(cfg))
	rootCmd.AddCommand(newRegisterCmd(cfg))
	rootCmd.AddCommand(newLogoutCmd(cfg))
	rootCmd.AddCommand(newWhoamiCmd(cfg))
	rootCmd.AddCommand(newCatalogCmd(cfg))
	rootCmd.AddCommand(newItineraryCmd(cfg))

	return rootCmd
}

// loadEnvFile applies path if it exists. Variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
