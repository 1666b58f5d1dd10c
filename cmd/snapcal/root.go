package snapcal

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	apiURL     string
	statePath  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "snapcal",
	Short: "snapcal tracks meals, activities, and calorie goals from your terminal",
	Long:  "snapcal is a photo-first calorie tracking client: snap a meal, let the backend analyze it, and keep your daily log in sync.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(configured string) zerolog.Logger {
	level := zerolog.WarnLevel
	if l, err := zerolog.ParseLevel(configured); err == nil && configured != "" {
		level = l
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "Path to local state database")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}
