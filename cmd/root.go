package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"linkage-tracer/internal/config"
	"linkage-tracer/internal/version"
	"linkage-tracer/ui/mainwindow"
)

var (
	flagAPI   string
	flagToken string
	flagPhoto string
)

var rootCmd = &cobra.Command{
	Use:   "linkage-tracer [bike-id]",
	Short: "Suspension linkage tracing over bike photos",
	Long: `Linkage Tracer opens a bike photo and lets you mark pivots, link the
frame bodies, calibrate real-world measurements, and fit the wheel rims.
Annotations are saved to a record store as you work.`,
	Args:    cobra.MaximumNArgs(1),
	Version: version.Version,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if flagAPI != "" {
			cfg.APIBaseURL = flagAPI
		}
		if flagToken != "" {
			cfg.APIToken = flagToken
		}
		if flagPhoto != "" {
			cfg.PhotoPath = flagPhoto
		}
		if len(args) > 0 {
			cfg.BikeID = args[0]
		}
		mainwindow.New(cfg).ShowAndRun()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagAPI, "api", "", "record store base URL (overrides LINKAGE_API_URL)")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "bearer token for the record store")
	rootCmd.Flags().StringVar(&flagPhoto, "photo", "", "open a local photo instead of the stored one")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
