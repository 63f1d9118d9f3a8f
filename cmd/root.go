package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gallery-core",
	Short: "Photo processing core for event galleries",
	Long: `Gallery Core processes event photo galleries: color and tone
adjustments, subject-aware cropping, sharpness scoring with automatic
discard, batch preset rendering and visitor face search.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
