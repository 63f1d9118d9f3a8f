package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fotogo/gallery-core/internal/config"
)

var faceSearchCmd = &cobra.Command{
	Use:   "face-search [event-id] [selfie]",
	Short: "Find gallery photos containing a face",
	Long: `Match a query photo against every photo in an event gallery and
print the records whose largest face scores at or above the match
threshold. Requires a face cascade file (FACE_CASCADE_PATH).`,
	Args: cobra.ExactArgs(2),
	RunE: runFaceSearch,
}

func init() {
	rootCmd.AddCommand(faceSearchCmd)

	faceSearchCmd.Flags().Float64("threshold", 0, "Match threshold (default: configured value)")
}

func runFaceSearch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	threshold := resolveThreshold(cmd, "threshold", cfg.Defaults.FaceMatchThreshold)

	svc, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	query, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}

	matches, err := svc.searcher().Search(cmd.Context(), args[0], query, threshold)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches found")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%-40s %.4f\n", m.RecordID, m.Similarity)
	}
	return nil
}
