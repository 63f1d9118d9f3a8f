package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fotogo/gallery-core/internal/config"
	"github.com/fotogo/gallery-core/internal/quality"
)

var qualityCmd = &cobra.Command{
	Use:   "quality [photo...]",
	Short: "Score photo sharpness and report discard verdicts",
	Long: `Compute the subject sharpness score for one or more photos and
report whether each falls below the discard threshold.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuality,
}

func init() {
	rootCmd.AddCommand(qualityCmd)

	qualityCmd.Flags().Float64("threshold", 0, "Discard threshold (default: configured value)")
	qualityCmd.Flags().Bool("json", false, "Output results as JSON")
}

type qualityReport struct {
	Photo     string  `json:"photo"`
	Sharpness float64 `json:"sharpness"`
	Discarded bool    `json:"discarded"`
}

func runQuality(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	threshold := resolveThreshold(cmd, "threshold", cfg.Defaults.DiscardThreshold)
	jsonOutput := mustGetBool(cmd, "json")

	svc, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	var reports []qualityReport
	for _, path := range args {
		img, err := readPhotoFile(path)
		if err != nil {
			return err
		}
		score := svc.scorer.SubjectSharpness(cmd.Context(), img)
		reports = append(reports, qualityReport{
			Photo:     path,
			Sharpness: score,
			Discarded: quality.Discarded(score, threshold),
		})
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(reports)
	}
	for _, r := range reports {
		verdict := "keep"
		if r.Discarded {
			verdict = "discard"
		}
		fmt.Printf("%-40s %8.2f  %s\n", r.Photo, r.Sharpness, verdict)
	}
	return nil
}
