package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fotogo/gallery-core/internal/config"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [event-id] [photo-or-dir...]",
	Short: "Ingest photos into an event gallery",
	Long: `Ingest photos into an event gallery. Directories are read
non-recursively. Each photo is bounded to the working resolution,
scored for sharpness and recorded in the gallery index.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("uploader", "cli", "Uploader name recorded on the photos")
}

func collectPhotoPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".jpg", ".jpeg", ".png", ".gif", ".bmp":
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	eventID := args[0]
	uploader := mustGetString(cmd, "uploader")

	paths, err := collectPhotoPaths(args[1:])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no photos found")
	}

	svc, err := buildServices(config.Load())
	if err != nil {
		return err
	}
	defer svc.close()

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Ingesting photos"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var ingested, discarded, failed int
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nwarning: reading %s: %v\n", path, err)
			failed++
			bar.Add(1)
			continue
		}
		rec, err := svc.gallery.Ingest(cmd.Context(), eventID, uploader, filepath.Base(path), data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nwarning: ingesting %s: %v\n", path, err)
			failed++
			bar.Add(1)
			continue
		}
		ingested++
		if rec.Discarded {
			discarded++
		}
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("Ingested %d photos into event %s (%d flagged for discard, %d failed)\n",
		ingested, eventID, discarded, failed)
	return nil
}
