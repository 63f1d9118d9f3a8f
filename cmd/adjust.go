package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fotogo/gallery-core/internal/adjust"
	"github.com/fotogo/gallery-core/internal/pix"
)

var adjustCmd = &cobra.Command{
	Use:   "adjust [photo]",
	Short: "Apply color and tone adjustments to a photo",
	Long: `Apply adjustment parameters to a single photo and write the result.
Parameters are given as a JSON object; anything unspecified stays
neutral. Example:

  gallery-core adjust photo.jpg --params '{"exposure": 0.5, "contrast": 20}' -o out.png`,
	Args: cobra.ExactArgs(1),
	RunE: runAdjust,
}

func init() {
	rootCmd.AddCommand(adjustCmd)

	adjustCmd.Flags().String("params", "{}", "Adjustment parameters as JSON")
	adjustCmd.Flags().StringP("output", "o", "", "Output file (default: <input>_adjusted.png)")
}

func runAdjust(cmd *cobra.Command, args []string) error {
	params := adjust.Neutral()
	if err := json.Unmarshal([]byte(mustGetString(cmd, "params")), &params); err != nil {
		return fmt.Errorf("parsing params: %w", err)
	}

	img, err := readPhotoFile(args[0])
	if err != nil {
		return err
	}

	out := mustGetString(cmd, "output")
	if out == "" {
		out = derivedName(args[0], "_adjusted")
	}
	return writePNGFile(out, adjust.Apply(img, params))
}

func readPhotoFile(path string) (*pix.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return pix.Decode(data)
}

func writePNGFile(path string, img *pix.Buffer) error {
	data, err := pix.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func derivedName(input, suffix string) string {
	base := input
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base + suffix + ".png"
}
