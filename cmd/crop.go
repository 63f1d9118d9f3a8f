package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fotogo/gallery-core/internal/config"
	"github.com/fotogo/gallery-core/internal/cropper"
)

var cropCmd = &cobra.Command{
	Use:   "crop [photo]",
	Short: "Crop a photo by rectangle or around its subject",
	Long: `Crop a single photo and write the result. The crop is given as a
JSON specification. Examples:

  gallery-core crop photo.jpg --spec '{"mode": "normal", "rect": {"x": 10, "y": 10, "w": 800, "h": 600}}'
  gallery-core crop photo.jpg --spec '{"mode": "face", "aspect": 1.0, "zoom": 1.5, "anchor": "face_eyes"}'

Anchored mode uses pose landmarks when a pose service is configured
and face detection when a cascade file is configured, falling back to
the image center.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)

	cropCmd.Flags().String("spec", "", "Crop specification as JSON")
	cropCmd.Flags().StringP("output", "o", "", "Output file (default: <input>_cropped.png)")
}

func runCrop(cmd *cobra.Command, args []string) error {
	spec := cropper.None()
	if raw := mustGetString(cmd, "spec"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &spec); err != nil {
			return fmt.Errorf("parsing spec: %w", err)
		}
	}

	svc, err := buildServices(config.Load())
	if err != nil {
		return err
	}
	defer svc.close()

	img, err := readPhotoFile(args[0])
	if err != nil {
		return err
	}

	out := mustGetString(cmd, "output")
	if out == "" {
		out = derivedName(args[0], "_cropped")
	}
	return writePNGFile(out, svc.crops.Crop(cmd.Context(), img, spec))
}
