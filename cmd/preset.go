package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fotogo/gallery-core/internal/adjust"
	"github.com/fotogo/gallery-core/internal/config"
	"github.com/fotogo/gallery-core/internal/cropper"
	"github.com/fotogo/gallery-core/internal/preset"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage adjustment presets",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	RunE:  runPresetList,
}

var presetCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a preset",
	Long: `Create a named preset from adjustment parameters and an optional
crop specification. Example:

  gallery-core preset create warm-portrait \
    --params '{"temperature": 30, "vibrance": 15}' \
    --crop '{"mode": "face", "aspect": 0.8, "zoom": 1.3}'`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetCreate,
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetDelete,
}

var presetApplyCmd = &cobra.Command{
	Use:   "apply [preset-id] [event-id]",
	Short: "Render an event gallery with a preset",
	Long: `Apply a preset to every photo in an event gallery. Renders run in
parallel; a photo that fails keeps its previous edited version.`,
	Args: cobra.ExactArgs(2),
	RunE: runPresetApply,
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetCreateCmd)
	presetCmd.AddCommand(presetDeleteCmd)
	presetCmd.AddCommand(presetApplyCmd)

	presetListCmd.Flags().String("owner", "cli", "Owner whose presets to list")

	presetCreateCmd.Flags().String("params", "{}", "Adjustment parameters as JSON")
	presetCreateCmd.Flags().String("crop", "", "Crop specification as JSON")
	presetCreateCmd.Flags().String("description", "", "Preset description")
	presetCreateCmd.Flags().String("owner", "cli", "Preset owner")

	presetDeleteCmd.Flags().String("owner", "cli", "Preset owner")
}

func runPresetList(cmd *cobra.Command, args []string) error {
	svc, err := buildServices(config.Load())
	if err != nil {
		return err
	}
	defer svc.close()

	presets, err := svc.presets.ListByOwner(mustGetString(cmd, "owner"))
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		fmt.Println("No presets found")
		return nil
	}
	for _, p := range presets {
		fmt.Printf("%4d  %-24s  %s\n", p.ID, p.Name, p.CreatedAt.Format("2006-01-02 15:04"))
		if p.Description != "" {
			fmt.Printf("      %s\n", p.Description)
		}
	}
	return nil
}

func runPresetCreate(cmd *cobra.Command, args []string) error {
	params := adjust.Neutral()
	if err := json.Unmarshal([]byte(mustGetString(cmd, "params")), &params); err != nil {
		return fmt.Errorf("parsing params: %w", err)
	}
	crop := cropper.None()
	if raw := mustGetString(cmd, "crop"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &crop); err != nil {
			return fmt.Errorf("parsing crop: %w", err)
		}
	}

	svc, err := buildServices(config.Load())
	if err != nil {
		return err
	}
	defer svc.close()

	p, err := svc.presets.Create(preset.Preset{
		Owner:       mustGetString(cmd, "owner"),
		Name:        args[0],
		Description: mustGetString(cmd, "description"),
		Params:      params,
		Crop:        crop,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created preset %d (%s)\n", p.ID, p.Name)
	return nil
}

func runPresetDelete(cmd *cobra.Command, args []string) error {
	var id int
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("invalid preset id %q", args[0])
	}

	svc, err := buildServices(config.Load())
	if err != nil {
		return err
	}
	defer svc.close()

	eventIDs, err := svc.gallery.Events()
	if err != nil {
		return err
	}
	for _, eventID := range eventIDs {
		used, err := svc.gallery.UsesPreset(eventID, id)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("preset %d: %w (event %s)", id, preset.ErrInUse, eventID)
		}
	}

	if err := svc.presets.Delete(id, mustGetString(cmd, "owner")); err != nil {
		return err
	}
	fmt.Printf("Deleted preset %d\n", id)
	return nil
}

func runPresetApply(cmd *cobra.Command, args []string) error {
	var id int
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("invalid preset id %q", args[0])
	}
	eventID := args[1]

	svc, err := buildServices(config.Load())
	if err != nil {
		return err
	}
	defer svc.close()

	p, err := svc.presets.Get(id)
	if err != nil {
		return err
	}

	records, err := svc.gallery.List(eventID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("Event %s has no photos\n", eventID)
		return nil
	}

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription(fmt.Sprintf("Applying %s", p.Name)),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	result, err := svc.gallery.ApplyPreset(cmd.Context(), eventID, nil, p, func(done, total int) {
		bar.Set(done)
	})
	if err != nil {
		return err
	}
	fmt.Println()

	fmt.Printf("Rendered %d photos with preset %s\n", len(result.Succeeded), p.Name)
	if len(result.Failed) > 0 {
		fmt.Printf("Failed: %d photos kept their previous render\n", len(result.Failed))
		for _, id := range result.Failed {
			fmt.Printf("  %s\n", id)
		}
	}
	return nil
}
