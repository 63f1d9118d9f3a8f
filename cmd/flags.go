package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Flags are registered in init(), so a failed lookup is a programming
// mistake, not a user error.
func checkFlag(name string, err error) {
	if err != nil {
		panic(fmt.Sprintf("flag --%s: %v", name, err))
	}
}

func mustGetString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	checkFlag(name, err)
	return v
}

func mustGetInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	checkFlag(name, err)
	return v
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	checkFlag(name, err)
	return v
}

func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	v, err := cmd.Flags().GetFloat64(name)
	checkFlag(name, err)
	return v
}

// resolveThreshold returns the flag value when it was set on the
// command line, the fallback otherwise. Zero is a legal threshold
// (keeps everything), so "unset" is decided by flag presence, not
// value.
func resolveThreshold(cmd *cobra.Command, name string, fallback float64) float64 {
	if cmd.Flags().Changed(name) {
		return mustGetFloat64(cmd, name)
	}
	return fallback
}
