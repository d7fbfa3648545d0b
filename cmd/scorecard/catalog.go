package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the title catalog cache",
}

var catalogInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop cached bill and nomination titles",
	Long: `Starts a new catalog cache generation. Run after refreshing
tracked_bills or nominations so digests pick up the new titles.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if svc.cache == nil {
			return errNoCache
		}
		gen, err := svc.cache.Invalidate(cmd.Context())
		if err != nil {
			return fmt.Errorf("invalidate failed: %w", err)
		}
		cmd.Printf("Catalog cache generation is now %d\n", gen)
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogInvalidateCmd)
	rootCmd.AddCommand(catalogCmd)
}
