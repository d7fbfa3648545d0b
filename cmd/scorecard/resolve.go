package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [vote-id]",
	Short: "Show the subject a roll call resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := svc.digests.ResolveVote(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("resolve failed: %w", err)
		}

		cmd.Printf("Question: %s\n", ev.Vote.Question)
		cmd.Printf("Subject:  %s\n", ev.Subject.Kind)
		if key := ev.Subject.Key(); key != "" {
			cmd.Printf("Key:      %s\n", key)
		}
		cmd.Printf("Label:    %s\n", ev.Label)
		if ev.Link != "" {
			cmd.Printf("Link:     %s\n", ev.Link)
		}
		cmd.Printf("Action:   %s\n", ev.Action)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
