package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peoplesbranch/scorecard/internal/polls"
)

var rollcallScope string

var rollcallCmd = &cobra.Command{
	Use:   "rollcall [rep-voter-id]",
	Short: "Compare a representative with constituents on every active threat poll",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := polls.ParseScope(rollcallScope)
		if err != nil {
			return err
		}

		rc, err := svc.analyzer.RollCall(cmd.Context(), args[0], scope)
		if err != nil {
			return fmt.Errorf("roll call failed: %w", err)
		}

		cmd.Printf("%s (%s-%s)\n", rc.Official.FullName, rc.Official.Party, rc.Official.State)
		cmd.Printf("Active polls: %d  responded: %d  silence rate: %d%%\n", rc.ActivePolls, rc.Responded, rc.SilenceRate)
		for _, r := range rc.Reports {
			pos := string(r.RepPosition)
			if pos == "" {
				pos = "-"
			}
			cmd.Printf("  #%d  %-7s  %-7s  gap %3d  %s\n", r.PollID, pos, r.Label, r.Gap, r.Question)
		}
		return nil
	},
}

func init() {
	rollcallCmd.Flags().StringVar(&rollcallScope, "scope", "state", "state or nation")
	rootCmd.AddCommand(rollcallCmd)
}
