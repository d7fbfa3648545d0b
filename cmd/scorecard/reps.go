package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peoplesbranch/scorecard/internal/polls"
)

var (
	repsState   string
	repsChamber string
	repsParty   string
)

var repsCmd = &cobra.Command{
	Use:   "reps",
	Short: "List every representative's response record on active threat polls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		board, err := svc.analyzer.SilenceBoard(cmd.Context(), polls.BoardFilter{
			State:   repsState,
			Chamber: repsChamber,
			Party:   repsParty,
		})
		if err != nil {
			return fmt.Errorf("silence board failed: %w", err)
		}

		cmd.Printf("Active polls: %d\n", board.ActivePolls)
		for _, r := range board.Reps {
			o := r.Official
			cmd.Printf("  %-2s  %-24s  %-1s  %-6s  %d/%d  silence %3d%%  yea %d  nay %d\n",
				o.State, o.FullName, o.Party, o.Chamber, r.Responded, board.ActivePolls, r.SilenceRate, r.Yea, r.Nay)
		}
		return nil
	},
}

func init() {
	repsCmd.Flags().StringVar(&repsState, "state", "", "two-letter state code")
	repsCmd.Flags().StringVar(&repsChamber, "chamber", "", "house or senate")
	repsCmd.Flags().StringVar(&repsParty, "party", "", "party code (R, D, I)")
	rootCmd.AddCommand(repsCmd)
}
