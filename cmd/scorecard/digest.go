package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/peoplesbranch/scorecard/internal/legislation"
)

var (
	digestCongress int
	digestChamber  string
	digestSince    string
	digestLimit    int
	digestView     string
	digestJSON     bool
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Group recent roll calls by subject",
	Long: `Lists roll-call votes, resolves each to its legislative subject and
prints one classified record per subject (party_line, bipartisan or mixed).
--view narrows the window to close votes (margin of 5 or less, closest
first), Vice President tiebreakers or bipartisan votes.`,
	Args: cobra.NoArgs,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().IntVar(&digestCongress, "congress", 0, "congress number (default from CONGRESS)")
	digestCmd.Flags().StringVar(&digestChamber, "chamber", "", "house or senate")
	digestCmd.Flags().StringVar(&digestSince, "since", "", "earliest vote date (YYYY-MM-DD)")
	digestCmd.Flags().StringVar(&digestView, "view", "", "close, tiebreak or bipartisan")
	digestCmd.Flags().IntVarP(&digestLimit, "limit", "n", 500, "maximum number of votes")
	digestCmd.Flags().BoolVar(&digestJSON, "json", false, "output groups as JSON")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, _ []string) error {
	filters := &legislation.ListFilters{Limit: digestLimit}

	congress := digestCongress
	if congress == 0 {
		congress = svc.congress
	}
	if congress > 0 {
		filters.Congress = &congress
	}

	switch c := legislation.Chamber(digestChamber); c {
	case "":
	case legislation.ChamberHouse, legislation.ChamberSenate:
		filters.Chamber = &c
	default:
		return fmt.Errorf("invalid chamber %q (use house or senate)", digestChamber)
	}

	view, err := legislation.ParseView(digestView)
	if err != nil {
		return err
	}
	filters.View = view

	if digestSince != "" {
		since, err := time.Parse(time.DateOnly, digestSince)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		filters.Since = &since
	}

	groups, err := svc.digests.Digest(cmd.Context(), filters)
	if err != nil {
		return fmt.Errorf("digest failed: %w", err)
	}

	if digestJSON {
		data, err := json.MarshalIndent(groups, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal groups: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(groups) == 0 {
		cmd.Println("No votes found.")
		return nil
	}
	for _, g := range groups {
		// Format: date  chamber  label  (action, result yea-nay) classification [n votes]
		cmd.Printf("%s  %-6s  %s\n", g.LastDate.Format(time.DateOnly), g.Chamber.Title(), g.Label)
		cmd.Printf("            %s, %s %d-%d  %s  [%d votes]\n",
			g.Action, g.Result, g.Tally.Yea, g.Tally.Nay, g.Classification, len(g.Votes))
	}
	return nil
}
