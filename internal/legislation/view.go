package legislation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// View narrows a digest to one slice of the vote window
type View string

const (
	ViewAll        View = ""
	ViewClose      View = "close"      // yea/nay margin of closeMargin or less, closest first
	ViewTiebreak   View = "tiebreak"   // decided by the Vice President
	ViewBipartisan View = "bipartisan" // both parties substantially in favor
)

// closeMargin is the widest margin a close vote may have
const closeMargin = 5

// ErrInvalidView is returned for an unknown view name
var ErrInvalidView = errors.New("view must be close, tiebreak or bipartisan")

// ParseView validates a view name; "" and "all" select every vote
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewAll, "all":
		return ViewAll, nil
	case ViewClose, ViewTiebreak, ViewBipartisan:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
}

// Includes reports whether a single roll call belongs to the view
func (v View) Includes(rc *RollCallVote) bool {
	switch v {
	case ViewClose:
		return rc.Tally.Yea > 0 && rc.Tally.Nay > 0 && rc.Margin() <= closeMargin
	case ViewTiebreak:
		return strings.Contains(rc.Result, "Vice President")
	case ViewBipartisan:
		return ClassifyTally(rc.Tally) == Bipartisan
	}
	return true
}

func (v View) filter(votes []*RollCallVote) []*RollCallVote {
	if v == ViewAll {
		return votes
	}
	out := make([]*RollCallVote, 0, len(votes))
	for _, rc := range votes {
		if v.Includes(rc) {
			out = append(out, rc)
		}
	}
	return out
}

// order re-sorts groups for views with their own ranking. Close votes run
// narrowest first; ties keep the newest-first order.
func (v View) order(groups []*VoteGroup) {
	if v != ViewClose {
		return
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Margin < groups[j].Margin
	})
}
