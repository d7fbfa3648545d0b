package legislation

import (
	"fmt"
	"sort"
	"time"
)

// EnrichedVote is a roll call paired with its resolution
type EnrichedVote struct {
	Vote *RollCallVote `json:"vote"`
	Resolution
}

// GroupKey is the congress-qualified subject key, or a per-vote key when
// the subject has none. Numbers restart each congress, so HR 1 of two
// congresses never share a group.
func (e EnrichedVote) GroupKey() string {
	if k := e.Subject.Key(); k != "" {
		return fmt.Sprintf("%d/%s", e.Vote.Congress, k)
	}
	return "vote:" + e.Vote.ID
}

// VoteGroup collects every roll call on one subject. Headline fields come
// from the latest final-action vote when one is tagged, else the latest vote.
type VoteGroup struct {
	Key       string         `json:"key"`
	Subject   Subject        `json:"subject"`
	Label     string         `json:"label"`
	Link      string         `json:"link,omitempty"`
	FullTitle string         `json:"fullTitle,omitempty"`
	Votes     []EnrichedVote `json:"votes"`

	Headline       *RollCallVote  `json:"-"`
	Chamber        Chamber        `json:"chamber"`
	Tally          Tally          `json:"tally"`
	Result         string         `json:"result"`
	Action         string         `json:"action"`
	Passed         bool           `json:"passed"`
	Margin         int            `json:"margin"`
	FirstDate      time.Time      `json:"firstDate"`
	LastDate       time.Time      `json:"lastDate"`
	Classification Classification `json:"classification"`

	measureLabel bool
}

// canonical unwraps amendments down to the measure they amend
func canonical(s Subject) Subject {
	if s.Kind == KindAmendment && s.Target != nil && s.Target.Resolved() {
		return canonical(*s.Target)
	}
	return s
}

// GroupBySubject collapses votes sharing a subject. Every input vote lands
// in exactly one group. Groups are returned newest headline first.
func GroupBySubject(votes []EnrichedVote) []*VoteGroup {
	ordered := make([]EnrichedVote, len(votes))
	copy(ordered, votes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return before(ordered[i].Vote, ordered[j].Vote)
	})

	acc := make(map[string]*VoteGroup)
	var keys []string
	for _, ev := range ordered {
		key := ev.GroupKey()
		g, ok := acc[key]
		if !ok {
			g = &VoteGroup{
				Key:       key,
				Subject:   canonical(ev.Subject),
				Label:     ev.Label,
				Link:      ev.Link,
				FirstDate: ev.Vote.Date,
				LastDate:  ev.Vote.Date,

				measureLabel: ev.Subject.Kind != KindAmendment,
			}
			acc[key] = g
			keys = append(keys, key)
		}
		g.add(ev)
	}

	groups := make([]*VoteGroup, 0, len(keys))
	for _, key := range keys {
		g := acc[key]
		g.finish()
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return before(groups[j].Headline, groups[i].Headline)
	})
	return groups
}

func (g *VoteGroup) add(ev EnrichedVote) {
	g.Votes = append(g.Votes, ev)

	if ev.Vote.Date.Before(g.FirstDate) {
		g.FirstDate = ev.Vote.Date
	}
	if ev.Vote.Date.After(g.LastDate) {
		g.LastDate = ev.Vote.Date
	}
	// Prefer the measure's own label over an amendment's
	if !g.measureLabel && ev.Subject.Kind != KindAmendment {
		g.Label = ev.Label
		g.measureLabel = true
	}
	if g.FullTitle == "" {
		g.FullTitle = ev.FullTitle
	}
	if g.Link == "" {
		g.Link = ev.Link
	}
}

// finish picks the headline vote and copies its tallies
func (g *VoteGroup) finish() {
	var latest, latestFinal *EnrichedVote
	for i := range g.Votes {
		ev := &g.Votes[i]
		if latest == nil || before(latest.Vote, ev.Vote) {
			latest = ev
		}
		if ev.Vote.FinalAction && (latestFinal == nil || before(latestFinal.Vote, ev.Vote)) {
			latestFinal = ev
		}
	}
	head := latest
	if latestFinal != nil {
		head = latestFinal
	}

	g.Headline = head.Vote
	g.Chamber = head.Vote.Chamber
	g.Tally = head.Vote.Tally
	g.Result = head.Vote.Result
	g.Action = head.Action
	g.Passed = head.Vote.Passed()
	g.Margin = head.Vote.Margin()
	g.Classification = Classify(g)
}
