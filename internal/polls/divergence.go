package polls

import "strings"

// Scope selects the citizen population a representative is compared against
type Scope string

const (
	ScopeState  Scope = "state"
	ScopeNation Scope = "nation"
)

// ParseScope validates a scope; "" defaults to state
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ScopeState, nil
	case ScopeState, ScopeNation:
		return sc, nil
	}
	return "", invalid(ErrInvalidScope, s)
}

// Divergence labels
const (
	LabelAligned = "Aligned"
	LabelGap     = "gap"
	LabelSilence = "silence"
)

// Official is representative metadata
type Official struct {
	VoterID  string `json:"voterId"`
	FullName string `json:"fullName"`
	Party    string `json:"party"`
	State    string `json:"state"`
	Chamber  string `json:"chamber"`
}

// DivergenceReport compares a representative's position with citizen sentiment
type DivergenceReport struct {
	PollID       int64  `json:"pollId"`
	Question     string `json:"question"`
	RepVoterID   string `json:"repVoterId"`
	RepPosition  Choice `json:"repPosition,omitempty"`
	Scope        Scope  `json:"scope"`
	ScopeCode    string `json:"scopeCode,omitempty"`
	CitizenTotal Tally  `json:"citizenTotals"`
	Gap          int    `json:"gap"`
	Label        string `json:"label"`
}

// ComputeDivergence scores a rep position ("" when none was recorded)
// against citizen totals. A nay is the aligned position and scores 0.
// Otherwise the gap is the citizen nay share in whole percent.
func ComputeDivergence(repPosition Choice, citizens Tally) (gap int, label string) {
	if repPosition == Nay {
		return 0, LabelAligned
	}
	label = LabelGap
	if repPosition == "" {
		label = LabelSilence
	}
	return percent(citizens.Nay, citizens.Total()), label
}

// SilenceRate is the share of active polls without a recorded rep
// position, in whole percent. With no active polls the rate is 100.
func SilenceRate(active, responded int) int {
	if active <= 0 {
		return 100
	}
	return percent(active-responded, active)
}

// percent rounds part/whole*100 half up; 0 when whole is 0
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
