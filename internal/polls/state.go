package polls

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Choice is a position on a threat poll
type Choice string

const (
	Yea     Choice = "yea"
	Nay     Choice = "nay"
	Abstain Choice = "abstain"
)

// ParseChoice validates a choice, case-insensitively
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(strings.ToLower(strings.TrimSpace(s))); c {
	case Yea, Nay, Abstain:
		return c, nil
	}
	return "", invalid(ErrInvalidChoice, s)
}

// VoteState is the ledger state of one (poll_id, voter_id) pair
type VoteState int

const (
	NoVote VoteState = iota
	VotedYea
	VotedNay
	VotedAbstain
)

// StateOf maps a persisted choice to its state; "" is NoVote
func StateOf(c Choice) VoteState {
	switch c {
	case Yea:
		return VotedYea
	case Nay:
		return VotedNay
	case Abstain:
		return VotedAbstain
	}
	return NoVote
}

// Choice returns the recorded choice, "" for NoVote
func (s VoteState) Choice() Choice {
	switch s {
	case VotedYea:
		return Yea
	case VotedNay:
		return Nay
	case VotedAbstain:
		return Abstain
	}
	return ""
}

func (s VoteState) String() string {
	if s == NoVote {
		return "none"
	}
	return string(s.Choice())
}

// MarshalJSON encodes the state as "none", "yea", "nay" or "abstain"
func (s VoteState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the encodings MarshalJSON produces
func (s *VoteState) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "none" {
		*s = NoVote
		return nil
	}
	c, err := ParseChoice(raw)
	if err != nil {
		return fmt.Errorf("invalid vote state %q", raw)
	}
	*s = StateOf(c)
	return nil
}

// Op is the row operation a transition applies
type Op string

const (
	OpInsert Op = "insert"
	OpDelete Op = "delete"
	OpUpdate Op = "update"
)

// Tally holds per-choice counts
type Tally struct {
	Yea     int `json:"yea"`
	Nay     int `json:"nay"`
	Abstain int `json:"abstain"`
}

// Add applies a delta
func (t Tally) Add(d Tally) Tally {
	return Tally{Yea: t.Yea + d.Yea, Nay: t.Nay + d.Nay, Abstain: t.Abstain + d.Abstain}
}

// Total sums all choices
func (t Tally) Total() int {
	return t.Yea + t.Nay + t.Abstain
}

func unit(c Choice, n int) Tally {
	switch c {
	case Yea:
		return Tally{Yea: n}
	case Nay:
		return Tally{Nay: n}
	case Abstain:
		return Tally{Abstain: n}
	}
	return Tally{}
}

// Transition is one step of the toggle state machine
type Transition struct {
	From  VoteState
	To    VoteState
	Op    Op
	Delta Tally
}

// Next applies a cast of choice to current:
//
//	NoVote    + cast(c)  -> Voted(c)   insert, +1 c
//	Voted(c)  + cast(c)  -> NoVote     delete, -1 c
//	Voted(c)  + cast(c') -> Voted(c')  update, -1 c, +1 c'
func Next(current VoteState, choice Choice) Transition {
	want := StateOf(choice)
	switch {
	case current == NoVote:
		return Transition{From: current, To: want, Op: OpInsert, Delta: unit(choice, 1)}
	case current == want:
		return Transition{From: current, To: NoVote, Op: OpDelete, Delta: unit(choice, -1)}
	default:
		return Transition{
			From:  current,
			To:    want,
			Op:    OpUpdate,
			Delta: unit(current.Choice(), -1).Add(unit(choice, 1)),
		}
	}
}
