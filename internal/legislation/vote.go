package legislation

import (
	"strings"
	"time"
)

// Chamber identifies the house of Congress that held a roll call
type Chamber string

const (
	ChamberHouse  Chamber = "house"
	ChamberSenate Chamber = "senate"
)

// Title returns the display form ("House", "Senate")
func (c Chamber) Title() string {
	switch c {
	case ChamberHouse:
		return "House"
	case ChamberSenate:
		return "Senate"
	}
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// PartyTally is one party's recorded yea/nay split
type PartyTally struct {
	Yea int `json:"yea"`
	Nay int `json:"nay"`
}

// Participants counts members who recorded yea or nay
func (p PartyTally) Participants() int {
	return p.Yea + p.Nay
}

// Tally holds overall and per-party counts for one roll call
type Tally struct {
	Yea         int        `json:"yea"`
	Nay         int        `json:"nay"`
	Present     int        `json:"present"`
	Absent      int        `json:"absent"`
	Republican  PartyTally `json:"republican"`
	Democrat    PartyTally `json:"democrat"`
	Independent PartyTally `json:"independent"`
}

// SubjectHint is the structured bill/nomination identifier some records carry
type SubjectHint struct {
	Type   string `json:"type"`
	Number int    `json:"number"`
}

// RollCallVote is an immutable roll-call record written by external ingestion
type RollCallVote struct {
	ID          string       `json:"id"`
	Chamber     Chamber      `json:"chamber"`
	Congress    int          `json:"congress"`
	Session     int          `json:"session"`
	RollCall    int          `json:"rollCall"`
	Date        time.Time    `json:"date"`
	Question    string       `json:"question"`
	Result      string       `json:"result"`
	Tally       Tally        `json:"tally"`
	Hint        *SubjectHint `json:"hint,omitempty"`
	FinalAction bool         `json:"finalAction"`
}

// Passed reports whether the result records passage, agreement or confirmation
func (v *RollCallVote) Passed() bool {
	r := v.Result
	return strings.Contains(r, "Passed") || strings.Contains(r, "Agreed") || strings.Contains(r, "Confirmed")
}

// Margin is the absolute yea/nay difference
func (v *RollCallVote) Margin() int {
	d := v.Tally.Yea - v.Tally.Nay
	if d < 0 {
		return -d
	}
	return d
}

// before orders votes by date, then roll-call number, then ID
func before(a, b *RollCallVote) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.RollCall != b.RollCall {
		return a.RollCall < b.RollCall
	}
	return a.ID < b.ID
}
