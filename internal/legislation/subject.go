package legislation

import (
	"fmt"
	"strings"
)

// SubjectKind discriminates LegislativeSubject variants
type SubjectKind string

const (
	KindBill       SubjectKind = "bill"
	KindNomination SubjectKind = "nomination"
	KindAmendment  SubjectKind = "amendment"
	KindUnresolved SubjectKind = "unresolved"
)

// Bill and resolution type codes, as used by the title catalog
const (
	BillSJRes   = "sjres"
	BillHJRes   = "hjres"
	BillSConRes = "sconres"
	BillHConRes = "hconres"
	BillSRes    = "sres"
	BillHRes    = "hres"
	BillHR      = "hr"
	BillS       = "s"
)

// hintNomination is the structured hint type for presidential nominations
const hintNomination = "pn"

var billTypes = map[string]bool{
	BillSJRes: true, BillHJRes: true,
	BillSConRes: true, BillHConRes: true,
	BillSRes: true, BillHRes: true,
	BillHR: true, BillS: true,
}

// Subject is the computed identity of what a roll call concerns.
// Exactly one variant is populated, selected by Kind.
type Subject struct {
	Kind SubjectKind `json:"kind"`

	// Bill
	BillType string `json:"billType,omitempty"`

	// Bill, Nomination and Amendment number
	Number int `json:"number,omitempty"`

	// Amendment target; nil when the amended measure could not be identified
	Target *Subject `json:"target,omitempty"`

	// Unresolved
	RawText string `json:"rawText,omitempty"`

	// Amendment chamber prefix ("S", "H") as cited
	chamberPrefix string
}

// NewBill builds a Bill subject
func NewBill(billType string, number int) Subject {
	return Subject{Kind: KindBill, BillType: strings.ToLower(billType), Number: number}
}

// NewNomination builds a Nomination subject
func NewNomination(number int) Subject {
	return Subject{Kind: KindNomination, Number: number}
}

// NewAmendment builds an Amendment subject; target may be nil
func NewAmendment(number int, target *Subject) Subject {
	return Subject{Kind: KindAmendment, Number: number, Target: target}
}

// NewUnresolved builds an Unresolved subject
func NewUnresolved(raw string) Subject {
	return Subject{Kind: KindUnresolved, RawText: raw}
}

// Resolved reports whether the subject carries a canonical identity
func (s Subject) Resolved() bool {
	return s.Kind != KindUnresolved && s.Kind != ""
}

// Key returns the subject key within one congress. Amendments share the
// key of the measure they amend when that measure resolved. Unresolved
// subjects and amendments cited without a chamber return "" and callers
// substitute a per-vote key.
func (s Subject) Key() string {
	switch s.Kind {
	case KindBill:
		return fmt.Sprintf("bill:%s-%d", s.BillType, s.Number)
	case KindNomination:
		return fmt.Sprintf("nom:%d", s.Number)
	case KindAmendment:
		if s.Target != nil && s.Target.Resolved() {
			return s.Target.Key()
		}
		if s.chamberPrefix == "" {
			return ""
		}
		return fmt.Sprintf("amdt:%s-%d", strings.ToLower(s.chamberPrefix), s.Number)
	}
	return ""
}

// Citation is the bare citation label ("HR 1", "PN12", "Senate Amdt. 7")
func (s Subject) Citation() string {
	switch s.Kind {
	case KindBill:
		return fmt.Sprintf("%s %d", strings.ToUpper(s.BillType), s.Number)
	case KindNomination:
		return fmt.Sprintf("PN%d", s.Number)
	case KindAmendment:
		switch s.chamberPrefix {
		case "S":
			return fmt.Sprintf("Senate Amdt. %d", s.Number)
		case "H":
			return fmt.Sprintf("House Amdt. %d", s.Number)
		}
		return fmt.Sprintf("Amdt. %d", s.Number)
	}
	return s.RawText
}

// Link is the detail-view query for the subject, "" when there is none
func (s Subject) Link() string {
	switch s.Kind {
	case KindBill:
		return fmt.Sprintf("?bill=%s-%d", s.BillType, s.Number)
	case KindNomination:
		return fmt.Sprintf("?nom=%d", s.Number)
	case KindAmendment:
		if s.Target != nil {
			return s.Target.Link()
		}
	}
	return ""
}

// Equal compares subjects structurally, following amendment targets
func (s Subject) Equal(o Subject) bool {
	if s.Kind != o.Kind || s.BillType != o.BillType || s.Number != o.Number ||
		s.RawText != o.RawText || s.chamberPrefix != o.chamberPrefix {
		return false
	}
	if s.Target == nil || o.Target == nil {
		return s.Target == nil && o.Target == nil
	}
	return s.Target.Equal(*o.Target)
}
