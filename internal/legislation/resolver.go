package legislation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/peoplesbranch/scorecard/internal/metrics"
)

// maxAmendmentDepth bounds "Amdt. N to Amdt. M to ..." recursion
const maxAmendmentDepth = 4

// noShortTitle is the catalog placeholder that never counts as a title
const noShortTitle = "No short title on file"

// rule is one (predicate, extractor) pair of the citation dispatch
type rule struct {
	name    string
	pattern *regexp.Regexp
	extract func(m []string, depth int) (Subject, bool)
}

func billRule(name, billType, pattern string) rule {
	return rule{
		name:    name,
		pattern: regexp.MustCompile(pattern),
		extract: func(m []string, _ int) (Subject, bool) {
			n, ok := atoi(m[1])
			if !ok {
				return Subject{}, false
			}
			return NewBill(billType, n), true
		},
	}
}

// rules is evaluated first-match-wins. Order matters: "S.J.Res. 5" also
// contains "Res. 5", and any bill citation in an amendment question wins
// over the amendment itself. Assigned in init: the amendment rule recurses
// through matchTarget.
var rules []rule

func init() {
	rules = []rule{
		billRule("senate joint resolution", BillSJRes, `(?i)S\.J\.Res\.\s*(\d+)`),
		billRule("house joint resolution", BillHJRes, `(?i)H\.J\.Res\.\s*(\d+)`),
		billRule("senate concurrent resolution", BillSConRes, `(?i)S\.Con\.Res\.\s*(\d+)`),
		billRule("house concurrent resolution", BillHConRes, `(?i)H\.Con\.Res\.\s*(\d+)`),
		billRule("senate resolution", BillSRes, `(?i)S\.Res\.\s*(\d+)`),
		billRule("house resolution", BillHRes, `(?i)H\.Res\.\s*(\d+)`),
		billRule("house bill", BillHR, `H\.R\.\s*(\d+)`),
		billRule("senate bill", BillS, `\bS\.\s+(\d+)`),
		{
			name:    "nomination",
			pattern: regexp.MustCompile(`PN(\d+)`),
			extract: func(m []string, _ int) (Subject, bool) {
				n, ok := atoi(m[1])
				if !ok {
					return Subject{}, false
				}
				return NewNomination(n), true
			},
		},
		{
			name:    "amendment",
			pattern: regexp.MustCompile(`(?i)(?:\b([SH])\.\s*)?Amdt\.\s*(\d+)\s+to\s+(.+)`),
			extract: func(m []string, depth int) (Subject, bool) {
				n, ok := atoi(m[2])
				if !ok {
					return Subject{}, false
				}
				var target *Subject
				if depth < maxAmendmentDepth {
					if t, ok := matchTarget(m[3], depth+1); ok {
						target = &t
					}
				}
				s := NewAmendment(n, target)
				s.chamberPrefix = strings.ToUpper(m[1])
				return s, true
			},
		},
	}
}

// bareAmendmentPattern matches a target that is itself an amendment with no further "to"
var bareAmendmentPattern = regexp.MustCompile(`(?i)^\s*(?:\b([SH])\.\s*)?Amdt\.\s*(\d+)`)

// Unresolved label fallbacks, applied in order
var (
	parentheticalPattern = regexp.MustCompile(`\(([^)]+)\)`)
	amendmentWordPattern = regexp.MustCompile(`Amendment`)
)

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func matchRules(text string, depth int) (Subject, bool) {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if s, ok := r.extract(m, depth); ok {
			return s, true
		}
	}
	return Subject{}, false
}

// matchTarget resolves the text after "Amdt. N to"
func matchTarget(text string, depth int) (Subject, bool) {
	if s, ok := matchRules(text, depth); ok {
		return s, true
	}
	if m := bareAmendmentPattern.FindStringSubmatch(text); m != nil {
		if n, ok := atoi(m[2]); ok {
			s := NewAmendment(n, nil)
			s.chamberPrefix = strings.ToUpper(m[1])
			return s, true
		}
	}
	return Subject{}, false
}

// subjectFromHint maps a structured hint onto a subject when it is well formed
func subjectFromHint(h *SubjectHint) (Subject, bool) {
	if h == nil || h.Number <= 0 {
		return Subject{}, false
	}
	t := strings.ToLower(strings.TrimSpace(h.Type))
	switch {
	case billTypes[t]:
		return NewBill(t, h.Number), true
	case t == hintNomination:
		return NewNomination(h.Number), true
	}
	return Subject{}, false
}

// ResolveSubject computes the legislative subject of a vote. It uses the
// structured hint when present and falls back to citation parsing of the
// question. It is pure: the same question and hint always give the same subject.
func ResolveSubject(v *RollCallVote) Subject {
	if s, ok := subjectFromHint(v.Hint); ok {
		return s
	}
	if s, ok := matchRules(v.Question, 0); ok {
		return s
	}
	return NewUnresolved(v.Question)
}

// Resolution is a resolved subject plus its display metadata
type Resolution struct {
	Subject   Subject `json:"subject"`
	Label     string  `json:"label"`
	Link      string  `json:"link,omitempty"`
	FullTitle string  `json:"fullTitle,omitempty"`
	Action    string  `json:"action"`
}

// Resolver enriches votes with subjects and catalog titles
type Resolver struct {
	metrics *metrics.Metrics
}

// NewResolver creates a resolver; m may be nil
func NewResolver(m *metrics.Metrics) *Resolver {
	return &Resolver{metrics: m}
}

// Resolve resolves one vote, reading titles through memo. A catalog miss
// or failure only shortens the label; the subject stays resolved.
func (r *Resolver) Resolve(ctx context.Context, memo *Memo, v *RollCallVote) Resolution {
	s := ResolveSubject(v)
	r.metrics.IncResolution(string(s.Kind))

	res := Resolution{
		Subject: s,
		Link:    s.Link(),
		Action:  ProceduralAction(v.Question),
	}

	switch s.Kind {
	case KindBill, KindNomination:
		res.Label, res.FullTitle = describe(ctx, memo, v.Congress, s, 100)
	case KindAmendment:
		res.Label, res.FullTitle = describe(ctx, memo, v.Congress, s, 80)
	default:
		res.Label = unresolvedLabel(v)
	}
	return res
}

// ResolveBatch resolves votes against a fresh memo that is discarded on return
func (r *Resolver) ResolveBatch(ctx context.Context, catalog Catalog, votes []*RollCallVote) []EnrichedVote {
	memo := NewMemo(catalog, r.metrics)
	out := make([]EnrichedVote, 0, len(votes))
	for _, v := range votes {
		out = append(out, EnrichedVote{Vote: v, Resolution: r.Resolve(ctx, memo, v)})
	}
	return out
}

// describe builds "<citation>: <title>" for bills and nominations.
// Nominations always truncate at 80 characters.
func describe(ctx context.Context, memo *Memo, congress int, s Subject, titleLen int) (label, full string) {
	switch s.Kind {
	case KindBill:
		bt := memo.Bill(ctx, congress, s.BillType, s.Number)
		if bt == nil {
			return s.Citation(), ""
		}
		short := bt.ShortTitle
		if short == "" || short == noShortTitle {
			short = truncate(bt.Title, titleLen)
		}
		if short == "" {
			return s.Citation(), bt.Title
		}
		return s.Citation() + ": " + short, bt.Title
	case KindNomination:
		desc := memo.Nomination(ctx, congress, s.Number)
		if desc == "" {
			return "Nomination " + s.Citation(), ""
		}
		return s.Citation() + ": " + truncate(desc, 80), desc
	case KindAmendment:
		if s.Target == nil {
			return s.Citation(), ""
		}
		inner, full := describe(ctx, memo, congress, *s.Target, titleLen)
		return fmt.Sprintf("Amdt. %d to %s", s.Number, inner), full
	}
	return s.Citation(), ""
}

// unresolvedLabel applies the display fallbacks for votes without a citation
func unresolvedLabel(v *RollCallVote) string {
	q := v.Question
	if m := parentheticalPattern.FindStringSubmatch(q); m != nil && m[1] != noShortTitle {
		return m[1]
	}
	if amendmentWordPattern.MatchString(q) {
		label := strings.TrimSpace(v.Chamber.Title() + " Amendment Vote")
		if v.RollCall > 0 {
			label += fmt.Sprintf(" (Roll Call #%d)", v.RollCall)
		}
		return label
	}
	return q
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
