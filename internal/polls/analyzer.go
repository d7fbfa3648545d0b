package polls

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DivergenceSource reads the data the analyzer compares. Citizen totals
// count only votes not flagged as representative votes; stateCode ""
// means the whole nation.
type DivergenceSource interface {
	GetOfficial(ctx context.Context, voterID string) (*Official, error)
	GetPoll(ctx context.Context, pollID int64) (*Poll, error)
	RepPosition(ctx context.Context, pollID int64, voterID string) (Choice, error)
	PollCitizenTotals(ctx context.Context, pollID int64, stateCode string) (Tally, error)

	ActivePolls(ctx context.Context) ([]*Poll, error)
	RepPositions(ctx context.Context, voterID string) (map[int64]Choice, error)
	CitizenTotals(ctx context.Context, stateCode string) (map[int64]Tally, error)

	// Officials lists every representative ordered by state, then name
	Officials(ctx context.Context) ([]*Official, error)
	// RepTallies counts representative votes on active polls, by voter
	RepTallies(ctx context.Context) (map[string]Tally, error)
}

// RepRollCall summarizes a representative across all active polls
type RepRollCall struct {
	Official    *Official           `json:"official"`
	Scope       Scope               `json:"scope"`
	Reports     []*DivergenceReport `json:"reports"`
	ActivePolls int                 `json:"activePolls"`
	Responded   int                 `json:"responded"`
	Yea         int                 `json:"yea"`
	Nay         int                 `json:"nay"`
	Abstain     int                 `json:"abstain"`
	SilenceRate int                 `json:"silenceRate"`
}

// Analyzer computes divergence reports
type Analyzer struct {
	source DivergenceSource
}

// NewAnalyzer creates an analyzer over source
func NewAnalyzer(source DivergenceSource) *Analyzer {
	return &Analyzer{source: source}
}

func scopeCode(o *Official, scope Scope) string {
	if scope == ScopeNation {
		return ""
	}
	return o.State
}

// Divergence compares one representative with citizens on one poll
func (a *Analyzer) Divergence(ctx context.Context, repID string, pollID int64, scope Scope) (*DivergenceReport, error) {
	if repID == "" || pollID <= 0 {
		return nil, invalid(ErrMissingID, "")
	}
	rep, err := a.source.GetOfficial(ctx, repID)
	if err != nil {
		return nil, err
	}
	code := scopeCode(rep, scope)

	var (
		poll     *Poll
		position Choice
		totals   Tally
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		poll, err = a.source.GetPoll(gctx, pollID)
		return err
	})
	g.Go(func() error {
		var err error
		position, err = a.source.RepPosition(gctx, pollID, repID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = a.source.PollCitizenTotals(gctx, pollID, code)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newReport(poll, repID, position, scope, code, totals), nil
}

// RollCall reports a representative's position on every active poll
func (a *Analyzer) RollCall(ctx context.Context, repID string, scope Scope) (*RepRollCall, error) {
	if repID == "" {
		return nil, invalid(ErrMissingID, "")
	}
	rep, err := a.source.GetOfficial(ctx, repID)
	if err != nil {
		return nil, err
	}
	code := scopeCode(rep, scope)

	var (
		active    []*Poll
		positions map[int64]Choice
		totals    map[int64]Tally
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = a.source.ActivePolls(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		positions, err = a.source.RepPositions(gctx, repID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = a.source.CitizenTotals(gctx, code)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rep roll call: %w", err)
	}

	rc := &RepRollCall{
		Official:    rep,
		Scope:       scope,
		Reports:     make([]*DivergenceReport, 0, len(active)),
		ActivePolls: len(active),
	}
	for _, p := range active {
		pos := positions[p.ID]
		switch pos {
		case Yea:
			rc.Yea++
		case Nay:
			rc.Nay++
		case Abstain:
			rc.Abstain++
		}
		if pos != "" {
			rc.Responded++
		}
		rc.Reports = append(rc.Reports, newReport(p, repID, pos, scope, code, totals[p.ID]))
	}
	rc.SilenceRate = SilenceRate(rc.ActivePolls, rc.Responded)
	return rc, nil
}

// BoardFilter narrows the silence board; empty fields match everyone
type BoardFilter struct {
	State   string
	Chamber string
	Party   string
}

// RepStanding is one representative's response record on active polls
type RepStanding struct {
	Official    *Official `json:"official"`
	Responded   int       `json:"responded"`
	Yea         int       `json:"yea"`
	Nay         int       `json:"nay"`
	Abstain     int       `json:"abstain"`
	SilenceRate int       `json:"silenceRate"`
}

// SilenceBoard lists representatives in state and name order, each
// measured against the same active poll count
type SilenceBoard struct {
	ActivePolls int            `json:"activePolls"`
	Reps        []*RepStanding `json:"reps"`
}

// SilenceBoard reports every matching representative's responses
func (a *Analyzer) SilenceBoard(ctx context.Context, f BoardFilter) (*SilenceBoard, error) {
	f.State = strings.ToUpper(strings.TrimSpace(f.State))
	f.Party = strings.ToUpper(strings.TrimSpace(f.Party))
	f.Chamber = strings.ToLower(strings.TrimSpace(f.Chamber))
	if f.Chamber != "" && f.Chamber != "house" && f.Chamber != "senate" {
		return nil, invalid(ErrInvalidChamber, f.Chamber)
	}

	var (
		active    []*Poll
		officials []*Official
		tallies   map[string]Tally
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = a.source.ActivePolls(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		officials, err = a.source.Officials(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tallies, err = a.source.RepTallies(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("silence board: %w", err)
	}

	board := &SilenceBoard{ActivePolls: len(active), Reps: []*RepStanding{}}
	for _, o := range officials {
		if (f.State != "" && !strings.EqualFold(o.State, f.State)) ||
			(f.Party != "" && !strings.EqualFold(o.Party, f.Party)) ||
			(f.Chamber != "" && !strings.EqualFold(o.Chamber, f.Chamber)) {
			continue
		}
		t := tallies[o.VoterID]
		board.Reps = append(board.Reps, &RepStanding{
			Official:    o,
			Responded:   t.Total(),
			Yea:         t.Yea,
			Nay:         t.Nay,
			Abstain:     t.Abstain,
			SilenceRate: SilenceRate(len(active), t.Total()),
		})
	}
	return board, nil
}

func newReport(p *Poll, repID string, position Choice, scope Scope, code string, totals Tally) *DivergenceReport {
	gap, label := ComputeDivergence(position, totals)
	return &DivergenceReport{
		PollID:       p.ID,
		Question:     p.Question,
		RepVoterID:   repID,
		RepPosition:  position,
		Scope:        scope,
		ScopeCode:    code,
		CitizenTotal: totals,
		Gap:          gap,
		Label:        label,
	}
}
