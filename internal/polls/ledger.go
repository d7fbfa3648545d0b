package polls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/peoplesbranch/scorecard/internal/db"
	"github.com/peoplesbranch/scorecard/internal/metrics"
)

// PointsAwarder is the civic points ledger. Callers guarantee at most one
// call per brand-new vote, so implementations need not be idempotent.
type PointsAwarder interface {
	Award(ctx context.Context, voterID, actionKey, subjectType, subjectID string) (int, error)
}

// SubjectThreatPoll is the points subject type for poll votes
const SubjectThreatPoll = "threat_poll"

// LedgerConfig tunes castVote
type LedgerConfig struct {
	Action      string        // points action key for a first-time vote
	Timeout     time.Duration // per-cast bound when the caller set no deadline
	MaxAttempts int           // attempts before a lost race is reported as a failure
}

// CastResult is the outcome of one castVote
type CastResult struct {
	PollID       int64     `json:"pollId"`
	State        VoteState `json:"state"`
	Op           Op        `json:"op"`
	Tally        Tally     `json:"tally"`
	PointsEarned int       `json:"pointsEarned"`
}

// Ledger applies toggle semantics to (poll_id, voter_id) positions
type Ledger struct {
	store   Store
	awarder PointsAwarder
	cfg     LedgerConfig
	metrics *metrics.Metrics
}

// NewLedger creates a ledger; awarder and m may be nil
func NewLedger(store Store, awarder PointsAwarder, cfg LedgerConfig, m *metrics.Metrics) *Ledger {
	if cfg.Action == "" {
		cfg.Action = "poll_voted"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Ledger{store: store, awarder: awarder, cfg: cfg, metrics: m}
}

// CastVote records choice for voter on poll. Casting the current choice
// again withdraws it; casting a different choice switches it. The first
// ever exit from NoVote for a pair triggers exactly one points award.
func (l *Ledger) CastVote(ctx context.Context, pollID int64, voterID string, choice string, isRepVote bool) (*CastResult, error) {
	start := time.Now()
	defer l.metrics.ObserveCast(start)

	if pollID <= 0 || voterID == "" {
		return nil, invalid(ErrMissingID, "")
	}
	c, err := ParseChoice(choice)
	if err != nil {
		return nil, err
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	var (
		res      *CastResult
		awardDue bool
	)
	for attempt := 1; ; attempt++ {
		res, awardDue, err = l.attempt(ctx, pollID, voterID, c, isRepVote)
		if err == nil {
			break
		}
		if !retryable(err) || attempt >= l.cfg.MaxAttempts {
			if errors.Is(err, errLostRace) {
				err = fmt.Errorf("cast poll %d: %w", pollID, err)
			}
			return nil, err
		}
		l.metrics.IncCastRetry()
		slog.Debug("Retrying poll cast", "poll_id", pollID, "voter_id", voterID, "attempt", attempt, "error", err)
	}

	l.metrics.IncCast(string(res.Op))
	if awardDue {
		res.PointsEarned = l.award(ctx, pollID, voterID)
	}
	return res, nil
}

// attempt runs one read-branch-write inside a single transaction
func (l *Ledger) attempt(ctx context.Context, pollID int64, voterID string, c Choice, isRepVote bool) (*CastResult, bool, error) {
	var (
		res      *CastResult
		awardDue bool
	)
	err := l.store.RunInTx(ctx, func(tx TxStore) error {
		poll, err := tx.GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if !poll.Active {
			return invalid(ErrPollInactive, strconv.FormatInt(pollID, 10))
		}

		row, err := tx.LockVote(ctx, pollID, voterID)
		if err != nil {
			return err
		}
		current := NoVote
		if row != nil {
			current = StateOf(row.Choice)
		}

		tr := Next(current, c)
		first := false
		switch tr.Op {
		case OpInsert:
			inserted, err := tx.InsertVote(ctx, &PollVote{PollID: pollID, VoterID: voterID, Choice: c, IsRepVote: isRepVote})
			if err != nil {
				return err
			}
			if !inserted {
				return errLostRace
			}
			if first, err = tx.MarkAwarded(ctx, pollID, voterID); err != nil {
				return err
			}
		case OpDelete:
			if err := tx.DeleteVote(ctx, pollID, voterID); err != nil {
				return err
			}
		case OpUpdate:
			if err := tx.UpdateVote(ctx, pollID, voterID, c, isRepVote); err != nil {
				return err
			}
		}

		tally, err := tx.AdjustTally(ctx, pollID, tr.Delta)
		if err != nil {
			return err
		}

		res = &CastResult{PollID: pollID, State: tr.To, Op: tr.Op, Tally: tally}
		awardDue = first
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return res, awardDue, nil
}

// award calls the points ledger once the vote has committed. Failures are
// logged and reported as zero points; the vote itself stands.
func (l *Ledger) award(ctx context.Context, pollID int64, voterID string) int {
	if l.awarder == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.cfg.Timeout)
	defer cancel()

	points, err := l.awarder.Award(ctx, voterID, l.cfg.Action, SubjectThreatPoll, strconv.FormatInt(pollID, 10))
	if err != nil {
		slog.Error("Failed to award poll vote points", "poll_id", pollID, "voter_id", voterID, "error", err)
		l.metrics.IncAward(true)
		return 0
	}
	l.metrics.IncAward(false)
	return points
}

func retryable(err error) bool {
	return errors.Is(err, errLostRace) || db.IsUniqueViolation(err) || db.IsSerializationFailure(err)
}
