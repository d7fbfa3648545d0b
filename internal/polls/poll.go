package polls

import (
	"context"
	"time"
)

// Poll is a standing threat poll with its denormalized tallies
type Poll struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	ThreatRef string    `json:"threatRef,omitempty"`
	Active    bool      `json:"active"`
	Tally     Tally     `json:"tally"`
	CreatedAt time.Time `json:"createdAt"`
}

// PollVote is one voter's current position on a poll
type PollVote struct {
	PollID    int64     `json:"pollId"`
	VoterID   string    `json:"voterId"`
	Choice    Choice    `json:"choice"`
	IsRepVote bool      `json:"isRepVote"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TxStore is the ledger's view of storage inside one transaction
type TxStore interface {
	GetPoll(ctx context.Context, pollID int64) (*Poll, error)
	// LockVote returns the current row locked for update, nil when none exists
	LockVote(ctx context.Context, pollID int64, voterID string) (*PollVote, error)
	// InsertVote reports false when a concurrent writer already holds the row
	InsertVote(ctx context.Context, v *PollVote) (bool, error)
	// UpdateVote switches the choice and records the caster's rep flag
	UpdateVote(ctx context.Context, pollID int64, voterID string, choice Choice, isRepVote bool) error
	DeleteVote(ctx context.Context, pollID int64, voterID string) error
	AdjustTally(ctx context.Context, pollID int64, delta Tally) (Tally, error)
	// MarkAwarded reports true only the first time it is called for a pair
	MarkAwarded(ctx context.Context, pollID int64, voterID string) (bool, error)
}

// Store provides the transactional boundary for ledger mutations.
// fn's writes commit only when it returns nil.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx TxStore) error) error
}
