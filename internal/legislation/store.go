package legislation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVoteNotFound is returned when a roll call ID does not exist
var ErrVoteNotFound = errors.New("roll call vote not found")

// Store reads roll-call votes. Rows are written by external ingestion.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new roll-call vote store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// voteColumns is the standard column list for vote queries
const voteColumns = `id, chamber, congress, session, roll_call, vote_date, question, result,
			yea_total, nay_total, present_total, absent_total,
			r_yea, r_nay, d_yea, d_nay, i_yea, i_nay,
			subject_type, subject_number, final_action`

// scanVote scans a row into a RollCallVote
func scanVote(row pgx.Row) (*RollCallVote, error) {
	v := &RollCallVote{}
	var hintType *string
	var hintNumber *int
	t := &v.Tally
	err := row.Scan(
		&v.ID, &v.Chamber, &v.Congress, &v.Session, &v.RollCall, &v.Date, &v.Question, &v.Result,
		&t.Yea, &t.Nay, &t.Present, &t.Absent,
		&t.Republican.Yea, &t.Republican.Nay, &t.Democrat.Yea, &t.Democrat.Nay,
		&t.Independent.Yea, &t.Independent.Nay,
		&hintType, &hintNumber, &v.FinalAction,
	)
	if err != nil {
		return nil, err
	}
	if hintType != nil && hintNumber != nil {
		v.Hint = &SubjectHint{Type: *hintType, Number: *hintNumber}
	}
	return v, nil
}

// ListFilters contains filter criteria for listing votes
type ListFilters struct {
	Congress *int
	Chamber  *Chamber
	Since    *time.Time
	Until    *time.Time
	Limit    int

	// View prefilters close and tiebreak votes; Service.Digest applies the
	// rest after listing
	View View
}

// List returns votes in processing order: date, then roll-call number
func (s *Store) List(ctx context.Context, filters *ListFilters) ([]*RollCallVote, error) {
	query := fmt.Sprintf(`SELECT %s FROM roll_call_votes WHERE 1=1`, voteColumns)

	args := []interface{}{}
	argPos := 1
	limit := 500

	if filters != nil {
		if filters.Congress != nil {
			query += fmt.Sprintf(" AND congress = $%d", argPos)
			args = append(args, *filters.Congress)
			argPos++
		}
		if filters.Chamber != nil {
			query += fmt.Sprintf(" AND chamber = $%d", argPos)
			args = append(args, string(*filters.Chamber))
			argPos++
		}
		if filters.Since != nil {
			query += fmt.Sprintf(" AND vote_date >= $%d", argPos)
			args = append(args, *filters.Since)
			argPos++
		}
		if filters.Until != nil {
			query += fmt.Sprintf(" AND vote_date <= $%d", argPos)
			args = append(args, *filters.Until)
			argPos++
		}
		switch filters.View {
		case ViewClose:
			query += fmt.Sprintf(" AND yea_total > 0 AND nay_total > 0 AND ABS(yea_total - nay_total) <= %d", closeMargin)
		case ViewTiebreak:
			query += " AND result LIKE '%Vice President%'"
		}
		if filters.Limit > 0 && filters.Limit <= 5000 {
			limit = filters.Limit
		}
	}

	// Most recent window, returned oldest first
	query = fmt.Sprintf(`SELECT * FROM (%s ORDER BY vote_date DESC, roll_call DESC, id DESC LIMIT $%d) recent
		ORDER BY vote_date ASC, roll_call ASC, id ASC`, query, argPos)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	votes := []*RollCallVote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}

// GetByID retrieves a vote by its ID
func (s *Store) GetByID(ctx context.Context, id string) (*RollCallVote, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrVoteNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM roll_call_votes WHERE id = $1`, voteColumns)

	v, err := scanVote(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return v, nil
}

// Insert writes a vote row. Used by seeding tools and tests; the service
// itself never mutates roll calls.
func (s *Store) Insert(ctx context.Context, v *RollCallVote) error {
	var hintType *string
	var hintNumber *int
	if v.Hint != nil {
		hintType, hintNumber = &v.Hint.Type, &v.Hint.Number
	}
	t := v.Tally
	query := `
		INSERT INTO roll_call_votes (
			chamber, congress, session, roll_call, vote_date, question, result,
			yea_total, nay_total, present_total, absent_total,
			r_yea, r_nay, d_yea, d_nay, i_yea, i_nay,
			subject_type, subject_number, final_action
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id
	`
	err := s.pool.QueryRow(ctx, query,
		string(v.Chamber), v.Congress, v.Session, v.RollCall, v.Date, v.Question, v.Result,
		t.Yea, t.Nay, t.Present, t.Absent,
		t.Republican.Yea, t.Republican.Nay, t.Democrat.Yea, t.Democrat.Nay,
		t.Independent.Yea, t.Independent.Nay,
		hintType, hintNumber, v.FinalAction,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}
