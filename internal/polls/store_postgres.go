package polls

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peoplesbranch/scorecard/internal/db"
)

// PostgresStore implements Store and DivergenceSource
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new poll store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const pollColumns = `poll_id, question, threat_ref, active, yea_count, nay_count, abstain_count, created_at`

// querier is satisfied by both the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getPoll(ctx context.Context, q querier, pollID int64) (*Poll, error) {
	p := &Poll{}
	err := q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM threat_polls WHERE poll_id = $1`, pollColumns), pollID).Scan(
		&p.ID, &p.Question, &p.ThreatRef, &p.Active,
		&p.Tally.Yea, &p.Tally.Nay, &p.Tally.Abstain, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invalid(ErrPollNotFound, fmt.Sprint(pollID))
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return p, nil
}

// RunInTx implements Store
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(tx TxStore) error) error {
	return db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&postgresTx{tx: tx})
	})
}

// postgresTx binds ledger operations to one pgx transaction
type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) GetPoll(ctx context.Context, pollID int64) (*Poll, error) {
	return getPoll(ctx, t.tx, pollID)
}

func (t *postgresTx) LockVote(ctx context.Context, pollID int64, voterID string) (*PollVote, error) {
	query := `
		SELECT poll_id, voter_id, choice, is_rep_vote, created_at, updated_at
		FROM poll_votes
		WHERE poll_id = $1 AND voter_id = $2
		FOR UPDATE
	`
	v := &PollVote{}
	err := t.tx.QueryRow(ctx, query, pollID, voterID).Scan(
		&v.PollID, &v.VoterID, &v.Choice, &v.IsRepVote, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock poll vote: %w", err)
	}
	return v, nil
}

func (t *postgresTx) InsertVote(ctx context.Context, v *PollVote) (bool, error) {
	query := `
		INSERT INTO poll_votes (poll_id, voter_id, choice, is_rep_vote)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, voter_id) DO NOTHING
	`
	tag, err := t.tx.Exec(ctx, query, v.PollID, v.VoterID, string(v.Choice), v.IsRepVote)
	if err != nil {
		return false, fmt.Errorf("failed to insert poll vote: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *postgresTx) UpdateVote(ctx context.Context, pollID int64, voterID string, choice Choice, isRepVote bool) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE poll_votes SET choice = $3, is_rep_vote = $4, updated_at = NOW() WHERE poll_id = $1 AND voter_id = $2`,
		pollID, voterID, string(choice), isRepVote,
	)
	if err != nil {
		return fmt.Errorf("failed to update poll vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poll vote %d/%s not found", pollID, voterID)
	}
	return nil
}

func (t *postgresTx) DeleteVote(ctx context.Context, pollID int64, voterID string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM poll_votes WHERE poll_id = $1 AND voter_id = $2`, pollID, voterID)
	if err != nil {
		return fmt.Errorf("failed to delete poll vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poll vote %d/%s not found", pollID, voterID)
	}
	return nil
}

func (t *postgresTx) AdjustTally(ctx context.Context, pollID int64, delta Tally) (Tally, error) {
	query := `
		UPDATE threat_polls
		SET yea_count = yea_count + $2,
			nay_count = nay_count + $3,
			abstain_count = abstain_count + $4
		WHERE poll_id = $1
		RETURNING yea_count, nay_count, abstain_count
	`
	var tally Tally
	err := t.tx.QueryRow(ctx, query, pollID, delta.Yea, delta.Nay, delta.Abstain).Scan(
		&tally.Yea, &tally.Nay, &tally.Abstain,
	)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to adjust poll tally: %w", err)
	}
	return tally, nil
}

func (t *postgresTx) MarkAwarded(ctx context.Context, pollID int64, voterID string) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`INSERT INTO poll_vote_awards (poll_id, voter_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		pollID, voterID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark poll award: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CreatePoll inserts a poll. Poll creation belongs to the admin sync; this
// exists for seeding and tests.
func (s *PostgresStore) CreatePoll(ctx context.Context, question, threatRef string, active bool) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO threat_polls (question, threat_ref, active) VALUES ($1, $2, $3) RETURNING poll_id`,
		question, threatRef, active,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create poll: %w", err)
	}
	return id, nil
}

// SetActive opens or closes a poll
func (s *PostgresStore) SetActive(ctx context.Context, pollID int64, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE threat_polls SET active = $2 WHERE poll_id = $1`, pollID, active)
	if err != nil {
		return fmt.Errorf("failed to set poll active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invalid(ErrPollNotFound, fmt.Sprint(pollID))
	}
	return nil
}

// DivergenceSource implementation

func (s *PostgresStore) GetOfficial(ctx context.Context, voterID string) (*Official, error) {
	o := &Official{}
	err := s.pool.QueryRow(ctx,
		`SELECT voter_id, full_name, party, state_code, chamber FROM officials WHERE voter_id = $1`,
		voterID,
	).Scan(&o.VoterID, &o.FullName, &o.Party, &o.State, &o.Chamber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invalid(ErrRepNotFound, voterID)
		}
		return nil, fmt.Errorf("failed to get official: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) GetPoll(ctx context.Context, pollID int64) (*Poll, error) {
	return getPoll(ctx, s.pool, pollID)
}

func (s *PostgresStore) RepPosition(ctx context.Context, pollID int64, voterID string) (Choice, error) {
	var c Choice
	err := s.pool.QueryRow(ctx,
		`SELECT choice FROM poll_votes WHERE poll_id = $1 AND voter_id = $2 AND is_rep_vote`,
		pollID, voterID,
	).Scan(&c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get rep position: %w", err)
	}
	return c, nil
}

// citizenFilter restricts to citizen votes, optionally within one state
const citizenFilter = `
	NOT pv.is_rep_vote
	AND ($1::text = '' OR EXISTS (
		SELECT 1 FROM voter_profiles vp
		WHERE vp.voter_id = pv.voter_id AND vp.state_code = $1::text
	))`

func (s *PostgresStore) PollCitizenTotals(ctx context.Context, pollID int64, stateCode string) (Tally, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE pv.choice = 'yea'),
			COUNT(*) FILTER (WHERE pv.choice = 'nay'),
			COUNT(*) FILTER (WHERE pv.choice = 'abstain')
		FROM poll_votes pv
		WHERE pv.poll_id = $2 AND ` + citizenFilter

	var t Tally
	if err := s.pool.QueryRow(ctx, query, stateCode, pollID).Scan(&t.Yea, &t.Nay, &t.Abstain); err != nil {
		return Tally{}, fmt.Errorf("failed to get citizen totals: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ActivePolls(ctx context.Context) ([]*Poll, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM threat_polls WHERE active ORDER BY poll_id`, pollColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to list active polls: %w", err)
	}
	defer rows.Close()

	polls := []*Poll{}
	for rows.Next() {
		p := &Poll{}
		if err := rows.Scan(
			&p.ID, &p.Question, &p.ThreatRef, &p.Active,
			&p.Tally.Yea, &p.Tally.Nay, &p.Tally.Abstain, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

func (s *PostgresStore) RepPositions(ctx context.Context, voterID string) (map[int64]Choice, error) {
	query := `
		SELECT pv.poll_id, pv.choice
		FROM poll_votes pv
		JOIN threat_polls tp ON tp.poll_id = pv.poll_id
		WHERE pv.voter_id = $1 AND pv.is_rep_vote AND tp.active
	`
	rows, err := s.pool.Query(ctx, query, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rep positions: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]Choice)
	for rows.Next() {
		var id int64
		var c Choice
		if err := rows.Scan(&id, &c); err != nil {
			return nil, fmt.Errorf("failed to scan rep position: %w", err)
		}
		out[id] = c
	}
	return out, rows.Err()
}

func (s *PostgresStore) CitizenTotals(ctx context.Context, stateCode string) (map[int64]Tally, error) {
	query := `
		SELECT
			pv.poll_id,
			COUNT(*) FILTER (WHERE pv.choice = 'yea'),
			COUNT(*) FILTER (WHERE pv.choice = 'nay'),
			COUNT(*) FILTER (WHERE pv.choice = 'abstain')
		FROM poll_votes pv
		JOIN threat_polls tp ON tp.poll_id = pv.poll_id
		WHERE tp.active AND ` + citizenFilter + `
		GROUP BY pv.poll_id
	`
	rows, err := s.pool.Query(ctx, query, stateCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get citizen totals: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]Tally)
	for rows.Next() {
		var id int64
		var t Tally
		if err := rows.Scan(&id, &t.Yea, &t.Nay, &t.Abstain); err != nil {
			return nil, fmt.Errorf("failed to scan citizen totals: %w", err)
		}
		out[id] = t
	}
	return out, rows.Err()
}

func (s *PostgresStore) Officials(ctx context.Context) ([]*Official, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT voter_id, full_name, party, state_code, chamber FROM officials ORDER BY state_code, full_name, voter_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list officials: %w", err)
	}
	defer rows.Close()

	out := []*Official{}
	for rows.Next() {
		o := &Official{}
		if err := rows.Scan(&o.VoterID, &o.FullName, &o.Party, &o.State, &o.Chamber); err != nil {
			return nil, fmt.Errorf("failed to scan official: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RepTallies(ctx context.Context) (map[string]Tally, error) {
	query := `
		SELECT
			pv.voter_id,
			COUNT(*) FILTER (WHERE pv.choice = 'yea'),
			COUNT(*) FILTER (WHERE pv.choice = 'nay'),
			COUNT(*) FILTER (WHERE pv.choice = 'abstain')
		FROM poll_votes pv
		JOIN threat_polls tp ON tp.poll_id = pv.poll_id
		WHERE pv.is_rep_vote AND tp.active
		GROUP BY pv.voter_id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get rep tallies: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Tally)
	for rows.Next() {
		var id string
		var t Tally
		if err := rows.Scan(&id, &t.Yea, &t.Nay, &t.Abstain); err != nil {
			return nil, fmt.Errorf("failed to scan rep tally: %w", err)
		}
		out[id] = t
	}
	return out, rows.Err()
}
