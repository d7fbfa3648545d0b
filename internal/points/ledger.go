// Package points records civic point awards. Each award appends a
// points_log row and bumps the voter's running total in one transaction.
package points

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peoplesbranch/scorecard/internal/db"
)

// ErrUnknownAction is returned when the action key has no definition
var ErrUnknownAction = errors.New("unknown point action")

// Action is a point_actions row
type Action struct {
	Name   string
	Points int
	Active bool
}

// Entry is a points_log row
type Entry struct {
	ID          uuid.UUID
	VoterID     string
	Action      string
	Points      int
	SubjectType string
	SubjectID   string
}

// Ledger awards points against Postgres
type Ledger struct {
	pool *pgxpool.Pool
}

// NewLedger creates a points ledger
func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Award grants the points defined for actionKey and returns how many were
// earned. Inactive or zero-valued actions earn 0 and write nothing.
func (l *Ledger) Award(ctx context.Context, voterID, actionKey, subjectType, subjectID string) (int, error) {
	var earned int
	err := db.InTx(ctx, l.pool, func(tx pgx.Tx) error {
		action, err := getAction(ctx, tx, actionKey)
		if err != nil {
			return err
		}
		if !action.Active || action.Points == 0 {
			return nil
		}

		entry := Entry{
			ID:          uuid.New(),
			VoterID:     voterID,
			Action:      action.Name,
			Points:      action.Points,
			SubjectType: subjectType,
			SubjectID:   subjectID,
		}
		if err := appendEntry(ctx, tx, entry); err != nil {
			return err
		}
		if err := addToTotal(ctx, tx, voterID, action.Points); err != nil {
			return err
		}
		earned = action.Points
		return nil
	})
	if err != nil {
		return 0, err
	}

	if earned > 0 {
		slog.Debug("Points awarded", "voter_id", voterID, "action", actionKey, "points", earned)
	}
	return earned, nil
}

// Total returns a voter's running civic point total
func (l *Ledger) Total(ctx context.Context, voterID string) (int, error) {
	var total int
	err := l.pool.QueryRow(ctx, `SELECT civic_points FROM voter_points WHERE voter_id = $1`, voterID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get civic points: %w", err)
	}
	return total, nil
}

// History returns a voter's awards, newest first
func (l *Ledger) History(ctx context.Context, voterID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, voter_id, action_name, points_earned, subject_type, subject_id
		FROM points_log
		WHERE voter_id = $1
		ORDER BY earned_at DESC
		LIMIT $2
	`, voterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query points log: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.VoterID, &e.Action, &e.Points, &e.SubjectType, &e.SubjectID); err != nil {
			return nil, fmt.Errorf("failed to scan points entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func getAction(ctx context.Context, tx pgx.Tx, name string) (*Action, error) {
	a := &Action{}
	err := tx.QueryRow(ctx,
		`SELECT action_name, points_value, is_active FROM point_actions WHERE action_name = $1`,
		name,
	).Scan(&a.Name, &a.Points, &a.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
		}
		return nil, fmt.Errorf("failed to get point action: %w", err)
	}
	return a, nil
}

func appendEntry(ctx context.Context, tx pgx.Tx, e Entry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO points_log (id, voter_id, action_name, points_earned, subject_type, subject_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.VoterID, e.Action, e.Points, e.SubjectType, e.SubjectID)
	if err != nil {
		return fmt.Errorf("failed to insert points entry: %w", err)
	}
	return nil
}

func addToTotal(ctx context.Context, tx pgx.Tx, voterID string, points int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO voter_points (voter_id, civic_points)
		VALUES ($1, $2)
		ON CONFLICT (voter_id) DO UPDATE
		SET civic_points = voter_points.civic_points + EXCLUDED.civic_points,
			updated_at = NOW()
	`, voterID, points)
	if err != nil {
		return fmt.Errorf("failed to update civic points: %w", err)
	}
	return nil
}
