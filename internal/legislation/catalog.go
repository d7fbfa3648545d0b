package legislation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCatalog reads titles from tracked_bills and nominations
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog creates a catalog over pool
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

// BillTitle looks up a bill or resolution by (congress, type, number)
func (c *PostgresCatalog) BillTitle(ctx context.Context, congress int, billType string, number int) (*BillTitle, error) {
	query := `
		SELECT title, COALESCE(short_title, '')
		FROM tracked_bills
		WHERE congress = $1 AND bill_type = $2 AND bill_number = $3
	`
	bt := &BillTitle{}
	err := c.pool.QueryRow(ctx, query, congress, billType, number).Scan(&bt.Title, &bt.ShortTitle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bill title: %w", err)
	}
	return bt, nil
}

// NominationDescription looks up a nomination by (congress, PN number)
func (c *PostgresCatalog) NominationDescription(ctx context.Context, congress, number int) (string, error) {
	var desc string
	err := c.pool.QueryRow(ctx,
		`SELECT description FROM nominations WHERE congress = $1 AND pn_number = $2`,
		congress, number,
	).Scan(&desc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get nomination: %w", err)
	}
	return desc, nil
}
