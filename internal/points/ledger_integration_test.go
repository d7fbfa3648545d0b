//go:build integration

package points_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/peoplesbranch/scorecard/internal/points"
	"github.com/peoplesbranch/scorecard/internal/testutil/containers"
)

type LedgerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	ledger   *points.Ledger
}

func TestLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.ledger = points.NewLedger(s.postgres.Pool)
}

func (s *LedgerSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "points_log", "voter_points"))
	_, err := s.postgres.Pool.Exec(ctx, `
		INSERT INTO point_actions (action_name, points_value, is_active) VALUES
			('thought_posted', 10, TRUE),
			('retired_action', 20, FALSE),
			('zero_action', 0, TRUE)
		ON CONFLICT (action_name) DO NOTHING
	`)
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestAwardAccumulates() {
	ctx := context.Background()

	earned, err := s.ledger.Award(ctx, "v1", "poll_voted", "threat_poll", "1")
	s.Require().NoError(err)
	s.Equal(5, earned)

	earned, err = s.ledger.Award(ctx, "v1", "thought_posted", "thought", "9")
	s.Require().NoError(err)
	s.Equal(10, earned)

	total, err := s.ledger.Total(ctx, "v1")
	s.Require().NoError(err)
	s.Equal(15, total)

	history, err := s.ledger.History(ctx, "v1", 0)
	s.Require().NoError(err)
	s.Len(history, 2)
}

func (s *LedgerSuite) TestInactiveAndZeroActionsEarnNothing() {
	ctx := context.Background()

	for _, action := range []string{"retired_action", "zero_action"} {
		earned, err := s.ledger.Award(ctx, "v2", action, "", "")
		s.Require().NoError(err)
		s.Equal(0, earned, action)
	}

	total, err := s.ledger.Total(ctx, "v2")
	s.Require().NoError(err)
	s.Equal(0, total)

	history, err := s.ledger.History(ctx, "v2", 10)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *LedgerSuite) TestUnknownAction() {
	_, err := s.ledger.Award(context.Background(), "v3", "no_such_action", "", "")
	s.ErrorIs(err, points.ErrUnknownAction)
}
