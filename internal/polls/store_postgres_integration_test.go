//go:build integration

package polls_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/peoplesbranch/scorecard/internal/points"
	"github.com/peoplesbranch/scorecard/internal/polls"
	"github.com/peoplesbranch/scorecard/internal/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *polls.PostgresStore
	points   *points.Ledger
	ledger   *polls.Ledger
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = polls.NewPostgresStore(s.postgres.Pool)
	s.points = points.NewLedger(s.postgres.Pool)
	s.ledger = polls.NewLedger(s.store, s.points, polls.LedgerConfig{Action: "poll_voted", MaxAttempts: 10}, nil)
}

func (s *PostgresLedgerSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"poll_vote_awards", "poll_votes", "threat_polls",
		"points_log", "voter_points", "officials", "voter_profiles")
	s.Require().NoError(err)
}

func (s *PostgresLedgerSuite) newPoll(active bool) int64 {
	id, err := s.store.CreatePoll(context.Background(), "Should Congress act?", "threat-1", active)
	s.Require().NoError(err)
	return id
}

func (s *PostgresLedgerSuite) exec(sql string, args ...any) {
	_, err := s.postgres.Pool.Exec(context.Background(), sql, args...)
	s.Require().NoError(err)
}

func (s *PostgresLedgerSuite) TestEndToEnd() {
	ctx := context.Background()
	pollID := s.newPoll(true)

	res, err := s.ledger.CastVote(ctx, pollID, "u1", "yea", false)
	s.Require().NoError(err)
	s.Equal(polls.VotedYea, res.State)
	s.Equal(polls.Tally{Yea: 1}, res.Tally)
	s.Equal(5, res.PointsEarned)

	res, err = s.ledger.CastVote(ctx, pollID, "u1", "yea", false)
	s.Require().NoError(err)
	s.Equal(polls.NoVote, res.State)
	s.Equal(polls.Tally{}, res.Tally)
	s.Equal(0, res.PointsEarned)

	res, err = s.ledger.CastVote(ctx, pollID, "u1", "nay", false)
	s.Require().NoError(err)
	s.Equal(polls.VotedNay, res.State)
	s.Equal(polls.Tally{Nay: 1}, res.Tally)

	total, err := s.points.Total(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(5, total, "one award across the whole history")

	history, err := s.points.History(ctx, "u1", 10)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(polls.SubjectThreatPoll, history[0].SubjectType)
	s.Equal(fmt.Sprint(pollID), history[0].SubjectID)
}

func (s *PostgresLedgerSuite) TestInactivePollRejected() {
	ctx := context.Background()
	pollID := s.newPoll(false)

	_, err := s.ledger.CastVote(ctx, pollID, "u1", "yea", false)
	s.Require().Error(err)
	s.ErrorIs(err, polls.ErrPollInactive)

	p, err := s.store.GetPoll(ctx, pollID)
	s.Require().NoError(err)
	s.Equal(polls.Tally{}, p.Tally)
}

func (s *PostgresLedgerSuite) TestConcurrentSameVoterDifferentChoices() {
	ctx := context.Background()
	pollID := s.newPoll(true)

	var wg sync.WaitGroup
	for _, c := range []string{"yea", "nay"} {
		wg.Add(1)
		go func(choice string) {
			defer wg.Done()
			_, err := s.ledger.CastVote(ctx, pollID, "u1", choice, false)
			s.NoError(err)
		}(c)
	}
	wg.Wait()

	var rows int
	var choice string
	err := s.postgres.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(choice) FROM poll_votes WHERE poll_id = $1`, pollID,
	).Scan(&rows, &choice)
	s.Require().NoError(err)
	s.Equal(1, rows)

	p, err := s.store.GetPoll(ctx, pollID)
	s.Require().NoError(err)
	s.Equal(1, p.Tally.Total())
	if choice == "yea" {
		s.Equal(polls.Tally{Yea: 1}, p.Tally)
	} else {
		s.Equal(polls.Tally{Nay: 1}, p.Tally)
	}
}

// TestConcurrentDuplicatesAwardOnce hammers one (poll, voter) pair and checks
// the tally always matches the surviving rows and only one award fired.
func (s *PostgresLedgerSuite) TestConcurrentDuplicatesAwardOnce() {
	ctx := context.Background()
	pollID := s.newPoll(true)
	const goroutines = 10

	var wg sync.WaitGroup
	var ok atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ledger.CastVote(ctx, pollID, "u1", "abstain", false); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	var rows int
	err := s.postgres.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM poll_votes WHERE poll_id = $1`, pollID).Scan(&rows)
	s.Require().NoError(err)

	p, err := s.store.GetPoll(ctx, pollID)
	s.Require().NoError(err)
	s.Equal(rows, p.Tally.Abstain, "tally matches persisted rows")
	s.Equal(int(ok.Load())%2, rows, "each successful cast toggled exactly once")

	total, err := s.points.Total(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(5, total)
}

func (s *PostgresLedgerSuite) TestDivergenceQueries() {
	ctx := context.Background()
	pollA := s.newPoll(true)
	pollB := s.newPoll(true)
	closed := s.newPoll(true)

	s.exec(`INSERT INTO officials (voter_id, full_name, party, state_code, chamber) VALUES ('rep-oh', 'Pat Smith', 'R', 'OH', 'house')`)
	for i, state := range []string{"OH", "OH", "OH", "OH", "TX"} {
		voter := fmt.Sprintf("c%d", i)
		s.exec(`INSERT INTO voter_profiles (voter_id, state_code) VALUES ($1, $2)`, voter, state)
		choice := "nay"
		if i == 0 || state == "TX" {
			choice = "yea"
		}
		for _, id := range []int64{pollA, pollB, closed} {
			_, err := s.ledger.CastVote(ctx, id, voter, choice, false)
			s.Require().NoError(err)
		}
	}
	_, err := s.ledger.CastVote(ctx, pollB, "rep-oh", "yea", true)
	s.Require().NoError(err)
	_, err = s.ledger.CastVote(ctx, closed, "rep-oh", "nay", true)
	s.Require().NoError(err)
	s.Require().NoError(s.store.SetActive(ctx, closed, false))

	analyzer := polls.NewAnalyzer(s.store)

	report, err := analyzer.Divergence(ctx, "rep-oh", pollA, polls.ScopeState)
	s.Require().NoError(err)
	s.Equal(polls.Tally{Yea: 1, Nay: 3}, report.CitizenTotal)
	s.Equal(75, report.Gap)
	s.Equal(polls.LabelSilence, report.Label)

	report, err = analyzer.Divergence(ctx, "rep-oh", pollB, polls.ScopeNation)
	s.Require().NoError(err)
	s.Equal(polls.Tally{Yea: 2, Nay: 3}, report.CitizenTotal, "rep vote excluded")
	s.Equal(60, report.Gap)
	s.Equal(polls.LabelGap, report.Label)

	rc, err := analyzer.RollCall(ctx, "rep-oh", polls.ScopeState)
	s.Require().NoError(err)
	s.Equal(2, rc.ActivePolls)
	s.Equal(1, rc.Responded)
	s.Equal(1, rc.Yea)
	s.Equal(50, rc.SilenceRate)
	s.Require().Len(rc.Reports, 2)
	s.Equal(pollA, rc.Reports[0].PollID)

	_, err = analyzer.RollCall(ctx, "nobody", polls.ScopeState)
	s.ErrorIs(err, polls.ErrRepNotFound)

	s.exec(`INSERT INTO officials (voter_id, full_name, party, state_code, chamber) VALUES ('rep-ak', 'Sam Young', 'I', 'AK', 'senate')`)
	board, err := analyzer.SilenceBoard(ctx, polls.BoardFilter{})
	s.Require().NoError(err)
	s.Equal(2, board.ActivePolls)
	s.Require().Len(board.Reps, 2)
	s.Equal("rep-ak", board.Reps[0].Official.VoterID)
	s.Equal(100, board.Reps[0].SilenceRate)
	s.Equal(1, board.Reps[1].Responded)
	s.Equal(50, board.Reps[1].SilenceRate)
}

func (s *PostgresLedgerSuite) TestSwitchKeepsLatestRepFlag() {
	ctx := context.Background()
	pollID := s.newPoll(true)

	_, err := s.ledger.CastVote(ctx, pollID, "rep-oh", "yea", false)
	s.Require().NoError(err)
	_, err = s.ledger.CastVote(ctx, pollID, "rep-oh", "nay", true)
	s.Require().NoError(err)

	pos, err := s.store.RepPosition(ctx, pollID, "rep-oh")
	s.Require().NoError(err)
	s.Equal(polls.Nay, pos)
}
