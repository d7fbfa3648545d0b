//go:build integration

package legislation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/peoplesbranch/scorecard/internal/legislation"
	"github.com/peoplesbranch/scorecard/internal/testutil/containers"
)

type StoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *legislation.Store
	catalog  *legislation.PostgresCatalog
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = legislation.NewStore(s.postgres.Pool)
	s.catalog = legislation.NewPostgresCatalog(s.postgres.Pool)
}

func (s *StoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "roll_call_votes", "tracked_bills", "nominations")
	s.Require().NoError(err)
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func (s *StoreSuite) insert(rollCall, d int, question string, hint *legislation.SubjectHint) *legislation.RollCallVote {
	v := &legislation.RollCallVote{
		Chamber:  legislation.ChamberSenate,
		Congress: 119,
		Session:  1,
		RollCall: rollCall,
		Date:     day(d),
		Question: question,
		Result:   "Bill Passed",
		Tally: legislation.Tally{
			Yea: 60, Nay: 40,
			Republican: legislation.PartyTally{Yea: 30, Nay: 20},
			Democrat:   legislation.PartyTally{Yea: 30, Nay: 20},
		},
		Hint: hint,
	}
	s.Require().NoError(s.store.Insert(context.Background(), v))
	s.Require().NotEmpty(v.ID)
	return v
}

func (s *StoreSuite) TestListOrderAndWindow() {
	ctx := context.Background()
	s.insert(3, 2, "On Passage H.R. 3", nil)
	s.insert(1, 1, "On Passage H.R. 1", nil)
	s.insert(2, 1, "On Passage H.R. 2", nil)

	votes, err := s.store.List(ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(votes, 3)
	s.Equal([]int{1, 2, 3}, []int{votes[0].RollCall, votes[1].RollCall, votes[2].RollCall})

	votes, err = s.store.List(ctx, &legislation.ListFilters{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(votes, 2, "most recent window")
	s.Equal(2, votes[0].RollCall)
	s.Equal(3, votes[1].RollCall)

	since := day(2)
	votes, err = s.store.List(ctx, &legislation.ListFilters{Since: &since})
	s.Require().NoError(err)
	s.Len(votes, 1)
}

func (s *StoreSuite) TestGetByIDRoundTripsHint() {
	ctx := context.Background()
	v := s.insert(7, 4, "On the Nomination", &legislation.SubjectHint{Type: "pn", Number: 12})

	got, err := s.store.GetByID(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(v.Question, got.Question)
	s.Require().NotNil(got.Hint)
	s.Equal(12, got.Hint.Number)
	s.Equal(30, got.Tally.Republican.Yea)

	_, err = s.store.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	s.ErrorIs(err, legislation.ErrVoteNotFound)

	_, err = s.store.GetByID(ctx, "not-a-uuid")
	s.ErrorIs(err, legislation.ErrVoteNotFound)
}

func (s *StoreSuite) TestCatalogLookups() {
	ctx := context.Background()
	_, err := s.postgres.Pool.Exec(ctx, `
		INSERT INTO tracked_bills (congress, bill_type, bill_number, title, short_title)
		VALUES (119, 'hr', 1, 'To provide for reconciliation', 'One Big Bill Act')
	`)
	s.Require().NoError(err)

	bt, err := s.catalog.BillTitle(ctx, 119, "hr", 1)
	s.Require().NoError(err)
	s.Require().NotNil(bt)
	s.Equal("One Big Bill Act", bt.ShortTitle)

	bt, err = s.catalog.BillTitle(ctx, 119, "hr", 2)
	s.Require().NoError(err)
	s.Nil(bt)

	desc, err := s.catalog.NominationDescription(ctx, 119, 99)
	s.Require().NoError(err)
	s.Empty(desc)
}

func (s *StoreSuite) TestDigestOverPostgres() {
	ctx := context.Background()
	_, err := s.postgres.Pool.Exec(ctx, `
		INSERT INTO tracked_bills (congress, bill_type, bill_number, title, short_title)
		VALUES (119, 'hr', 1, 'To provide for reconciliation', 'One Big Bill Act')
	`)
	s.Require().NoError(err)

	s.insert(1, 1, "On the Motion to Proceed H.R. 1", nil)
	s.insert(2, 2, "On the Amendment S.Amdt. 5 to H.R. 1", nil)
	s.insert(3, 3, "On Passage of the Bill H.R. 1", nil)
	s.insert(4, 3, "On the Cloture Motion (Motion to Adjourn)", nil)

	svc := legislation.NewService(s.store, s.catalog, nil)
	groups, err := svc.Digest(ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(groups, 2)

	var bill *legislation.VoteGroup
	for _, g := range groups {
		if g.Key == "119/bill:hr-1" {
			bill = g
		}
	}
	s.Require().NotNil(bill)
	s.Len(bill.Votes, 3)
	s.Equal("One Big Bill Act", bill.Label)
	s.Equal(legislation.Bipartisan, bill.Classification)
}

func (s *StoreSuite) TestListViewPrefilter() {
	ctx := context.Background()
	insert := func(rollCall, d, yea, nay int, result string) {
		v := &legislation.RollCallVote{
			Chamber: legislation.ChamberSenate, Congress: 119, Session: 1,
			RollCall: rollCall, Date: day(d),
			Question: "On the Motion to Proceed S. 9", Result: result,
			Tally: legislation.Tally{Yea: yea, Nay: nay},
		}
		s.Require().NoError(s.store.Insert(ctx, v))
	}
	insert(1, 1, 60, 40, "Motion Agreed to")
	insert(2, 2, 51, 50, "Motion Agreed to (Vice President voted Yea)")
	insert(3, 3, 50, 47, "Motion Agreed to")
	insert(4, 4, 90, 0, "Motion Agreed to")

	votes, err := s.store.List(ctx, &legislation.ListFilters{View: legislation.ViewClose})
	s.Require().NoError(err)
	s.Require().Len(votes, 2)
	s.Equal([]int{2, 3}, []int{votes[0].RollCall, votes[1].RollCall})

	votes, err = s.store.List(ctx, &legislation.ListFilters{View: legislation.ViewTiebreak})
	s.Require().NoError(err)
	s.Require().Len(votes, 1)
	s.Equal(2, votes[0].RollCall)
}
