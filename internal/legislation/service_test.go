package legislation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVoteSource struct {
	votes []*RollCallVote
	err   error
}

func (s *fakeVoteSource) List(_ context.Context, _ *ListFilters) ([]*RollCallVote, error) {
	return s.votes, s.err
}

func (s *fakeVoteSource) GetByID(_ context.Context, id string) (*RollCallVote, error) {
	for _, v := range s.votes {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, ErrVoteNotFound
}

func TestService_Digest(t *testing.T) {
	r95 := datedVote("p", day(4), 8, "On Passage H.R. 2", 300, 120)
	r95.Tally.Republican = split(210, 215)
	r95.Tally.Democrat = split(5, 205)

	src := &fakeVoteSource{votes: []*RollCallVote{
		datedVote("m", day(2), 3, "On Motion to Recommit H.R. 2", 200, 220),
		r95,
		datedVote("n", day(3), 5, "On the Nomination PN40", 51, 49),
	}}
	catalog := &fakeCatalog{
		bills: map[string]*BillTitle{"bill:hr-2": {Title: "Secure Borders", ShortTitle: "SBA"}},
		noms:  map[int]string{40: "John Roe, to be Judge"},
	}

	groups, err := NewService(src, catalog, nil).Digest(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "HR 2: SBA", groups[0].Label)
	assert.Equal(t, "Secure Borders", groups[0].FullTitle)
	assert.Equal(t, PartyLine, groups[0].Classification)
	assert.Len(t, groups[0].Votes, 2)

	assert.Equal(t, "PN40: John Roe, to be Judge", groups[1].Label)
	assert.Equal(t, Mixed, groups[1].Classification)
}

func TestService_DigestStoreFailure(t *testing.T) {
	src := &fakeVoteSource{err: errors.New("connection reset")}

	_, err := NewService(src, nil, nil).Digest(context.Background(), nil)
	assert.Error(t, err)
}

func TestService_ResolveVote(t *testing.T) {
	src := &fakeVoteSource{votes: []*RollCallVote{datedVote("x", day(1), 1, "On Passage S. 4", 60, 40)}}
	svc := NewService(src, nil, nil)

	ev, err := svc.ResolveVote(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "S 4", ev.Label)
	assert.Equal(t, "119/bill:s-4", ev.GroupKey())

	_, err = svc.ResolveVote(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVoteNotFound)
}
