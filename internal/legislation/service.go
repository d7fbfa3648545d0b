package legislation

import (
	"context"
	"fmt"
	"time"

	"github.com/peoplesbranch/scorecard/internal/metrics"
)

// VoteSource lists and fetches roll calls
type VoteSource interface {
	List(ctx context.Context, filters *ListFilters) ([]*RollCallVote, error)
	GetByID(ctx context.Context, id string) (*RollCallVote, error)
}

// Service runs the resolve, group and classify pipeline over a vote snapshot
type Service struct {
	votes    VoteSource
	catalog  Catalog
	resolver *Resolver
	metrics  *metrics.Metrics
}

// NewService wires the pipeline; catalog and m may be nil
func NewService(votes VoteSource, catalog Catalog, m *metrics.Metrics) *Service {
	return &Service{
		votes:    votes,
		catalog:  catalog,
		resolver: NewResolver(m),
		metrics:  m,
	}
}

// Digest returns one classified group per subject for the filtered votes,
// narrowed to filters.View
func (s *Service) Digest(ctx context.Context, filters *ListFilters) ([]*VoteGroup, error) {
	start := time.Now()
	defer s.metrics.ObserveDigest(start)

	votes, err := s.votes.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("digest: %w", err)
	}

	view := ViewAll
	if filters != nil {
		view = filters.View
	}
	votes = view.filter(votes)

	enriched := s.resolver.ResolveBatch(ctx, s.catalog, votes)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	groups := GroupBySubject(enriched)
	view.order(groups)
	return groups, nil
}

// ResolveVote resolves a single roll call by ID
func (s *Service) ResolveVote(ctx context.Context, id string) (*EnrichedVote, error) {
	v, err := s.votes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := s.resolver.Resolve(ctx, NewMemo(s.catalog, s.metrics), v)
	return &EnrichedVote{Vote: v, Resolution: res}, nil
}
