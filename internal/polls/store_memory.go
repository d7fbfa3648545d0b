package polls

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"
)

type voteKey struct {
	pollID  int64
	voterID string
}

// MemoryStore is an in-process Store and DivergenceSource. Transactions
// run under one coarse lock against a staged copy that replaces the live
// state only when fn succeeds.
type MemoryStore struct {
	mu sync.Mutex

	nextPollID int64
	polls      map[int64]Poll
	votes      map[voteKey]PollVote
	awards     map[voteKey]bool
	officials  map[string]Official
	profiles   map[string]string // voter_id -> state code
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		polls:     make(map[int64]Poll),
		votes:     make(map[voteKey]PollVote),
		awards:    make(map[voteKey]bool),
		officials: make(map[string]Official),
		profiles:  make(map[string]string),
	}
}

// CreatePoll adds a poll and returns its ID
func (s *MemoryStore) CreatePoll(question string, active bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPollID++
	s.polls[s.nextPollID] = Poll{
		ID:        s.nextPollID,
		Question:  question,
		Active:    active,
		CreatedAt: time.Now(),
	}
	return s.nextPollID
}

// SetActive flips a poll's active flag
func (s *MemoryStore) SetActive(pollID int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.polls[pollID]; ok {
		p.Active = active
		s.polls[pollID] = p
	}
}

// AddOfficial registers representative metadata
func (s *MemoryStore) AddOfficial(o Official) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.officials[o.VoterID] = o
}

// SetVoterState records a citizen voter's state
func (s *MemoryStore) SetVoterState(voterID, stateCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[voterID] = stateCode
}

// RunInTx implements Store
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(tx TxStore) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		polls:  maps.Clone(s.polls),
		votes:  maps.Clone(s.votes),
		awards: maps.Clone(s.awards),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	s.polls, s.votes, s.awards = tx.polls, tx.votes, tx.awards
	return nil
}

// memoryTx operates on staged copies owned by one RunInTx call
type memoryTx struct {
	polls  map[int64]Poll
	votes  map[voteKey]PollVote
	awards map[voteKey]bool
}

func (t *memoryTx) GetPoll(_ context.Context, pollID int64) (*Poll, error) {
	p, ok := t.polls[pollID]
	if !ok {
		return nil, invalid(ErrPollNotFound, fmt.Sprint(pollID))
	}
	return &p, nil
}

func (t *memoryTx) LockVote(_ context.Context, pollID int64, voterID string) (*PollVote, error) {
	v, ok := t.votes[voteKey{pollID, voterID}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (t *memoryTx) InsertVote(_ context.Context, v *PollVote) (bool, error) {
	k := voteKey{v.PollID, v.VoterID}
	if _, exists := t.votes[k]; exists {
		return false, nil
	}
	now := time.Now()
	row := *v
	row.CreatedAt, row.UpdatedAt = now, now
	t.votes[k] = row
	return true, nil
}

func (t *memoryTx) UpdateVote(_ context.Context, pollID int64, voterID string, choice Choice, isRepVote bool) error {
	k := voteKey{pollID, voterID}
	v, ok := t.votes[k]
	if !ok {
		return fmt.Errorf("poll vote %d/%s not found", pollID, voterID)
	}
	v.Choice = choice
	v.IsRepVote = isRepVote
	v.UpdatedAt = time.Now()
	t.votes[k] = v
	return nil
}

func (t *memoryTx) DeleteVote(_ context.Context, pollID int64, voterID string) error {
	k := voteKey{pollID, voterID}
	if _, ok := t.votes[k]; !ok {
		return fmt.Errorf("poll vote %d/%s not found", pollID, voterID)
	}
	delete(t.votes, k)
	return nil
}

func (t *memoryTx) AdjustTally(_ context.Context, pollID int64, delta Tally) (Tally, error) {
	p, ok := t.polls[pollID]
	if !ok {
		return Tally{}, fmt.Errorf("poll %d not found", pollID)
	}
	next := p.Tally.Add(delta)
	if next.Yea < 0 || next.Nay < 0 || next.Abstain < 0 {
		return Tally{}, fmt.Errorf("poll %d tally would go negative", pollID)
	}
	p.Tally = next
	t.polls[pollID] = p
	return next, nil
}

func (t *memoryTx) MarkAwarded(_ context.Context, pollID int64, voterID string) (bool, error) {
	k := voteKey{pollID, voterID}
	if t.awards[k] {
		return false, nil
	}
	t.awards[k] = true
	return true, nil
}

// Poll returns a snapshot of a poll
func (s *MemoryStore) Poll(pollID int64) (Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.polls[pollID]
	return p, ok
}

// Votes returns every current vote on a poll, ordered by voter
func (s *MemoryStore) Votes(pollID int64) []PollVote {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PollVote
	for k, v := range s.votes {
		if k.pollID == pollID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterID < out[j].VoterID })
	return out
}

// DivergenceSource implementation

func (s *MemoryStore) GetOfficial(_ context.Context, voterID string) (*Official, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officials[voterID]
	if !ok {
		return nil, invalid(ErrRepNotFound, voterID)
	}
	return &o, nil
}

func (s *MemoryStore) GetPoll(_ context.Context, pollID int64) (*Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[pollID]
	if !ok {
		return nil, invalid(ErrPollNotFound, fmt.Sprint(pollID))
	}
	return &p, nil
}

func (s *MemoryStore) ActivePolls(_ context.Context) ([]*Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*Poll{}
	for _, p := range s.polls {
		if p.Active {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) RepPositions(_ context.Context, voterID string) (map[int64]Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]Choice)
	for k, v := range s.votes {
		if k.voterID == voterID && v.IsRepVote && s.polls[k.pollID].Active {
			out[k.pollID] = v.Choice
		}
	}
	return out, nil
}

func (s *MemoryStore) CitizenTotals(_ context.Context, stateCode string) (map[int64]Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]Tally)
	for k, v := range s.votes {
		if v.IsRepVote || !s.polls[k.pollID].Active {
			continue
		}
		if stateCode != "" && s.profiles[k.voterID] != stateCode {
			continue
		}
		out[k.pollID] = out[k.pollID].Add(unit(v.Choice, 1))
	}
	return out, nil
}

func (s *MemoryStore) PollCitizenTotals(_ context.Context, pollID int64, stateCode string) (Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Tally
	for k, v := range s.votes {
		if k.pollID != pollID || v.IsRepVote {
			continue
		}
		if stateCode != "" && s.profiles[k.voterID] != stateCode {
			continue
		}
		t = t.Add(unit(v.Choice, 1))
	}
	return t, nil
}

func (s *MemoryStore) RepPosition(_ context.Context, pollID int64, voterID string) (Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.votes[voteKey{pollID, voterID}]
	if !ok || !v.IsRepVote {
		return "", nil
	}
	return v.Choice, nil
}

func (s *MemoryStore) Officials(_ context.Context) ([]*Official, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Official, 0, len(s.officials))
	for _, o := range s.officials {
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.State != b.State {
			return a.State < b.State
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.VoterID < b.VoterID
	})
	return out, nil
}

func (s *MemoryStore) RepTallies(_ context.Context) (map[string]Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Tally)
	for k, v := range s.votes {
		if v.IsRepVote && s.polls[k.pollID].Active {
			out[k.voterID] = out[k.voterID].Add(unit(v.Choice, 1))
		}
	}
	return out, nil
}
