package polls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDivergence(t *testing.T) {
	tests := []struct {
		name      string
		position  Choice
		citizens  Tally
		wantGap   int
		wantLabel string
	}{
		{"nay is aligned regardless of split", Nay, Tally{Yea: 1, Nay: 99}, 0, LabelAligned},
		{"nay with no citizens", Nay, Tally{}, 0, LabelAligned},
		{"silent rep, 72% nay", "", Tally{Yea: 28, Nay: 72}, 72, LabelSilence},
		{"yea rep", Yea, Tally{Yea: 40, Nay: 50, Abstain: 10}, 50, LabelGap},
		{"abstain rep counts as gap", Abstain, Tally{Nay: 2, Yea: 1}, 67, LabelGap},
		{"no citizen votes", Yea, Tally{}, 0, LabelGap},
		{"rounds half up", "", Tally{Nay: 1, Yea: 7}, 13, LabelSilence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gap, label := ComputeDivergence(tt.position, tt.citizens)
			assert.Equal(t, tt.wantGap, gap)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestSilenceRate(t *testing.T) {
	assert.Equal(t, 100, SilenceRate(0, 0))
	assert.Equal(t, 100, SilenceRate(4, 0))
	assert.Equal(t, 0, SilenceRate(4, 4))
	assert.Equal(t, 67, SilenceRate(3, 1))
	assert.Equal(t, 33, SilenceRate(3, 2))
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeState, s)

	s, err = ParseScope("Nation")
	require.NoError(t, err)
	assert.Equal(t, ScopeNation, s)

	_, err = ParseScope("county")
	assert.True(t, IsValidation(err))
}

// seedDivergence builds: rep R from OH; poll 1 (rep silent), poll 2 (rep nay),
// poll 3 (rep yea), poll 4 closed (rep yea).
func seedDivergence(t *testing.T) (*MemoryStore, [4]int64) {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()
	store.AddOfficial(Official{VoterID: "rep-oh", FullName: "Pat Smith", Party: "R", State: "OH", Chamber: "house"})

	var ids [4]int64
	for i := range ids {
		ids[i] = store.CreatePoll("threat", true)
	}
	ledger := newTestLedger(store, nil)
	cast := func(poll int64, voter, choice string, rep bool) {
		_, err := ledger.CastVote(ctx, poll, voter, choice, rep)
		require.NoError(t, err)
	}

	// Ohio citizens: 18 nay, 7 yea on every poll
	for i := 0; i < 25; i++ {
		voter := "oh-" + string(rune('a'+i))
		store.SetVoterState(voter, "OH")
		choice := "nay"
		if i >= 18 {
			choice = "yea"
		}
		for _, id := range ids {
			cast(id, voter, choice, false)
		}
	}
	// Texas citizens all yea
	for i := 0; i < 5; i++ {
		voter := "tx-" + string(rune('a'+i))
		store.SetVoterState(voter, "TX")
		for _, id := range ids {
			cast(id, voter, "yea", false)
		}
	}

	cast(ids[1], "rep-oh", "nay", true)
	cast(ids[2], "rep-oh", "yea", true)
	cast(ids[3], "rep-oh", "yea", true)
	store.SetActive(ids[3], false)
	return store, ids
}

func TestAnalyzer_Divergence(t *testing.T) {
	store, ids := seedDivergence(t)
	a := NewAnalyzer(store)
	ctx := context.Background()

	t.Run("silent rep in state scope", func(t *testing.T) {
		r, err := a.Divergence(ctx, "rep-oh", ids[0], ScopeState)
		require.NoError(t, err)
		assert.Equal(t, "OH", r.ScopeCode)
		assert.Equal(t, Tally{Yea: 7, Nay: 18}, r.CitizenTotal)
		assert.Equal(t, 72, r.Gap)
		assert.Equal(t, LabelSilence, r.Label)
		assert.Empty(t, r.RepPosition)
	})

	t.Run("rep vote excluded from nation totals", func(t *testing.T) {
		r, err := a.Divergence(ctx, "rep-oh", ids[2], ScopeNation)
		require.NoError(t, err)
		assert.Equal(t, Tally{Yea: 12, Nay: 18}, r.CitizenTotal)
		assert.Equal(t, 60, r.Gap)
		assert.Equal(t, LabelGap, r.Label)
		assert.Equal(t, Yea, r.RepPosition)
	})

	t.Run("nay is aligned", func(t *testing.T) {
		r, err := a.Divergence(ctx, "rep-oh", ids[1], ScopeState)
		require.NoError(t, err)
		assert.Equal(t, 0, r.Gap)
		assert.Equal(t, LabelAligned, r.Label)
	})

	t.Run("unknown rep", func(t *testing.T) {
		_, err := a.Divergence(ctx, "nobody", ids[0], ScopeState)
		assert.ErrorIs(t, err, ErrRepNotFound)
	})

	t.Run("unknown poll", func(t *testing.T) {
		_, err := a.Divergence(ctx, "rep-oh", 404, ScopeState)
		assert.ErrorIs(t, err, ErrPollNotFound)
	})
}

func TestAnalyzer_RollCall(t *testing.T) {
	store, ids := seedDivergence(t)

	rc, err := NewAnalyzer(store).RollCall(context.Background(), "rep-oh", ScopeState)
	require.NoError(t, err)

	assert.Equal(t, 3, rc.ActivePolls, "closed poll excluded")
	assert.Equal(t, 2, rc.Responded)
	assert.Equal(t, 1, rc.Yea)
	assert.Equal(t, 1, rc.Nay)
	assert.Equal(t, 33, rc.SilenceRate)

	require.Len(t, rc.Reports, 3)
	assert.Equal(t, ids[0], rc.Reports[0].PollID)
	assert.Equal(t, LabelSilence, rc.Reports[0].Label)
	assert.Equal(t, LabelAligned, rc.Reports[1].Label)
	assert.Equal(t, 72, rc.Reports[2].Gap)
}

func TestAnalyzer_RollCallNoActivePolls(t *testing.T) {
	store := NewMemoryStore()
	store.AddOfficial(Official{VoterID: "rep", State: "CA"})

	rc, err := NewAnalyzer(store).RollCall(context.Background(), "rep", ScopeNation)
	require.NoError(t, err)
	assert.Equal(t, 0, rc.ActivePolls)
	assert.Equal(t, 100, rc.SilenceRate)
	assert.Empty(t, rc.Reports)
}

func TestAnalyzer_SilenceBoard(t *testing.T) {
	store, _ := seedDivergence(t)
	store.AddOfficial(Official{VoterID: "rep-tx", FullName: "Lee Ortiz", Party: "D", State: "TX", Chamber: "senate"})
	store.AddOfficial(Official{VoterID: "rep-oh2", FullName: "Alex Adams", Party: "D", State: "OH", Chamber: "house"})
	a := NewAnalyzer(store)
	ctx := context.Background()

	board, err := a.SilenceBoard(ctx, BoardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, board.ActivePolls)
	require.Len(t, board.Reps, 3)

	ids := []string{board.Reps[0].Official.VoterID, board.Reps[1].Official.VoterID, board.Reps[2].Official.VoterID}
	assert.Equal(t, []string{"rep-oh2", "rep-oh", "rep-tx"}, ids, "state then name")

	pat := board.Reps[1]
	assert.Equal(t, 2, pat.Responded, "closed poll excluded")
	assert.Equal(t, 1, pat.Yea)
	assert.Equal(t, 1, pat.Nay)
	assert.Equal(t, 33, pat.SilenceRate)
	assert.Equal(t, 100, board.Reps[0].SilenceRate)

	t.Run("filters", func(t *testing.T) {
		board, err := a.SilenceBoard(ctx, BoardFilter{State: "oh", Party: "d"})
		require.NoError(t, err)
		require.Len(t, board.Reps, 1)
		assert.Equal(t, "rep-oh2", board.Reps[0].Official.VoterID)

		board, err = a.SilenceBoard(ctx, BoardFilter{Chamber: "Senate"})
		require.NoError(t, err)
		require.Len(t, board.Reps, 1)
		assert.Equal(t, "rep-tx", board.Reps[0].Official.VoterID)
	})

	t.Run("bad chamber", func(t *testing.T) {
		_, err := a.SilenceBoard(ctx, BoardFilter{Chamber: "assembly"})
		assert.True(t, IsValidation(err))
		assert.ErrorIs(t, err, ErrInvalidChamber)
	})
}

func TestAnalyzer_SilenceBoardNoActivePolls(t *testing.T) {
	store := NewMemoryStore()
	store.AddOfficial(Official{VoterID: "rep", State: "CA"})

	board, err := NewAnalyzer(store).SilenceBoard(context.Background(), BoardFilter{})
	require.NoError(t, err)
	require.Len(t, board.Reps, 1)
	assert.Equal(t, 100, board.Reps[0].SilenceRate)
}
