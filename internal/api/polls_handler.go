package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/peoplesbranch/scorecard/internal/polls"
)

const (
	voterHeader   = "X-Voter-ID"
	repVoteHeader = "X-Rep-Vote"
)

// Caster applies a poll vote
type Caster interface {
	CastVote(ctx context.Context, pollID int64, voterID, choice string, isRepVote bool) (*polls.CastResult, error)
}

// DivergenceAnalyzer compares representatives with citizens
type DivergenceAnalyzer interface {
	Divergence(ctx context.Context, repID string, pollID int64, scope polls.Scope) (*polls.DivergenceReport, error)
	RollCall(ctx context.Context, repID string, scope polls.Scope) (*polls.RepRollCall, error)
	SilenceBoard(ctx context.Context, f polls.BoardFilter) (*polls.SilenceBoard, error)
}

// PollHandler serves poll casting and divergence reports
type PollHandler struct {
	caster   Caster
	analyzer DivergenceAnalyzer
}

// NewPollHandler creates a new poll handler
func NewPollHandler(caster Caster, analyzer DivergenceAnalyzer) *PollHandler {
	return &PollHandler{caster: caster, analyzer: analyzer}
}

// CastRequest is the body of a poll vote
type CastRequest struct {
	Choice string `json:"choice"`
}

// Cast handles POST /api/polls/{pollID}/votes. The voter identity and rep
// flag come from the session layer in front of this service.
func (h *PollHandler) Cast(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	var req CastRequest
	if err := parseJSON(w, r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	voterID := strings.TrimSpace(r.Header.Get(voterHeader))
	isRep, _ := strconv.ParseBool(r.Header.Get(repVoteHeader))

	res, err := h.caster.CastVote(r.Context(), pollID, voterID, req.Choice, isRep)
	if err != nil {
		respondError(w, err, "op", "cast", "poll_id", pollID, "voter_id", voterID)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// Divergence handles GET /api/reps/{voterID}/divergence/{pollID}
func (h *PollHandler) Divergence(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}
	scope, err := polls.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		respondError(w, err)
		return
	}
	repID := chi.URLParam(r, "voterID")

	report, err := h.analyzer.Divergence(r.Context(), repID, pollID, scope)
	if err != nil {
		respondError(w, err, "op", "divergence", "rep", repID, "poll_id", pollID)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// RollCall handles GET /api/reps/{voterID}/rollcall
func (h *PollHandler) RollCall(w http.ResponseWriter, r *http.Request) {
	scope, err := polls.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		respondError(w, err)
		return
	}
	repID := chi.URLParam(r, "voterID")

	rc, err := h.analyzer.RollCall(r.Context(), repID, scope)
	if err != nil {
		respondError(w, err, "op", "rollcall", "rep", repID)
		return
	}

	respondJSON(w, http.StatusOK, rc)
}

// Board handles GET /api/reps?state=&chamber=&party=
func (h *PollHandler) Board(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	board, err := h.analyzer.SilenceBoard(r.Context(), polls.BoardFilter{
		State:   q.Get("state"),
		Chamber: q.Get("chamber"),
		Party:   q.Get("party"),
	})
	if err != nil {
		respondError(w, err, "op", "silence_board")
		return
	}

	respondJSON(w, http.StatusOK, board)
}

func parsePollID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "pollID"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "Invalid poll ID")
		return 0, false
	}
	return id, true
}
