package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/peoplesbranch/scorecard/internal/legislation"
)

// Digester runs the resolve, group and classify pipeline
type Digester interface {
	Digest(ctx context.Context, filters *legislation.ListFilters) ([]*legislation.VoteGroup, error)
	ResolveVote(ctx context.Context, id string) (*legislation.EnrichedVote, error)
}

// VoteHandler serves roll-call digests
type VoteHandler struct {
	digester        Digester
	defaultCongress int
}

// NewVoteHandler creates a new vote handler. defaultCongress applies when a
// request names none; 0 leaves the window unscoped.
func NewVoteHandler(d Digester, defaultCongress int) *VoteHandler {
	return &VoteHandler{digester: d, defaultCongress: defaultCongress}
}

// GroupsResponse is the digest of a vote window
type GroupsResponse struct {
	Groups []*legislation.VoteGroup `json:"groups"`
	Count  int                      `json:"count"`
}

// Groups handles GET /api/votes/groups
func (h *VoteHandler) Groups(w http.ResponseWriter, r *http.Request) {
	filters, msg := parseListFilters(r)
	if msg != "" {
		badRequest(w, msg)
		return
	}
	if filters.Congress == nil && h.defaultCongress > 0 {
		c := h.defaultCongress
		filters.Congress = &c
	}

	groups, err := h.digester.Digest(r.Context(), filters)
	if err != nil {
		respondError(w, err, "op", "digest")
		return
	}

	respondJSON(w, http.StatusOK, GroupsResponse{Groups: groups, Count: len(groups)})
}

// Subject handles GET /api/votes/{id}/subject
func (h *VoteHandler) Subject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		badRequest(w, "Missing vote ID")
		return
	}

	ev, err := h.digester.ResolveVote(r.Context(), id)
	if err != nil {
		respondError(w, err, "op", "resolve", "vote_id", id)
		return
	}

	respondJSON(w, http.StatusOK, ev)
}

// parseListFilters reads congress, chamber, since, until, view and limit. A
// non-empty message means the query was malformed.
func parseListFilters(r *http.Request) (*legislation.ListFilters, string) {
	q := r.URL.Query()
	filters := &legislation.ListFilters{}

	if s := q.Get("congress"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, "Invalid congress"
		}
		filters.Congress = &n
	}

	if s := q.Get("chamber"); s != "" {
		c := legislation.Chamber(s)
		if c != legislation.ChamberHouse && c != legislation.ChamberSenate {
			return nil, "Invalid chamber (use house or senate)"
		}
		filters.Chamber = &c
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"since", &filters.Since}, {"until", &filters.Until}} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}
		t, ok := parseDate(s)
		if !ok {
			return nil, "Invalid " + p.name + " (use YYYY-MM-DD or RFC3339)"
		}
		*p.dst = &t
	}

	view, err := legislation.ParseView(q.Get("view"))
	if err != nil {
		return nil, "Invalid view (use close, tiebreak or bipartisan)"
	}
	filters.View = view

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, "Invalid limit"
		}
		filters.Limit = n
	}

	return filters, ""
}

func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
