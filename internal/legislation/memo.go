package legislation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/peoplesbranch/scorecard/internal/metrics"
)

// BillTitle is a title catalog row for a bill or resolution
type BillTitle struct {
	Title      string `json:"title"`
	ShortTitle string `json:"shortTitle,omitempty"`
}

// Catalog is the read-only bill/nomination title catalog.
// A miss returns (nil, nil) or ("", nil); errors mean the catalog was unreachable.
type Catalog interface {
	BillTitle(ctx context.Context, congress int, billType string, number int) (*BillTitle, error)
	NominationDescription(ctx context.Context, congress, number int) (string, error)
}

// Memo caches catalog reads for one resolution batch. Build one per
// request with NewMemo and drop it when the batch is done.
type Memo struct {
	mu      sync.Mutex
	catalog Catalog
	metrics *metrics.Metrics

	bills   map[string]*BillTitle // nil value = known miss
	noms    map[string]string     // "" = known miss
	lookups int
}

// NewMemo creates an empty memo over catalog; catalog may be nil
func NewMemo(catalog Catalog, m *metrics.Metrics) *Memo {
	return &Memo{
		catalog: catalog,
		metrics: m,
		bills:   make(map[string]*BillTitle),
		noms:    make(map[string]string),
	}
}

// Bill returns the catalog title, or nil on a miss or catalog failure.
// Failures are not memoized so a later vote in the batch can retry.
func (m *Memo) Bill(ctx context.Context, congress int, billType string, number int) *BillTitle {
	if m == nil || m.catalog == nil {
		return nil
	}
	key := fmt.Sprintf("%d:%s:%d", congress, billType, number)

	m.mu.Lock()
	defer m.mu.Unlock()

	if bt, ok := m.bills[key]; ok {
		return bt
	}

	m.lookups++
	bt, err := m.catalog.BillTitle(ctx, congress, billType, number)
	if err != nil {
		slog.Warn("Title catalog lookup failed", "bill", key, "error", err)
		m.metrics.IncCatalogLookup("bill", "error")
		return nil
	}
	m.metrics.IncCatalogLookup("bill", hitOrMiss(bt != nil))
	m.bills[key] = bt
	return bt
}

// Nomination returns the nomination description, or "" on a miss or failure
func (m *Memo) Nomination(ctx context.Context, congress, number int) string {
	if m == nil || m.catalog == nil {
		return ""
	}
	key := fmt.Sprintf("%d:%d", congress, number)

	m.mu.Lock()
	defer m.mu.Unlock()

	if desc, ok := m.noms[key]; ok {
		return desc
	}

	m.lookups++
	desc, err := m.catalog.NominationDescription(ctx, congress, number)
	if err != nil {
		slog.Warn("Nomination catalog lookup failed", "nomination", key, "error", err)
		m.metrics.IncCatalogLookup("nomination", "error")
		return ""
	}
	m.metrics.IncCatalogLookup("nomination", hitOrMiss(desc != ""))
	m.noms[key] = desc
	return desc
}

// Lookups counts reads that reached the catalog
func (m *Memo) Lookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
