package mock

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/chatflow/chatflow/core"
	"github.com/chatflow/chatflow/index"
)

// MockIndex is an in-memory implementation of index.Index for tests.
// It scores dense sub-queries with cosine similarity and sparse sub-queries
// with a dot product over matching indices, then fuses with the same RRF
// routine as the production adapter. Function fields allow behavior
// injection a la ai/mock.
type MockIndex struct {
	// EnsureCollectionFunc overrides EnsureCollection if set.
	EnsureCollectionFunc func(ctx context.Context, name string, denseDim int) error
	// UpsertFunc overrides Upsert if set.
	UpsertFunc func(ctx context.Context, collection string, records []core.VectorRecord) error
	// QueryFunc overrides Query if set.
	QueryFunc func(ctx context.Context, collection string, q index.Query) ([]core.RetrievalResult, error)

	mu          sync.Mutex
	collections map[string]int // name -> dense dim
	records     map[string][]core.VectorRecord

	ensureCalls int
	upsertCalls int
	queryCalls  int
}

var _ index.Index = (*MockIndex)(nil)

// NewMockIndex creates an empty in-memory index.
func NewMockIndex() *MockIndex {
	return &MockIndex{
		collections: make(map[string]int),
		records:     make(map[string][]core.VectorRecord),
	}
}

// EnsureCollection records the collection, idempotently.
func (m *MockIndex) EnsureCollection(ctx context.Context, name string, denseDim int) error {
	m.mu.Lock()
	m.ensureCalls++
	m.mu.Unlock()

	if m.EnsureCollectionFunc != nil {
		return m.EnsureCollectionFunc(ctx, name, denseDim)
	}
	if name == "" {
		return index.ErrCollectionRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = denseDim
	}
	return nil
}

// Upsert appends records; caller-supplied IDs are not deduplicated, matching
// the production adapter's documented behavior.
func (m *MockIndex) Upsert(ctx context.Context, collection string, records []core.VectorRecord) error {
	m.mu.Lock()
	m.upsertCalls++
	m.mu.Unlock()

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, collection, records)
	}
	if collection == "" {
		return index.ErrCollectionRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[collection] = append(m.records[collection], records...)
	return nil
}

// Query runs owner-filtered dense and sparse sub-queries over the stored
// records and fuses them with RRF.
func (m *MockIndex) Query(ctx context.Context, collection string, q index.Query) ([]core.RetrievalResult, error) {
	m.mu.Lock()
	m.queryCalls++
	m.mu.Unlock()

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, collection, q)
	}
	if collection == "" {
		return nil, index.ErrCollectionRequired
	}
	if q.OwnerID == "" {
		return nil, index.ErrOwnerRequired
	}

	m.mu.Lock()
	stored := make([]core.VectorRecord, len(m.records[collection]))
	copy(stored, m.records[collection])
	m.mu.Unlock()

	// Owner pre-filter on both sub-queries.
	var candidates []core.VectorRecord
	for _, r := range stored {
		if r.Payload.Metadata["owner_id"] == q.OwnerID {
			candidates = append(candidates, r)
		}
	}

	dense := rankBy(candidates, q.Limit, q.ScoreThreshold, func(r core.VectorRecord) float32 {
		return cosine(q.Dense, r.Dense)
	})
	sparse := rankBy(candidates, q.Limit, q.ScoreThreshold, func(r core.VectorRecord) float32 {
		return sparseDot(q.Sparse, r.Sparse)
	})

	return index.FuseRRF([][]index.ScoredPoint{dense, sparse}, index.RRFRankConstant, q.Limit), nil
}

// EnsureCollectionCalls returns how many times EnsureCollection was called.
func (m *MockIndex) EnsureCollectionCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureCalls
}

// UpsertCalls returns how many times Upsert was called.
func (m *MockIndex) UpsertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertCalls
}

// QueryCalls returns how many times Query was called.
func (m *MockIndex) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// Collections returns the names of collections created so far.
func (m *MockIndex) Collections() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns the stored records of a collection.
func (m *MockIndex) Records(collection string) []core.VectorRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[collection]
}

func rankBy(records []core.VectorRecord, limit int, threshold float32, score func(core.VectorRecord) float32) []index.ScoredPoint {
	points := make([]index.ScoredPoint, 0, len(records))
	for _, r := range records {
		s := score(r)
		if s < threshold {
			continue
		}
		points = append(points, index.ScoredPoint{ID: r.ID, Score: s, Payload: r.Payload})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Score > points[j].Score })
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	return points
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func sparseDot(a, b core.SparseVector) float32 {
	weights := make(map[uint32]float32, len(a.Indices))
	for i, idx := range a.Indices {
		if i < len(a.Values) {
			weights[idx] = a.Values[i]
		}
	}
	var dot float32
	for i, idx := range b.Indices {
		if w, ok := weights[idx]; ok && i < len(b.Values) {
			dot += w * b.Values[i]
		}
	}
	return dot
}
