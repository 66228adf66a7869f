package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflow/chatflow/core"
)

func point(id string, score float32) ScoredPoint {
	return ScoredPoint{
		ID:      id,
		Score:   score,
		Payload: core.Payload{Text: "text-" + id, Metadata: map[string]string{"owner_id": "a"}},
	}
}

func TestFuseRRF_BothLists(t *testing.T) {
	dense := []ScoredPoint{point("x", 0.9), point("y", 0.8), point("z", 0.7)}
	sparse := []ScoredPoint{point("y", 5.0), point("z", 4.0), point("x", 3.0)}

	results := FuseRRF([][]ScoredPoint{dense, sparse}, RRFRankConstant, 10)
	require.Len(t, results, 3)

	// x is ranked 1st in dense and 3rd in sparse.
	wantX := 1.0/61.0 + 1.0/63.0
	// y is ranked 2nd in dense and 1st in sparse.
	wantY := 1.0/62.0 + 1.0/61.0
	// z is ranked 3rd in dense and 2nd in sparse.
	wantZ := 1.0/63.0 + 1.0/62.0

	scores := map[string]float64{}
	for _, r := range results {
		scores[r.Text] = r.Score
	}
	assert.InDelta(t, wantX, scores["text-x"], 1e-12)
	assert.InDelta(t, wantY, scores["text-y"], 1e-12)
	assert.InDelta(t, wantZ, scores["text-z"], 1e-12)

	// y has the highest fused score.
	assert.Equal(t, "text-y", results[0].Text)
}

func TestFuseRRF_SingleListMembership(t *testing.T) {
	dense := []ScoredPoint{point("a", 0.9), point("b", 0.8)}
	sparse := []ScoredPoint{}

	results := FuseRRF([][]ScoredPoint{dense, sparse}, RRFRankConstant, 10)
	require.Len(t, results, 2)

	// A record present in only one sub-query at rank 2 scores 1/62.
	assert.InDelta(t, 1.0/62.0, results[1].Score, 1e-12)
	assert.InDelta(t, 1.0/61.0, results[0].Score, 1e-12)
}

func TestFuseRRF_Limit(t *testing.T) {
	dense := []ScoredPoint{point("a", 3), point("b", 2), point("c", 1)}
	results := FuseRRF([][]ScoredPoint{dense}, RRFRankConstant, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "text-a", results[0].Text)
	assert.Equal(t, "text-b", results[1].Text)
}

func TestFuseRRF_TiesKeepFirstSeenOrder(t *testing.T) {
	// a and b swap ranks between the lists, so their fused scores tie.
	dense := []ScoredPoint{point("a", 0.9), point("b", 0.8)}
	sparse := []ScoredPoint{point("b", 5.0), point("a", 4.0)}

	results := FuseRRF([][]ScoredPoint{dense, sparse}, RRFRankConstant, 10)
	require.Len(t, results, 2)
	assert.InDelta(t, results[0].Score, results[1].Score, 1e-12)
	assert.Equal(t, "text-a", results[0].Text)
}

func TestFuseRRF_Empty(t *testing.T) {
	results := FuseRRF([][]ScoredPoint{{}, {}}, RRFRankConstant, 5)
	assert.Empty(t, results)
}
