package index

import (
	"sort"

	"github.com/chatflow/chatflow/core"
)

// RRFRankConstant is the rank constant for Reciprocal Rank Fusion. 60 is the
// value from the original RRF paper and the common default across search
// engines.
const RRFRankConstant = 60

// ScoredPoint is one hit from a single sub-query, ranked by that sub-query's
// own score.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload core.Payload
}

// FuseRRF combines ranked sub-query result lists with Reciprocal Rank
// Fusion: the fused score of a record is the sum over the sub-queries it
// appears in of 1/(rankConstant + rank), with rank 1-based. Records absent
// from a sub-query contribute nothing from it.
//
// The fused list is sorted by score descending and capped to limit. Ties
// keep first-seen order across the input lists, which mirrors the index's
// deterministic internal ordering.
func FuseRRF(lists [][]ScoredPoint, rankConstant, limit int) []core.RetrievalResult {
	type fused struct {
		point ScoredPoint
		score float64
		seen  int
	}

	byID := make(map[string]*fused)
	order := make([]*fused, 0)

	for _, list := range lists {
		for rank, point := range list {
			f, ok := byID[point.ID]
			if !ok {
				f = &fused{point: point, seen: len(order)}
				byID[point.ID] = f
				order = append(order, f)
			}
			f.score += 1.0 / float64(rankConstant+rank+1)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].score > order[j].score
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	results := make([]core.RetrievalResult, len(order))
	for i, f := range order {
		results[i] = core.RetrievalResult{
			Text:     f.point.Payload.Text,
			Metadata: f.point.Payload.Metadata,
			Score:    f.score,
		}
	}
	return results
}
