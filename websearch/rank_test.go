// Copyright 2025 The Chatflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package websearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflow/chatflow/core"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"gemma", "3", "27b"}, tokenize("Gemma 3 27B"))
	assert.Equal(t, []string{"hello", "world"}, tokenize("Hello, world!"))
	assert.Empty(t, tokenize("  ...  "))
}

func TestRelevanceScore(t *testing.T) {
	queryTokens := tokenize("Gemma 3 27B")

	t.Run("counts occurrences plus coverage fraction", func(t *testing.T) {
		r := core.WebResult{
			Title:   "Gemma 3 27B benchmark",
			Snippet: "Gemma 3 27B is Google's open model.",
		}
		// Occurrences: gemma x2, 3 x2, 27b x2 = 6. Coverage: 3/3 x2 = 2.
		assert.InDelta(t, 8.0, relevanceScore(r, queryTokens), 1e-9)
	})

	t.Run("partial coverage is fractional", func(t *testing.T) {
		tokens := tokenize("alpha beta gamma delta")
		one := core.WebResult{Title: "alpha alpha alpha alpha alpha"}
		three := core.WebResult{Title: "beta gamma delta"}
		// 5 occurrences + 2 x 1/4 coverage.
		assert.InDelta(t, 5.5, relevanceScore(one, tokens), 1e-9)
		// 3 occurrences + 2 x 3/4 coverage.
		assert.InDelta(t, 4.5, relevanceScore(three, tokens), 1e-9)
	})

	t.Run("no overlap scores zero", func(t *testing.T) {
		r := core.WebResult{Title: "Unrelated news", Snippet: "nothing here"}
		assert.Zero(t, relevanceScore(r, queryTokens))
	})

	t.Run("snippet counted only up to the scan limit", func(t *testing.T) {
		padding := strings.Repeat("x ", snippetScanLimit/2)
		r := core.WebResult{Title: "other", Snippet: padding + " Gemma"}
		assert.Zero(t, relevanceScore(r, queryTokens))
	})

	t.Run("scan limit counts runes not bytes", func(t *testing.T) {
		within := core.WebResult{
			Title:   "other",
			Snippet: strings.Repeat("é", snippetScanLimit-6) + " gemma",
		}
		assert.Positive(t, relevanceScore(within, queryTokens))

		beyond := core.WebResult{
			Title:   "other",
			Snippet: strings.Repeat("é", snippetScanLimit) + " gemma",
		}
		assert.Zero(t, relevanceScore(beyond, queryTokens))
	})

	t.Run("empty query", func(t *testing.T) {
		r := core.WebResult{Title: "Gemma"}
		assert.Zero(t, relevanceScore(r, nil))
	})
}

func TestRankResults(t *testing.T) {
	t.Run("relevant results rank first", func(t *testing.T) {
		results := []core.WebResult{
			{Title: "Llama news", Snippet: "unrelated", Link: "https://a"},
			{Title: "Gemma 3 27B released", Snippet: "Gemma 3 27B details", Link: "https://b"},
			{Title: "Gemma cooking recipes", Snippet: "gardening", Link: "https://c"},
		}

		ranked := RankResults(results, "Gemma 3 27B", 0)
		require.Len(t, ranked, 3)
		assert.Equal(t, "https://b", ranked[0].Link)
		assert.Equal(t, "https://c", ranked[1].Link)
		assert.Equal(t, "https://a", ranked[2].Link)
	})

	t.Run("repeated hits outweigh broad coverage", func(t *testing.T) {
		results := []core.WebResult{
			{Title: "beta gamma delta overview", Link: "https://broad"},
			{Title: "alpha alpha alpha alpha alpha", Link: "https://repeat"},
		}

		ranked := RankResults(results, "alpha beta gamma delta", 0)
		require.Len(t, ranked, 2)
		assert.Equal(t, "https://repeat", ranked[0].Link)
	})

	t.Run("ties keep provider order", func(t *testing.T) {
		results := []core.WebResult{
			{Title: "first", Link: "https://1"},
			{Title: "second", Link: "https://2"},
			{Title: "third", Link: "https://3"},
		}

		ranked := RankResults(results, "no match", 0)
		require.Len(t, ranked, 3)
		assert.Equal(t, "https://1", ranked[0].Link)
		assert.Equal(t, "https://2", ranked[1].Link)
		assert.Equal(t, "https://3", ranked[2].Link)
	})

	t.Run("caps to topK", func(t *testing.T) {
		results := []core.WebResult{
			{Title: "a"}, {Title: "b"}, {Title: "c"},
		}
		assert.Len(t, RankResults(results, "q", 2), 2)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		results := []core.WebResult{
			{Title: "unrelated", Link: "https://1"},
			{Title: "query match query", Link: "https://2"},
		}
		RankResults(results, "query", 0)
		assert.Equal(t, "https://1", results[0].Link)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, RankResults(nil, "q", 5))
	})
}
