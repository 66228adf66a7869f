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
	"regexp"
	"sort"
	"strings"

	"github.com/chatflow/chatflow/core"
)

// snippetScanLimit caps how much of a result's snippet participates in
// scoring, in characters.
const snippetScanLimit = 200

var wordPattern = regexp.MustCompile(`\w+`)

// tokenize lowercases text and splits it into word tokens.
func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// relevanceScore counts how many query tokens occur in the result's title and
// the start of its snippet, plus a coverage bonus of 2 times the fraction of
// distinct query tokens that appear at all. Occurrences are counted per
// document token, so a title repeating a query word scores it twice.
func relevanceScore(result core.WebResult, queryTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	snippet := result.Snippet
	if runes := []rune(snippet); len(runes) > snippetScanLimit {
		snippet = string(runes[:snippetScanLimit])
	}
	docTokens := tokenize(result.Title + " " + snippet)

	querySet := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = true
	}

	occurrences := 0
	covered := make(map[string]bool, len(querySet))
	for _, t := range docTokens {
		if querySet[t] {
			occurrences++
			covered[t] = true
		}
	}
	coverage := float64(len(covered)) / float64(len(querySet))
	return float64(occurrences) + 2*coverage
}

// RankResults orders results by relevance to the query and returns at most
// topK of them. The sort is stable, so equally scored results keep the
// provider's original order.
func RankResults(results []core.WebResult, query string, topK int) []core.WebResult {
	queryTokens := tokenize(query)

	ranked := make([]core.WebResult, len(results))
	copy(ranked, results)

	scores := make(map[int]float64, len(ranked))
	for i, r := range ranked {
		scores[i] = relevanceScore(r, queryTokens)
	}

	order := make([]int, len(ranked))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	out := make([]core.WebResult, 0, len(order))
	for _, idx := range order {
		out = append(out, ranked[idx])
	}
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
