// Package matcher resolves a free-text user query to the single
// best-matching published knowledge point.
//
// The score is word-set overlap divided by the candidate's word-set size,
// not the query's. Queries that are supersets of a short canonical question
// score high; verbose candidates are penalized. The asymmetric denominator
// is the historical behavior of this system and callers depend on it, so it
// stays as is.
package matcher

import (
	"strings"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
)

// Threshold a candidate score must strictly exceed to count as a match.
const Threshold = 0.5

// Match returns the best-scoring candidate, or nil when no comparison
// string scores above the threshold. Candidates must already be filtered to
// published status; Match does not check. It is a pure function: identical
// inputs always produce the identical result, and it cannot fail.
func Match(query string, candidates []models.KnowledgePoint) *models.KnowledgePoint {
	best, _ := Best(query, candidates)
	return best
}

// Best is Match plus the winning score, for callers that report it.
func Best(query string, candidates []models.KnowledgePoint) (*models.KnowledgePoint, float64) {
	if strings.TrimSpace(query) == "" {
		return nil, 0
	}

	queryWords := wordSet(query)

	var best *models.KnowledgePoint
	bestScore := 0.0

	for i := range candidates {
		candidate := &candidates[i]

		// Standard question first, then each similar question, all scored
		// independently against the same point. Strictly-greater keeps the
		// first-seen point on ties.
		for _, comparison := range comparisons(candidate) {
			score := overlapScore(queryWords, comparison)
			if score > bestScore {
				bestScore = score
				best = candidate
			}
		}
	}

	if bestScore > Threshold {
		return best, bestScore
	}
	return nil, bestScore
}

// Score computes the similarity of query against a single comparison
// string: |query words ∩ candidate words| / |candidate words|, 0 when the
// candidate tokenizes to nothing.
func Score(query, comparison string) float64 {
	return overlapScore(wordSet(query), comparison)
}

func comparisons(point *models.KnowledgePoint) []string {
	out := make([]string, 0, 1+len(point.SimilarQuestions))
	out = append(out, point.StandardQuestion)
	out = append(out, point.SimilarQuestions...)
	return out
}

func overlapScore(queryWords map[string]struct{}, comparison string) float64 {
	candidateWords := wordSet(comparison)
	if len(candidateWords) == 0 {
		return 0
	}

	intersection := 0
	for word := range candidateWords {
		if _, ok := queryWords[word]; ok {
			intersection++
		}
	}

	return float64(intersection) / float64(len(candidateWords))
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
