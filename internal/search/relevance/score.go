// Package relevance computes the heuristic ranking signal for free-text searches.
//
// Scores are unbounded and not normalized; they order the results of one query
// and are not comparable across queries.
package relevance

import (
	"sort"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
)

const (
	TitleWeight       = 10.0
	TitlePrefixWeight = 5.0
	DescriptionWeight = 5.0
	ContentWeight     = 3.0
	TagWeight         = 7.0
	LocationWeight    = 4.0
	PersonWeight      = 4.0

	// RecencyMax is the bonus for a memory created now; it decays linearly
	// to zero over RecencyWindow.
	RecencyMax    = 2.0
	RecencyWindow = 30 * 24 * time.Hour
	recencyDecay  = 15.0
)

// Score returns the relevance of m for query at time now. A blank query scores 0.
func Score(m memory.Memory, query string, now time.Time) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	var score float64

	title := strings.ToLower(m.Title)
	if strings.Contains(title, q) {
		score += TitleWeight
		if strings.HasPrefix(title, q) {
			score += TitlePrefixWeight
		}
	}
	if strings.Contains(strings.ToLower(m.Description), q) {
		score += DescriptionWeight
	}
	if strings.Contains(strings.ToLower(m.Content), q) {
		score += ContentWeight
	}
	if anyContains(m.Tags, q) {
		score += TagWeight
	}
	if strings.Contains(strings.ToLower(m.Location), q) {
		score += LocationWeight
	}
	if anyContains(m.People, q) {
		score += PersonWeight
	}

	score += recencyBonus(m.CreatedAt, now)
	return score
}

func recencyBonus(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	if createdAt.IsZero() || age >= RecencyWindow {
		return 0
	}
	if age < 0 {
		age = 0
	}
	days := age.Hours() / 24
	return max(0, RecencyMax-days/recencyDecay)
}

func anyContains(values []string, q string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// Rank scores every result and reorders them by descending score. Equal
// scores keep their retrieval order.
func Rank(results []memory.SearchResult, query string, now time.Time) {
	for i := range results {
		s := Score(results[i].Memory, query, now)
		results[i].Score = &s
	}
	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].Score > *results[j].Score
	})
}
