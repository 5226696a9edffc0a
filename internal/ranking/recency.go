package ranking

import (
	"sort"
	"strings"

	"portfoliorag/internal/domain"
)

// RecencyOverride reorders a subset of results by a fixed newest-first
// table instead of by score.
//
// A result belongs to the subset when its slug has Prefix or appears in
// Order. Subset members are sorted by table position, unlisted members
// last, and written back into the slots the subset already occupied;
// every other result keeps its place.
type RecencyOverride struct {
	name     string
	prefix   string
	rank     map[string]int
	unlisted int
}

// NewRecencyOverride builds a pass. An empty prefix limits the subset to
// the slugs in order.
func NewRecencyOverride(name, prefix string, order []string) *RecencyOverride {
	rank := make(map[string]int, len(order))
	for i, slug := range order {
		if _, dup := rank[slug]; !dup {
			rank[slug] = i
		}
	}
	return &RecencyOverride{name: name, prefix: prefix, rank: rank, unlisted: len(order)}
}

func (r *RecencyOverride) Name() string { return r.name }

func (r *RecencyOverride) member(slug string) bool {
	if _, ok := r.rank[slug]; ok {
		return true
	}
	return r.prefix != "" && strings.HasPrefix(slug, r.prefix)
}

func (r *RecencyOverride) key(slug string) int {
	if i, ok := r.rank[slug]; ok {
		return i
	}
	return r.unlisted
}

// Process returns a reordered copy of results.
func (r *RecencyOverride) Process(results []domain.ScoredChunk) []domain.ScoredChunk {
	var slots []int
	var subset []domain.ScoredChunk
	for i, res := range results {
		if r.member(res.Slug) {
			slots = append(slots, i)
			subset = append(subset, res)
		}
	}
	if len(subset) < 2 {
		return results
	}
	sort.SliceStable(subset, func(i, j int) bool { return r.key(subset[i].Slug) < r.key(subset[j].Slug) })

	out := append([]domain.ScoredChunk(nil), results...)
	for k, slot := range slots {
		out[slot] = subset[k]
	}
	return out
}
