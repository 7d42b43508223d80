package ranker

import (
	"math"
	"sort"

	"gorarity/domain/core"
	"gorarity/domain/rarity"

	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultTolerance is the relative tolerance under which two scores are a tie
const DefaultTolerance = 1e-9

// Entry is one scored token awaiting a rank
type Entry struct {
	TokenID      core.TokenID
	Score        float64
	UniqueTraits int
	Information  float64
}

// Ranker assigns competition ranks (1, 2, 2, 2, 5) to scored tokens. Tokens are
// ordered by the configured metrics, each descending; two tokens tie when every
// metric is equal within the relative tolerance. Ties are listed by token id.
type Ranker struct {
	tolerance float64
	rankBy    []rarity.RankMetric
}

// Option configures a Ranker
type Option func(*Ranker)

// WithTolerance sets the relative tie tolerance; negative values are ignored
func WithTolerance(tol float64) Option {
	return func(r *Ranker) {
		if tol >= 0 {
			r.tolerance = tol
		}
	}
}

// WithRankBy sets the ordered sort metrics. An empty list means score only.
func WithRankBy(metrics ...rarity.RankMetric) Option {
	return func(r *Ranker) {
		if len(metrics) > 0 {
			r.rankBy = append([]rarity.RankMetric(nil), metrics...)
		}
	}
}

// New creates a ranker
func New(opts ...Option) *Ranker {
	r := &Ranker{
		tolerance: DefaultTolerance,
		rankBy:    []rarity.RankMetric{rarity.RankByScore},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tolerance returns the relative tie tolerance in use
func (r *Ranker) Tolerance() float64 {
	return r.tolerance
}

// Rank ranks parallel slices of token ids and scores. A length mismatch means the
// scoring stage is broken and is reported as an invariant violation.
func (r *Ranker) Rank(ids []core.TokenID, scores []float64) ([]rarity.RankedToken, error) {
	if len(ids) != len(scores) {
		return nil, core.NewInvariantViolation("%d tokens but %d scores", len(ids), len(scores))
	}

	entries := make([]Entry, len(ids))
	for i := range ids {
		entries[i] = Entry{TokenID: ids[i], Score: scores[i]}
	}
	return r.RankEntries(entries)
}

// RankTokensByScore maps token ids to ranks
func (r *Ranker) RankTokensByScore(scores map[core.TokenID]float64) (map[core.TokenID]int, error) {
	entries := make([]Entry, 0, len(scores))
	for id, score := range scores {
		entries = append(entries, Entry{TokenID: id, Score: score})
	}

	ranked, err := r.RankEntries(entries)
	if err != nil {
		return nil, err
	}

	ranks := make(map[core.TokenID]int, len(ranked))
	for _, rt := range ranked {
		ranks[rt.TokenID] = rt.Rank
	}
	return ranks, nil
}

// RankEntries sorts entries and assigns competition ranks. The input is not modified.
func (r *Ranker) RankEntries(entries []Entry) ([]rarity.RankedToken, error) {
	if len(entries) == 0 {
		return []rarity.RankedToken{}, nil
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	for _, e := range sorted {
		if math.IsNaN(e.Score) || math.IsInf(e.Score, 0) {
			return nil, core.NewInvariantViolation("token %s has non-finite score %v", e.TokenID, e.Score)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if c := r.compare(sorted[i], sorted[j]); c != 0 {
			return c > 0
		}
		return core.CompareTokenIDs(sorted[i].TokenID, sorted[j].TokenID) < 0
	})

	ranked := make([]rarity.RankedToken, len(sorted))
	for i, e := range sorted {
		rank := i + 1
		if i > 0 && r.compare(e, sorted[i-1]) == 0 {
			rank = ranked[i-1].Rank
		}
		ranked[i] = rarity.RankedToken{
			TokenID:      e.TokenID,
			Score:        e.Score,
			Rank:         rank,
			UniqueTraits: e.UniqueTraits,
			Information:  e.Information,
		}
	}

	return ranked, nil
}

// compare returns >0 when a should rank better than b, 0 on a tie
func (r *Ranker) compare(a, b Entry) int {
	for _, metric := range r.rankBy {
		x, y := metricValue(a, metric), metricValue(b, metric)
		if scalar.EqualWithinRel(x, y, r.tolerance) {
			continue
		}
		if x > y {
			return 1
		}
		return -1
	}
	return 0
}

func metricValue(e Entry, metric rarity.RankMetric) float64 {
	switch metric {
	case rarity.RankByUniqueTraits:
		return float64(e.UniqueTraits)
	case rarity.RankByInformation:
		return e.Information
	default:
		return e.Score
	}
}
