package statistics

import (
	"math"
	"sort"

	"gorarity/domain/core"
	"gorarity/domain/rarity"
)

// group accumulates one (name, type, value) triple
type group struct {
	stat   rarity.AttributeStatistic
	tokens map[core.TokenID]struct{}
}

// CountAttributeValues groups the records of an enforced collection by (name, type, value),
// numeric attributes by (name, bin), and counts distinct tokens and summed supply per group.
// Probability and information are left zero; see InformationContent.
func CountAttributeValues(tokens []rarity.Token) ([]rarity.AttributeStatistic, error) {
	stats, _, err := countAttributeValues(tokens)
	return stats, err
}

func countAttributeValues(tokens []rarity.Token) ([]rarity.AttributeStatistic, map[string]binner, error) {
	binners := buildBinners(tokens)
	groups := make(map[rarity.AttributeKey]*group)

	for _, token := range tokens {
		supply := rarity.EffectiveSupply(token.Supply)
		for _, attr := range token.Attributes {
			key := groupKey(attr, binners)

			g, ok := groups[key]
			if !ok {
				g = &group{
					stat: rarity.AttributeStatistic{
						Name:  key.Name,
						Type:  key.Type,
						Value: key.Value,
						Null:  key.Null,
					},
					tokens: make(map[core.TokenID]struct{}),
				}
				groups[key] = g
			}

			// Repeated occurrences on one token count once
			if _, seen := g.tokens[token.ID]; seen {
				continue
			}
			g.tokens[token.ID] = struct{}{}
			g.stat.TokenCount++
			g.stat.Supply += supply
		}
	}

	stats := make([]rarity.AttributeStatistic, 0, len(groups))
	for key, g := range groups {
		if g.stat.Supply <= 0 {
			return nil, nil, core.NewInvariantViolation("attribute %s has supply %d", key, g.stat.Supply)
		}
		stats = append(stats, g.stat)
	}
	sortStatistics(stats)

	return stats, binners, nil
}

// InformationContent returns a copy of stats with probability = supply/totalSupply and
// information = log2(totalSupply/supply), the same bits the formulas take of a score.
func InformationContent(stats []rarity.AttributeStatistic, totalSupply int) ([]rarity.AttributeStatistic, error) {
	if totalSupply <= 0 {
		return nil, core.NewInvariantViolation("total supply %d must be positive", totalSupply)
	}

	out := make([]rarity.AttributeStatistic, len(stats))
	for i, s := range stats {
		p := float64(s.Supply) / float64(totalSupply)
		if p <= 0 || p > 1 {
			return nil, core.NewInvariantViolation("attribute %s has probability %g outside (0, 1]", s.Key(), p)
		}
		s.Probability = p
		s.Information = math.Log2(float64(totalSupply) / float64(s.Supply))
		out[i] = s
	}
	return out, nil
}

// TotalSupply sums token supplies; for non-fungible collections it is the token count
func TotalSupply(tokens []rarity.Token) int {
	total := 0
	for _, token := range tokens {
		total += rarity.EffectiveSupply(token.Supply)
	}
	return total
}

func buildBinners(tokens []rarity.Token) map[string]binner {
	values := make(map[string][]float64)
	for _, token := range tokens {
		for _, attr := range token.Attributes {
			if attr.Type == rarity.DisplayNumber && !attr.Null {
				values[attr.Name] = append(values[attr.Name], attr.Numeric)
			}
		}
	}

	binners := make(map[string]binner, len(values))
	for name, vs := range values {
		binners[name] = newBinner(vs)
	}
	return binners
}

func groupKey(attr rarity.AttributeRecord, binners map[string]binner) rarity.AttributeKey {
	key := attr.Key()
	if attr.Type == rarity.DisplayNumber && !attr.Null {
		if b, ok := binners[attr.Name]; ok {
			key.Value = b.label(attr.Numeric)
		}
	}
	return key
}

// sortStatistics orders by name, then type, real values before the null bucket, then value
func sortStatistics(stats []rarity.AttributeStatistic) {
	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Null != b.Null {
			return !a.Null
		}
		return a.Value < b.Value
	})
}
