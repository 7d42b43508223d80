package formulas

import (
	"gorarity/adapters/rarity/statistics"
	"gorarity/domain/core"
	"gorarity/domain/rarity"
)

// TokenProfile is everything a formula and the ranker need about one enforced token
type TokenProfile struct {
	Input        Input
	UniqueTraits int     // Real traits no other token carries
	Information  float64 // Σ information bits over the token's traits
}

// BuildProfile looks up every trait of an enforced token in the collection table
func BuildProfile(token rarity.Token, table *statistics.Table, normalized bool) (TokenProfile, error) {
	if table.TotalSupply() <= 0 {
		return TokenProfile{}, core.NewInvariantViolation("collection has no supply")
	}
	total := float64(table.TotalSupply())

	profile := TokenProfile{
		Input: Input{
			Scores:  make([]float64, 0, len(token.Attributes)),
			Weights: make([]float64, 0, len(token.Attributes)),
			Entropy: table.Entropy(),
		},
	}

	for _, attr := range token.Attributes {
		s, err := table.MustLookup(attr)
		if err != nil {
			return TokenProfile{}, err
		}

		weight := 1.0
		if normalized {
			card := table.Cardinality(attr.SchemaKey())
			if card <= 0 {
				return TokenProfile{}, core.NewInvariantViolation("attribute %s/%s has cardinality %d", attr.Name, attr.Type, card)
			}
			weight = 1.0 / float64(card)
		}

		profile.Input.Scores = append(profile.Input.Scores, total/float64(s.Supply))
		profile.Input.Weights = append(profile.Input.Weights, weight)
		profile.Information += s.Information
		if !s.Null && s.TokenCount == 1 {
			profile.UniqueTraits++
		}
	}

	return profile, nil
}
