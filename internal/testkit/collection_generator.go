package testkit

import (
	"fmt"
	"math/rand"

	"gorarity/domain/core"
	"gorarity/domain/rarity"
)

// CollectionGeneratorConfig configures the synthetic collection generator
type CollectionGeneratorConfig struct {
	TokenCount     int   `json:"token_count"`
	AttributeCount int   `json:"attribute_count"`
	ValueCount     int   `json:"value_count"`
	UniqueTokens   int   `json:"unique_tokens"` // leading tokens that get a one-off value for every attribute
	Seed           int64 `json:"seed"`
}

// DefaultCollectionConfig returns the uniform 10,000 token collection
func DefaultCollectionConfig() CollectionGeneratorConfig {
	return CollectionGeneratorConfig{
		TokenCount:     10000,
		AttributeCount: 5,
		ValueCount:     10,
		Seed:           42,
	}
}

// CollectionGenerator builds raw token sets with exact value frequencies.
// Every attribute value is carried by the same number of tokens; the
// assignment of values to tokens is shuffled with the configured seed.
type CollectionGenerator struct {
	config CollectionGeneratorConfig
	rng    *rand.Rand
}

// NewCollectionGenerator creates a new collection generator
func NewCollectionGenerator(config CollectionGeneratorConfig) *CollectionGenerator {
	return &CollectionGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns TokenCount raw tokens with ids "1".."TokenCount"
func (g *CollectionGenerator) Generate() ([]rarity.RawToken, error) {
	cfg := g.config
	if cfg.TokenCount <= 0 || cfg.AttributeCount <= 0 || cfg.ValueCount <= 0 {
		return nil, fmt.Errorf("token, attribute and value counts must be positive")
	}
	if cfg.TokenCount%cfg.ValueCount != 0 {
		return nil, fmt.Errorf("token count %d is not a multiple of value count %d", cfg.TokenCount, cfg.ValueCount)
	}
	if cfg.UniqueTokens < 0 || cfg.UniqueTokens > cfg.TokenCount {
		return nil, fmt.Errorf("unique tokens %d out of range", cfg.UniqueTokens)
	}

	tokens := make([]rarity.RawToken, cfg.TokenCount)
	for i := range tokens {
		tokens[i] = rarity.RawToken{
			ID:         core.TokenID(fmt.Sprintf("%d", i+1)),
			Attributes: make([]rarity.RawAttribute, 0, cfg.AttributeCount),
		}
	}

	perValue := cfg.TokenCount / cfg.ValueCount
	for a := 0; a < cfg.AttributeCount; a++ {
		name := AttributeName(a)
		values := make([]string, 0, cfg.TokenCount)
		for v := 0; v < cfg.ValueCount; v++ {
			for n := 0; n < perValue; n++ {
				values = append(values, ValueName(a, v))
			}
		}
		g.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })

		for i := range tokens {
			value := values[i]
			if i < cfg.UniqueTokens {
				value = fmt.Sprintf("unique %d-%d", a, i)
			}
			tokens[i].Attributes = append(tokens[i].Attributes, rarity.RawAttribute{
				Name:  name,
				Value: value,
			})
		}
	}

	return tokens, nil
}

// AttributeName is the trait name used for attribute index a
func AttributeName(a int) string {
	return fmt.Sprintf("trait_%d", a)
}

// ValueName is the trait value used for value index v of attribute a
func ValueName(a, v int) string {
	return fmt.Sprintf("value %d-%d", a, v)
}

// SmallCollection returns the three token hat/shirt collection
func SmallCollection() []rarity.RawToken {
	token := func(id, hat, shirt string) rarity.RawToken {
		return rarity.RawToken{
			ID: core.TokenID(id),
			Attributes: []rarity.RawAttribute{
				{Name: "hat", Value: hat},
				{Name: "shirt", Value: shirt},
			},
		}
	}
	return []rarity.RawToken{
		token("1", "cap", "blue"),
		token("2", "visor", "green"),
		token("3", "visor", "blue"),
	}
}
