package schema

import (
	"sort"
	"strings"

	"gorarity/domain/core"
	"gorarity/domain/rarity"
)

// Derive computes the maximal attribute schema of a collection: for every
// (name, type) slot, the largest number of times any single token carries it.
func Derive(tokens []rarity.Token) rarity.TokenSchema {
	schema := make(rarity.TokenSchema)
	for _, token := range tokens {
		for key, count := range occurrences(token) {
			if count > schema[key] {
				schema[key] = count
			}
		}
	}
	return schema
}

// Enforce derives the schema and pads every token with null records until each
// slot has exactly the expected number of occurrences. Input tokens are not
// modified; the returned tokens are sorted by token id.
func Enforce(tokens []rarity.Token) (rarity.TokenSchema, []rarity.Token) {
	schema := Derive(tokens)
	keys := SortedKeys(schema)

	enforced := make([]rarity.Token, 0, len(tokens))
	for _, token := range tokens {
		enforced = append(enforced, pad(token, schema, keys))
	}

	sort.SliceStable(enforced, func(i, j int) bool {
		return core.CompareTokenIDs(enforced[i].ID, enforced[j].ID) < 0
	})

	return schema, enforced
}

// Validate checks that every token has exactly the schema's occurrence count for
// every slot and carries nothing outside the schema.
func Validate(schema rarity.TokenSchema, tokens []rarity.Token) error {
	for _, token := range tokens {
		counts := occurrences(token)
		for key, expected := range schema {
			if counts[key] != expected {
				return core.NewInvariantViolation("token %s has %d occurrences of %s/%s, schema expects %d",
					token.ID, counts[key], key.Name, key.Type, expected)
			}
		}
		for key := range counts {
			if _, ok := schema[key]; !ok {
				return core.NewInvariantViolation("token %s carries %s/%s outside the schema", token.ID, key.Name, key.Type)
			}
		}
	}
	return nil
}

// SortedKeys returns schema slots ordered by name, then type
func SortedKeys(schema rarity.TokenSchema) []rarity.SchemaKey {
	keys := make([]rarity.SchemaKey, 0, len(schema))
	for key := range schema {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := strings.Compare(keys[i].Name, keys[j].Name); c != 0 {
			return c < 0
		}
		return keys[i].Type < keys[j].Type
	})
	return keys
}

func occurrences(token rarity.Token) map[rarity.SchemaKey]int {
	counts := make(map[rarity.SchemaKey]int, len(token.Attributes))
	for _, attr := range token.Attributes {
		counts[attr.SchemaKey()]++
	}
	return counts
}

// pad copies the token and appends one null record per missing occurrence
func pad(token rarity.Token, schema rarity.TokenSchema, keys []rarity.SchemaKey) rarity.Token {
	counts := occurrences(token)
	supply := rarity.EffectiveSupply(token.Supply)

	attrs := make([]rarity.AttributeRecord, len(token.Attributes), len(token.Attributes)+len(keys))
	copy(attrs, token.Attributes)

	for _, key := range keys {
		for deficit := schema[key] - counts[key]; deficit > 0; deficit-- {
			attrs = append(attrs, rarity.AttributeRecord{
				TokenID: token.ID,
				Name:    key.Name,
				Value:   rarity.NullValue,
				Type:    key.Type,
				Null:    true,
				Supply:  supply,
			})
		}
	}

	// Stable canonical order so padded output does not depend on input order
	sort.SliceStable(attrs, func(i, j int) bool {
		a, b := attrs[i], attrs[j]
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

	return rarity.Token{ID: token.ID, Supply: supply, Attributes: attrs}
}
