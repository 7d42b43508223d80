package statistics

import (
	"math"
	"testing"

	"gorarity/adapters/rarity/schema"
	"gorarity/domain/core"
	"gorarity/domain/rarity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(id core.TokenID, supply int, kv ...string) rarity.Token {
	t := rarity.Token{ID: id, Supply: supply}
	for i := 0; i+1 < len(kv); i += 2 {
		t.Attributes = append(t.Attributes, rarity.AttributeRecord{
			TokenID: id, Name: kv[i], Value: kv[i+1], Type: rarity.DisplayString, Supply: supply,
		})
	}
	return t
}

func numeric(id core.TokenID, name string, v float64) rarity.Token {
	return rarity.Token{ID: id, Supply: 1, Attributes: []rarity.AttributeRecord{{
		TokenID: id, Name: name, Numeric: v, Type: rarity.DisplayNumber, Supply: 1,
	}}}
}

func hatShirtCollection() []rarity.Token {
	return []rarity.Token{
		token("1", 1, "hat", "cap", "shirt", "blue"),
		token("2", 1, "hat", "visor", "shirt", "green"),
		token("3", 1, "hat", "visor", "shirt", "blue"),
	}
}

func findStat(t *testing.T, stats []rarity.AttributeStatistic, name, value string, null bool) rarity.AttributeStatistic {
	t.Helper()
	for _, s := range stats {
		if s.Name == name && s.Value == value && s.Null == null {
			return s
		}
	}
	t.Fatalf("statistic %s=%s (null=%v) not found in %+v", name, value, null, stats)
	return rarity.AttributeStatistic{}
}

func TestAggregate_ProbabilitiesAndInformation(t *testing.T) {
	_, enforced := schema.Enforce(hatShirtCollection())
	table, err := Aggregate(enforced)
	require.NoError(t, err)

	stats := table.All()
	require.Len(t, stats, 4)
	assert.Equal(t, 3, table.TotalSupply())

	capStat := findStat(t, stats, "hat", "cap", false)
	assert.Equal(t, 1, capStat.TokenCount)
	assert.InDelta(t, 1.0/3.0, capStat.Probability, 1e-12)
	assert.InDelta(t, math.Log2(3), capStat.Information, 1e-12)

	visor := findStat(t, stats, "hat", "visor", false)
	assert.Equal(t, 2, visor.Supply)
	assert.InDelta(t, 2.0/3.0, visor.Probability, 1e-12)

	assert.Equal(t, 2, table.Cardinality(rarity.SchemaKey{Name: "hat", Type: rarity.DisplayString}))
	assert.Empty(t, table.NullAttributes())
	assert.Empty(t, table.NonStringAttributes())
}

func TestAggregate_ProbabilityValidity(t *testing.T) {
	tokens := []rarity.Token{
		token("1", 1, "hat", "cap", "eyes", "red"),
		token("2", 3, "hat", "cap"),
		token("3", 2, "eyes", "blue"),
		token("4", 1, "hat", "crown", "eyes", "red"),
	}
	_, enforced := schema.Enforce(tokens)
	table, err := Aggregate(enforced)
	require.NoError(t, err)

	assert.Equal(t, 7, table.TotalSupply())

	supplyByName := map[string]int{}
	for _, s := range table.All() {
		assert.Greater(t, s.Probability, 0.0)
		assert.LessOrEqual(t, s.Probability, 1.0)
		assert.GreaterOrEqual(t, s.Information, 0.0)
		supplyByName[s.Name] += s.Supply
	}
	for name, supply := range supplyByName {
		assert.Equal(t, table.TotalSupply(), supply, "supply partition of %s", name)
	}

	nullHat := findStat(t, table.All(), "hat", rarity.NullValue, true)
	assert.Equal(t, 2, nullHat.Supply)
	assert.Equal(t, 1, nullHat.TokenCount)
	assert.Len(t, table.NullAttributes(), 2)
	assert.Equal(t, 3, table.Cardinality(rarity.SchemaKey{Name: "hat", Type: rarity.DisplayString}))
}

func TestCountAttributeValues_RepeatedOccurrenceCountsOnce(t *testing.T) {
	tokens := []rarity.Token{
		token("1", 1, "weapon", "sword", "weapon", "sword"),
		token("2", 1, "weapon", "sword", "weapon", "bow"),
	}
	stats, err := CountAttributeValues(tokens)
	require.NoError(t, err)

	sword := findStat(t, stats, "weapon", "sword", false)
	assert.Equal(t, 2, sword.TokenCount)
	assert.Equal(t, 2, sword.Supply)
}

func TestInformationContent_Invariants(t *testing.T) {
	stats := []rarity.AttributeStatistic{{Name: "hat", Value: "cap", Supply: 5}}

	_, err := InformationContent(stats, 0)
	assert.True(t, core.IsInvariantViolation(err))

	_, err = InformationContent(stats, 4)
	assert.True(t, core.IsInvariantViolation(err))

	out, err := InformationContent(stats, 5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out[0].Probability)
	assert.False(t, math.Signbit(out[0].Information))
	assert.Zero(t, stats[0].Probability, "input must not be mutated")
}

func TestEntropy(t *testing.T) {
	_, enforced := schema.Enforce(hatShirtCollection())
	table, err := Aggregate(enforced)
	require.NoError(t, err)

	h := -(1.0/3.0)*math.Log2(1.0/3.0) - (2.0/3.0)*math.Log2(2.0/3.0)
	assert.InDelta(t, 2*h, table.Entropy(), 1e-12)
	assert.InDelta(t, 2*h, EntropyDivisor(table.Entropy()), 1e-12)
}

func TestEntropy_SingleTokenFallsBackToOne(t *testing.T) {
	table, err := Aggregate([]rarity.Token{token("1", 1, "hat", "cap", "shirt", "blue")})
	require.NoError(t, err)

	assert.Equal(t, 0.0, table.Entropy())
	assert.Equal(t, 1.0, EntropyDivisor(table.Entropy()))
}

func TestBinning_EqualWidthOverDistinctCount(t *testing.T) {
	tokens := []rarity.Token{
		numeric("1", "level", 0),
		numeric("2", "level", 1),
		numeric("3", "level", 10),
		numeric("4", "level", 10),
	}
	table, err := Aggregate(tokens)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Bins("level"))
	assert.Equal(t, []string{"level"}, table.NonStringAttributes())

	low, ok := table.Lookup(tokens[1].Attributes[0])
	require.True(t, ok)
	assert.Equal(t, 2, low.TokenCount, "0 and 1 share the first bin")

	high, ok := table.Lookup(tokens[2].Attributes[0])
	require.True(t, ok)
	assert.Equal(t, 2, high.Supply)
	assert.Contains(t, high.Value, ", 10]")
}

func TestBinner_DistinctValuesGetOwnBins(t *testing.T) {
	b := newBinner([]float64{1, 2, 3, 4, 5})
	for i, v := range []float64{1, 2, 3, 4, 5} {
		assert.Equal(t, i, b.index(v), "value %v", v)
	}

	single := newBinner([]float64{7, 7})
	assert.Equal(t, "7", single.label(7))
	assert.Equal(t, 1, single.bins())
}

func TestMustLookup_MissIsInvariantViolation(t *testing.T) {
	table, err := Aggregate(hatShirtCollection())
	require.NoError(t, err)

	_, err = table.MustLookup(rarity.AttributeRecord{Name: "hat", Value: "crown"})
	assert.True(t, core.IsInvariantViolation(err))
}

func TestAggregate_SameNameDifferentTypes(t *testing.T) {
	tokens := []rarity.Token{
		token("1", 1, "level", "5"),
		numeric("2", "level", 5),
		token("3", 1, "level", "x"),
	}
	tokenSchema, enforced := schema.Enforce(tokens)
	require.Len(t, tokenSchema, 2)

	table, err := Aggregate(enforced)
	require.NoError(t, err)
	require.Len(t, table.All(), 5)

	// Each (name, type) slot partitions the total supply on its own
	supplies := make(map[rarity.SchemaKey]int)
	for _, s := range table.All() {
		supplies[s.Key().SchemaKey()] += s.Supply
	}
	strSlot := rarity.SchemaKey{Name: "level", Type: rarity.DisplayString}
	numSlot := rarity.SchemaKey{Name: "level", Type: rarity.DisplayNumber}
	assert.Equal(t, map[rarity.SchemaKey]int{strSlot: 3, numSlot: 3}, supplies)
	assert.Equal(t, 3, table.Cardinality(strSlot))
	assert.Equal(t, 2, table.Cardinality(numSlot))

	present := func(tok rarity.Token) rarity.AttributeRecord {
		for _, attr := range tok.Attributes {
			if !attr.Null {
				return attr
			}
		}
		t.Fatalf("token %s has no real attribute", tok.ID)
		return rarity.AttributeRecord{}
	}

	asString, ok := table.Lookup(present(enforced[0]))
	require.True(t, ok)
	asNumber, ok := table.Lookup(present(enforced[1]))
	require.True(t, ok)
	assert.Equal(t, rarity.DisplayString, asString.Type)
	assert.Equal(t, rarity.DisplayNumber, asNumber.Type)
	assert.Equal(t, 1, asString.TokenCount)
	assert.Equal(t, 1, asNumber.TokenCount)
	assert.InDelta(t, 1.0/3.0, asString.Probability, 1e-12)

	nulls := table.NullAttributes()
	require.Len(t, nulls, 2)
	assert.Equal(t, rarity.DisplayNumber, nulls[0].Type)
	assert.Equal(t, 2, nulls[0].Supply)
	assert.Equal(t, rarity.DisplayString, nulls[1].Type)
	assert.Equal(t, 1, nulls[1].Supply)
}
