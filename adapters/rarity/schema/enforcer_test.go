package schema

import (
	"testing"

	"gorarity/domain/core"
	"gorarity/domain/rarity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(id core.TokenID, name, value string) rarity.AttributeRecord {
	return rarity.AttributeRecord{TokenID: id, Name: name, Value: value, Type: rarity.DisplayString, Supply: 1}
}

func sampleTokens() []rarity.Token {
	return []rarity.Token{
		{ID: "3", Supply: 1, Attributes: []rarity.AttributeRecord{
			str("3", "hat", "cap"),
		}},
		{ID: "1", Supply: 1, Attributes: []rarity.AttributeRecord{
			str("1", "hat", "visor"),
			str("1", "weapon", "sword"),
			str("1", "weapon", "bow"),
		}},
		{ID: "2", Supply: 4, Attributes: []rarity.AttributeRecord{
			str("2", "weapon", "axe"),
		}},
	}
}

func TestDerive_MaxOccurrences(t *testing.T) {
	schema := Derive(sampleTokens())

	assert.Equal(t, rarity.TokenSchema{
		{Name: "hat", Type: rarity.DisplayString}:    1,
		{Name: "weapon", Type: rarity.DisplayString}: 2,
	}, schema)
}

func TestEnforce_PadsMissingAttributes(t *testing.T) {
	input := sampleTokens()
	schema, enforced := Enforce(input)

	require.Len(t, enforced, 3)
	assert.Equal(t, []core.TokenID{"1", "2", "3"}, []core.TokenID{enforced[0].ID, enforced[1].ID, enforced[2].ID})

	// Schema completeness law
	require.NoError(t, Validate(schema, enforced))

	// Token 2 is missing hat once and weapon once; paddings carry its supply
	var nulls []rarity.AttributeRecord
	for _, attr := range enforced[1].Attributes {
		if attr.Null {
			nulls = append(nulls, attr)
		}
	}
	require.Len(t, nulls, 2)
	for _, n := range nulls {
		assert.Equal(t, rarity.NullValue, n.Value)
		assert.Equal(t, 4, n.Supply)
		assert.Equal(t, core.TokenID("2"), n.TokenID)
	}

	// Token 3 gets two weapon paddings
	assert.Len(t, enforced[2].Attributes, 3)

	// Input untouched
	assert.Len(t, input[0].Attributes, 1)
}

func TestEnforce_OrderIndependent(t *testing.T) {
	a := sampleTokens()
	b := []rarity.Token{a[2], a[0], a[1]}

	schemaA, enforcedA := Enforce(a)
	schemaB, enforcedB := Enforce(b)

	assert.Equal(t, schemaA, schemaB)
	assert.Equal(t, enforcedA, enforcedB)
}

func TestEnforce_NullDistinctFromRealNullString(t *testing.T) {
	tokens := []rarity.Token{
		{ID: "1", Supply: 1, Attributes: []rarity.AttributeRecord{str("1", "hat", rarity.NullValue)}},
		{ID: "2", Supply: 1},
	}
	_, enforced := Enforce(tokens)

	assert.NotEqual(t, enforced[0].Attributes[0].Key(), enforced[1].Attributes[0].Key())
}

func TestValidate_DetectsIncompleteToken(t *testing.T) {
	schema := Derive(sampleTokens())
	err := Validate(schema, sampleTokens())

	require.Error(t, err)
	assert.True(t, core.IsInvariantViolation(err))
}

func TestEnforce_Empty(t *testing.T) {
	schema, enforced := Enforce(nil)
	assert.Empty(t, schema)
	assert.Empty(t, enforced)
}
