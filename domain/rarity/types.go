package rarity

import (
	"fmt"
	"strings"

	"gorarity/domain/core"
)

// ============================================================================
// ATTRIBUTES
// ============================================================================

// DisplayType classifies an attribute value
type DisplayType string

const (
	DisplayString DisplayType = "string"
	DisplayNumber DisplayType = "number"
	DisplayDate   DisplayType = "date"
)

// ParseDisplayType maps a type tag to a DisplayType. Unknown or empty tags degrade to string.
func ParseDisplayType(tag string) DisplayType {
	switch DisplayType(strings.ToLower(strings.TrimSpace(tag))) {
	case DisplayNumber:
		return DisplayNumber
	case DisplayDate:
		return DisplayDate
	default:
		return DisplayString
	}
}

// NullValue is the canonical text of a padded attribute. AttributeRecord.Null is what
// actually distinguishes it, so a real string "null" never collides with it.
const NullValue = "<null>"

// RawAttribute is an attribute entry as handed over by a metadata source
type RawAttribute struct {
	Name        string      `json:"trait_type"`
	Value       interface{} `json:"value"`
	DisplayType string      `json:"display_type,omitempty"`
}

// AttributeRecord is a canonical, immutable attribute of one token
type AttributeRecord struct {
	TokenID core.TokenID `json:"token_id"`
	Name    string       `json:"name"`
	Value   string       `json:"value"`             // Canonical text: normalized string, %g number, epoch seconds
	Numeric float64      `json:"numeric,omitempty"` // Number or epoch seconds
	Type    DisplayType  `json:"display_type"`
	Null    bool         `json:"null,omitempty"`
	Supply  int          `json:"supply"`
}

// AttributeKey groups records that count as the same trait. The string "5" and the
// number 5 under one name are different traits.
type AttributeKey struct {
	Name  string
	Type  DisplayType
	Value string
	Null  bool
}

func (k AttributeKey) String() string {
	if k.Null {
		return fmt.Sprintf("%s/%s: %s", k.Name, k.Type, NullValue)
	}
	return fmt.Sprintf("%s/%s: %s", k.Name, k.Type, k.Value)
}

// SchemaKey returns the schema slot the key belongs to
func (k AttributeKey) SchemaKey() SchemaKey {
	return SchemaKey{Name: k.Name, Type: k.Type}
}

// Key returns the grouping key of the record
func (r AttributeRecord) Key() AttributeKey {
	return AttributeKey{Name: r.Name, Type: r.Type, Value: r.Value, Null: r.Null}
}

// SchemaKey returns the schema slot the record occupies
func (r AttributeRecord) SchemaKey() SchemaKey {
	return SchemaKey{Name: r.Name, Type: r.Type}
}

// ============================================================================
// TOKENS
// ============================================================================

// RawToken is one token's input before normalization
type RawToken struct {
	ID         core.TokenID   `json:"token_id"`
	Attributes []RawAttribute `json:"attributes"`
	Supply     int            `json:"token_supply,omitempty"` // <= 0 means 1 (non-fungible)
}

// Token is a normalized token
type Token struct {
	ID         core.TokenID      `json:"token_id"`
	Supply     int               `json:"token_supply"`
	Attributes []AttributeRecord `json:"attributes"`
}

// EffectiveSupply returns the supply with the non-fungible default applied
func EffectiveSupply(supply int) int {
	if supply <= 0 {
		return 1
	}
	return supply
}

// ============================================================================
// SCHEMA
// ============================================================================

// SchemaKey identifies an attribute slot by name and type
type SchemaKey struct {
	Name string      `json:"name"`
	Type DisplayType `json:"display_type"`
}

// TokenSchema maps each attribute slot to the maximum number of occurrences on one token
type TokenSchema map[SchemaKey]int

// ============================================================================
// STATISTICS & RESULTS
// ============================================================================

// AttributeStatistic aggregates one (name, type, value) triple over an enforced collection.
// INVARIANTS:
// - Probability in (0, 1]
// - Information >= 0
type AttributeStatistic struct {
	Name        string      `json:"name"`
	Value       string      `json:"value"`
	Null        bool        `json:"null,omitempty"`
	Type        DisplayType `json:"display_type"`
	TokenCount  int         `json:"token_count"`
	Supply      int         `json:"supply"`
	Probability float64     `json:"probability"`
	Information float64     `json:"information"` // -log2(probability), bits
}

// Key returns the grouping key of the statistic
func (s AttributeStatistic) Key() AttributeKey {
	return AttributeKey{Name: s.Name, Type: s.Type, Value: s.Value, Null: s.Null}
}

// RankedToken is one ranked result. Rank is 1-based; ties share a rank.
type RankedToken struct {
	TokenID      core.TokenID `json:"token_id"`
	Score        float64      `json:"score"`
	Rank         int          `json:"rank"`
	UniqueTraits int          `json:"unique_traits"`
	Information  float64      `json:"information"`
}

// FormulaName names a scoring formula
type FormulaName string

const (
	FormulaArithmetic         FormulaName = "arithmetic"
	FormulaGeometric          FormulaName = "geometric"
	FormulaHarmonic           FormulaName = "harmonic"
	FormulaSum                FormulaName = "sum"
	FormulaInformationContent FormulaName = "information_content"
)

// RankMetric names a sort key used when ranking
type RankMetric string

const (
	RankByScore        RankMetric = "score"
	RankByUniqueTraits RankMetric = "unique_traits"
	RankByInformation  RankMetric = "information"
)

// ParseRankMetric validates a rank metric name
func ParseRankMetric(s string) (RankMetric, error) {
	switch m := RankMetric(strings.ToLower(strings.TrimSpace(s))); m {
	case RankByScore, RankByUniqueTraits, RankByInformation:
		return m, nil
	}
	return "", fmt.Errorf("unknown rank metric %q", s)
}
