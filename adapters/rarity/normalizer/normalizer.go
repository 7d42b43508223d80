package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gorarity/domain/core"
	"gorarity/domain/rarity"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// dateLayouts are tried in order for ISO-8601 date strings
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Config controls string canonicalization
type Config struct {
	CollapseWhitespace bool `json:"collapse_whitespace"` // Collapse inner whitespace runs to one space
	StripControl       bool `json:"strip_control"`       // Drop control characters
}

// DefaultConfig returns the canonicalization rules used for rarity scoring
func DefaultConfig() Config {
	return Config{
		CollapseWhitespace: true,
		StripControl:       true,
	}
}

// Normalizer turns raw attribute entries into canonical AttributeRecords. It is
// stateless and safe for concurrent use.
type Normalizer struct {
	config Config
}

// New creates a normalizer with the given config
func New(config Config) *Normalizer {
	return &Normalizer{config: config}
}

// NormalizeToken normalizes every attribute of a raw token and applies the supply default
func (n *Normalizer) NormalizeToken(raw rarity.RawToken) (rarity.Token, error) {
	supply := rarity.EffectiveSupply(raw.Supply)
	token := rarity.Token{
		ID:         raw.ID,
		Supply:     supply,
		Attributes: make([]rarity.AttributeRecord, 0, len(raw.Attributes)),
	}

	for _, attr := range raw.Attributes {
		record, err := n.Normalize(raw.ID, attr)
		if err != nil {
			return rarity.Token{}, err
		}
		record.Supply = supply
		token.Attributes = append(token.Attributes, record)
	}

	return token, nil
}

// NormalizeTokens normalizes a whole collection, failing on the first invalid attribute
func (n *Normalizer) NormalizeTokens(raws []rarity.RawToken) ([]rarity.Token, error) {
	tokens := make([]rarity.Token, 0, len(raws))
	for _, raw := range raws {
		token, err := n.NormalizeToken(raw)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// Normalize canonicalizes one raw attribute entry. Supply is left at 1; NormalizeToken
// overwrites it with the token's supply.
func (n *Normalizer) Normalize(tokenID core.TokenID, raw rarity.RawAttribute) (rarity.AttributeRecord, error) {
	name := n.normalizeString(raw.Name)
	if name == "" {
		return rarity.AttributeRecord{}, core.NewValidationError(tokenID, raw.Name, raw.Value, "attribute name is empty")
	}

	if !isScalar(raw.Value) {
		return rarity.AttributeRecord{}, core.NewValidationError(tokenID, name, raw.Value,
			fmt.Sprintf("cannot classify value of type %T", raw.Value))
	}

	record := rarity.AttributeRecord{
		TokenID: tokenID,
		Name:    name,
		Type:    rarity.ParseDisplayType(raw.DisplayType),
		Supply:  1,
	}

	switch record.Type {
	case rarity.DisplayNumber:
		v, ok := parseNumber(raw.Value)
		if !ok {
			return rarity.AttributeRecord{}, core.NewValidationError(tokenID, name, raw.Value, "value is not a finite number")
		}
		record.Numeric = v
		record.Value = strconv.FormatFloat(v, 'g', -1, 64)
	case rarity.DisplayDate:
		v, ok := parseDate(raw.Value)
		if !ok {
			return rarity.AttributeRecord{}, core.NewValidationError(tokenID, name, raw.Value, "value is not an epoch timestamp or ISO-8601 date")
		}
		record.Numeric = v
		record.Value = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		record.Value = n.normalizeString(toString(raw.Value))
	}

	return record, nil
}

// normalizeString applies deterministic string normalization
func (n *Normalizer) normalizeString(s string) string {
	if n.config.StripControl {
		s = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) && !unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	}

	s = strings.ToLower(strings.TrimSpace(s))

	if n.config.CollapseWhitespace {
		s = whitespaceRun.ReplaceAllString(s, " ")
	}

	return s
}

// isScalar reports whether a raw value is something this system can classify
func isScalar(val interface{}) bool {
	switch val.(type) {
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// toString converts a scalar to text without losing precision
func toString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseNumber coerces ints, floats and numeric strings; bools are rejected
func parseNumber(val interface{}) (float64, bool) {
	var f float64
	switch v := val.(type) {
	case bool:
		return 0, false
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string, json.Number:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(toString(v)), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		parsed, err := strconv.ParseFloat(toString(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseDate coerces an epoch-seconds number or an ISO-8601 string to epoch seconds
func parseDate(val interface{}) (float64, bool) {
	if s, ok := val.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return float64(t.Unix()), true
			}
		}
	}
	return parseNumber(val)
}
