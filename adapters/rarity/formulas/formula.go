package formulas

import (
	"fmt"
	"strings"

	"gorarity/domain/core"
	"gorarity/domain/rarity"
)

// Formula combines a token's per-trait statistics into one score. Higher is rarer.
type Formula interface {
	Name() rarity.FormulaName
	Description() string
	Score(in Input) (float64, error)
}

// Input carries one token's scoring inputs, one entry per trait occurrence
// (schema paddings included).
type Input struct {
	Scores  []float64 // total_supply / supply of the trait value; larger is rarer
	Weights []float64 // 1/cardinality(name) when normalized, else 1
	Entropy float64   // Collection entropy in bits
}

// validate enforces the preconditions every formula relies on
func (in Input) validate(name rarity.FormulaName) error {
	if len(in.Scores) == 0 {
		return core.NewInvariantViolation("%s: token has no traits to score", name)
	}
	if len(in.Scores) != len(in.Weights) {
		return core.NewInvariantViolation("%s: %d scores but %d weights", name, len(in.Scores), len(in.Weights))
	}
	for i, s := range in.Scores {
		if !(s >= 1) {
			return core.NewInvariantViolation("%s: inverse probability %g at trait %d is below 1", name, s, i)
		}
		if !(in.Weights[i] > 0) {
			return core.NewInvariantViolation("%s: weight %g at trait %d is not positive", name, in.Weights[i], i)
		}
	}
	return nil
}

// All returns every formula, information content first
func All() []Formula {
	return []Formula{
		NewInformationContent(),
		NewArithmeticMean(),
		NewGeometricMean(),
		NewHarmonicMean(),
		NewSum(),
	}
}

// ParseName resolves a formula name, accepting a few common aliases
func ParseName(s string) (rarity.FormulaName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arithmetic", "arithmetic_mean", "mean":
		return rarity.FormulaArithmetic, nil
	case "geometric", "geometric_mean":
		return rarity.FormulaGeometric, nil
	case "harmonic", "harmonic_mean":
		return rarity.FormulaHarmonic, nil
	case "sum":
		return rarity.FormulaSum, nil
	case "information_content", "information", "ic", "":
		return rarity.FormulaInformationContent, nil
	}
	return "", fmt.Errorf("unknown scoring formula %q", s)
}

// ByName returns the formula for a name
func ByName(name rarity.FormulaName) (Formula, error) {
	for _, f := range All() {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown scoring formula %q", name)
}
