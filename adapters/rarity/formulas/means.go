package formulas

import (
	"gorarity/domain/rarity"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ArithmeticMean scores a token by the weighted average of its inverse probabilities
type ArithmeticMean struct{}

// NewArithmeticMean creates the arithmetic mean formula
func NewArithmeticMean() *ArithmeticMean {
	return &ArithmeticMean{}
}

func (f *ArithmeticMean) Name() rarity.FormulaName {
	return rarity.FormulaArithmetic
}

func (f *ArithmeticMean) Description() string {
	return "Weighted average of inverse probabilities; sensitive to one extreme trait"
}

func (f *ArithmeticMean) Score(in Input) (float64, error) {
	if err := in.validate(f.Name()); err != nil {
		return 0, err
	}
	return stat.Mean(in.Scores, in.Weights), nil
}

// GeometricMean scores a token by the weighted geometric mean of its inverse probabilities
type GeometricMean struct{}

// NewGeometricMean creates the geometric mean formula
func NewGeometricMean() *GeometricMean {
	return &GeometricMean{}
}

func (f *GeometricMean) Name() rarity.FormulaName {
	return rarity.FormulaGeometric
}

func (f *GeometricMean) Description() string {
	return "Weighted nth root of the product of inverse probabilities; dampens outliers"
}

func (f *GeometricMean) Score(in Input) (float64, error) {
	if err := in.validate(f.Name()); err != nil {
		return 0, err
	}
	return stat.GeometricMean(in.Scores, in.Weights), nil
}

// HarmonicMean scores a token by the reciprocal of the weighted average probability
type HarmonicMean struct{}

// NewHarmonicMean creates the harmonic mean formula
func NewHarmonicMean() *HarmonicMean {
	return &HarmonicMean{}
}

func (f *HarmonicMean) Name() rarity.FormulaName {
	return rarity.FormulaHarmonic
}

func (f *HarmonicMean) Description() string {
	return "Reciprocal of the weighted average probability; driven by the most common trait"
}

func (f *HarmonicMean) Score(in Input) (float64, error) {
	if err := in.validate(f.Name()); err != nil {
		return 0, err
	}
	return stat.HarmonicMean(in.Scores, in.Weights), nil
}

// Sum scores a token by the weighted sum of its inverse probabilities
type Sum struct{}

// NewSum creates the sum formula
func NewSum() *Sum {
	return &Sum{}
}

func (f *Sum) Name() rarity.FormulaName {
	return rarity.FormulaSum
}

func (f *Sum) Description() string {
	return "Weighted sum of inverse probabilities; rewards trait count as well as rarity"
}

func (f *Sum) Score(in Input) (float64, error) {
	if err := in.validate(f.Name()); err != nil {
		return 0, err
	}
	return floats.Dot(in.Scores, in.Weights), nil
}
