package statistics

import (
	"gorarity/domain/rarity"

	"gonum.org/v1/gonum/floats"
)

// Entropy computes the collection entropy in bits: Σ p·information over every
// (name, type, value) statistic, null buckets included. Information is already
// log2(1/p), so no change of base is involved.
func Entropy(stats []rarity.AttributeStatistic) float64 {
	if len(stats) == 0 {
		return 0
	}

	p := make([]float64, len(stats))
	bits := make([]float64, len(stats))
	for i, s := range stats {
		p[i] = s.Probability
		bits[i] = s.Information
	}

	h := floats.Dot(p, bits)
	if h <= 0 {
		return 0
	}
	return h
}

// EntropyDivisor returns the value information-content scores are divided by.
// A single-token collection has zero entropy; 1.0 is used instead.
func EntropyDivisor(entropy float64) float64 {
	if entropy <= 0 {
		return 1.0
	}
	return entropy
}
