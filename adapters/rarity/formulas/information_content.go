package formulas

import (
	"math"

	"gorarity/adapters/rarity/statistics"
	"gorarity/domain/rarity"
)

// InformationContent scores a token by the total self-information of its traits,
// normalized by the collection entropy. Weights are ignored.
type InformationContent struct{}

// NewInformationContent creates the information content formula
func NewInformationContent() *InformationContent {
	return &InformationContent{}
}

func (f *InformationContent) Name() rarity.FormulaName {
	return rarity.FormulaInformationContent
}

func (f *InformationContent) Description() string {
	return "Sum of trait self-information in bits divided by collection entropy; comparable across collections"
}

func (f *InformationContent) Score(in Input) (float64, error) {
	if err := in.validate(f.Name()); err != nil {
		return 0, err
	}

	bits := 0.0
	for _, s := range in.Scores {
		bits += math.Log2(s)
	}
	return bits / statistics.EntropyDivisor(in.Entropy), nil
}
