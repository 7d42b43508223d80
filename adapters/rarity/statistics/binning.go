package statistics

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// binner maps the continuous values of one numeric attribute to histogram bins.
//
// Rule: with d distinct observed values, d equal-width bins span [min, max]. A value v
// belongs to bin i when edges[i] <= v < edges[i+1]; the maximum lands in the last bin,
// which is closed. A single distinct value is its own bin.
type binner struct {
	edges []float64
}

func newBinner(values []float64) binner {
	distinct := make(map[float64]struct{}, len(values))
	lo, hi := 0.0, 0.0
	for i, v := range values {
		distinct[v] = struct{}{}
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}

	d := len(distinct)
	if d <= 1 {
		return binner{}
	}
	return binner{edges: floats.Span(make([]float64, d+1), lo, hi)}
}

// index returns the bin a value falls into, or -1 when the binner has no edges
func (b binner) index(v float64) int {
	if len(b.edges) == 0 {
		return -1
	}
	last := len(b.edges) - 2
	i := sort.Search(len(b.edges), func(i int) bool { return b.edges[i] > v }) - 1
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}

// label renders the bin a value falls into
func (b binner) label(v float64) string {
	i := b.index(v)
	if i < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	lo, hi := b.edges[i], b.edges[i+1]
	if i == len(b.edges)-2 {
		return fmt.Sprintf("[%g, %g]", lo, hi)
	}
	return fmt.Sprintf("[%g, %g)", lo, hi)
}

// bins returns the number of bins
func (b binner) bins() int {
	if len(b.edges) == 0 {
		return 1
	}
	return len(b.edges) - 1
}
