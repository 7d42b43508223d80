package statistics

import (
	"sort"

	"gorarity/domain/core"
	"gorarity/domain/rarity"
)

// Table is the read-only statistics of one enforced collection. It is built once and
// safe for concurrent lookups.
type Table struct {
	stats       []rarity.AttributeStatistic
	index       map[rarity.AttributeKey]int
	binners     map[string]binner
	cardinality map[rarity.SchemaKey]int
	totalSupply int
	entropy     float64
}

// Aggregate counts, then augments with probability and information, every attribute
// value of an enforced collection and computes the collection entropy.
func Aggregate(tokens []rarity.Token) (*Table, error) {
	counted, binners, err := countAttributeValues(tokens)
	if err != nil {
		return nil, err
	}

	total := TotalSupply(tokens)
	if total == 0 {
		return &Table{
			index:       map[rarity.AttributeKey]int{},
			binners:     binners,
			cardinality: map[rarity.SchemaKey]int{},
		}, nil
	}

	stats, err := InformationContent(counted, total)
	if err != nil {
		return nil, err
	}

	table := &Table{
		stats:       stats,
		index:       make(map[rarity.AttributeKey]int, len(stats)),
		binners:     binners,
		cardinality: make(map[rarity.SchemaKey]int),
		totalSupply: total,
		entropy:     Entropy(stats),
	}
	for i, s := range stats {
		table.index[s.Key()] = i
		table.cardinality[s.Key().SchemaKey()]++
	}

	return table, nil
}

// Lookup returns the statistic a record belongs to, binning numeric values
func (t *Table) Lookup(attr rarity.AttributeRecord) (rarity.AttributeStatistic, bool) {
	i, ok := t.index[groupKey(attr, t.binners)]
	if !ok {
		return rarity.AttributeStatistic{}, false
	}
	return t.stats[i], true
}

// MustLookup is Lookup for records that came from the aggregated collection; a miss is a bug
func (t *Table) MustLookup(attr rarity.AttributeRecord) (rarity.AttributeStatistic, error) {
	s, ok := t.Lookup(attr)
	if !ok {
		return rarity.AttributeStatistic{}, core.NewInvariantViolation("no statistic for %s on token %s", attr.Key(), attr.TokenID)
	}
	return s, nil
}

// Cardinality returns the number of distinct values (null bucket included) of an attribute slot
func (t *Table) Cardinality(slot rarity.SchemaKey) int {
	return t.cardinality[slot]
}

// TotalSupply returns the supply the probabilities are relative to
func (t *Table) TotalSupply() int {
	return t.totalSupply
}

// Entropy returns the collection entropy in bits
func (t *Table) Entropy() float64 {
	return t.entropy
}

// All returns a copy of every statistic in canonical order
func (t *Table) All() []rarity.AttributeStatistic {
	out := make([]rarity.AttributeStatistic, len(t.stats))
	copy(out, t.stats)
	return out
}

// NullAttributes returns the null buckets, one per attribute that some token lacks
func (t *Table) NullAttributes() []rarity.AttributeStatistic {
	var out []rarity.AttributeStatistic
	for _, s := range t.stats {
		if s.Null {
			out = append(out, s)
		}
	}
	return out
}

// NonStringAttributes returns the sorted names of number and date attributes
func (t *Table) NonStringAttributes() []string {
	seen := make(map[string]struct{})
	for _, s := range t.stats {
		if s.Type != rarity.DisplayString {
			seen[s.Name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bins returns how many bins a numeric attribute was split into, 0 if it is not numeric
func (t *Table) Bins(name string) int {
	b, ok := t.binners[name]
	if !ok {
		return 0
	}
	return b.bins()
}
