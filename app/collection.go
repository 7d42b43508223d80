package app

import (
	"fmt"
	"strings"
	"sync"

	"gorarity/adapters/rarity/normalizer"
	"gorarity/adapters/rarity/schema"
	"gorarity/adapters/rarity/statistics"
	"gorarity/domain/core"
	"gorarity/domain/rarity"
)

// Collection owns one token set and the derived data scoring needs. The prepared
// snapshot is computed lazily, once, and dropped whenever the token set changes.
type Collection struct {
	id         core.CollectionID
	normalizer *normalizer.Normalizer

	mu       sync.Mutex
	raw      []rarity.RawToken
	prepared *Prepared
	lastRank []rarity.RankedToken
}

// Prepared is the immutable, collection-level state every per-token scoring call
// reads. It is safe to share across goroutines.
type Prepared struct {
	Schema      rarity.TokenSchema
	Tokens      []rarity.Token // enforced, sorted by token id
	Table       *statistics.Table
	Fingerprint core.CollectionFingerprint
	PreparedAt  core.Timestamp

	byID map[core.TokenID]int
}

// NewCollection creates a collection over a copy of the given raw tokens
func NewCollection(tokens []rarity.RawToken) *Collection {
	return NewCollectionWithNormalizer(tokens, normalizer.New(normalizer.DefaultConfig()))
}

// NewCollectionWithNormalizer creates a collection that normalizes with n
func NewCollectionWithNormalizer(tokens []rarity.RawToken, n *normalizer.Normalizer) *Collection {
	return &Collection{
		id:         core.NewCollectionID(),
		normalizer: n,
		raw:        copyRaw(tokens),
	}
}

// ID returns the collection id
func (c *Collection) ID() core.CollectionID {
	return c.id
}

// Len returns the number of raw tokens
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.raw)
}

// SetTokens replaces the token set and invalidates the snapshot and last ranking
func (c *Collection) SetTokens(tokens []rarity.RawToken) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = copyRaw(tokens)
	c.prepared = nil
	c.lastRank = nil
}

// LastRanking returns the most recent batch ranking, nil if none or invalidated
func (c *Collection) LastRanking() []rarity.RankedToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRank == nil {
		return nil
	}
	out := make([]rarity.RankedToken, len(c.lastRank))
	copy(out, c.lastRank)
	return out
}

// storeRanking keeps ranked only if the snapshot it was computed from is still current
func (c *Collection) storeRanking(p *Prepared, ranked []rarity.RankedToken) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prepared != p {
		return
	}
	c.lastRank = ranked
}

// Prepare returns the snapshot, computing it on first use
func (c *Collection) Prepare() (*Prepared, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prepared != nil {
		return c.prepared, nil
	}

	p, err := prepare(c.raw, c.normalizer)
	if err != nil {
		return nil, err
	}
	c.prepared = p
	return p, nil
}

func prepare(raw []rarity.RawToken, n *normalizer.Normalizer) (*Prepared, error) {
	seen := make(map[core.TokenID]struct{}, len(raw))
	for _, tok := range raw {
		if _, dup := seen[tok.ID]; dup {
			return nil, core.NewValidationError(tok.ID, "", nil, "duplicate token id")
		}
		seen[tok.ID] = struct{}{}
	}

	tokens, err := n.NormalizeTokens(raw)
	if err != nil {
		return nil, err
	}

	tokenSchema, enforced := schema.Enforce(tokens)
	if err := schema.Validate(tokenSchema, enforced); err != nil {
		return nil, err
	}

	table, err := statistics.Aggregate(enforced)
	if err != nil {
		return nil, err
	}

	p := &Prepared{
		Schema:      tokenSchema,
		Tokens:      enforced,
		Table:       table,
		Fingerprint: fingerprint(enforced),
		PreparedAt:  core.Now(),
		byID:        make(map[core.TokenID]int, len(enforced)),
	}
	for i, tok := range enforced {
		p.byID[tok.ID] = i
	}
	return p, nil
}

// Token returns the enforced token with the given id
func (p *Prepared) Token(id core.TokenID) (rarity.Token, error) {
	i, ok := p.byID[id]
	if !ok {
		return rarity.Token{}, core.NewTokenNotFoundError(id)
	}
	return p.Tokens[i], nil
}

// Entropy returns the collection entropy in bits
func (p *Prepared) Entropy() float64 {
	return p.Table.Entropy()
}

// Statistics returns every attribute statistic in canonical order
func (p *Prepared) Statistics() []rarity.AttributeStatistic {
	return p.Table.All()
}

// NullAttributes returns the null bucket of every attribute some token lacks
func (p *Prepared) NullAttributes() []rarity.AttributeStatistic {
	return p.Table.NullAttributes()
}

// fingerprint hashes the enforced tokens; they are already in canonical order
func fingerprint(tokens []rarity.Token) core.CollectionFingerprint {
	var b strings.Builder
	for _, tok := range tokens {
		fmt.Fprintf(&b, "%s|%d", tok.ID, rarity.EffectiveSupply(tok.Supply))
		for _, attr := range tok.Attributes {
			fmt.Fprintf(&b, "|%s/%s=%q", attr.Name, attr.Type, attr.Value)
			if attr.Null {
				b.WriteString("!")
			}
		}
		b.WriteByte('\n')
	}
	return core.NewCollectionFingerprint([]byte(b.String()))
}

func copyRaw(tokens []rarity.RawToken) []rarity.RawToken {
	out := make([]rarity.RawToken, len(tokens))
	copy(out, tokens)
	return out
}
