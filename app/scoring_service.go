package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"gorarity/adapters/rarity/formulas"
	"gorarity/adapters/rarity/ranker"
	"gorarity/domain/core"
	"gorarity/domain/rarity"
	"gorarity/internal"
	"gorarity/internal/config"
	"gorarity/internal/profiling"

	"golang.org/x/sync/errgroup"
)

// ScoringService scores and ranks collections
type ScoringService struct {
	logger   *internal.Logger
	analyzer *profiling.DistributionAnalyzer
}

// ScoreOptions selects how a collection is scored. Fields are taken literally;
// start from DefaultScoreOptions for the usual settings.
type ScoreOptions struct {
	Normalized bool
	Formula    rarity.FormulaName  // empty means information content
	RankBy     []rarity.RankMetric // empty means score only
	Tolerance  float64             // relative tie tolerance, 0 compares exactly
	Workers    int                 // <= 0 means GOMAXPROCS
}

// DefaultScoreOptions returns normalized information content scoring ranked by score
func DefaultScoreOptions() ScoreOptions {
	return ScoreOptions{
		Normalized: true,
		Formula:    rarity.FormulaInformationContent,
		RankBy:     []rarity.RankMetric{rarity.RankByScore},
		Tolerance:  ranker.DefaultTolerance,
		Workers:    runtime.GOMAXPROCS(0),
	}
}

// ScoreOptionsFromConfig maps the loaded configuration onto score options
func ScoreOptionsFromConfig(cfg config.ScoringConfig) ScoreOptions {
	return ScoreOptions{
		Normalized: cfg.Normalized,
		Formula:    cfg.Formula,
		RankBy:     cfg.RankBy,
		Tolerance:  cfg.TieTolerance,
		Workers:    cfg.Workers,
	}
}

// Result is the outcome of scoring a whole collection
type Result struct {
	CollectionID core.CollectionID           `json:"collection_id"`
	Fingerprint  core.CollectionFingerprint  `json:"fingerprint"`
	Formula      rarity.FormulaName          `json:"formula"`
	Normalized   bool                        `json:"normalized"`
	TieTolerance float64                     `json:"tie_tolerance"`
	Ranked       []rarity.RankedToken        `json:"ranked"`
	Statistics   []rarity.AttributeStatistic `json:"statistics"`
	Entropy      float64                     `json:"entropy"`
	Summary      profiling.Distribution      `json:"summary"`
	ScoredAt     core.Timestamp              `json:"scored_at"`
	RuntimeMs    int64                       `json:"runtime_ms"`
}

// TokenScore is the score of a single token, unranked
type TokenScore struct {
	TokenID      core.TokenID       `json:"token_id"`
	Formula      rarity.FormulaName `json:"formula"`
	Score        float64            `json:"score"`
	UniqueTraits int                `json:"unique_traits"`
	Information  float64            `json:"information"`
}

// NewScoringService creates a scoring service; a nil logger uses the default one
func NewScoringService(logger *internal.Logger) *ScoringService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ScoringService{
		logger:   logger.WithComponent("scoring"),
		analyzer: profiling.NewDistributionAnalyzer(),
	}
}

// ScoreCollection scores every token of c with the selected formula and ranks them.
// Number and date attributes make the collection unsupported; that is reported
// before any token is scored.
func (s *ScoringService) ScoreCollection(ctx context.Context, c *Collection, opts ScoreOptions) (*Result, error) {
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	formula, err := resolveFormula(opts.Formula)
	if err != nil {
		return nil, err
	}

	p, err := c.Prepare()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare collection %s: %w", c.ID(), err)
	}
	s.logger.Debug("prepared collection %s: %d tokens, %d slots, %d statistics, entropy=%.6f",
		c.ID(), len(p.Tokens), len(p.Schema), len(p.Table.All()), p.Entropy())

	if err := checkSupported(p, formula); err != nil {
		return nil, err
	}

	entries, err := s.scoreAll(ctx, p, formula, opts)
	if err != nil {
		return nil, err
	}

	rk := ranker.New(ranker.WithTolerance(opts.Tolerance), ranker.WithRankBy(opts.RankBy...))
	ranked, err := rk.RankEntries(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to rank collection %s: %w", c.ID(), err)
	}
	c.storeRanking(p, ranked)

	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		scores[i] = r.Score
	}
	summary, err := s.analyzer.AnalyzeDistribution(scores)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize scores: %w", err)
	}

	result := &Result{
		CollectionID: c.ID(),
		Fingerprint:  p.Fingerprint,
		Formula:      formula.Name(),
		Normalized:   opts.Normalized,
		TieTolerance: rk.Tolerance(),
		Ranked:       ranked,
		Statistics:   p.Statistics(),
		Entropy:      p.Entropy(),
		Summary:      summary,
		ScoredAt:     core.Now(),
		RuntimeMs:    time.Since(startTime).Milliseconds(),
	}

	s.logger.Info("scored collection %s: %d tokens, formula=%s, normalized=%t, fingerprint=%s, elapsed=%s",
		c.ID(), len(ranked), formula.Name(), opts.Normalized, p.Fingerprint.Short(), time.Since(startTime))

	return result, nil
}

// ScoreToken scores one token against the collection snapshot
func (s *ScoringService) ScoreToken(ctx context.Context, c *Collection, tokenID core.TokenID, opts ScoreOptions) (*TokenScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	formula, err := resolveFormula(opts.Formula)
	if err != nil {
		return nil, err
	}

	p, err := c.Prepare()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare collection %s: %w", c.ID(), err)
	}

	if err := checkSupported(p, formula); err != nil {
		return nil, err
	}

	token, err := p.Token(tokenID)
	if err != nil {
		return nil, err
	}

	entry, err := scoreToken(token, p, formula, opts.Normalized)
	if err != nil {
		return nil, err
	}

	s.logger.Trace("scored token %s in collection %s: %s=%.6f", tokenID, c.ID(), formula.Name(), entry.Score)

	return &TokenScore{
		TokenID:      entry.TokenID,
		Formula:      formula.Name(),
		Score:        entry.Score,
		UniqueTraits: entry.UniqueTraits,
		Information:  entry.Information,
	}, nil
}

// scoreAll scores the snapshot tokens on a bounded worker group. The first error
// or a cancelled context stops the batch.
func (s *ScoringService) scoreAll(ctx context.Context, p *Prepared, formula formulas.Formula, opts ScoreOptions) ([]ranker.Entry, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	entries := make([]ranker.Entry, len(p.Tokens))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range p.Tokens {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := scoreToken(p.Tokens[i], p, formula, opts.Normalized)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("scored %d tokens with %d workers", len(entries), workers)
	return entries, nil
}

func scoreToken(token rarity.Token, p *Prepared, formula formulas.Formula, normalized bool) (ranker.Entry, error) {
	profile, err := formulas.BuildProfile(token, p.Table, normalized)
	if err != nil {
		return ranker.Entry{}, err
	}

	score, err := formula.Score(profile.Input)
	if err != nil {
		return ranker.Entry{}, fmt.Errorf("token %s: %w", token.ID, err)
	}

	return ranker.Entry{
		TokenID:      token.ID,
		Score:        score,
		UniqueTraits: profile.UniqueTraits,
		Information:  profile.Information,
	}, nil
}

func resolveFormula(name rarity.FormulaName) (formulas.Formula, error) {
	if name == "" {
		name = rarity.FormulaInformationContent
	}
	return formulas.ByName(name)
}

func checkSupported(p *Prepared, formula formulas.Formula) error {
	if names := p.Table.NonStringAttributes(); len(names) > 0 {
		return core.NewUnsupportedCollectionError(string(formula.Name()), names)
	}
	return nil
}
