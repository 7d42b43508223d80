package ports

import (
	"context"

	"gorarity/domain/rarity"
)

// MetadataSource supplies the raw tokens of one collection.
// Implementations return values untouched; classification is the normalizer's job.
type MetadataSource interface {
	Tokens(ctx context.Context) ([]rarity.RawToken, error)
}
