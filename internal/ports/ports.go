package ports

import (
	"context"

	"mediawatch/internal/domain"
)

// CollectionSource loads the full article collection from a backing store.
// Implementations return raw records; standardization happens once, in the
// composition root, before the collection is served.
type CollectionSource interface {
	Load(ctx context.Context) (domain.Collection, error)
}

// ArticleSink persists labeled records handed over by the upstream
// classification pipeline.
type ArticleSink interface {
	Save(ctx context.Context, records []domain.Article) error
}
