package category

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context) ([]model.Category, error)
	// Apply upserts and deletes in a single transaction.
	Apply(ctx context.Context, upserts []model.Category, deleteIDs []string) error
}

// EventPublisher announces committed mutations to other services.
type EventPublisher interface {
	Publish(ctx context.Context, events ...model.CategoryEvent) error
}

// Indexer keeps the search projection in step with the collection.
type Indexer interface {
	Index(ctx context.Context, docs []model.CategoryDocument) error
	Delete(ctx context.Context, ids []string) error
}

// TreeCache memoizes tree projections by the content hash of the collection
// they were built from.
type TreeCache interface {
	GetTree(ctx context.Context, key string) ([]*model.TreeNode, bool, error)
	SetTree(ctx context.Context, key string, tree []*model.TreeNode) error
}
