package category

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type UseCase interface {
	List(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error)
	Tree(ctx context.Context) ([]*model.TreeNode, error)
	FlatOrdered(ctx context.Context) ([]*model.TreeNode, error)
	ByID(ctx context.Context, id string) (*model.Category, error)
	BySlug(ctx context.Context, slug string) (*model.Category, error)
	Breadcrumbs(ctx context.Context, id string) ([]model.Category, error)
	AvailableParents(ctx context.Context, excludingID string) ([]*model.TreeNode, error)

	Create(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	Update(ctx context.Context, id string, patch *dto.UpdateCategoryInput) (*model.Category, error)
	Move(ctx context.Context, id string, newParentID *string) (*model.Category, error)
	Reorder(ctx context.Context, id string, newOrder int) (*model.Category, error)
	Delete(ctx context.Context, id string, opts dto.DeleteOptions) ([]string, error)
	BulkDelete(ctx context.Context, ids []string) ([]string, error)
	BulkUpdateStatus(ctx context.Context, ids []string, isActive bool) (int, error)

	Templates(ctx context.Context) []model.Template
	ApplyTemplate(ctx context.Context, templateID string, draft dto.CreateCategoryInput) (dto.CreateCategoryInput, error)

	// Reload replaces the in-memory collection with the repository contents.
	Reload(ctx context.Context) error
}
