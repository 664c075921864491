package repository

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const categoryColumns = `id, name, slug, description, parent_id, sort_order, is_active, is_featured,
        product_count, color, icon, image, seo_title, seo_description, metadata, created_at, updated_at`

// SQLRepository persists categories in PostgreSQL or SQLite. Queries are
// written with ? placeholders and rebound for the connected driver.
type SQLRepository struct {
	DB *sqlx.DB
}

var _ category.Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	query := "SELECT " + categoryColumns + " FROM categories ORDER BY parent_id, sort_order, id"
	if err := r.DB.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	for i := range categories {
		categories[i].CreatedAt = categories[i].CreatedAt.UTC()
		categories[i].UpdatedAt = categories[i].UpdatedAt.UTC()
	}
	return categories, nil
}

// Apply removes deleteIDs and upserts every record in one transaction.
func (r *SQLRepository) Apply(ctx context.Context, upserts []model.Category, deleteIDs []string) (err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if len(deleteIDs) > 0 {
		query, args, err := sqlx.In("DELETE FROM categories WHERE id IN (?)", deleteIDs)
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("delete categories: %w", err)
		}
	}

	if len(upserts) > 0 {
		stmt, err := tx.PrepareNamedContext(ctx, upsertQuery)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()
		for i := range upserts {
			if _, err := stmt.ExecContext(ctx, &upserts[i]); err != nil {
				return fmt.Errorf("upsert category %s: %w", upserts[i].ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const upsertQuery = `
        INSERT INTO categories (id, name, slug, description, parent_id, sort_order, is_active, is_featured,
            product_count, color, icon, image, seo_title, seo_description, metadata, created_at, updated_at)
        VALUES (:id, :name, :slug, :description, :parent_id, :sort_order, :is_active, :is_featured,
            :product_count, :color, :icon, :image, :seo_title, :seo_description, :metadata, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            name = excluded.name,
            slug = excluded.slug,
            description = excluded.description,
            parent_id = excluded.parent_id,
            sort_order = excluded.sort_order,
            is_active = excluded.is_active,
            is_featured = excluded.is_featured,
            product_count = excluded.product_count,
            color = excluded.color,
            icon = excluded.icon,
            image = excluded.image,
            seo_title = excluded.seo_title,
            seo_description = excluded.seo_description,
            metadata = excluded.metadata,
            updated_at = excluded.updated_at
    `
