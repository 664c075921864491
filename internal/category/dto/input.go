package dto

import "github.com/fekuna/omnipos-catalog-service/internal/model"

type CreateCategoryInput struct {
	ParentID       *string        `json:"parent_id"`
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	Description    string         `json:"description"`
	IsActive       *bool          `json:"is_active"` // nil defaults to active
	IsFeatured     bool           `json:"is_featured"`
	Color          string         `json:"color"`
	Icon           string         `json:"icon"`
	Image          string         `json:"image"`
	SEOTitle       string         `json:"seo_title"`
	SEODescription string         `json:"seo_description"`
	Metadata       model.Metadata `json:"metadata"`
}

// UpdateCategoryInput is a patch: nil fields are left unchanged.
// ParentID is only applied when SetParent is true, so a patch can move a
// category to the root with SetParent and a nil ParentID. SetParent never
// comes from the body; transports set it when the parent_id key is present.
type UpdateCategoryInput struct {
	Name           *string        `json:"name"`
	Slug           *string        `json:"slug"`
	Description    *string        `json:"description"`
	SetParent      bool           `json:"-"`
	ParentID       *string        `json:"parent_id"`
	IsActive       *bool          `json:"is_active"`
	IsFeatured     *bool          `json:"is_featured"`
	Color          *string        `json:"color"`
	Icon           *string        `json:"icon"`
	Image          *string        `json:"image"`
	SEOTitle       *string        `json:"seo_title"`
	SEODescription *string        `json:"seo_description"`
	Metadata       model.Metadata `json:"metadata"`
}

type DeleteOptions struct {
	Cascade bool
}
