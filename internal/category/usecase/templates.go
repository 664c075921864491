package usecase

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/category/hierarchy"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

func strRef(s string) *string { return &s }
func boolRef(b bool) *bool    { return &b }

// DefaultTemplates is the built-in catalogue offered by the category form.
func DefaultTemplates() []model.Template {
	return []model.Template{
		{
			ID:          "electronics",
			Name:        "Electronics",
			Description: "Devices, gadgets and accessories",
			Icon:        strRef("cpu"),
			Color:       strRef("#3b82f6"),
			IsFeatured:  boolRef(true),
			IsActive:    boolRef(true),
			Metadata:    model.Metadata{"warranty_required": "true"},
		},
		{
			ID:          "fashion",
			Name:        "Fashion",
			Description: "Clothing, shoes and accessories",
			Icon:        strRef("shirt"),
			Color:       strRef("#ec4899"),
			IsFeatured:  boolRef(true),
			IsActive:    boolRef(true),
			Metadata:    model.Metadata{"size_chart": "apparel"},
		},
		{
			ID:          "home-garden",
			Name:        "Home & Garden",
			Description: "Furniture, decor and outdoor",
			Icon:        strRef("home"),
			Color:       strRef("#22c55e"),
			IsFeatured:  boolRef(false),
			IsActive:    boolRef(true),
		},
		{
			ID:          "food-beverage",
			Name:        "Food & Beverage",
			Description: "Groceries, drinks and snacks",
			Icon:        strRef("coffee"),
			Color:       strRef("#f59e0b"),
			IsActive:    boolRef(true),
			Metadata:    model.Metadata{"perishable": "true"},
		},
		{
			ID:          "seasonal-sale",
			Name:        "Seasonal Sale",
			Description: "Time-limited promotional category, hidden until launch",
			Icon:        strRef("tag"),
			Color:       strRef("#ef4444"),
			IsFeatured:  boolRef(true),
			IsActive:    boolRef(false),
			SEOTitle:    strRef("Seasonal Sale"),
		},
	}
}

func (uc *categoryUseCase) Templates(ctx context.Context) []model.Template {
	out := make([]model.Template, len(uc.templates))
	copy(out, uc.templates)
	return out
}

// ApplyTemplate fills a draft with a template's defaults. Only fields the
// draft leaves empty are filled, and metadata keys are only added where the
// draft has none. IsFeatured can be switched on but never off. A draft
// without a slug gets one derived from its name.
func (uc *categoryUseCase) ApplyTemplate(ctx context.Context, templateID string, draft dto.CreateCategoryInput) (dto.CreateCategoryInput, error) {
	var tpl *model.Template
	for i := range uc.templates {
		if uc.templates[i].ID == templateID {
			tpl = &uc.templates[i]
			break
		}
	}
	if tpl == nil {
		return draft, &category.NotFoundError{ID: templateID}
	}

	out := draft
	out.Metadata = draft.Metadata.Clone()
	if tpl.Icon != nil && out.Icon == "" {
		out.Icon = *tpl.Icon
	}
	if tpl.Color != nil && out.Color == "" {
		out.Color = *tpl.Color
	}
	if tpl.IsFeatured != nil && *tpl.IsFeatured {
		out.IsFeatured = true
	}
	if tpl.IsActive != nil && out.IsActive == nil {
		active := *tpl.IsActive
		out.IsActive = &active
	}
	if tpl.SEOTitle != nil && out.SEOTitle == "" {
		out.SEOTitle = *tpl.SEOTitle
	}
	if out.Slug == "" {
		out.Slug = hierarchy.Slugify(out.Name)
	}
	for k, v := range tpl.Metadata {
		if out.Metadata == nil {
			out.Metadata = model.Metadata{}
		}
		if _, ok := out.Metadata[k]; !ok {
			out.Metadata[k] = v
		}
	}
	return out, nil
}
