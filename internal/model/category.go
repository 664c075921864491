package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Category struct {
	BaseModel
	Name           string   `db:"name" json:"name"`
	Slug           string   `db:"slug" json:"slug"`
	Description    string   `db:"description" json:"description"`
	ParentID       *string  `db:"parent_id" json:"parent_id"` // Nullable, nil means root
	SortOrder      int      `db:"sort_order" json:"sort_order"`
	IsActive       bool     `db:"is_active" json:"is_active"`
	IsFeatured     bool     `db:"is_featured" json:"is_featured"`
	ProductCount   int      `db:"product_count" json:"product_count"`
	Color          string   `db:"color" json:"color"`
	Icon           string   `db:"icon" json:"icon"`
	Image          string   `db:"image" json:"image"`
	SEOTitle       string   `db:"seo_title" json:"seo_title"`
	SEODescription string   `db:"seo_description" json:"seo_description"`
	Metadata       Metadata `db:"metadata" json:"metadata,omitempty"`
}

// ParentKey returns the sibling group key of the category. Root categories
// share the empty key.
func (c Category) ParentKey() string {
	return ParentKey(c.ParentID)
}

// Clone returns a deep copy, so mutations on the copy never leak into a
// shared snapshot.
func (c Category) Clone() Category {
	if c.ParentID != nil {
		p := *c.ParentID
		c.ParentID = &p
	}
	c.Metadata = c.Metadata.Clone()
	return c
}

func ParentKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}

// CloneCategories deep-copies a flat collection.
func CloneCategories(in []Category) []Category {
	out := make([]Category, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// Metadata holds free-form custom fields. Stored as a JSON text column.
type Metadata map[string]string

func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("metadata: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if len(out) == 0 {
		*m = nil
		return nil
	}
	*m = out
	return nil
}

// TreeNode is the derived, read-only projection of a Category inside the
// hierarchy. It is recomputed on every read and never persisted.
type TreeNode struct {
	Category
	Level         int         `json:"level"`
	Subcategories []*TreeNode `json:"subcategories"`
}

// Template carries default field values overlaid onto a draft category.
// Nil fields are left untouched on the draft.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        *string  `json:"icon,omitempty"`
	Color       *string  `json:"color,omitempty"`
	IsFeatured  *bool    `json:"is_featured,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	SEOTitle    *string  `json:"seo_title,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
}
