package model

import "time"

const (
	EventCategoryCreated       = "CategoryCreated"
	EventCategoryUpdated       = "CategoryUpdated"
	EventCategoryMoved         = "CategoryMoved"
	EventCategoryReordered     = "CategoryReordered"
	EventCategoryDeleted       = "CategoryDeleted"
	EventCategoryStatusChanged = "CategoryStatusChanged"
)

// CategoryEvent describes one committed mutation of the collection.
// Changed carries every record whose stored fields changed, including
// siblings renumbered as a side effect.
type CategoryEvent struct {
	EventID    string     `json:"event_id"`
	EventType  string     `json:"event_type"`
	SubjectIDs []string   `json:"subject_ids"`
	Changed    []Category `json:"changed,omitempty"`
	RemovedIDs []string   `json:"removed_ids,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// CategoryDocument is the search projection of a category.
type CategoryDocument struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	ParentID   *string  `json:"parent_id"`
	Level      int      `json:"level"`
	Path       []string `json:"path"`
	PathSlugs  []string `json:"path_slugs"`
	IsActive   bool     `json:"is_active"`
	IsFeatured bool     `json:"is_featured"`
	SEOTitle   string   `json:"seo_title"`
	UpdatedAt  string   `json:"updated_at"`
}
