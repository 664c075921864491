package hierarchy

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Reorder moves a category to newOrder within its sibling group and shifts
// the siblings in between by one. Other sibling groups are not touched.
// newOrder must lie in [0, siblingCount-1].
func Reorder(records []model.Category, id string, newOrder int, now time.Time) ([]model.Category, error) {
	pos := Find(records, id)
	if pos < 0 {
		return nil, &category.NotFoundError{ID: id}
	}
	target := records[pos]
	n := SiblingCount(records, target.ParentID)
	if newOrder < 0 || newOrder >= n {
		return nil, &category.ValidationError{
			Field:  "sort_order",
			Reason: fmt.Sprintf("must be between 0 and %d, got %d", n-1, newOrder),
		}
	}

	out := model.CloneCategories(records)
	oldOrder := target.SortOrder
	if oldOrder == newOrder {
		return out, nil
	}

	key := target.ParentKey()
	for i := range out {
		c := &out[i]
		if c.ID == id || c.ParentKey() != key {
			continue
		}
		switch {
		case oldOrder < newOrder && c.SortOrder > oldOrder && c.SortOrder <= newOrder:
			c.SortOrder--
			c.UpdatedAt = now
		case oldOrder > newOrder && c.SortOrder >= newOrder && c.SortOrder < oldOrder:
			c.SortOrder++
			c.UpdatedAt = now
		}
	}
	out[pos].SortOrder = newOrder
	out[pos].UpdatedAt = now
	return out, nil
}

// Renumber closes gaps in the sibling group under parentID, keeping the
// relative order.
func Renumber(records []model.Category, parentID *string, now time.Time) []model.Category {
	out := model.CloneCategories(records)
	renumberGroups(out, map[string]struct{}{model.ParentKey(parentID): {}}, now)
	return out
}

// RenumberAll closes gaps in every sibling group.
func RenumberAll(records []model.Category, now time.Time) []model.Category {
	out := model.CloneCategories(records)
	keys := make(map[string]struct{})
	for i := range out {
		keys[out[i].ParentKey()] = struct{}{}
	}
	renumberGroups(out, keys, now)
	return out
}

// renumberGroups rewrites sort_order in place for the given groups. Only
// records whose order actually changes get a new updated_at.
func renumberGroups(records []model.Category, keys map[string]struct{}, now time.Time) {
	if len(keys) == 0 {
		return
	}
	idx := newIndex(records)
	for key := range keys {
		for want, pos := range idx.children[key] {
			if records[pos].SortOrder != want {
				records[pos].SortOrder = want
				records[pos].UpdatedAt = now
			}
		}
	}
}
