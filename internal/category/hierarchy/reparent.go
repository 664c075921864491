package hierarchy

import (
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// CanReparent reports whether nodeID may be placed under newParentID.
// A nil parent (promote to root) is always allowed. Walking up from the new
// parent must never reach nodeID.
func CanReparent(records []model.Category, nodeID string, newParentID *string) error {
	if newParentID == nil {
		return nil
	}
	if *newParentID == nodeID {
		return &category.CycleError{ID: nodeID, ParentID: nodeID}
	}

	idx := newIndex(records)
	cur := *newParentID
	for steps := 0; steps <= len(records); steps++ {
		if cur == nodeID {
			return &category.CycleError{ID: nodeID, ParentID: *newParentID}
		}
		c, ok := idx.get(records, cur)
		if !ok || c.ParentID == nil {
			return nil
		}
		cur = *c.ParentID
	}
	return &category.CycleDetectedError{ID: *newParentID}
}

// Move places id under newParentID, appending it to the end of the new
// sibling group and closing the gap it leaves behind.
func Move(records []model.Category, id string, newParentID *string, now time.Time) ([]model.Category, error) {
	pos := Find(records, id)
	if pos < 0 {
		return nil, &category.NotFoundError{ID: id}
	}
	if err := ValidateParent(records, newParentID); err != nil {
		return nil, err
	}
	if err := CanReparent(records, id, newParentID); err != nil {
		return nil, err
	}

	out := model.CloneCategories(records)
	oldKey := out[pos].ParentKey()
	if oldKey == model.ParentKey(newParentID) {
		return out, nil
	}

	var parent *string
	if newParentID != nil {
		p := *newParentID
		parent = &p
	}
	// Count before reassigning so the moved record is not one of its own siblings.
	out[pos].SortOrder = SiblingCount(out, parent)
	out[pos].ParentID = parent
	out[pos].UpdatedAt = now

	renumberGroups(out, map[string]struct{}{oldKey: {}}, now)
	return out, nil
}
