package hierarchy

import (
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// CollectDescendants returns every category whose parent chain leads to one
// of rootIDs. Roots themselves are only included when they descend from
// another root. Shared subtrees are counted once.
func CollectDescendants(records []model.Category, rootIDs []string) map[string]struct{} {
	idx := newIndex(records)
	out := make(map[string]struct{})
	queue := append([]string(nil), rootIDs...)
	expanded := make(map[string]struct{}, len(rootIDs))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, done := expanded[id]; done || id == "" {
			continue
		}
		expanded[id] = struct{}{}
		for _, pos := range idx.children[id] {
			child := records[pos].ID
			out[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return out
}

// DirectChildren returns the ids directly under id in sibling order.
func DirectChildren(records []model.Category, id string) []string {
	idx := newIndex(records)
	ids := make([]string, 0, len(idx.children[id]))
	for _, pos := range idx.children[id] {
		ids = append(ids, records[pos].ID)
	}
	return ids
}

// DeleteCascade removes id. Without cascade it refuses to remove a category
// that still has children; with cascade the whole subtree goes. Returns the
// remaining records and the removed ids.
func DeleteCascade(records []model.Category, id string, cascade bool, now time.Time) ([]model.Category, []string, error) {
	if Find(records, id) < 0 {
		return nil, nil, &category.NotFoundError{ID: id}
	}
	if children := DirectChildren(records, id); len(children) > 0 && !cascade {
		return nil, nil, &category.ConflictError{ID: id, Children: children}
	}

	remove := CollectDescendants(records, []string{id})
	remove[id] = struct{}{}
	out, removed := removeAndRenumber(records, remove, now)
	return out, removed, nil
}

// BulkDelete removes ids and all their descendants in one pass. Unknown ids
// are ignored.
func BulkDelete(records []model.Category, ids []string, now time.Time) ([]model.Category, []string) {
	remove := CollectDescendants(records, ids)
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	return removeAndRenumber(records, remove, now)
}

func removeAndRenumber(records []model.Category, remove map[string]struct{}, now time.Time) ([]model.Category, []string) {
	out := make([]model.Category, 0, len(records))
	var removed []string
	affected := make(map[string]struct{})
	for i := range records {
		c := records[i]
		if _, gone := remove[c.ID]; gone {
			removed = append(removed, c.ID)
			affected[c.ParentKey()] = struct{}{}
			continue
		}
		out = append(out, c.Clone())
	}
	renumberGroups(out, affected, now)
	return out, removed
}
