package hierarchy

import (
	"sort"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// index maps ids to positions and parent keys to sorted child positions.
// Built once per call in O(n log n) and consulted during traversal.
type index struct {
	byID     map[string]int
	children map[string][]int
}

func newIndex(records []model.Category) index {
	idx := index{
		byID:     make(map[string]int, len(records)),
		children: make(map[string][]int),
	}
	for i := range records {
		idx.byID[records[i].ID] = i
		key := records[i].ParentKey()
		idx.children[key] = append(idx.children[key], i)
	}
	for key := range idx.children {
		sortPositions(records, idx.children[key])
	}
	return idx
}

func (idx index) get(records []model.Category, id string) (*model.Category, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return &records[i], true
}

// sortPositions orders positions by sort_order, then id.
func sortPositions(records []model.Category, positions []int) {
	sort.SliceStable(positions, func(a, b int) bool {
		ra, rb := records[positions[a]], records[positions[b]]
		if ra.SortOrder != rb.SortOrder {
			return ra.SortOrder < rb.SortOrder
		}
		return ra.ID < rb.ID
	})
}

// SiblingCount returns the number of categories directly under parentID.
func SiblingCount(records []model.Category, parentID *string) int {
	key := model.ParentKey(parentID)
	n := 0
	for i := range records {
		if records[i].ParentKey() == key {
			n++
		}
	}
	return n
}

// Find returns the position of id in records, or -1.
func Find(records []model.Category, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
