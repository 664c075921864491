package hierarchy

import (
	"fmt"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// BuildTree projects the categories below rootParentID into a nested tree.
// Siblings are ordered by sort_order with id as a tie-break. A category seen
// twice on the way down yields a CycleDetectedError instead of recursing
// forever.
func BuildTree(records []model.Category, rootParentID *string, level int) ([]*model.TreeNode, error) {
	idx := newIndex(records)
	visited := make(map[string]struct{}, len(records))
	return buildLevel(records, idx, model.ParentKey(rootParentID), level, visited)
}

func buildLevel(records []model.Category, idx index, key string, level int, visited map[string]struct{}) ([]*model.TreeNode, error) {
	positions := idx.children[key]
	nodes := make([]*model.TreeNode, 0, len(positions))
	for _, pos := range positions {
		c := records[pos]
		if _, seen := visited[c.ID]; seen {
			return nil, &category.CycleDetectedError{ID: c.ID}
		}
		visited[c.ID] = struct{}{}

		subs, err := buildLevel(records, idx, c.ID, level+1, visited)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &model.TreeNode{
			Category:      c.Clone(),
			Level:         level,
			Subcategories: subs,
		})
	}
	return nodes, nil
}

// BuildFullTree builds the tree from the roots and fails when any category
// is unreachable from a root, which only happens on a cyclic or orphaned
// collection.
func BuildFullTree(records []model.Category) ([]*model.TreeNode, error) {
	tree, err := BuildTree(records, nil, 0)
	if err != nil {
		return nil, err
	}
	if n := CountNodes(tree); n != len(records) {
		return nil, unreachableError(records)
	}
	return tree, nil
}

// unreachableError explains why some categories are missing from the tree.
func unreachableError(records []model.Category) error {
	idx := newIndex(records)
	for i := range records {
		seen := map[string]struct{}{}
		id := records[i].ID
		for {
			if _, loop := seen[id]; loop {
				return &category.CycleDetectedError{ID: id}
			}
			seen[id] = struct{}{}
			c, ok := idx.get(records, id)
			if !ok {
				return &category.StructureError{Reason: fmt.Sprintf("category %q references missing parent %q", records[i].ID, id)}
			}
			if c.ParentID == nil {
				break
			}
			id = *c.ParentID
		}
	}
	return &category.StructureError{Reason: "tree does not cover every category"}
}

// Flatten returns the nodes depth-first, preserving sibling order.
func Flatten(tree []*model.TreeNode) []*model.TreeNode {
	var out []*model.TreeNode
	var walk func(nodes []*model.TreeNode)
	walk = func(nodes []*model.TreeNode) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Subcategories)
		}
	}
	walk(tree)
	return out
}

func CountNodes(tree []*model.TreeNode) int {
	n := 0
	for _, node := range tree {
		n += 1 + CountNodes(node.Subcategories)
	}
	return n
}

// Path returns the ancestry of id from its root down to the category itself.
func Path(records []model.Category, id string) ([]model.Category, error) {
	idx := newIndex(records)
	var rev []model.Category
	cur := id
	for steps := 0; ; steps++ {
		if steps > len(records) {
			return nil, &category.CycleDetectedError{ID: id}
		}
		c, ok := idx.get(records, cur)
		if !ok {
			if cur == id {
				return nil, &category.NotFoundError{ID: id}
			}
			return nil, &category.StructureError{Reason: fmt.Sprintf("category %q references missing parent %q", id, cur)}
		}
		rev = append(rev, c.Clone())
		if c.ParentID == nil {
			break
		}
		cur = *c.ParentID
	}

	path := make([]model.Category, len(rev))
	for i := range rev {
		path[len(rev)-1-i] = rev[i]
	}
	return path, nil
}
