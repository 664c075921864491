package hierarchy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

var (
	t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

// rec builds a category whose slug is its lowercased id.
func rec(id, parent string, order int) model.Category {
	c := model.Category{
		BaseModel: model.BaseModel{ID: id, CreatedAt: t0, UpdatedAt: t0},
		Name:      id,
		Slug:      strings.ToLower(id),
		SortOrder: order,
		IsActive:  true,
	}
	if parent != "" {
		p := parent
		c.ParentID = &p
	}
	return c
}

func strPtr(s string) *string { return &s }

func orders(records []model.Category) map[string]int {
	out := make(map[string]int, len(records))
	for _, c := range records {
		out[c.ID] = c.SortOrder
	}
	return out
}

func byID(t *testing.T, records []model.Category, id string) model.Category {
	t.Helper()
	pos := Find(records, id)
	require.GreaterOrEqual(t, pos, 0, "category %s not found", id)
	return records[pos]
}

// catalog is a small three-level fixture:
//
//	electronics
//	  phones
//	    android
//	    ios
//	  laptops
//	fashion
//	  shoes
func catalog() []model.Category {
	return []model.Category{
		rec("fashion", "", 1),
		rec("ios", "phones", 1),
		rec("electronics", "", 0),
		rec("laptops", "electronics", 1),
		rec("phones", "electronics", 0),
		rec("android", "phones", 0),
		rec("shoes", "fashion", 0),
	}
}
