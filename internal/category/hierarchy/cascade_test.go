package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func TestCollectDescendants(t *testing.T) {
	records := catalog()

	assert.ElementsMatch(t, []string{"phones", "laptops", "android", "ios"},
		keys(CollectDescendants(records, []string{"electronics"})))

	// Overlapping roots: phones is itself a descendant of electronics.
	assert.ElementsMatch(t, []string{"phones", "laptops", "android", "ios"},
		keys(CollectDescendants(records, []string{"electronics", "phones"})))

	assert.Empty(t, CollectDescendants(records, []string{"shoes"}))
	assert.Empty(t, CollectDescendants(records, []string{"missing"}))
}

func TestBulkDeleteCascades(t *testing.T) {
	records := []model.Category{rec("A", "", 0), rec("B", "A", 0), rec("C", "B", 0)}

	out, removed := BulkDelete(records, []string{"A"}, t1)
	assert.Empty(t, out)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, removed)
}

func TestBulkDeleteRenumbersSurvivors(t *testing.T) {
	records := catalog()

	out, removed := BulkDelete(records, []string{"android", "electronics-missing", "fashion"}, t1)
	assert.ElementsMatch(t, []string{"android", "fashion", "shoes"}, removed)
	require.NoError(t, CheckInvariants(out))
	assert.Equal(t, 0, byID(t, out, "ios").SortOrder)
	assert.Equal(t, 0, byID(t, out, "electronics").SortOrder)
}

func TestDeleteCascade(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		out, removed, err := DeleteCascade(catalog(), "phones-missing", false, t1)
		assert.ErrorIs(t, err, category.ErrNotFound)
		assert.Nil(t, out)
		assert.Nil(t, removed)
	})

	t.Run("children block non-cascading delete", func(t *testing.T) {
		_, _, err := DeleteCascade(catalog(), "phones", false, t1)
		var conflict *category.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []string{"android", "ios"}, conflict.Children)
	})

	t.Run("leaf delete closes the gap", func(t *testing.T) {
		out, removed, err := DeleteCascade(catalog(), "android", false, t1)
		require.NoError(t, err)
		assert.Equal(t, []string{"android"}, removed)
		assert.Equal(t, 0, byID(t, out, "ios").SortOrder)
		require.NoError(t, CheckInvariants(out))
	})

	t.Run("cascade removes the subtree", func(t *testing.T) {
		out, removed, err := DeleteCascade(catalog(), "phones", true, t1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"phones", "android", "ios"}, removed)
		assert.Len(t, out, 4)
		assert.Equal(t, 0, byID(t, out, "laptops").SortOrder)
		require.NoError(t, CheckInvariants(out))
	})
}
