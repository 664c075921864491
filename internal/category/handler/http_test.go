package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/category/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type apiError struct {
	Error struct {
		Kind     string   `json:"kind"`
		Field    string   `json:"field"`
		Message  string   `json:"message"`
		Children []string `json:"children"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	uc := usecase.NewCategoryUseCase(nil, logger.NewNop())
	r := chi.NewRouter()
	r.Mount("/api/v1/categories", NewCategoryHandler(uc, logger.NewNop()).Routes())
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var out apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func create(t *testing.T, h http.Handler, name, slug string, parentID *string) model.Category {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": name, "slug": slug, "parent_id": parentID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[model.Category](t, rec)
}

func TestCreateAndGet(t *testing.T) {
	h := newTestRouter(t)
	electronics := create(t, h, "Electronics", "electronics", nil)
	phones := create(t, h, "Phones", "phones", &electronics.ID)

	assert.Equal(t, 0, phones.SortOrder)
	assert.True(t, phones.IsActive)

	rec := do(t, h, http.MethodGet, "/api/v1/categories/"+phones.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Phones", decodeData[model.Category](t, rec).Name)

	rec = do(t, h, http.MethodGet, "/api/v1/categories/slug/phones", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, phones.ID, decodeData[model.Category](t, rec).ID)

	rec = do(t, h, http.MethodGet, "/api/v1/categories/"+phones.ID+"/breadcrumbs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	crumbs := decodeData[[]model.Category](t, rec)
	require.Len(t, crumbs, 2)
	assert.Equal(t, "Electronics", crumbs[0].Name)
}

func TestErrorMapping(t *testing.T) {
	h := newTestRouter(t)
	parent := create(t, h, "Parent", "parent", nil)
	child := create(t, h, "Child", "child", &parent.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
		field  string
	}{
		{"duplicate slug", http.MethodPost, "/api/v1/categories", map[string]any{"name": "P", "slug": "parent"}, http.StatusBadRequest, "validation", "slug"},
		{"missing name", http.MethodPost, "/api/v1/categories", map[string]any{"slug": "x"}, http.StatusBadRequest, "validation", "name"},
		{"malformed body", http.MethodPost, "/api/v1/categories", "{", http.StatusBadRequest, "validation", "body"},
		{"unknown id", http.MethodGet, "/api/v1/categories/nope", nil, http.StatusNotFound, "not_found", ""},
		{"delete with children", http.MethodDelete, "/api/v1/categories/" + parent.ID, nil, http.StatusConflict, "conflict", ""},
		{"move under descendant", http.MethodPost, "/api/v1/categories/" + parent.ID + "/move", map[string]any{"parent_id": child.ID}, http.StatusUnprocessableEntity, "cycle", ""},
		{"reorder out of range", http.MethodPost, "/api/v1/categories/" + child.ID + "/reorder", map[string]any{"sort_order": 5}, http.StatusBadRequest, "validation", "sort_order"},
		{"reorder without position", http.MethodPost, "/api/v1/categories/" + child.ID + "/reorder", map[string]any{}, http.StatusBadRequest, "validation", "sort_order"},
		{"bad cascade flag", http.MethodDelete, "/api/v1/categories/" + child.ID + "?cascade=maybe", nil, http.StatusBadRequest, "validation", "cascade"},
		{"unknown template", http.MethodPost, "/api/v1/categories/templates/nope/apply", map[string]any{"name": "x"}, http.StatusNotFound, "not_found", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			e := decodeError(t, rec)
			assert.Equal(t, tt.kind, e.Error.Kind)
			assert.Equal(t, tt.field, e.Error.Field)
			assert.NotEmpty(t, e.Error.Message)
		})
	}

	rec := do(t, h, http.MethodDelete, "/api/v1/categories/"+parent.ID, nil)
	assert.Equal(t, []string{child.ID}, decodeError(t, rec).Error.Children)
}

func TestTreeFlatAndParents(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/categories/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	a := create(t, h, "A", "a", nil)
	a1 := create(t, h, "A1", "a1", &a.ID)
	create(t, h, "B", "b", nil)

	rec = do(t, h, http.MethodGet, "/api/v1/categories/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tree := decodeData[[]*model.TreeNode](t, rec)
	require.Len(t, tree, 2)
	require.Len(t, tree[0].Subcategories, 1)
	assert.Equal(t, 1, tree[0].Subcategories[0].Level)

	rec = do(t, h, http.MethodGet, "/api/v1/categories/flat", nil)
	flat := decodeData[[]*model.TreeNode](t, rec)
	assert.Len(t, flat, 3)

	rec = do(t, h, http.MethodGet, "/api/v1/categories/parents?exclude="+a.ID, nil)
	parents := decodeData[[]*model.TreeNode](t, rec)
	require.Len(t, parents, 1)
	assert.Equal(t, "B", parents[0].Name)
	assert.NotEqual(t, a1.ID, parents[0].ID)
}

func TestListFilters(t *testing.T) {
	h := newTestRouter(t)
	a := create(t, h, "A", "a", nil)
	create(t, h, "A1", "a1", &a.ID)

	rec := do(t, h, http.MethodGet, "/api/v1/categories?parent_id=", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]model.Category](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/v1/categories?parent_id="+a.ID, nil)
	assert.Len(t, decodeData[[]model.Category](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/v1/categories?is_active=false", nil)
	assert.Empty(t, decodeData[[]model.Category](t, rec))

	rec = do(t, h, http.MethodGet, "/api/v1/categories?is_active=nah", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMoveReorder(t *testing.T) {
	h := newTestRouter(t)
	a := create(t, h, "A", "a", nil)
	b := create(t, h, "B", "b", nil)
	c := create(t, h, "C", "c", &a.ID)

	rec := do(t, h, http.MethodPatch, "/api/v1/categories/"+c.ID, map[string]any{"name": "Sea", "is_featured": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[model.Category](t, rec)
	assert.Equal(t, "Sea", updated.Name)
	assert.True(t, updated.IsFeatured)
	require.NotNil(t, updated.ParentID, "absent parent_id leaves the parent alone")

	rec = do(t, h, http.MethodPatch, "/api/v1/categories/"+c.ID, map[string]any{"parent_id": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated = decodeData[model.Category](t, rec)
	assert.Nil(t, updated.ParentID)
	assert.Equal(t, 2, updated.SortOrder)

	rec = do(t, h, http.MethodPost, "/api/v1/categories/"+c.ID+"/move", map[string]any{"parent_id": b.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, b.ID, *decodeData[model.Category](t, rec).ParentID)

	rec = do(t, h, http.MethodPost, "/api/v1/categories/"+b.ID+"/reorder", map[string]any{"sort_order": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decodeData[model.Category](t, rec).SortOrder)

	rec = do(t, h, http.MethodGet, "/api/v1/categories/"+a.ID, nil)
	assert.Equal(t, 1, decodeData[model.Category](t, rec).SortOrder)
}

func TestUpdateIgnoresSetParentField(t *testing.T) {
	h := newTestRouter(t)
	a := create(t, h, "A", "a", nil)
	b := create(t, h, "B", "b", &a.ID)

	rec := do(t, h, http.MethodPatch, "/api/v1/categories/"+b.ID, `{"name":"B2","set_parent":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[model.Category](t, rec)
	assert.Equal(t, "B2", updated.Name)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, a.ID, *updated.ParentID)
	assert.Equal(t, 0, updated.SortOrder)
}

func TestDeleteAndBulk(t *testing.T) {
	h := newTestRouter(t)
	a := create(t, h, "A", "a", nil)
	a1 := create(t, h, "A1", "a1", &a.ID)
	b := create(t, h, "B", "b", nil)
	c := create(t, h, "C", "c", nil)

	rec := do(t, h, http.MethodPost, "/api/v1/categories/bulk/status", map[string]any{"ids": []string{b.ID, c.ID, "ghost"}, "is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/categories/bulk/status", map[string]any{"ids": []string{b.ID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/categories/"+a.ID+"?cascade=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var deleted struct {
		Deleted []string `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.ElementsMatch(t, []string{a.ID, a1.ID}, deleted.Deleted)

	rec = do(t, h, http.MethodPost, "/api/v1/categories/bulk/delete", map[string]any{"ids": []string{b.ID, c.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/categories", nil)
	assert.Empty(t, decodeData[[]model.Category](t, rec))
}

func TestTemplates(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/categories/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]model.Template](t, rec), 5)

	rec = do(t, h, http.MethodPost, "/api/v1/categories/templates/fashion/apply", map[string]any{"name": "Shoes"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var draft struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.Equal(t, "shoes", draft.Data["slug"])
	assert.Equal(t, "shirt", draft.Data["icon"])
	assert.Equal(t, true, draft.Data["is_featured"])
}
