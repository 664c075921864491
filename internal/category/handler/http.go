package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

// Routes mounts under /api/v1/categories. Static segments are registered
// before /{id} so chi matches them first.
func (h *CategoryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/tree", h.Tree)
	r.Get("/flat", h.Flat)
	r.Get("/parents", h.AvailableParents)
	r.Get("/templates", h.Templates)
	r.Post("/templates/{templateID}/apply", h.ApplyTemplate)
	r.Get("/slug/{slug}", h.GetBySlug)
	r.Post("/bulk/status", h.BulkUpdateStatus)
	r.Post("/bulk/delete", h.BulkDelete)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/breadcrumbs", h.Breadcrumbs)
		r.Post("/move", h.Move)
		r.Post("/reorder", h.Reorder)
	})
	return r
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &dto.CategoryFilters{}
	q := r.URL.Query()
	if q.Has("parent_id") {
		parent := q.Get("parent_id")
		filters.ParentID = &parent
	}
	if raw := q.Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, &category.ValidationError{Field: "is_active", Reason: "must be a boolean"})
			return
		}
		filters.IsActive = &active
	}

	categories, err := h.uc.List(r.Context(), filters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: nonNil(categories)})
}

func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.uc.Tree(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: nonNil(tree)})
}

func (h *CategoryHandler) Flat(w http.ResponseWriter, r *http.Request) {
	flat, err := h.uc.FlatOrdered(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: nonNil(flat)})
}

func (h *CategoryHandler) AvailableParents(w http.ResponseWriter, r *http.Request) {
	parents, err := h.uc.AvailableParents(r.Context(), r.URL.Query().Get("exclude"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: nonNil(parents)})
}

func (h *CategoryHandler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dataResponse{Data: nonNil(h.uc.Templates(r.Context()))})
}

func (h *CategoryHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var draft dto.CreateCategoryInput
	if err := decodeBody(r, &draft); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.uc.ApplyTemplate(r.Context(), chi.URLParam(r, "templateID"), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: out})
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: c})
}

func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.BySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: c})
}

func (h *CategoryHandler) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	path, err := h.uc.Breadcrumbs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: path})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateCategoryInput
	if err := decodeBody(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.uc.Create(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, "category created", zap.String("category_id", c.ID))
	writeJSON(w, http.StatusCreated, dataResponse{Data: c})
}

// Update treats a present "parent_id" key as a parent change, so
// {"parent_id": null} moves the category to the root.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var patch dto.UpdateCategoryInput
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &patch); err != nil {
		h.writeError(w, r, bodyError(err))
		return
	}
	if err := json.Unmarshal(raw, &keys); err != nil {
		h.writeError(w, r, bodyError(err))
		return
	}
	if _, ok := keys["parent_id"]; ok {
		patch.SetParent = true
	}

	id := chi.URLParam(r, "id")
	c, err := h.uc.Update(r.Context(), id, &patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, "category updated", zap.String("category_id", id))
	writeJSON(w, http.StatusOK, dataResponse{Data: c})
}

type moveRequest struct {
	ParentID *string `json:"parent_id"`
}

func (h *CategoryHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	c, err := h.uc.Move(r.Context(), id, req.ParentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, "category moved", zap.String("category_id", id), zap.Stringp("parent_id", req.ParentID))
	writeJSON(w, http.StatusOK, dataResponse{Data: c})
}

type reorderRequest struct {
	SortOrder *int `json:"sort_order"`
}

func (h *CategoryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.SortOrder == nil {
		h.writeError(w, r, &category.ValidationError{Field: "sort_order", Reason: "is required"})
		return
	}
	id := chi.URLParam(r, "id")
	c, err := h.uc.Reorder(r.Context(), id, *req.SortOrder)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, "category reordered", zap.String("category_id", id), zap.Int("sort_order", *req.SortOrder))
	writeJSON(w, http.StatusOK, dataResponse{Data: c})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var opts dto.DeleteOptions
	if raw := r.URL.Query().Get("cascade"); raw != "" {
		cascade, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, &category.ValidationError{Field: "cascade", Reason: "must be a boolean"})
			return
		}
		opts.Cascade = cascade
	}

	id := chi.URLParam(r, "id")
	removed, err := h.uc.Delete(r.Context(), id, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, "category deleted", zap.String("category_id", id), zap.Strings("removed", removed))
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: nonNil(removed)})
}

type bulkStatusRequest struct {
	IDs      []string `json:"ids"`
	IsActive *bool    `json:"is_active"`
}

func (h *CategoryHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.IsActive == nil {
		h.writeError(w, r, &category.ValidationError{Field: "is_active", Reason: "is required"})
		return
	}
	n, err := h.uc.BulkUpdateStatus(r.Context(), req.IDs, *req.IsActive)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, "category status updated", zap.Strings("ids", req.IDs), zap.Bool("is_active", *req.IsActive))
	writeJSON(w, http.StatusOK, updatedResponse{Updated: n})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *CategoryHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	removed, err := h.uc.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, "categories bulk deleted", zap.Strings("ids", req.IDs), zap.Strings("removed", removed))
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: nonNil(removed)})
}

func (h *CategoryHandler) audit(r *http.Request, msg string, fields ...zap.Field) {
	fields = append(fields, zap.String("user_id", auth.GetUserID(r.Context())))
	h.logger.Info(msg, fields...)
}

type dataResponse struct {
	Data any `json:"data"`
}

type deletedResponse struct {
	Deleted []string `json:"deleted"`
}

type updatedResponse struct {
	Updated int `json:"updated"`
}

func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &category.ValidationError{Field: "body", Reason: err.Error()}
	}
	if len(raw) > maxBodyBytes {
		return nil, &category.ValidationError{Field: "body", Reason: "too large"}
	}
	if len(raw) == 0 {
		return nil, &category.ValidationError{Field: "body", Reason: "is required"}
	}
	return raw, nil
}

func decodeBody(r *http.Request, dst any) error {
	raw, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	return &category.ValidationError{Field: "body", Reason: fmt.Sprintf("malformed JSON: %v", err)}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
