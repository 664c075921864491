package usecase

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/category/hierarchy"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Option func(*categoryUseCase)

func WithPublisher(p category.EventPublisher) Option {
	return func(uc *categoryUseCase) { uc.publisher = p }
}

func WithIndexer(i category.Indexer) Option {
	return func(uc *categoryUseCase) { uc.indexer = i }
}

func WithTreeCache(c category.TreeCache) Option {
	return func(uc *categoryUseCase) { uc.cache = c }
}

func WithTemplates(t []model.Template) Option {
	return func(uc *categoryUseCase) { uc.templates = t }
}

func WithClock(now func() time.Time) Option {
	return func(uc *categoryUseCase) { uc.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(uc *categoryUseCase) { uc.newID = newID }
}

// categoryUseCase owns the flat collection. Every mutation runs inside mu
// from validation to commit, so each one observes the result of the previous.
// Events and index updates run after mu is released; fanout is closed
// once the latest commit's side effects are done.
type categoryUseCase struct {
	mu      sync.RWMutex
	records []model.Category
	fanout  chan struct{}

	repo      category.Repository
	publisher category.EventPublisher
	indexer   category.Indexer
	cache     category.TreeCache
	templates []model.Template
	logger    logger.ZapLogger

	now   func() time.Time
	newID func() string
}

// NewCategoryUseCase builds the store. repo may be nil for a purely
// in-memory collection; call Reload to load the repository contents.
func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger, opts ...Option) category.UseCase {
	uc := &categoryUseCase{
		repo:      repo,
		logger:    log,
		templates: DefaultTemplates(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// mutation is the outcome of one write computed against the current snapshot.
type mutation struct {
	event   string
	next    []model.Category
	subject []string
	at      time.Time
}

func (uc *categoryUseCase) commit(ctx context.Context, fn func(current []model.Category, now time.Time) (*mutation, error)) (*mutation, error) {
	uc.mu.Lock()
	m, upserts, deleted, err := uc.apply(ctx, fn)
	if err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	if len(upserts) == 0 && len(deleted) == 0 {
		uc.mu.Unlock()
		return m, nil
	}

	// Side effects run outside mu. Each commit waits for the previous
	// one's fan-out so events still leave in commit order.
	prev, done := uc.fanout, make(chan struct{})
	uc.fanout = done
	uc.mu.Unlock()
	defer close(done)

	if prev != nil {
		<-prev
	}
	uc.afterCommit(ctx, m, upserts, deleted, m.at)
	return m, nil
}

// apply computes, checks and persists one mutation. Callers hold mu.
func (uc *categoryUseCase) apply(ctx context.Context, fn func(current []model.Category, now time.Time) (*mutation, error)) (*mutation, []model.Category, []string, error) {
	now := uc.now().UTC()
	m, err := fn(uc.records, now)
	if err != nil {
		return nil, nil, nil, err
	}
	m.at = now
	if err := hierarchy.CheckInvariants(m.next); err != nil {
		uc.logger.Error("mutation would corrupt category structure", zap.String("event", m.event), zap.Error(err))
		return nil, nil, nil, fmt.Errorf("%s: %w", m.event, err)
	}

	upserts, deleted := diff(uc.records, m.next)
	if len(upserts) == 0 && len(deleted) == 0 {
		return m, nil, nil, nil
	}

	if uc.repo != nil {
		if err := uc.repo.Apply(ctx, upserts, deleted); err != nil {
			return nil, nil, nil, fmt.Errorf("persist categories: %w", err)
		}
	}
	uc.records = m.next

	uc.logger.Debug("categories committed",
		zap.String("event", m.event),
		zap.Strings("subject_ids", m.subject),
		zap.Int("changed", len(upserts)),
		zap.Int("removed", len(deleted)),
	)
	return m, upserts, deleted, nil
}

// afterCommit fans the change out. Failures here never undo the commit.
func (uc *categoryUseCase) afterCommit(ctx context.Context, m *mutation, upserts []model.Category, deleted []string, now time.Time) {
	if uc.publisher != nil {
		event := model.CategoryEvent{
			EventID:    uc.newID(),
			EventType:  m.event,
			SubjectIDs: m.subject,
			Changed:    upserts,
			RemovedIDs: deleted,
			Timestamp:  now,
		}
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Error("failed to publish category event", zap.String("event", m.event), zap.Error(err))
		}
	}

	if uc.indexer != nil {
		if len(deleted) > 0 {
			if err := uc.indexer.Delete(ctx, deleted); err != nil {
				uc.logger.Error("failed to remove categories from index", zap.Error(err))
			}
		}
		if len(upserts) > 0 {
			docs, err := searchDocuments(m.next, upserts)
			if err == nil {
				err = uc.indexer.Index(ctx, docs)
			}
			if err != nil {
				uc.logger.Error("failed to index categories", zap.Error(err))
			}
		}
	}
}

// diff returns records that are new or changed in next, and ids gone from it.
func diff(prev, next []model.Category) ([]model.Category, []string) {
	old := make(map[string]*model.Category, len(prev))
	for i := range prev {
		old[prev[i].ID] = &prev[i]
	}

	var upserts []model.Category
	seen := make(map[string]struct{}, len(next))
	for i := range next {
		seen[next[i].ID] = struct{}{}
		if o, ok := old[next[i].ID]; !ok || !reflect.DeepEqual(*o, next[i]) {
			upserts = append(upserts, next[i].Clone())
		}
	}

	var deleted []string
	for i := range prev {
		if _, ok := seen[prev[i].ID]; !ok {
			deleted = append(deleted, prev[i].ID)
		}
	}
	return upserts, deleted
}

func (uc *categoryUseCase) snapshot() []model.Category {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return model.CloneCategories(uc.records)
}

func (uc *categoryUseCase) Reload(ctx context.Context) error {
	if uc.repo == nil {
		return nil
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	records, err := uc.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if err := hierarchy.CheckInvariants(records); err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	uc.records = records

	uc.logger.Info("categories loaded", zap.Int("count", len(records)))
	return nil
}

func (uc *categoryUseCase) List(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error) {
	records := uc.snapshot()
	out := records[:0]
	for _, c := range records {
		if filters != nil {
			if filters.ParentID != nil && c.ParentKey() != *filters.ParentID {
				continue
			}
			if filters.IsActive != nil && c.IsActive != *filters.IsActive {
				continue
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (uc *categoryUseCase) Tree(ctx context.Context) ([]*model.TreeNode, error) {
	records := uc.snapshot()
	if uc.cache == nil {
		return hierarchy.BuildFullTree(records)
	}

	key, err := hierarchy.ContentHash(records)
	if err != nil {
		return hierarchy.BuildFullTree(records)
	}
	if tree, ok, err := uc.cache.GetTree(ctx, key); err != nil {
		uc.logger.Warn("tree cache read failed", zap.Error(err))
	} else if ok {
		return tree, nil
	}

	tree, err := hierarchy.BuildFullTree(records)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetTree(ctx, key, tree); err != nil {
		uc.logger.Warn("tree cache write failed", zap.Error(err))
	}
	return tree, nil
}

func (uc *categoryUseCase) FlatOrdered(ctx context.Context) ([]*model.TreeNode, error) {
	tree, err := uc.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.Flatten(tree), nil
}

func (uc *categoryUseCase) ByID(ctx context.Context, id string) (*model.Category, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if pos := hierarchy.Find(uc.records, id); pos >= 0 {
		c := uc.records[pos].Clone()
		return &c, nil
	}
	return nil, &category.NotFoundError{ID: id}
}

func (uc *categoryUseCase) BySlug(ctx context.Context, slug string) (*model.Category, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for i := range uc.records {
		if uc.records[i].Slug == slug {
			c := uc.records[i].Clone()
			return &c, nil
		}
	}
	return nil, &category.NotFoundError{ID: slug}
}

func (uc *categoryUseCase) Breadcrumbs(ctx context.Context, id string) ([]model.Category, error) {
	return hierarchy.Path(uc.snapshot(), id)
}

// AvailableParents lists, in tree order, every category that excludingID
// could be moved under: everything except itself and its descendants.
func (uc *categoryUseCase) AvailableParents(ctx context.Context, excludingID string) ([]*model.TreeNode, error) {
	records := uc.snapshot()
	tree, err := hierarchy.BuildFullTree(records)
	if err != nil {
		return nil, err
	}
	flat := hierarchy.Flatten(tree)
	if excludingID == "" {
		return flat, nil
	}

	excluded := hierarchy.CollectDescendants(records, []string{excludingID})
	excluded[excludingID] = struct{}{}
	out := make([]*model.TreeNode, 0, len(flat))
	for _, n := range flat {
		if _, skip := excluded[n.ID]; !skip {
			out = append(out, n)
		}
	}
	return out, nil
}

func (uc *categoryUseCase) Create(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	var created model.Category
	_, err := uc.commit(ctx, func(current []model.Category, now time.Time) (*mutation, error) {
		if err := hierarchy.ValidateCreate(current, input); err != nil {
			return nil, err
		}

		isActive := true
		if input.IsActive != nil {
			isActive = *input.IsActive
		}
		var parentID *string
		if input.ParentID != nil {
			p := *input.ParentID
			parentID = &p
		}

		created = model.Category{
			BaseModel: model.BaseModel{
				ID:        uc.newID(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Name:           strings.TrimSpace(input.Name),
			Slug:           input.Slug,
			Description:    input.Description,
			ParentID:       parentID,
			SortOrder:      hierarchy.SiblingCount(current, parentID),
			IsActive:       isActive,
			IsFeatured:     input.IsFeatured,
			ProductCount:   0,
			Color:          input.Color,
			Icon:           input.Icon,
			Image:          input.Image,
			SEOTitle:       input.SEOTitle,
			SEODescription: input.SEODescription,
			Metadata:       input.Metadata.Clone(),
		}

		next := append(model.CloneCategories(current), created.Clone())
		return &mutation{event: model.EventCategoryCreated, next: next, subject: []string{created.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (uc *categoryUseCase) Update(ctx context.Context, id string, patch *dto.UpdateCategoryInput) (*model.Category, error) {
	var updated model.Category
	_, err := uc.commit(ctx, func(current []model.Category, now time.Time) (*mutation, error) {
		if err := hierarchy.ValidateUpdate(current, id, patch); err != nil {
			return nil, err
		}

		next := model.CloneCategories(current)
		if patch.SetParent {
			var err error
			if next, err = hierarchy.Move(current, id, patch.ParentID, now); err != nil {
				return nil, err
			}
		}

		pos := hierarchy.Find(next, id)
		before := next[pos].Clone()
		applyPatch(&next[pos], patch)
		if !reflect.DeepEqual(before, next[pos]) {
			next[pos].UpdatedAt = now
		}
		updated = next[pos].Clone()
		return &mutation{event: model.EventCategoryUpdated, next: next, subject: []string{id}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func applyPatch(c *model.Category, p *dto.UpdateCategoryInput) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.IsFeatured != nil {
		c.IsFeatured = *p.IsFeatured
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.SEOTitle != nil {
		c.SEOTitle = *p.SEOTitle
	}
	if p.SEODescription != nil {
		c.SEODescription = *p.SEODescription
	}
	if p.Metadata != nil {
		c.Metadata = p.Metadata.Clone()
	}
}

func (uc *categoryUseCase) Move(ctx context.Context, id string, newParentID *string) (*model.Category, error) {
	var moved model.Category
	_, err := uc.commit(ctx, func(current []model.Category, now time.Time) (*mutation, error) {
		next, err := hierarchy.Move(current, id, newParentID, now)
		if err != nil {
			return nil, err
		}
		moved = next[hierarchy.Find(next, id)].Clone()
		return &mutation{event: model.EventCategoryMoved, next: next, subject: []string{id}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}

func (uc *categoryUseCase) Reorder(ctx context.Context, id string, newOrder int) (*model.Category, error) {
	var reordered model.Category
	_, err := uc.commit(ctx, func(current []model.Category, now time.Time) (*mutation, error) {
		next, err := hierarchy.Reorder(current, id, newOrder, now)
		if err != nil {
			return nil, err
		}
		reordered = next[hierarchy.Find(next, id)].Clone()
		return &mutation{event: model.EventCategoryReordered, next: next, subject: []string{id}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &reordered, nil
}

func (uc *categoryUseCase) Delete(ctx context.Context, id string, opts dto.DeleteOptions) ([]string, error) {
	var removed []string
	_, err := uc.commit(ctx, func(current []model.Category, now time.Time) (*mutation, error) {
		next, gone, err := hierarchy.DeleteCascade(current, id, opts.Cascade, now)
		if err != nil {
			return nil, err
		}
		removed = gone
		return &mutation{event: model.EventCategoryDeleted, next: next, subject: []string{id}}, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (uc *categoryUseCase) BulkDelete(ctx context.Context, ids []string) ([]string, error) {
	var removed []string
	_, err := uc.commit(ctx, func(current []model.Category, now time.Time) (*mutation, error) {
		next, gone := hierarchy.BulkDelete(current, ids, now)
		removed = gone
		return &mutation{event: model.EventCategoryDeleted, next: next, subject: ids}, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// BulkUpdateStatus sets is_active on every listed category that exists and
// returns how many actually changed. Unknown ids are ignored.
func (uc *categoryUseCase) BulkUpdateStatus(ctx context.Context, ids []string, isActive bool) (int, error) {
	changed := 0
	_, err := uc.commit(ctx, func(current []model.Category, now time.Time) (*mutation, error) {
		want := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			want[id] = struct{}{}
		}
		next := model.CloneCategories(current)
		for i := range next {
			if _, ok := want[next[i].ID]; ok && next[i].IsActive != isActive {
				next[i].IsActive = isActive
				next[i].UpdatedAt = now
				changed++
			}
		}
		return &mutation{event: model.EventCategoryStatusChanged, next: next, subject: ids}, nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// searchDocuments builds index documents for the changed records and for
// every descendant of them, since a rename or move changes their paths too.
func searchDocuments(records []model.Category, changed []model.Category) ([]model.CategoryDocument, error) {
	ids := make([]string, 0, len(changed))
	for _, c := range changed {
		ids = append(ids, c.ID)
	}
	targets := hierarchy.CollectDescendants(records, ids)
	for _, id := range ids {
		targets[id] = struct{}{}
	}

	docs := make([]model.CategoryDocument, 0, len(targets))
	for i := range records {
		if _, ok := targets[records[i].ID]; !ok {
			continue
		}
		path, err := hierarchy.Path(records, records[i].ID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, newDocument(records[i], path))
	}
	return docs, nil
}

func newDocument(c model.Category, path []model.Category) model.CategoryDocument {
	names := make([]string, len(path))
	slugs := make([]string, len(path))
	for i, p := range path {
		names[i] = p.Name
		slugs[i] = p.Slug
	}
	return model.CategoryDocument{
		ID:         c.ID,
		Name:       c.Name,
		Slug:       c.Slug,
		ParentID:   c.ParentID,
		Level:      len(path) - 1,
		Path:       names,
		PathSlugs:  slugs,
		IsActive:   c.IsActive,
		IsFeatured: c.IsFeatured,
		SEOTitle:   c.SEOTitle,
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}
