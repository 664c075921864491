package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type fakeRepo struct {
	mu      sync.Mutex
	stored  map[string]model.Category
	applies int
	failErr error
}

func newFakeRepo(records ...model.Category) *fakeRepo {
	r := &fakeRepo{stored: map[string]model.Category{}}
	for _, c := range records {
		r.stored[c.ID] = c.Clone()
	}
	return r
}

func (r *fakeRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Category, 0, len(r.stored))
	for _, c := range r.stored {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (r *fakeRepo) Apply(ctx context.Context, upserts []model.Category, deleteIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.applies++
	for _, id := range deleteIDs {
		delete(r.stored, id)
	}
	for _, c := range upserts {
		r.stored[c.ID] = c.Clone()
	}
	return nil
}

type fakePublisher struct {
	events []model.CategoryEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, events ...model.CategoryEvent) error {
	p.events = append(p.events, events...)
	return p.err
}

type fakeIndexer struct {
	docs    map[string]model.CategoryDocument
	deleted []string
}

func (i *fakeIndexer) Index(ctx context.Context, docs []model.CategoryDocument) error {
	if i.docs == nil {
		i.docs = map[string]model.CategoryDocument{}
	}
	for _, d := range docs {
		i.docs[d.ID] = d
	}
	return nil
}

func (i *fakeIndexer) Delete(ctx context.Context, ids []string) error {
	i.deleted = append(i.deleted, ids...)
	for _, id := range ids {
		delete(i.docs, id)
	}
	return nil
}

type fakeCache struct {
	trees map[string][]*model.TreeNode
	hits  int
}

func (c *fakeCache) GetTree(ctx context.Context, key string) ([]*model.TreeNode, bool, error) {
	tree, ok := c.trees[key]
	if ok {
		c.hits++
	}
	return tree, ok, nil
}

func (c *fakeCache) SetTree(ctx context.Context, key string, tree []*model.TreeNode) error {
	if c.trees == nil {
		c.trees = map[string][]*model.TreeNode{}
	}
	c.trees[key] = tree
	return nil
}

// sequentialIDs returns cat-1, cat-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("cat-%d", n)
	}
}

// fixedClock advances one second per call.
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// gatedPublisher holds the first Publish call until release is closed.
type gatedPublisher struct {
	mu      sync.Mutex
	events  []model.CategoryEvent
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedPublisher() *gatedPublisher {
	return &gatedPublisher{started: make(chan struct{}), release: make(chan struct{})}
}

func (p *gatedPublisher) Publish(ctx context.Context, events ...model.CategoryEvent) error {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.started)
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *gatedPublisher) recorded() []model.CategoryEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.CategoryEvent(nil), p.events...)
}

// gatedRepo holds FindAll until release is closed.
type gatedRepo struct {
	*fakeRepo
	started chan struct{}
	release chan struct{}
}

func (r *gatedRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	close(r.started)
	<-r.release
	return r.fakeRepo.FindAll(ctx)
}
