package in_mem

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/google/uuid"
)

// InMemStorer keeps memories in a map and evaluates constraint queries with
// the storage package's reference semantics.
type InMemStorer struct {
	storageLock sync.RWMutex
	storage     map[string]memory.Memory

	subsLock sync.Mutex
	subs     map[int]func(storage.Change)
	nextSub  int

	now func() time.Time
}

type Option func(s *InMemStorer)

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *InMemStorer) {
		s.now = now
	}
}

func NewInMemStorer(opts ...Option) *InMemStorer {
	s := &InMemStorer{
		storage: make(map[string]memory.Memory),
		subs:    make(map[int]func(storage.Change)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemStorer) Put(ctx context.Context, m memory.Memory) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storage.NewError(storage.KindTransient, "put memory", err)
	}

	m = s.prepare(m)

	s.storageLock.Lock()
	_, existed := s.storage[m.ID]
	s.storage[m.ID] = m.Clone()
	s.storageLock.Unlock()

	change := storage.ChangeAdded
	if existed {
		change = storage.ChangeModified
	}
	s.publish(storage.Change{Type: change, Memory: m.Clone()})

	slog.Debug("Saved memory to in-memory storage", "id", m.ID, "title", m.Title)
	return m.ID, nil
}

func (s *InMemStorer) PutBulk(ctx context.Context, ms []memory.Memory) error {
	for _, m := range ms {
		if _, err := s.Put(ctx, m); err != nil {
			return err
		}
	}
	slog.Info("Bulk saved memories to in-memory storage", "count", len(ms))
	return nil
}

func (s *InMemStorer) Get(ctx context.Context, id string) (memory.Memory, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	m, ok := s.storage[id]
	if !ok {
		return memory.Memory{}, storage.NewError(storage.KindNotFound, "get memory", nil)
	}
	return m.Clone(), nil
}

func (s *InMemStorer) Delete(ctx context.Context, id string) error {
	s.storageLock.Lock()
	m, ok := s.storage[id]
	delete(s.storage, id)
	s.storageLock.Unlock()

	if !ok {
		return storage.NewError(storage.KindNotFound, "delete memory", nil)
	}
	s.publish(storage.Change{Type: storage.ChangeRemoved, Memory: m})
	return nil
}

func (s *InMemStorer) Query(ctx context.Context, constraints []storage.Constraint) (*storage.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.NewError(storage.KindTransient, "query memories", err)
	}

	plan, err := storage.Compile(constraints)
	if err != nil {
		return nil, err
	}

	s.storageLock.RLock()
	matched := make([]memory.Memory, 0, len(s.storage))
	for _, m := range s.storage {
		if plan.Matches(m) && plan.After(m) {
			matched = append(matched, m.Clone())
		}
	}
	s.storageLock.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return plan.CompareOrder(matched[i], matched[j]) < 0
	})

	if plan.Limit > 0 && len(matched) > plan.Limit {
		matched = matched[:plan.Limit]
	}

	page := &storage.Page{Docs: matched}
	if len(matched) > 0 {
		page.Last = storage.NewCursor(matched[len(matched)-1], plan.OrderField)
	}
	return page, nil
}

// Subscribe delivers every subsequent change to onChange until unsubscribe is
// called or ctx is done.
func (s *InMemStorer) Subscribe(ctx context.Context, onChange func(storage.Change)) (func(), error) {
	s.subsLock.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = onChange
	s.subsLock.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.subsLock.Lock()
			delete(s.subs, id)
			s.subsLock.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return unsubscribe, nil
}

func (s *InMemStorer) publish(c storage.Change) {
	s.subsLock.Lock()
	handlers := make([]func(storage.Change), 0, len(s.subs))
	for _, h := range s.subs {
		handlers = append(handlers, h)
	}
	s.subsLock.Unlock()

	for _, h := range handlers {
		h(c)
	}
}

func (s *InMemStorer) prepare(m memory.Memory) memory.Memory {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	return m
}

// Healthy always reports true; there is nothing to connect to.
func (s *InMemStorer) Healthy(ctx context.Context) bool {
	return true
}

var (
	_ storage.Store      = (*InMemStorer)(nil)
	_ storage.Subscriber = (*InMemStorer)(nil)
)
