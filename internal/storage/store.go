package storage

import (
	"context"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
)

// Page is one result page of a constraint query.
type Page struct {
	Docs []memory.Memory
	// Last references the last document of the page; nil for an empty page.
	Last *Cursor
}

// DocumentStore executes constraint queries against the memories collection.
// Constraints compose conjunctively; the store owns execution.
type DocumentStore interface {
	Query(ctx context.Context, constraints []Constraint) (*Page, error)
}

// Writer persists memories. Implementations assign an ID and CreatedAt when missing.
type Writer interface {
	Put(ctx context.Context, m memory.Memory) (string, error)
	PutBulk(ctx context.Context, ms []memory.Memory) error
}

// ChangeType describes a collection change delivered to subscribers.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

type Change struct {
	Type   ChangeType
	Memory memory.Memory
}

// Subscriber is the live-update capability used by CRUD views.
// The search core is pull based and does not depend on it.
type Subscriber interface {
	Subscribe(ctx context.Context, onChange func(Change)) (unsubscribe func(), err error)
}

// Store is a readable and writable document store.
type Store interface {
	DocumentStore
	Writer
}

type Type string

const (
	ES    Type = "es"
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storage type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}
