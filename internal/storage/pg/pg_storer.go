package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const changesChannel = "memories_changes"

type Storer struct {
	db *pgxpool.Pool
}

func NewStorer(pool *ConnectionPool) (*Storer, error) {
	if pool == nil {
		return nil, fmt.Errorf("pg storer requires a connection pool")
	}
	return &Storer{db: pool.conn}, nil
}

func prepare(m memory.Memory, now time.Time) memory.Memory {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.MediaURLs == nil {
		m.MediaURLs = []string{}
	}
	if m.People == nil {
		m.People = []string{}
	}
	return m
}

func row(m memory.Memory) []any {
	return []any{
		m.ID,
		m.Title,
		m.Description,
		m.Content,
		m.Tags,
		m.Author.ID,
		m.Author.Name,
		m.CreatedAt,
		m.UpdatedAt,
		m.IsPublic,
		m.MediaURLs,
		m.Location,
		m.People,
	}
}

func (s *Storer) Put(ctx context.Context, m memory.Memory) (string, error) {
	m = prepare(m, time.Now())

	cmd := `
        INSERT INTO memories (` + memoryColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            content = EXCLUDED.content,
            tags = EXCLUDED.tags,
            author_id = EXCLUDED.author_id,
            author_name = EXCLUDED.author_name,
            updated_at = EXCLUDED.updated_at,
            is_public = EXCLUDED.is_public,
            media_urls = EXCLUDED.media_urls,
            location = EXCLUDED.location,
            people = EXCLUDED.people
        RETURNING id;
    `
	var id string
	if err := s.db.QueryRow(ctx, cmd, row(m)...).Scan(&id); err != nil {
		return "", classify("put memory", err)
	}
	return id, nil
}

// PutBulk inserts new memories with COPY. An ID that already exists fails the batch.
func (s *Storer) PutBulk(ctx context.Context, ms []memory.Memory) error {
	rows := make([][]any, len(ms))
	now := time.Now()
	for i, m := range ms {
		rows[i] = row(prepare(m, now))
	}

	n, err := s.db.CopyFrom(
		ctx,
		pgx.Identifier{"memories"},
		[]string{"id", "title", "description", "content", "tags", "author_id", "author_name", "created_at", "updated_at", "is_public", "media_urls", "location", "people"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return classify("bulk insert memories", err)
	}

	slog.Info("Bulk inserted memories", "count", n)
	return nil
}

func (s *Storer) Get(ctx context.Context, id string) (memory.Memory, error) {
	rows, err := s.db.Query(ctx, "SELECT "+memoryColumns+" FROM memories WHERE id = $1", id)
	if err != nil {
		return memory.Memory{}, classify("get memory", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMemory)
	if err != nil {
		return memory.Memory{}, classify("get memory", err)
	}
	return m, nil
}

func (s *Storer) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM memories WHERE id = $1", id)
	if err != nil {
		return classify("delete memory", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.NewError(storage.KindNotFound, "delete memory", nil)
	}
	return nil
}

func (s *Storer) Query(ctx context.Context, constraints []storage.Constraint) (*storage.Page, error) {
	plan, err := storage.Compile(constraints)
	if err != nil {
		return nil, err
	}

	sql, args, err := buildSelect(plan)
	if err != nil {
		return nil, storage.NewError(storage.KindValidation, "query memories", err)
	}
	slog.Debug("Executing pg memories query", "sql", sql, "args", len(args))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify("query memories", err)
	}
	docs, err := pgx.CollectRows(rows, scanMemory)
	if err != nil {
		return nil, classify("query memories", err)
	}

	page := &storage.Page{Docs: docs}
	if len(docs) > 0 {
		page.Last = storage.NewCursor(docs[len(docs)-1], plan.OrderField)
	}
	return page, nil
}

func scanMemory(r pgx.CollectableRow) (memory.Memory, error) {
	var m memory.Memory
	err := r.Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.Content,
		&m.Tags,
		&m.Author.ID,
		&m.Author.Name,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.IsPublic,
		&m.MediaURLs,
		&m.Location,
		&m.People,
	)
	return m, err
}

type notification struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

// Subscribe listens on the memories change channel on a dedicated connection.
// Inserted and updated rows are re-read; removals carry only the ID.
func (s *Storer) Subscribe(ctx context.Context, onChange func(storage.Change)) (func(), error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, classify("subscribe", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+changesChannel); err != nil {
		conn.Release()
		return nil, classify("subscribe", err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer conn.Release()
		for {
			n, err := conn.Conn().WaitForNotification(listenCtx)
			if err != nil {
				if listenCtx.Err() == nil {
					slog.Error("Memories change listener stopped", "error", err)
				}
				return
			}

			var payload notification
			if err := json.Unmarshal([]byte(n.Payload), &payload); err != nil {
				slog.Warn("Ignoring malformed change notification", "payload", n.Payload, "error", err)
				continue
			}
			change, ok := s.resolve(listenCtx, payload)
			if ok {
				onChange(change)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (s *Storer) resolve(ctx context.Context, n notification) (storage.Change, bool) {
	switch n.Op {
	case "DELETE":
		return storage.Change{Type: storage.ChangeRemoved, Memory: memory.Memory{ID: n.ID}}, true
	case "INSERT", "UPDATE":
		m, err := s.Get(ctx, n.ID)
		if err != nil {
			slog.Warn("Failed to load changed memory", "id", n.ID, "error", err)
			return storage.Change{}, false
		}
		t := storage.ChangeAdded
		if n.Op == "UPDATE" {
			t = storage.ChangeModified
		}
		return storage.Change{Type: t, Memory: m}, true
	default:
		return storage.Change{}, false
	}
}

var (
	_ storage.Store      = (*Storer)(nil)
	_ storage.Subscriber = (*Storer)(nil)
)
