// Package store persists DesignIntents by id. Two backends exist: an
// in-process map and Postgres through the pgx database/sql driver.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound is returned by Get for an unknown id.
	ErrNotFound = errors.New("store: design not found")
	// ErrStale is returned by Put when a newer revision is already stored.
	ErrStale = errors.New("store: stale revision")
	// ErrNoID is returned by Put for a design without an id.
	ErrNoID = errors.New("store: design has no id")
)

// Store keeps the latest revision of each design.
type Store interface {
	Put(ctx context.Context, d intent.DesignIntent) error
	Get(ctx context.Context, id string) (intent.DesignIntent, error)
	// List returns every stored design ordered by id.
	List(ctx context.Context) ([]intent.DesignIntent, error)
	Close() error
}

// Open returns a Postgres store for a non-empty dsn and a memory store
// otherwise.
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return NewMemory(), nil
	}
	return NewPostgres(ctx, dsn)
}

// Memory is a map-backed Store. Stored designs are copies.
type Memory struct {
	mu   sync.RWMutex
	byID map[string]intent.DesignIntent
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]intent.DesignIntent)}
}

func (m *Memory) Put(ctx context.Context, d intent.DesignIntent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return ErrNoID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.byID[id]; ok && cur.Revision > d.Revision {
		return errors.Wrapf(ErrStale, "design %s: stored revision %d, put %d", id, cur.Revision, d.Revision)
	}
	m.byID[id] = d.Clone()
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (intent.DesignIntent, error) {
	if err := ctx.Err(); err != nil {
		return intent.DesignIntent{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byID[strings.TrimSpace(id)]
	if !ok {
		return intent.DesignIntent{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return d.Clone(), nil
}

func (m *Memory) List(ctx context.Context) ([]intent.DesignIntent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]intent.DesignIntent, 0, len(m.byID))
	for _, d := range m.byID {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Close() error { return nil }
