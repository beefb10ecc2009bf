// Package memory is a process-local implementation of ports.Repository with
// the same conditional-write and transaction semantics as the Postgres store.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

const (
	kindExperience = "experience"
	kindTimeSlot   = "time_slot"
	kindProduct    = "product"
	kindBooking    = "booking"
	kindOrder      = "order"
)

type key struct {
	kind string
	id   uuid.UUID
}

type row struct {
	attrs     any
	version   int
	createdAt time.Time
	updatedAt time.Time
}

// persistable is the repository-facing surface of every domain aggregate.
type persistable interface {
	ID() uuid.UUID
	IsNew() bool
	Version() int
	PersistedVersion() int
	AssignIdentity(id uuid.UUID, at time.Time)
	MarkPersisted(at time.Time)
}

type Store struct {
	mu   sync.RWMutex
	rows map[key]row
	now  func() time.Time
}

type Option func(*Store)

// WithClock sets the clock used for created and updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		rows: make(map[key]row),
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type txKey struct{}

// txState buffers the writes of one open transaction. base holds, per key,
// the committed version the first staged write was predicated on.
type txState struct {
	staged map[key]row
	base   map[key]int
	order  []key
}

// session is a Store view, optionally bound to an open transaction.
type session struct {
	store *Store
	tx    *txState
}

var _ ports.Repository = (*Store)(nil)

func (s *Store) session(ctx context.Context) *session {
	if sess, ok := ctx.Value(txKey{}).(*session); ok && sess.store == s {
		return sess
	}
	return &session{store: s}
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.Repository) error) error {
	return s.session(ctx).WithTransaction(ctx, fn)
}

func (r *session) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}
	sess := &session{store: r.store, tx: &txState{staged: make(map[key]row), base: make(map[key]int)}}
	if err := fn(context.WithValue(ctx, txKey{}, sess), sess); err != nil {
		return err
	}
	return r.store.commit(sess.tx)
}

// commit applies every staged write or none of them.
func (s *Store) commit(tx *txState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range tx.order {
		if err := s.checkLocked(k, tx.base[k]); err != nil {
			return err
		}
	}
	for k, rw := range tx.staged {
		s.rows[k] = rw
	}
	return nil
}

func (s *Store) checkLocked(k key, expected int) error {
	cur, ok := s.rows[k]
	if expected == 0 && !ok {
		return nil
	}
	if ok && cur.version == expected {
		return nil
	}
	return &domain.ConflictError{Aggregate: k.kind, ID: k.id, ExpectedVersion: expected}
}

func (r *session) get(k key) (row, bool) {
	if r.tx != nil {
		if rw, ok := r.tx.staged[k]; ok {
			return rw, true
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rw, ok := r.store.rows[k]
	return rw, ok
}

// scan returns every row of kind as seen by this session.
// entry is a row with its identity, as returned by scan.
type entry struct {
	id uuid.UUID
	row
}

// scan returns every row of kind visible to the session in (created_at, id)
// order.
func (r *session) scan(kind string) []entry {
	seen := make(map[uuid.UUID]row)
	r.store.mu.RLock()
	for k, rw := range r.store.rows {
		if k.kind == kind {
			seen[k.id] = rw
		}
	}
	r.store.mu.RUnlock()
	if r.tx != nil {
		for k, rw := range r.tx.staged {
			if k.kind == kind {
				seen[k.id] = rw
			}
		}
	}
	out := make([]entry, 0, len(seen))
	for id, rw := range seen {
		out = append(out, entry{id: id, row: rw})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].createdAt.Before(out[j].createdAt)
		}
		return bytes.Compare(out[i].id[:], out[j].id[:]) < 0
	})
	return out
}

// put inserts agg when it has no identity and otherwise writes it predicated
// on the version it was loaded at.
func (r *session) put(kind string, agg persistable, attrs func() any) error {
	now := r.store.now()
	expected := agg.PersistedVersion()
	if agg.IsNew() {
		agg.AssignIdentity(uuid.New(), now)
		expected = 0
	}
	k := key{kind: kind, id: agg.ID()}

	createdAt := now
	if expected > 0 {
		cur, ok := r.get(k)
		if !ok || cur.version != expected {
			return &domain.ConflictError{Aggregate: kind, ID: agg.ID(), ExpectedVersion: expected}
		}
		createdAt = cur.createdAt
	}
	rw := row{attrs: attrs(), version: agg.Version(), createdAt: createdAt, updatedAt: now}

	if r.tx != nil {
		if _, touched := r.tx.base[k]; !touched {
			r.tx.base[k] = expected
			r.tx.order = append(r.tx.order, k)
		}
		r.tx.staged[k] = rw
	} else {
		r.store.mu.Lock()
		if err := r.store.checkLocked(k, expected); err != nil {
			r.store.mu.Unlock()
			return err
		}
		r.store.rows[k] = rw
		r.store.mu.Unlock()
	}
	agg.MarkPersisted(now)
	return nil
}

func limitOf(n, limit int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}
