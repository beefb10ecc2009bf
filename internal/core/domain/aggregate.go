package domain

import (
	"time"

	"github.com/google/uuid"
)

// aggregate carries identity, timestamps and the optimistic-lock counter
// shared by every entity. version is the in-memory value; persisted is the
// value the backing store holds, which is the expected version of the next
// conditional write.
type aggregate struct {
	id        uuid.UUID
	version   int
	persisted int
	createdAt time.Time
	updatedAt time.Time
}

func newAggregate() aggregate {
	return aggregate{version: 1}
}

func restoredAggregate(id uuid.UUID, version int, createdAt, updatedAt time.Time) aggregate {
	return aggregate{id: id, version: version, persisted: version, createdAt: createdAt, updatedAt: updatedAt}
}

func (a *aggregate) ID() uuid.UUID        { return a.id }
func (a *aggregate) CreatedAt() time.Time { return a.createdAt }
func (a *aggregate) UpdatedAt() time.Time { return a.updatedAt }

// Version is incremented by exactly one on every successful mutation.
func (a *aggregate) Version() int { return a.version }

// PersistedVersion is zero for aggregates that were never stored.
func (a *aggregate) PersistedVersion() int { return a.persisted }

// IsNew reports whether the aggregate still needs an insert.
func (a *aggregate) IsNew() bool { return a.id == uuid.Nil }

// AssignIdentity is called by repositories on insert.
func (a *aggregate) AssignIdentity(id uuid.UUID, at time.Time) {
	a.id = id
	a.createdAt = at
	a.updatedAt = at
}

// MarkPersisted records that the current version was written at the given
// time. Only repositories call it, after the write succeeded.
func (a *aggregate) MarkPersisted(at time.Time) {
	a.persisted = a.version
	a.updatedAt = at
}

func (a *aggregate) bump() { a.version++ }

func checkRestoredVersion(entity string, id uuid.UUID, version int) error {
	if id == uuid.Nil {
		return validationf("stored %s has no identity", entity)
	}
	if version < 1 {
		return validationf("%s %s has invalid version %d", entity, id, version)
	}
	return nil
}
