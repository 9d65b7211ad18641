package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is any ledger record addressed by a surrogate key
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the surrogate key and audit timestamps of a ledger
// record. UpdatedAt never moves behind CreatedAt or an earlier mutation.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a new record with a fresh ID at the current time
func NewBaseEntity() BaseEntity {
	return NewBaseEntityAt(time.Now())
}

// NewBaseEntityAt stamps a new record at the given instant
func NewBaseEntityAt(at time.Time) BaseEntity {
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// RestoreBaseEntity rebuilds the header of a record loaded from storage
func RestoreBaseEntity(id uuid.UUID, createdAt, updatedAt time.Time) BaseEntity {
	return BaseEntity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt}
}

func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch records a mutation made at the given instant. Stale instants are
// ignored so replays and clock skew cannot rewind the audit trail.
func (e *BaseEntity) Touch(at time.Time) {
	if at.After(e.UpdatedAt) {
		e.UpdatedAt = at
	}
}
