package persistence

import (
	"errors"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translate maps GORM errors onto domain errors. Anything unrecognised is
// wrapped as a persistence failure tagged with op.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.CodeAlreadyExists, op+": record already exists")
	}
	return shared.PersistenceFailure(op, err)
}

// forUpdate adds SELECT ... FOR UPDATE on dialects that support row locks.
// SQLite serialises writers on its own.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// updateVersioned writes every column of model when the stored row still
// carries the expected version. The caller sets the new version on model.
func updateVersioned(db *gorm.DB, model any, id uuid.UUID, expected int) error {
	res := db.Model(model).
		Select("*").
		Omit(clause.Associations, "id", "created_at").
		Where("id = ? AND version = ?", id, expected).
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

// updateRow overwrites an existing child row; a missing row is ErrNotFound.
func updateRow(db *gorm.DB, model any) error {
	res := db.Model(model).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// missingIDs reports ErrNotFound when fewer distinct rows came back than ids asked for
func missingIDs(ids []uuid.UUID, found int) error {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	if found < len(want) {
		return shared.ErrNotFound
	}
	return nil
}

// likePattern wraps a free-text search for a LIKE clause
func likePattern(search string) string {
	return "%" + search + "%"
}
