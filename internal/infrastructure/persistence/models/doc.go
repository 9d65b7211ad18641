// Package models contains the GORM persistence models for the settlement
// tables. They are kept apart from the domain entities so that the domain
// layer stays free of ORM tags; every model has ToDomain and FromDomain
// mappers used by the repositories.
//
// Files:
//   - base.go: shared columns (BaseModel, AggregateModel)
//   - batch.go: payment batches, receipt allocations and reversals
//   - advance.go: advance cheques and deduction audit rows
//   - distribution.go: distributions, batch links and items
//   - instrument.go: cheques and electronic payments
//   - sequence.go: document number sequences
package models
