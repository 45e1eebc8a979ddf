// Package repository defines the persistence contract for records.
package repository

import (
	"context"

	"records-backend/internal/domain"
)

// MaxBatchPutSize is the hard per-call item limit the store enforces on
// batch writes. Callers writing more records must chunk.
const MaxBatchPutSize = 25

// RecordStore is the key-value store abstraction the service talks to.
// Get returns (nil, nil) when no record exists under the id. Update applies a
// partial-attribute write for name and email only, with nil values persisted
// as null, and returns the full post-update state. Delete is unconditional.
type RecordStore interface {
	Put(ctx context.Context, record domain.Record) error
	Get(ctx context.Context, id string) (*domain.Record, error)
	Update(ctx context.Context, id string, name, email *string) (*domain.Record, error)
	Delete(ctx context.Context, id string) error
	Scan(ctx context.Context) ([]domain.Record, error)
	BatchPut(ctx context.Context, records []domain.Record) error
}
