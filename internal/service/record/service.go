// Package record implements the record operations exposed over HTTP.
package record

import (
	"context"
	"sort"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"records-backend/internal/domain"
	"records-backend/internal/repository"
	appErrors "records-backend/pkg/errors"
	"records-backend/pkg/utils"
)

const (
	// DefaultBulkCount is used when a bulk request carries no count.
	DefaultBulkCount = 10

	minBulkCount = 1
	maxBulkCount = 100

	recentRecordLimit = 5
)

// Stats summarizes the full record set at a point in time.
type Stats struct {
	TotalRecords        int
	RecordsCreatedToday int
	RecentRecords       []domain.Record
	LastUpdated         string
}

// Service exposes the record operations.
type Service interface {
	List(ctx context.Context) ([]domain.Record, error)
	Create(ctx context.Context, name, email string) (*domain.Record, error)
	BulkCreate(ctx context.Context, count int) ([]domain.Record, error)
	Search(ctx context.Context, query string) ([]domain.Record, error)
	Stats(ctx context.Context) (*Stats, error)
	Get(ctx context.Context, id string) (*domain.Record, error)
	Update(ctx context.Context, id string, name, email *string) (*domain.Record, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store  repository.RecordStore
	logger *zap.Logger
}

// NewService creates a record service on the given store.
func NewService(store repository.RecordStore, logger *zap.Logger) Service {
	return &service{
		store:  store,
		logger: logger,
	}
}

// List returns every record in store-scan order. An empty store yields an
// empty slice so callers always serialize a JSON array.
func (s *service) List(ctx context.Context) ([]domain.Record, error) {
	records, err := s.store.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

// Create stores a new record with a fresh id and timestamp.
func (s *service) Create(ctx context.Context, name, email string) (*domain.Record, error) {
	record := domain.NewRecord(name, email)
	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("record created", zap.String("record_id", record.ID))
	return &record, nil
}

// BulkCreate generates count synthetic records and writes them in sequential
// batches of at most MaxBatchPutSize. The timestamp is sampled once, so every
// record in a call shares it. Partial failure leaves earlier batches
// persisted; there is no rollback.
func (s *service) BulkCreate(ctx context.Context, count int) ([]domain.Record, error) {
	count = clampCount(count)

	now := utils.NowRFC3339()
	records := make([]domain.Record, count)
	for i := range records {
		records[i] = domain.Record{
			ID:        uuid.New().String(),
			Name:      lo.ToPtr(gofakeit.Name()),
			Email:     lo.ToPtr(gofakeit.Email()),
			CreatedAt: now,
		}
	}

	for _, chunk := range lo.Chunk(records, repository.MaxBatchPutSize) {
		if err := s.store.BatchPut(ctx, chunk); err != nil {
			return nil, appErrors.Wrap(err, "bulk create aborted")
		}
	}

	s.logger.Info("bulk created records", zap.Int("count", count))
	return records, nil
}

// Search returns records whose name or email contains the query,
// case-insensitively. An empty query matches everything.
func (s *service) Search(ctx context.Context, query string) ([]domain.Record, error) {
	records, err := s.store.Scan(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	results := lo.Filter(records, func(r domain.Record, _ int) bool {
		return strings.Contains(strings.ToLower(lo.FromPtr(r.Name)), q) ||
			strings.Contains(strings.ToLower(lo.FromPtr(r.Email)), q)
	})
	return results, nil
}

// Stats computes totals over a full scan. Timestamps are RFC3339 UTC strings,
// so both the today boundary and the recency sort compare lexicographically.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.store.Scan(ctx)
	if err != nil {
		return nil, err
	}

	midnight := utils.TodayRFC3339()
	createdToday := lo.CountBy(records, func(r domain.Record) bool {
		return r.CreatedAt >= midnight
	})

	recent := make([]domain.Record, len(records))
	copy(recent, records)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt > recent[j].CreatedAt
	})
	if len(recent) > recentRecordLimit {
		recent = recent[:recentRecordLimit]
	}

	return &Stats{
		TotalRecords:        len(records),
		RecordsCreatedToday: createdToday,
		RecentRecords:       recent,
		LastUpdated:         utils.NowRFC3339(),
	}, nil
}

// Get retrieves a record by id.
func (s *service) Get(ctx context.Context, id string) (*domain.Record, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, appErrors.NewNotFoundError("record")
	}
	return record, nil
}

// Update writes name and email on the stored record, persisting nil values
// as null, and returns the full post-update state. Unknown ids are not
// rejected; id and createdAt are never touched.
func (s *service) Update(ctx context.Context, id string, name, email *string) (*domain.Record, error) {
	return s.store.Update(ctx, id, name, email)
}

// Delete removes a record unconditionally. A nonexistent id succeeds.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("record deleted", zap.String("record_id", id))
	return nil
}

// clampCount bounds a bulk count to the closed range [1, 100].
func clampCount(count int) int {
	if count < minBulkCount {
		return minBulkCount
	}
	if count > maxBulkCount {
		return maxBulkCount
	}
	return count
}
