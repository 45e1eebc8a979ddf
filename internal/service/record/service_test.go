package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"records-backend/internal/domain"
	"records-backend/internal/repository/mocks"
	appErrors "records-backend/pkg/errors"
)

func newTestService(store *mocks.MockRecordStore) Service {
	return NewService(store, zap.NewNop())
}

func TestCreate_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockRecordStore)

	var stored domain.Record
	store.On("Put", mock.Anything, mock.AnythingOfType("domain.Record")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(domain.Record)
		}).
		Return(nil)

	svc := newTestService(store)

	// Act
	created, err := svc.Create(ctx, "Ann Lee", "ann@example.com")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Ann Lee", lo.FromPtr(created.Name))
	assert.Equal(t, "ann@example.com", lo.FromPtr(created.Email))
	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339, created.CreatedAt)
	assert.NoError(t, err)

	// Reading the id back yields the same record
	store.On("Get", mock.Anything, created.ID).Return(&stored, nil)
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)

	store.AssertExpectations(t)
}

func TestBulkCreate_CountBounds(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		expected int
	}{
		{"zero is raised to one", 0, 1},
		{"negative is raised to one", -5, 1},
		{"oversized is lowered to the cap", 1000, 100},
		{"default stays as is", DefaultBulkCount, 10},
		{"in-range stays as is", 57, 57},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := new(mocks.MockRecordStore)
			store.On("BatchPut", mock.Anything, mock.Anything).Return(nil)

			svc := newTestService(store)

			records, err := svc.BulkCreate(ctx, tt.count)

			require.NoError(t, err)
			assert.Len(t, records, tt.expected)
		})
	}
}

func TestBulkCreate_ChunksBatchWrites(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockRecordStore)

	var batchSizes []int
	store.On("BatchPut", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			batchSizes = append(batchSizes, len(args.Get(1).([]domain.Record)))
		}).
		Return(nil)

	svc := newTestService(store)

	// Act
	records, err := svc.BulkCreate(ctx, 57)

	// Assert: 57 records go out as exactly three sequential batches
	require.NoError(t, err)
	assert.Len(t, records, 57)
	assert.Equal(t, []int{25, 25, 7}, batchSizes)
	store.AssertNumberOfCalls(t, "BatchPut", 3)
}

func TestBulkCreate_RecordsShareTimestamp(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockRecordStore)
	store.On("BatchPut", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(store)

	records, err := svc.BulkCreate(ctx, 20)

	require.NoError(t, err)
	seen := map[string]bool{}
	for _, r := range records {
		assert.Equal(t, records[0].CreatedAt, r.CreatedAt)
		assert.NotEmpty(t, lo.FromPtr(r.Name))
		assert.NotEmpty(t, lo.FromPtr(r.Email))
		assert.False(t, seen[r.ID], "ids must be unique")
		seen[r.ID] = true
	}
}

func TestBulkCreate_FailedBatchAbortsRemaining(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockRecordStore)
	store.On("BatchPut", mock.Anything, mock.Anything).Return(nil).Once()
	store.On("BatchPut", mock.Anything, mock.Anything).Return(errors.New("throttled")).Once()

	svc := newTestService(store)

	// Act: 57 records would need three batches; the second one fails
	records, err := svc.BulkCreate(ctx, 57)

	// Assert: no third call, no rollback of the first batch
	assert.Error(t, err)
	assert.Nil(t, records)
	store.AssertNumberOfCalls(t, "BatchPut", 2)
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	all := []domain.Record{
		{ID: "1", Name: lo.ToPtr("Ann Lee"), Email: lo.ToPtr("ann.lee@example.com"), CreatedAt: "2026-01-01T00:00:00Z"},
		{ID: "2", Name: lo.ToPtr("Bob Ray"), Email: lo.ToPtr("bob@example.com"), CreatedAt: "2026-01-02T00:00:00Z"},
	}

	tests := []struct {
		query   string
		wantIDs []string
	}{
		{"ann", []string{"1"}},
		{"ANN", []string{"1"}},
		{"lee", []string{"1"}},
		{"bob", []string{"2"}},
		{"zzz", []string{}},
		{"", []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run("q="+tt.query, func(t *testing.T) {
			store := new(mocks.MockRecordStore)
			store.On("Scan", mock.Anything).Return(all, nil)

			svc := newTestService(store)

			results, err := svc.Search(ctx, tt.query)

			require.NoError(t, err)
			gotIDs := lo.Map(results, func(r domain.Record, _ int) string { return r.ID })
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestSearch_MatchesOnEmailToo(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockRecordStore)
	store.On("Scan", mock.Anything).Return([]domain.Record{
		{ID: "1", Name: lo.ToPtr("Someone"), Email: lo.ToPtr("Unique.Handle@example.com"), CreatedAt: "2026-01-01T00:00:00Z"},
	}, nil)

	svc := newTestService(store)

	results, err := svc.Search(ctx, "unique.handle")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
}

func TestStats_TotalsAndRecency(t *testing.T) {
	// Arrange: two records from a prior day, one from today
	ctx := context.Background()
	now := time.Now().UTC()
	t1 := now.AddDate(0, 0, -1).Add(-2 * time.Hour).Format(time.RFC3339)
	t2 := now.AddDate(0, 0, -1).Add(-1 * time.Hour).Format(time.RFC3339)
	t3 := now.Format(time.RFC3339)

	store := new(mocks.MockRecordStore)
	store.On("Scan", mock.Anything).Return([]domain.Record{
		{ID: "a", CreatedAt: t1},
		{ID: "c", CreatedAt: t3},
		{ID: "b", CreatedAt: t2},
	}, nil)

	svc := newTestService(store)

	// Act
	stats, err := svc.Stats(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 1, stats.RecordsCreatedToday)
	require.Len(t, stats.RecentRecords, 3)
	assert.Equal(t, []string{t3, t2, t1}, lo.Map(stats.RecentRecords, func(r domain.Record, _ int) string {
		return r.CreatedAt
	}))
	_, err = time.Parse(time.RFC3339, stats.LastUpdated)
	assert.NoError(t, err)
}

func TestStats_RecentCappedAtFive(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	var all []domain.Record
	for i := 0; i < 8; i++ {
		all = append(all, domain.Record{
			ID:        uuid.New().String(),
			CreatedAt: now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}

	store := new(mocks.MockRecordStore)
	store.On("Scan", mock.Anything).Return(all, nil)

	svc := newTestService(store)

	stats, err := svc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 8, stats.TotalRecords)
	require.Len(t, stats.RecentRecords, 5)
	// Newest first
	assert.Equal(t, all[0].CreatedAt, stats.RecentRecords[0].CreatedAt)
	assert.Equal(t, all[4].CreatedAt, stats.RecentRecords[4].CreatedAt)
}

func TestGet_UnknownIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockRecordStore)
	store.On("Get", mock.Anything, "missing").Return(nil, nil)

	svc := newTestService(store)

	got, err := svc.Get(ctx, "missing")

	assert.Nil(t, got)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestUpdate_NilFieldPassedThrough(t *testing.T) {
	// Arrange: the store nulls the omitted email and keeps id/createdAt
	ctx := context.Background()
	updated := &domain.Record{
		ID:        "rec-1",
		Name:      lo.ToPtr("New Name"),
		Email:     nil,
		CreatedAt: "2026-01-01T00:00:00Z",
	}

	store := new(mocks.MockRecordStore)
	store.On("Update", mock.Anything, "rec-1", lo.ToPtr("New Name"), (*string)(nil)).Return(updated, nil)

	svc := newTestService(store)

	// Act
	got, err := svc.Update(ctx, "rec-1", lo.ToPtr("New Name"), nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, "2026-01-01T00:00:00Z", got.CreatedAt)
	assert.Equal(t, "New Name", lo.FromPtr(got.Name))
	assert.Nil(t, got.Email)
	store.AssertExpectations(t)
}

func TestDelete_UnknownIDSucceeds(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockRecordStore)
	store.On("Delete", mock.Anything, "never-existed").Return(nil)

	svc := newTestService(store)

	err := svc.Delete(ctx, "never-existed")

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestList_EmptyStoreYieldsEmptySlice(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockRecordStore)
	store.On("Scan", mock.Anything).Return(nil, nil)

	svc := newTestService(store)

	records, err := svc.List(ctx)

	require.NoError(t, err)
	require.NotNil(t, records)
	assert.Len(t, records, 0)
}

func TestList_PropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockRecordStore)
	store.On("Scan", mock.Anything).Return(nil, errors.New("store unavailable"))

	svc := newTestService(store)

	records, err := svc.List(ctx)

	assert.Nil(t, records)
	assert.Error(t, err)
}
