package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey_backend/internal/feature/surveys/domain/entity"
)

// mockEntryRepository is a test double for usecase.EntryRepository.
type mockEntryRepository struct {
	insertFn      func(ctx context.Context, e *entity.Entry) error
	findByIDFn    func(ctx context.Context, id string) (*entity.Entry, error)
	findAllFn     func(ctx context.Context) ([]entity.Entry, error)
	findByOwnerFn func(ctx context.Context, userID string) ([]entity.Entry, error)
	replaceFn     func(ctx context.Context, id string, f entity.Fields, updatedAt time.Time) error
	removeFn      func(ctx context.Context, id string) error
}

func (m *mockEntryRepository) Insert(ctx context.Context, e *entity.Entry) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, e)
	}
	return nil
}

func (m *mockEntryRepository) FindByID(ctx context.Context, id string) (*entity.Entry, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEntryRepository) FindAll(ctx context.Context) ([]entity.Entry, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	return nil, nil
}

func (m *mockEntryRepository) FindByOwner(ctx context.Context, userID string) ([]entity.Entry, error) {
	if m.findByOwnerFn != nil {
		return m.findByOwnerFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockEntryRepository) Replace(ctx context.Context, id string, f entity.Fields, updatedAt time.Time) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, id, f, updatedAt)
	}
	return nil
}

func (m *mockEntryRepository) Remove(ctx context.Context, id string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, id)
	}
	return nil
}

func sampleEntries() []entity.Entry {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []entity.Entry{{
		ID:     "e1",
		Fields: entity.Fields{UID: "U1", Latitude: "28.6", Longitude: "77.2", Images: entity.ImageList{"a.jpg"}},
		UserID: "u1", CreatedAt: ts, UpdatedAt: ts, CreatedByUsername: "agent",
	}}
}

// TestNewCachingEntryRepository_Defaults verifies TTL and namespace defaults.
func TestNewCachingEntryRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "surveys"},
		{"negative ttl uses default", -time.Minute, "", 5 * time.Minute, "surveys"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingEntryRepository(nil, tt.ttl, &mockEntryRepository{}, tt.namespace)

			assert.Equal(t, tt.expectedTTL, repo.ttl)
			assert.Equal(t, tt.expectedNamespace, repo.namespace)
		})
	}
}

// TestCachingEntryRepository_NilRedis verifies the decorator is transparent without Redis.
func TestCachingEntryRepository_NilRedis(t *testing.T) {
	t.Parallel()

	calls := 0
	inner := &mockEntryRepository{findAllFn: func(ctx context.Context) ([]entity.Entry, error) {
		calls++
		return sampleEntries(), nil
	}}
	repo := NewCachingEntryRepository(nil, time.Minute, inner, "")

	for i := 0; i < 2; i++ {
		got, err := repo.FindAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, repo.Invalidate(context.Background()))
}

// TestCachingEntryRepository_FindAll_CacheHit verifies a hit skips the inner repository.
func TestCachingEntryRepository_FindAll_CacheHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, err := json.Marshal(sampleEntries())
	require.NoError(t, err)
	mock.ExpectGet("surveys:gen").SetVal("3")
	mock.ExpectGet("surveys:3:all").SetVal(string(cached))

	inner := &mockEntryRepository{findAllFn: func(ctx context.Context) ([]entity.Entry, error) {
		t.Fatal("inner repository should not be called on cache hit")
		return nil, nil
	}}
	repo := NewCachingEntryRepository(rdb, 5*time.Minute, inner, "surveys")

	got, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "agent", got[0].CreatedByUsername)
	assert.Equal(t, entity.ImageList{"a.jpg"}, got[0].Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingEntryRepository_FindByOwner_CacheMiss verifies a miss loads and stores the list.
func TestCachingEntryRepository_FindByOwner_CacheMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	entries := sampleEntries()
	expectedJSON, err := json.Marshal(entries)
	require.NoError(t, err)

	mock.ExpectGet("surveys:gen").RedisNil()
	mock.ExpectGet("surveys:0:owner:u1").RedisNil()
	mock.ExpectSet("surveys:0:owner:u1", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockEntryRepository{findByOwnerFn: func(ctx context.Context, userID string) ([]entity.Entry, error) {
		assert.Equal(t, "u1", userID)
		return entries, nil
	}}
	repo := NewCachingEntryRepository(rdb, 5*time.Minute, inner, "surveys")

	got, err := repo.FindByOwner(context.Background(), "u1")

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingEntryRepository_CorruptedCache verifies a bad cache entry is replaced.
func TestCachingEntryRepository_CorruptedCache(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	entries := sampleEntries()
	expectedJSON, err := json.Marshal(entries)
	require.NoError(t, err)

	mock.ExpectGet("surveys:gen").RedisNil()
	mock.ExpectGet("surveys:0:all").SetVal("invalid json")
	mock.ExpectDel("surveys:0:all").SetVal(1)
	mock.ExpectSet("surveys:0:all", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockEntryRepository{findAllFn: func(ctx context.Context) ([]entity.Entry, error) {
		return entries, nil
	}}
	repo := NewCachingEntryRepository(rdb, 5*time.Minute, inner, "surveys")

	_, err = repo.FindAll(context.Background())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingEntryRepository_InnerError verifies load errors are returned and nothing is cached.
func TestCachingEntryRepository_InnerError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("surveys:gen").RedisNil()
	mock.ExpectGet("surveys:0:all").RedisNil()

	dbErr := errors.New("db down")
	inner := &mockEntryRepository{findAllFn: func(ctx context.Context) ([]entity.Entry, error) {
		return nil, dbErr
	}}
	repo := NewCachingEntryRepository(rdb, 5*time.Minute, inner, "surveys")

	_, err := repo.FindAll(context.Background())

	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingEntryRepository_WritesInvalidate verifies every write bumps the namespace generation.
func TestCachingEntryRepository_WritesInvalidate(t *testing.T) {
	writes := map[string]func(repo *CachingEntryRepository) error{
		"insert": func(repo *CachingEntryRepository) error {
			return repo.Insert(context.Background(), &entity.Entry{ID: "e1", UserID: "u1"})
		},
		"replace": func(repo *CachingEntryRepository) error {
			return repo.Replace(context.Background(), "e1", entity.Fields{}, time.Now())
		},
		"remove": func(repo *CachingEntryRepository) error {
			return repo.Remove(context.Background(), "e1")
		},
	}

	for name, write := range writes {
		t.Run(name, func(t *testing.T) {
			rdb, mock := redismock.NewClientMock()
			defer func() { _ = rdb.Close() }()

			mock.ExpectIncr("surveys:gen").SetVal(1)

			repo := NewCachingEntryRepository(rdb, 5*time.Minute, &mockEntryRepository{}, "surveys")

			require.NoError(t, write(repo))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestCachingEntryRepository_FailedWriteKeepsCache verifies nothing is invalidated when the write fails.
func TestCachingEntryRepository_FailedWriteKeepsCache(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	dbErr := errors.New("constraint")
	inner := &mockEntryRepository{insertFn: func(ctx context.Context, e *entity.Entry) error { return dbErr }}
	repo := NewCachingEntryRepository(rdb, 5*time.Minute, inner, "surveys")

	err := repo.Insert(context.Background(), &entity.Entry{ID: "e1"})

	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingEntryRepository_InvalidateError verifies Invalidate reports Redis failures.
func TestCachingEntryRepository_InvalidateError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectIncr("surveys:gen").SetErr(errors.New("redis down"))

	repo := NewCachingEntryRepository(rdb, 5*time.Minute, &mockEntryRepository{}, "surveys")

	assert.Error(t, repo.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingEntryRepository_FillDuringWriteIsNotServed verifies a list loaded before a
// concurrent write never answers a read issued after that write.
func TestCachingEntryRepository_FillDuringWriteIsNotServed(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	before := sampleEntries()
	after := append(sampleEntries(), entity.Entry{ID: "e2", UserID: "u1"})
	beforeJSON, err := json.Marshal(before)
	require.NoError(t, err)
	afterJSON, err := json.Marshal(after)
	require.NoError(t, err)

	// First read misses, and a write lands while it is loading.
	mock.ExpectGet("surveys:gen").RedisNil()
	mock.ExpectGet("surveys:0:all").RedisNil()
	mock.ExpectIncr("surveys:gen").SetVal(1)
	mock.ExpectSet("surveys:0:all", beforeJSON, 5*time.Minute).SetVal("OK")
	// The next read uses the new generation and reloads.
	mock.ExpectGet("surveys:gen").SetVal("1")
	mock.ExpectGet("surveys:1:all").RedisNil()
	mock.ExpectSet("surveys:1:all", afterJSON, 5*time.Minute).SetVal("OK")

	var repo *CachingEntryRepository
	loads := 0
	inner := &mockEntryRepository{findAllFn: func(ctx context.Context) ([]entity.Entry, error) {
		loads++
		if loads == 1 {
			require.NoError(t, repo.Insert(ctx, &entity.Entry{ID: "e2", UserID: "u1"}))
			return before, nil
		}
		return after, nil
	}}
	repo = NewCachingEntryRepository(rdb, 5*time.Minute, inner, "surveys")

	first, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, 2, loads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingEntryRepository_GenerationLookupFails verifies reads fall through to the
// inner repository when Redis is unreachable.
func TestCachingEntryRepository_GenerationLookupFails(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("surveys:gen").SetErr(errors.New("redis down"))

	inner := &mockEntryRepository{findAllFn: func(ctx context.Context) ([]entity.Entry, error) {
		return sampleEntries(), nil
	}}
	repo := NewCachingEntryRepository(rdb, 5*time.Minute, inner, "surveys")

	got, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
