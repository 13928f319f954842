package predictionlog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"golang.org/x/sync/errgroup"
)

func newTestSQLiteStore(t *testing.T, opts ...Option) *SQLStore {
	t.Helper()
	base := []Option{
		WithClock(fixedClock(time.Date(2024, time.July, 4, 12, 0, 0, 0, time.UTC))),
		WithLocation(time.UTC),
	}
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "predictions.db"), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := t.Context()

	require.NoError(t, store.EnsureExists(ctx))
	require.NoError(t, store.EnsureExists(ctx))

	snap, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Records)

	entries := []Entry{
		{PredictedClass: "plastic", Confidence: 0.92, ImageName: "bottle.jpg"},
		{PredictedClass: "glass", Confidence: 0.5, ImageName: "jar, large.jpg"},
		{PredictedClass: "No detection", Confidence: 0, ImageName: "empty.jpg"},
	}
	for _, e := range entries {
		_, err := store.Append(ctx, e)
		require.NoError(t, err)
	}

	snap, err = store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Records, len(entries))
	for i, e := range entries {
		assert.Equal(t, e.PredictedClass, snap.Records[i].PredictedClass)
		assert.InDelta(t, e.Confidence, snap.Records[i].Confidence, 1e-12)
		assert.Equal(t, e.ImageName, snap.Records[i].ImageName)
	}

	last := snap.Records[len(snap.Records)-1]
	assert.Equal(t, last.Timestamp.Weekday().String(), last.DayOfWeek)
	assert.Equal(t, last.Timestamp.Month().String(), last.Month)
}

func TestSQLiteStoreBehavior(t *testing.T) {
	exerciseStore(t, newTestSQLiteStore(t))
}

func TestSQLiteStoreStampsTime(t *testing.T) {
	store := newTestSQLiteStore(t)

	rec, err := store.Append(t.Context(), Entry{PredictedClass: "metal", Confidence: 0.7, ImageName: "can.jpg"})
	require.NoError(t, err)

	snap, err := store.ReadAll(t.Context())
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.True(t, rec.Timestamp.Equal(snap.Records[0].Timestamp))
	assert.Equal(t, "Thursday", snap.Records[0].DayOfWeek)
	assert.Equal(t, "July", snap.Records[0].Month)
}

func TestSQLiteStoreRejectsBadTimestamps(t *testing.T) {
	rec := newFakeRecorder()
	store := newTestSQLiteStore(t, WithRecorder(rec))

	_, err := store.Append(t.Context(), Entry{PredictedClass: "paper", Confidence: 0.4})
	require.NoError(t, err)
	require.NoError(t, store.db.Create(&predictionRow{Timestamp: "yesterday", PredictedClass: "paper"}).Error)

	snap, err := store.ReadAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)
	require.Len(t, snap.Rejected, 1)
	assert.ErrorIs(t, snap.Rejected[0], ErrMalformedRow)
	assert.Equal(t, 2, snap.Rejected[0].Line)
	assert.Equal(t, 1, rec.rejected)
}

func TestSQLiteStoreConcurrentAppends(t *testing.T) {
	store := newTestSQLiteStore(t)

	const writers, perWriter = 4, 20
	var g errgroup.Group
	for range writers {
		g.Go(func() error {
			for range perWriter {
				if _, err := store.Append(t.Context(), Entry{PredictedClass: "glass", Confidence: 0.8}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	snap, err := store.ReadAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, snap.Records, writers*perWriter)
}

func TestMySQLConfigDSN(t *testing.T) {
	cfg := MySQLConfig{Host: "db.local", Port: 3306, Username: "waste", Password: "s3cret", Database: "wastenet"}
	dsn := cfg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "waste:s3cret@tcp(db.local:3306)/wastenet?"), dsn)
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestMySQLStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MySQL container test in short mode")
	}

	ctx, cancel := context.WithTimeout(t.Context(), 3*time.Minute)
	defer cancel()

	ctr, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("wastenet"),
		tcmysql.WithUsername("waste"),
		tcmysql.WithPassword("waste"),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("MySQL container unavailable: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "charset=utf8mb4")
	require.NoError(t, err)

	store, err := OpenMySQLDSN(dsn, WithLocation(time.UTC))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}
