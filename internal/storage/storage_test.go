package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repos interface {
	BabyRepository
	SleepSessionRepository
}

func exerciseRepositories(t *testing.T, r repos) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := r.GetBaby(ctx, "missing")
	assert.ErrorIs(t, err, internal.ErrNotFound)

	first := &internal.Baby{ID: "b1", CaregiverID: "u1", Name: "Ada", DateOfBirth: now.AddDate(0, -3, 0), CreatedAt: now}
	second := &internal.Baby{ID: "b2", CaregiverID: "u2", Name: "Bo", CreatedAt: now.Add(time.Minute)}
	require.NoError(t, r.SaveBaby(ctx, first))
	require.NoError(t, r.SaveBaby(ctx, second))

	got, err := r.GetBaby(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.True(t, got.DateOfBirth.Equal(first.DateOfBirth))

	got, err = r.GetBaby(ctx, "b2")
	require.NoError(t, err)
	assert.True(t, got.DateOfBirth.IsZero())

	all, err := r.ListBabies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b1", all[0].ID)

	mine, err := r.ListBabiesByCaregiver(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "b2", mine[0].ID)

	none, err := r.ListSleepSessions(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, none)

	for i, start := range []time.Time{now.Add(-6 * time.Hour), now.Add(-2 * time.Hour), now.Add(-4 * time.Hour)} {
		s := &internal.SleepSession{
			ID:        []string{"s1", "s2", "s3"}[i],
			BabyID:    "b1",
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Type:      "nap",
			CreatedAt: now,
		}
		require.NoError(t, r.SaveSleepSession(ctx, s))
	}

	sessions, err := r.ListSleepSessions(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, []string{"s2", "s3", "s1"}, []string{sessions[0].ID, sessions[1].ID, sessions[2].ID})

	other, err := r.ListSleepSessions(ctx, "b2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFileStorage(t *testing.T) {
	dir := t.TempDir()
	babies := filepath.Join(dir, "babies.json")
	sleep := filepath.Join(dir, "sleep.json")

	s, err := NewFileStorage(babies, sleep, internal.NopLogger())
	require.NoError(t, err)
	exerciseRepositories(t, s)
	require.NoError(t, s.Close())

	info, err := os.Stat(sleep)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)

	reopened, err := NewFileStorage(babies, sleep, internal.NopLogger())
	require.NoError(t, err)
	defer reopened.Close()
	sessions, err := reopened.ListSleepSessions(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "s2", sessions[0].ID)
}

func TestFileStorageRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	babies := filepath.Join(dir, "babies.json")
	require.NoError(t, os.WriteFile(babies, []byte("{not json"), 0o644))

	_, err := NewFileStorage(babies, filepath.Join(dir, "sleep.json"), internal.NopLogger())
	assert.Error(t, err)
}

func TestBoltStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "sweetspot.db")

	s, err := NewBoltStorage(path, internal.NopLogger())
	require.NoError(t, err)
	exerciseRepositories(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewBoltStorage(path, internal.NopLogger())
	require.NoError(t, err)
	defer reopened.Close()
	babies, err := reopened.ListBabies(context.Background())
	require.NoError(t, err)
	assert.Len(t, babies, 2)
}

func TestNewRepositories(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{DBType: "bolt", BoltPath: filepath.Join(dir, "x.db")}

	r, err := NewRepositories(cfg, internal.NopLogger())
	require.NoError(t, err)
	assert.NotNil(t, r.Babies)
	assert.NotNil(t, r.Sleep)
	require.NoError(t, r.Close())

	_, err = NewRepositories(&config.Config{DBType: "nope"}, internal.NopLogger())
	assert.Error(t, err)
}

// Set POSTGRES_TEST_DSN to run against a disposable database; the tables are truncated.
func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	s, err := NewPostgresStorage(dsn, internal.NopLogger())
	require.NoError(t, err)
	defer s.Close()
	_, err = s.pool.Exec(context.Background(), "TRUNCATE sleep_sessions, babies")
	require.NoError(t, err)

	exerciseRepositories(t, s)
}
