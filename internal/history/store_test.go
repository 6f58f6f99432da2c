package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func at(minute int) time.Time {
	return time.Date(2024, 3, 5, 12, minute, 0, 0, time.UTC)
}

func TestStore_AddAndGetRecent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add(Entry{DashboardID: "d1", BlockID: "sales", Query: "SELECT 1", ExecutedAt: at(1), Duration: 1500 * time.Millisecond, RowsAffected: 3, Success: true}))
	require.NoError(t, s.Add(Entry{DashboardID: "d1", BlockID: "orders", Query: "SELECT 2", ExecutedAt: at(2), Success: false, ErrorMessage: "boom"}))

	entries, err := s.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "SELECT 2", entries[0].Query)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "boom", entries[0].ErrorMessage)
	assert.True(t, entries[0].ExecutedAt.Equal(at(2)))

	assert.Equal(t, "sales", entries[1].BlockID)
	assert.Equal(t, 1500*time.Millisecond, entries[1].Duration)
	assert.Equal(t, int64(3), entries[1].RowsAffected)
	assert.True(t, entries[1].Success)
}

func TestStore_DefaultsExecutedAt(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return at(30) }

	require.NoError(t, s.Add(Entry{DashboardID: "d", BlockID: "b", Query: "SELECT 1", Success: true}))
	entries, err := s.GetRecent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].ExecutedAt.Equal(at(30)))
}

func TestStore_ForBlockAndSearch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add(Entry{DashboardID: "d1", BlockID: "sales", Query: "SELECT * FROM sales WHERE region = 'north'", ExecutedAt: at(1), Success: true}))
	require.NoError(t, s.Add(Entry{DashboardID: "d1", BlockID: "orders", Query: "SELECT * FROM orders", ExecutedAt: at(2), Success: true}))
	require.NoError(t, s.Add(Entry{DashboardID: "d2", BlockID: "sales", Query: "SELECT 1", ExecutedAt: at(3), Success: true}))

	entries, err := s.ForBlock("d1", "sales", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Query, "north")

	entries, err = s.Search("FROM", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "orders", entries[0].BlockID)
}

func TestStore_Trim(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(Entry{DashboardID: "d", BlockID: "b", Query: "SELECT 1", ExecutedAt: at(i), Success: true}))
	}

	removed, err := s.Trim(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	entries, err := s.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].ExecutedAt.Equal(at(4)))

	removed, err = s.Trim(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestFromResult(t *testing.T) {
	ok := FromResult("d", "b", "SELECT 1", models.QueryResult{RowsAffected: 4, Duration: time.Second})
	assert.True(t, ok.Success)
	assert.Equal(t, int64(4), ok.RowsAffected)
	assert.Empty(t, ok.ErrorMessage)

	failed := FromResult("d", "b", "SELECT", models.QueryResult{Error: errors.New("syntax error")})
	assert.False(t, failed.Success)
	assert.Equal(t, "syntax error", failed.ErrorMessage)
}
