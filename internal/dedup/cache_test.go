// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// failingStore fails every Save and counts calls.
type failingStore struct {
	saves int
}

func (s *failingStore) Load() (Snapshot, error) { return Snapshot{}, errors.New("disk gone") }
func (s *failingStore) Save(Snapshot) error     { s.saves++; return errors.New("disk full") }
func (s *failingStore) Close() error            { return nil }

func stores(t *testing.T) map[string]func(dir string) Store {
	t.Helper()
	return map[string]func(dir string) Store{
		"json": func(dir string) Store { return NewJSONStore(filepath.Join(dir, JSONFile)) },
		"sqlite": func(dir string) Store {
			s, err := NewSQLiteStore(filepath.Join(dir, SQLiteFile))
			require.NoError(t, err)
			return s
		},
	}
}

func TestCache_SurvivesRestart(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			c := New(open(dir))
			require.NoError(t, c.Load())
			assert.Zero(t, c.Len())
			require.NoError(t, c.Add("/papers/a.pdf"))
			require.NoError(t, c.Add("/papers/b.pdf"))
			require.NoError(t, c.Add("/papers/a.pdf"))
			stamp := c.LastUpdated()
			require.NoError(t, c.Close())

			reopened := New(open(dir))
			defer reopened.Close()
			require.NoError(t, reopened.Load())
			assert.Equal(t, 2, reopened.Len())
			assert.True(t, reopened.Contains("/papers/a.pdf"))
			assert.True(t, reopened.Contains("/papers/./b.pdf"))
			assert.False(t, reopened.Contains("/papers/c.pdf"))
			assert.WithinDuration(t, stamp, reopened.LastUpdated(), 0)
		})
	}
}

func TestCache_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), JSONFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := New(NewJSONStore(path))
	assert.Error(t, c.Load())
	assert.Zero(t, c.Len())

	require.NoError(t, c.Add("/x.pdf"))
	assert.True(t, c.Contains("/x.pdf"))
}

func TestCache_PersistFailureKeepsMemory(t *testing.T) {
	store := &failingStore{}
	c := New(store)
	assert.Error(t, c.Load())

	assert.Error(t, c.Add("/x.pdf"))
	assert.True(t, c.Contains("/x.pdf"))
	assert.Error(t, c.Flush())
	assert.Equal(t, 2, store.saves)
}

func TestCache_MemoryOnly(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Load())
	require.NoError(t, c.Add("rel/paper.pdf"))
	assert.True(t, c.Contains(Key("rel/paper.pdf")))
	require.NoError(t, c.Flush())
	require.NoError(t, c.Close())
}

func TestCache_ConcurrentAdds(t *testing.T) {
	c := New(NewJSONStore(filepath.Join(t.TempDir(), JSONFile)))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.Add(filepath.Join("/papers", string(rune('a'+i))+".pdf")))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, c.Len())
	assert.Len(t, c.Snapshot().ProcessedFiles, 20)
}

func TestJSONStore_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", JSONFile)
	s := NewJSONStore(path)
	require.NoError(t, s.Save(Snapshot{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"processed_files": []`)
	assert.Contains(t, string(data), `"last_updated"`)
}

func TestJSONStore_LegacyTimestamps(t *testing.T) {
	tests := []struct {
		name  string
		stamp string
		want  time.Time
	}{
		{"zoneless microseconds", "2024-05-01T10:20:30.123456", time.Date(2024, 5, 1, 10, 20, 30, 123456000, time.Local)},
		{"zoneless seconds", "2024-05-01T10:20:30", time.Date(2024, 5, 1, 10, 20, 30, 0, time.Local)},
		{"rfc3339", "2024-05-01T10:20:30Z", time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{"unparseable", "yesterday", time.Time{}},
		{"empty", "", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), JSONFile)
			body := `{"processed_files":["/papers/a.pdf"],"last_updated":"` + tt.stamp + `"}`
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			c := New(NewJSONStore(path))
			require.NoError(t, c.Load())
			assert.Equal(t, 1, c.Len())
			assert.True(t, c.Contains("/papers/a.pdf"))
			assert.True(t, tt.want.Equal(c.LastUpdated()), "got %v", c.LastUpdated())

			require.NoError(t, c.Add("/papers/b.pdf"))
			reopened := New(NewJSONStore(path))
			require.NoError(t, reopened.Load())
			assert.Equal(t, 2, reopened.Len())
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(types.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c.store)

	c, err = Open(types.CacheConfig{Enabled: true, Dir: dir, Backend: types.CacheJSON})
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, c.store)

	c, err = Open(types.CacheConfig{Enabled: true, Dir: dir, Backend: types.CacheSQLite})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, c.store)
	require.NoError(t, c.Close())

	_, err = Open(types.CacheConfig{Enabled: true, Dir: dir, Backend: "redis"})
	assert.Error(t, err)
}
