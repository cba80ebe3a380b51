package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFile(filepath.Join(dir, "plain"), false)
	require.NoError(t, err)
	gz, err := NewFile(filepath.Join(dir, "gzip"), true)
	require.NoError(t, err)
	db, err := NewSQLite(filepath.Join(dir, "db", "browser.db"))
	require.NoError(t, err)
	mem, err := NewSQLite(":memory:")
	require.NoError(t, err)

	stores := map[string]Store{
		"memory":        NewMemory(),
		"file":          file,
		"file-gzip":     gz,
		"sqlite":        db,
		"sqlite-memory": mem,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "browser")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "browser", []byte(`{"tabs":[]}`)))
			got, err := s.Get(ctx, "browser")
			require.NoError(t, err)
			assert.Equal(t, `{"tabs":[]}`, string(got))

			require.NoError(t, s.Set(ctx, "browser", []byte(`{"tabs":[1]}`)))
			got, err = s.Get(ctx, "browser")
			require.NoError(t, err)
			assert.Equal(t, `{"tabs":[1]}`, string(got), "set overwrites")
		})
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	data := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", data))
	data[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestWriteFailureOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemory().Set(ctx, "browser", []byte("x"))
	assert.ErrorIs(t, err, ErrStorageWriteFailure)
}

func TestFileStoreCompressionIsTransparent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	gz, err := NewFile(dir, true)
	require.NoError(t, err)
	require.NoError(t, gz.Set(ctx, "browser", []byte("compressed payload")))

	raw, err := os.ReadFile(filepath.Join(dir, "browser.json"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2], "file should be gzip encoded")

	plain, err := NewFile(dir, false)
	require.NoError(t, err)
	got, err := plain.Get(ctx, "browser")
	require.NoError(t, err)
	assert.Equal(t, "compressed payload", string(got))
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	f, err := NewFile(t.TempDir(), false)
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		err := f.Set(context.Background(), key, []byte("x"))
		assert.ErrorIs(t, err, ErrStorageWriteFailure, "key %q", key)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "default is memory", cfg: Config{}},
		{name: "memory", cfg: Config{Driver: DriverMemory}},
		{name: "file", cfg: Config{Driver: DriverFile, Path: t.TempDir()}},
		{name: "sqlite", cfg: Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "kv.db")}},
		{name: "unknown", cfg: Config{Driver: "redis"}, wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}
