package textfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "query_ids.txt"))

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadSkipsBlankLinesAndBOM(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "proxies.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffhttp://a:1\r\n\n  socks5://b:2  \n\n"), 0o600))

	entries, err := NewStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a:1", "socks5://b:2"}, entries)
}

func TestAppendAndRemoveAt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "query_ids.txt")
	store := NewStore(path)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "first"))
	require.NoError(t, store.Append(ctx, "  second  "))
	require.NoError(t, store.Append(ctx, "third"))

	removed, err := store.RemoveAt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "second", removed)

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "third"}, entries)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nthird\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(listFileMode), info.Mode().Perm())
}

func TestAppendRejectsInvalidEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "list.txt"))

	require.Error(t, store.Append(context.Background(), "   "))
	require.Error(t, store.Append(context.Background(), "a\nb"))
}

func TestRemoveAtOutOfRange(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "list.txt"))
	require.NoError(t, store.Append(context.Background(), "only"))

	_, err := store.RemoveAt(context.Background(), 3)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore(filepath.Join(t.TempDir(), "list.txt"))
	_, err := store.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Append(ctx, "x"), context.Canceled)
}
