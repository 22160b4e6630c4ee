package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return ls
}

func TestSaveAndGet(t *testing.T) {
	ls := newTestStorage(t)

	content := "zaświadczenie lekarskie"
	err := ls.Save("abc123", strings.NewReader(content))
	require.NoError(t, err)

	reader, err := ls.Get("abc123")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, content, string(data))
}

func TestSave_ShardsByPrefix(t *testing.T) {
	ls := newTestStorage(t)

	require.NoError(t, ls.Save("xy77", strings.NewReader("dane")))

	_, err := os.Stat(filepath.Join(ls.basePath, "xy", "xy77"))
	require.NoError(t, err, "attachment should live under its two-character shard")
}

func TestGet_NotFound(t *testing.T) {
	ls := newTestStorage(t)

	_, err := ls.Get("missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestDelete(t *testing.T) {
	ls := newTestStorage(t)

	require.NoError(t, ls.Save("todelete", strings.NewReader("x")))
	require.NoError(t, ls.Delete("todelete"))

	_, err := ls.Get("todelete")
	require.Error(t, err)

	// Usunięcie nieistniejącego pliku nie jest błędem
	require.NoError(t, ls.Delete("todelete"))
}
