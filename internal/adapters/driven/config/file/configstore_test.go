package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("inbox.dir", "/srv/inbox"))

	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("inbox.dir", "/srv/inbox"))
	require.NoError(t, store.Set("match.window_days", 45))
	require.NoError(t, store.Set("sync.skip_unchanged_files", true))
	require.NoError(t, store.Set("match.variant_codes", []string{"K2=5", "K3=1"}))

	assert.Equal(t, "/srv/inbox", store.GetString("inbox.dir"))
	assert.Equal(t, 45, store.GetInt("match.window_days"))
	assert.True(t, store.GetBool("sync.skip_unchanged_files"))
	assert.Equal(t, []string{"K2=5", "K3=1"}, store.GetStringSlice("match.variant_codes"))

	// Wrong types and missing keys yield zero values.
	assert.Empty(t, store.GetString("match.window_days"))
	assert.Zero(t, store.GetInt("inbox.dir"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("inbox.dir"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("match.window_days", 30))
	require.NoError(t, store.Set("entities.orders.delete_stale", false))
	require.NoError(t, store.Set("match.variant_codes", []string{"K2=5"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[match]")
	assert.Contains(t, string(raw), "[entities.orders]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 30, reloaded.GetInt("match.window_days"))
	assert.Equal(t, []string{"K2=5"}, reloaded.GetStringSlice("match.variant_codes"))

	v, ok := reloaded.Get("entities.orders.delete_stale")
	require.True(t, ok)
	assert.Equal(t, false, v)
}

func TestConfigStore_Keys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("inbox.files.orders", "ordini.pdf"))
	require.NoError(t, store.Set("inbox.files.invoices", "fatture.pdf"))
	require.NoError(t, store.Set("inbox.dir", "/srv"))

	assert.Equal(t, []string{"inbox.files.invoices", "inbox.files.orders"}, store.Keys("inbox.files."))
	assert.Len(t, store.Keys(""), 3)
	assert.Empty(t, store.Keys("match."))
}

func TestConfigStore_LoadHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[inbox]
dir = "/data/inbox"

[inbox.files]
orders = "Ordini.pdf"

[sync]
stop_check_interval = 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/data/inbox", store.GetString("inbox.dir"))
	assert.Equal(t, "Ordini.pdf", store.GetString("inbox.files.orders"))
	assert.Equal(t, 25, store.GetInt("sync.stop_check_interval"))
}

func TestConfigStore_EmptyAndMissingFile(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys(""))

	require.NoError(t, os.WriteFile(store.Path(), nil, 0600))
	require.NoError(t, store.Load())
	assert.Empty(t, store.Keys(""))
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[broken"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("inbox.dir", "/srv/exports"))
	require.NoError(t, store.Set("match.window_days", 14))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.toml", entries[0].Name())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("history.keep", n)
			_ = store.GetInt("history.keep")
		}(i)
	}
	wg.Wait()

	v := store.GetInt("history.keep")
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 10)
}

func TestUnflattenMap(t *testing.T) {
	got := unflattenMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"c.d.e": "x",
		"c.f":   true,
	})

	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 2, got["a.b"])
	c, ok := got["c"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, c["f"])
	assert.Equal(t, map[string]any{"e": "x"}, c["d"])

	assert.Equal(t, map[string]any{"a": 1, "a.b": 2, "c.d.e": "x", "c.f": true}, flattenMap(got, ""))
}
