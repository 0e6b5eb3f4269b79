package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_SetGetDelete(t *testing.T) {
	dir, err := NewDir(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	_, ok, err := dir.Get(KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, dir.Set(KeyCart, []byte(`[{"id":"x"}]`)))
	data, ok, err := dir.Get(KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"x"}]`, string(data))

	entries, err := os.ReadDir(dir.path)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")

	require.NoError(t, dir.Delete(KeyCart))
	require.NoError(t, dir.Delete(KeyCart))
	_, ok, err = dir.Get(KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDir_RejectsPathKeys(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, dir.Set("../escape", []byte("x")))
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	v := []byte("abc")
	require.NoError(t, m.Set("k", v))
	v[0] = 'z'

	got, ok, err := m.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", string(got))
}

func TestPreferenceStore_PersistsAcrossInstances(t *testing.T) {
	m := NewMemory()

	prefs, err := NewPreferenceStore(m)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), prefs.Get())

	require.NoError(t, prefs.Update(func(p *Preferences) {
		p.AdminTab = "orders"
		p.ProductsSortField = "price"
		p.ProductsSortDirection = "sideways"
	}))

	again, err := NewPreferenceStore(m)
	require.NoError(t, err)
	got := again.Get()
	assert.Equal(t, "orders", got.AdminTab)
	assert.Equal(t, "price", got.ProductsSortField)
	assert.Equal(t, "desc", got.ProductsSortDirection)

	require.NoError(t, again.Reset())
	assert.Equal(t, DefaultPreferences(), again.Get())
}
