package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/qextract/internal/model"
)

func TestKey(t *testing.T) {
	k := Key("2024.1", "min=10", "1. What?")
	assert.True(t, strings.HasPrefix(k, "v1-"))
	assert.Len(t, k, len("v1-")+64)
	assert.Equal(t, k, Key("2024.1", "min=10", "1. What?"))

	assert.NotEqual(t, k, Key("2024.2", "min=10", "1. What?"), "library fingerprint is part of the key")
	assert.NotEqual(t, k, Key("2024.1", "min=5", "1. What?"), "options are part of the key")
	assert.NotEqual(t, Key("a", "bc", ""), Key("ab", "c", ""))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte(`{"a":1}`), 0))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v))
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte(`1`), 0))
	require.NoError(t, c.Set("b", []byte(`2`), 0))
	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, c.Set("k", []byte(`1`), time.Millisecond))
	time.Sleep(10 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("v", "f", "text")

	require.NoError(t, c.Set(key, []byte(`{"questions":[]}`), 0))
	v, ok := c.Get(key)
	require.True(t, ok)
	assert.JSONEq(t, `{"questions":[]}`, string(v))

	shard := key[len("v1-") : len("v1-")+2]
	_, err := os.Stat(filepath.Join(dir, shard, key+".json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, shard))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("v1-abcd", []byte(`1`), 0))
	_, ok := c.Get("v1-abcd")
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = c.Get("v1-abcd")
	assert.False(t, ok)
	_, err := os.Stat(c.path("v1-abcd"))
	assert.True(t, os.IsNotExist(err), "expired entry is removed")
}

func TestDiskCache_Errors(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	assert.Error(t, c.Set("v1-abcd", []byte("not json"), 0))
	assert.NoError(t, c.Delete("v1-missing"))

	require.NoError(t, os.MkdirAll(filepath.Dir(c.path("v1-ffff")), 0o755))
	require.NoError(t, os.WriteFile(c.path("v1-ffff"), []byte("{broken"), 0o644))
	_, ok := c.Get("v1-ffff")
	assert.False(t, ok)

	require.NoError(t, c.Clear())
	_, ok = c.Get("v1-abcd")
	assert.False(t, ok)
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	cfg := model.CacheConfig{Enabled: true, Dir: t.TempDir(), MemoryTTL: time.Minute, DiskTTL: time.Hour}

	first := NewLayered(cfg)
	require.NoError(t, first.Set("v1-abcd", []byte(`"x"`), 0))

	second := NewLayered(cfg)
	mem := second.memory.(*MemoryCache)
	assert.Equal(t, 0, mem.Len())

	v, ok := second.Get("v1-abcd")
	require.True(t, ok)
	assert.Equal(t, `"x"`, string(v))
	assert.Equal(t, 1, mem.Len())

	require.NoError(t, second.Delete("v1-abcd"))
	_, ok = NewLayered(cfg).Get("v1-abcd")
	assert.False(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	c := New(model.CacheConfig{Enabled: true, Dir: t.TempDir(), MemoryTTL: time.Minute, DiskTTL: time.Hour})

	type payload struct {
		Numbers []string `json:"numbers"`
	}
	require.NoError(t, SetJSON(c, "v1-1234", payload{Numbers: []string{"1", "2"}}, 0))

	var got payload
	found, err := GetJSON(c, "v1-1234", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"1", "2"}, got.Numbers)

	found, err = GetJSON(c, "v1-none", &got)
	assert.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set("v1-5678", []byte(`[1]`), 0))
	found, err = GetJSON(c, "v1-5678", &got)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestNew_Disabled(t *testing.T) {
	c := New(model.CacheConfig{Enabled: false})
	assert.IsType(t, Nop{}, c)
	require.NoError(t, c.Set("k", []byte(`1`), 0))
	_, ok := c.Get("k")
	assert.False(t, ok)
}
