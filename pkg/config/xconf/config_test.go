package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheSection struct {
	ShopTTL     time.Duration `koanf:"shop_ttl"`
	Workers     int           `koanf:"rebuild_workers"`
	ColdLoad    bool          `koanf:"cold_load"`
	WarmShopIDs []int64       `koanf:"warm_shop_ids"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_YAML(t *testing.T) {
	path := writeFile(t, "xshop.yaml", `
cache:
  shop_ttl: 30m
  rebuild_workers: "8"
  cold_load: true
  warm_shop_ids: [1, 2, 3]
`)

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, path, cfg.Path())

	var c cacheSection
	require.NoError(t, cfg.Unmarshal("cache", &c))
	assert.Equal(t, 30*time.Minute, c.ShopTTL)
	assert.Equal(t, 8, c.Workers)
	assert.True(t, c.ColdLoad)
	assert.Equal(t, []int64{1, 2, 3}, c.WarmShopIDs)
	assert.Equal(t, 8, cfg.Client().Int("cache.rebuild_workers"))
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeFile(t, "bad.json", `{"cache":`))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"cache":{"rebuild_workers":4}}`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())
	assert.Equal(t, 4, cfg.Client().Int("cache.rebuild_workers"))
	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)

	empty, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)
	var c cacheSection
	require.NoError(t, empty.Unmarshal("cache", &c))
	assert.Zero(t, c)

	_, err = NewFromBytes([]byte("a: 1"), "toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnmarshal_TypeMismatch(t *testing.T) {
	cfg, err := NewFromBytes([]byte("cache:\n  rebuild_workers: many\n"), FormatYAML)
	require.NoError(t, err)

	var c cacheSection
	assert.ErrorIs(t, cfg.Unmarshal("cache", &c), ErrUnmarshalFailed)
}

func TestReload(t *testing.T) {
	path := writeFile(t, "xshop.yml", "cache:\n  rebuild_workers: 1\n")
	cfg, err := New(path)
	require.NoError(t, err)
	old := cfg.Client()

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  rebuild_workers: 2\n"), 0o600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, 2, cfg.Client().Int("cache.rebuild_workers"))
	assert.Equal(t, 1, old.Int("cache.rebuild_workers"), "旧快照不受影响")

	// 解析失败保留旧配置
	require.NoError(t, os.WriteFile(path, []byte("cache: [\n"), 0o600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, 2, cfg.Client().Int("cache.rebuild_workers"))
}
