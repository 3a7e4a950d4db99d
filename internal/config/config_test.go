package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data", cfg.CatalogDir)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, time.Duration(0), cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Session.LockTTL)
	assert.Equal(t, BackendSQLite, cfg.History.Backend)
	assert.Equal(t, "access/whitelist.json", cfg.Access.Whitelist)
	assert.Equal(t, 8, cfg.Broadcast.Concurrency)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.UsesRedis())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "architect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog_dir: catalogs
session:
  backend: redis
  ttl: 1h
  lock: true
history:
  backend: redis
redis:
  addr: redis:6379
http:
  shutdown_timeout: 10
`), 0o600))

	cfg, err := load(path, []string{
		"ARCHITECT_REDIS_ADDR=cache:6380",
		"ARCHITECT_REDIS_DB=2",
		"ARCHITECT_SESSION_LOCK_TTL=5s",
		"ARCHITECT_LOG_LEVEL=debug",
		"OTHER_VAR=ignored",
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "catalogs", cfg.CatalogDir)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.Lock)
	assert.Equal(t, 5*time.Second, cfg.Session.LockTTL)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr, "env wins over the file")
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "text", cfg.Log.Format, "untouched defaults survive the merge")
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_TopLevelEnv(t *testing.T) {
	cfg, err := load("", []string{"ARCHITECT_CATALOG_DIR=/srv/catalog"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog", cfg.CatalogDir)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "architect.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sesion:\n  backend: redis\n"), 0o600))

	_, err := load(path, nil)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := load("", []string{
		"ARCHITECT_SESSION_BACKEND=etcd",
		"ARCHITECT_SESSION_LOCK=true",
		"ARCHITECT_BROADCAST_CONCURRENCY=0",
	})
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "etcd"`)
	assert.Contains(t, err.Error(), "session.lock requires")
	assert.Contains(t, err.Error(), "broadcast.concurrency")
}

func TestLoad_EncryptionKeysFromEnv(t *testing.T) {
	cfg, err := load("", []string{
		"ARCHITECT_SESSION_ENCRYPTION_KEY=bmV3LWtleQ==",
		"ARCHITECT_SESSION_FALLBACK_KEYS=b2xkLTE=,b2xkLTI=",
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "bmV3LWtleQ==", cfg.Session.EncryptionKey)
	assert.Equal(t, []string{"b2xkLTE=", "b2xkLTI="}, cfg.Session.FallbackKeys)
}

func TestValidate_FallbackWithoutActiveKey(t *testing.T) {
	cfg, err := load("", []string{"ARCHITECT_SESSION_FALLBACK_KEYS=b2xkLTE="})
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "requires session.encryption_key")
}

func TestLoad_UnknownEnvIsIgnored(t *testing.T) {
	cfg, err := load("", []string{
		"ARCHITECT_DEBUG=1",
		"ARCHITECT_SESSION_BAKEND=redis",
		"ARCHITECT_LOG=verbose",
		"ARCHITECT_REDIS_ADDR=cache:6380",
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, "info", cfg.Log.Level, "a variable naming a whole section leaves it intact")
	assert.Equal(t, []string{"ARCHITECT_DEBUG", "ARCHITECT_LOG", "ARCHITECT_SESSION_BAKEND"}, cfg.IgnoredEnv)
}
