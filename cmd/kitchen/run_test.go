package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kitchensink/internal/config"
	"github.com/aretw0/kitchensink/pkg/adapters/redis"
	"github.com/aretw0/kitchensink/pkg/codec"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Store.Path = filepath.Join(t.TempDir(), "catalog.json")
	cfg.Shutdown.Timeout = 5 * time.Second
	return cfg
}

func readStore(t *testing.T, path string) Catalog {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}
	}
	v, _ := codec.JSON[Catalog]{}.Unmarshal(data)
	return v
}

func TestRunDaemon_DefaultStoreStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	var logs bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- runDaemon(ctx, cfg, &logs) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.Store.Path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.Contains(t, logs.String(), "no redis source configured")
	assert.Contains(t, logs.String(), "journal closed")
}

func TestRunDaemon_RefreshesFromRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := testConfig(t)
	cfg.Redis.Addr = mr.Addr()
	cfg.Store.RefreshInterval = 20 * time.Millisecond

	pub := redis.New[Catalog](mr.Addr(), "", 0, cfg.Redis.Key, codec.JSON[Catalog]{}, redis.WithPrefix(cfg.Redis.Prefix))
	defer pub.Close()
	require.NoError(t, pub.Publish(context.Background(), Catalog{Version: 1, Entries: map[string]string{"a": "1"}}))

	ctx, cancel := context.WithCancel(context.Background())
	var logs bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- runDaemon(ctx, cfg, &logs) }()

	require.Eventually(t, func() bool {
		return readStore(t, cfg.Store.Path).Version == 1
	}, 2*time.Second, 10*time.Millisecond, "store seeded from redis")

	require.NoError(t, pub.Publish(context.Background(), Catalog{Version: 2, Entries: map[string]string{"a": "2"}}))
	require.Eventually(t, func() bool {
		return readStore(t, cfg.Store.Path).Version == 2
	}, 2*time.Second, 10*time.Millisecond, "store refreshed from redis")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.Contains(t, logs.String(), "catalog updated")
}

func TestRunDaemon_InvalidSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "chatty"
	assert.Error(t, runDaemon(context.Background(), cfg, &bytes.Buffer{}))

	cfg = testConfig(t)
	cfg.Store.Codec = "xml"
	assert.Error(t, runDaemon(context.Background(), cfg, &bytes.Buffer{}))
}

func TestRunDaemon_UndecodableStoreFails(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Store.Path, []byte("{broken"), 0644))

	err := runDaemon(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunDaemon_AdminAddressInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(t)
	cfg.Admin.Addr = busy.Addr().String()

	done := make(chan error, 1)
	go func() { done <- runDaemon(context.Background(), cfg, &bytes.Buffer{}) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "admin server")
	case <-time.After(5 * time.Second):
		t.Fatal("daemon must fail fast when the admin address is taken")
	}
}

func TestReadCatalog(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("version: 3\nentries:\n  go: gopher\n"), 0644))
	v, err := readCatalog(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Version)
	assert.Equal(t, "gopher", v.Entries["go"])

	jsonPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"version":4}`), 0644))
	v, err = readCatalog(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Version)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "kitchen version 0.1.0")
}

func TestStoreCodec_Encrypted(t *testing.T) {
	cfg := config.Default().Store
	cfg.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, codec.KeySize))

	c, err := storeCodec(cfg)
	require.NoError(t, err)
	data, err := c.Marshal(Catalog{Version: 9, Entries: map[string]string{"pin": "1234"}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "1234")

	v, err := c.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 9, v.Version)

	cfg.EncryptionKey = "not base64!"
	_, err = storeCodec(cfg)
	assert.Error(t, err)

	cfg.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = storeCodec(cfg)
	assert.ErrorIs(t, err, codec.ErrKeySize)
}
