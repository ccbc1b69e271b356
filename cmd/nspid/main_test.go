package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/nspid/internal/config"
	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/directory/directorytest"
	"github.com/KilimcininKorOglu/nspid/internal/logging"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(directorytest.SeedYAML), 0644))
	return path
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunUnknownCommand(t *testing.T) {
	code, _, stderr := execute("frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute("version")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "nspid version "+version)

	code, stdout, _ = execute("version", "--short")
	require.Equal(t, 0, code)
	assert.Equal(t, version+"\n", stdout)
}

func TestSeedValidate(t *testing.T) {
	code, stdout, _ := execute("seed", "validate", writeSeed(t))
	require.Equal(t, 0, code)
	assert.Equal(t, "Seed is valid: 3 containers, 7 objects, 2 templates\n", stdout)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("objects:\n  - dn: x\n    containers: [Nowhere]\n    type: mailuser\n"), 0644))
	code, _, stderr := execute("seed", "validate", bad)
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestConfigPrint(t *testing.T) {
	code, stdout, _ := execute("config", "print")
	require.Equal(t, 0, code)

	cfg, err := config.ParseConfig([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestConfigValidate(t *testing.T) {
	good := writeConfig(t, "directory:\n  seedFile: /tmp/seed.yaml\n")
	code, stdout, _ := execute("config", "validate", good)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Configuration is valid")

	bad := writeConfig(t, "storage:\n  path: relative.db\n")
	code, _, stderr := execute("config", "validate", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "storage.path")
}

func TestResolve(t *testing.T) {
	cfg := writeConfig(t, "directory:\n  seedFile: "+writeSeed(t)+"\n")

	code, stdout, stderr := execute("resolve", "--config", cfg, "carol white", "bob", "nobody")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "carol white")
	assert.Contains(t, stdout, "resolved")
	assert.Contains(t, stdout, "ambiguous")
	assert.Contains(t, stdout, "unresolved")
	assert.Contains(t, stdout, "Bob Brown")
}

func TestOpenStorePersistsModifications(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Directory.SeedFile = writeSeed(t)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "nspid.db")
	cert := [][]byte{{0x30, 0x82}}

	store, err := openStore(cfg, logging.NewNop())
	require.NoError(t, err)
	alice := directorytest.MustMId(t, store, directorytest.AliceDN)
	require.NoError(t, store.Modify(alice, func(obj *directory.Object) error {
		obj.Set(nspi.PropertyValue{Tag: nspi.PidTagUserX509Certificate, Value: cert})
		return nil
	}))
	require.NoError(t, store.Close())

	store, err = openStore(cfg, logging.NewNop())
	require.NoError(t, err)
	defer store.Close()

	obj, ok := store.Object(directorytest.MustMId(t, store, directorytest.AliceDN))
	require.True(t, ok)
	v, ok := obj.Get(nspi.PidTagUserX509Certificate)
	require.True(t, ok)
	assert.Equal(t, cert, v.Value)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Directory.SeedFile = writeSeed(t)
	cfg.REST.Address = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second

	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)
	defer srv.Close()
	srv.pidFile = filepath.Join(t.TempDir(), "nspid.pid")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(srv.pidFile)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = os.Stat(srv.pidFile)
	assert.True(t, os.IsNotExist(err))
}

func TestServerRunRequiresREST(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Directory.SeedFile = writeSeed(t)
	cfg.REST.Enabled = false

	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	assert.ErrorIs(t, srv.Run(context.Background()), ErrRESTDisabled)
}

func TestReloadACL(t *testing.T) {
	seed := writeSeed(t)
	cfgPath := writeConfig(t, "directory:\n  seedFile: "+seed+"\n")
	cfg, err := loadConfig(cfgPath)
	require.NoError(t, err)

	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	_, err = srv.ReloadACL()
	assert.ErrorIs(t, err, ErrNoConfigFile)

	srv.configFile = cfgPath
	assert.True(t, srv.acl.CanModify(nspi.DTMailUser, nspi.PidTagUserX509Certificate))
	assert.False(t, srv.acl.CanModify(nspi.DTAgent, nspi.PidTagUserX509Certificate))

	body := "directory:\n  seedFile: " + seed + "\nacl:\n  defaultPolicy: allow\n  rules: []\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0644))
	rules, err := srv.ReloadACL()
	require.NoError(t, err)
	assert.Equal(t, 0, rules)
	assert.True(t, srv.acl.CanModify(nspi.DTAgent, nspi.PidTagUserX509Certificate))

	body = "directory:\n  seedFile: " + seed + "\nacl:\n  defaultPolicy: sometimes\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0644))
	_, err = srv.ReloadACL()
	assert.Error(t, err)
	assert.True(t, srv.acl.CanModify(nspi.DTAgent, nspi.PidTagUserX509Certificate))
}

func TestWatchReloadOnSignal(t *testing.T) {
	seed := writeSeed(t)
	cfgPath := writeConfig(t, "directory:\n  seedFile: "+seed+"\n")
	cfg, err := loadConfig(cfgPath)
	require.NoError(t, err)

	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)
	defer srv.Close()
	srv.configFile = cfgPath

	ctx, cancel := context.WithCancel(context.Background())
	hup := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		srv.watchReload(ctx, hup)
		close(done)
	}()

	body := "directory:\n  seedFile: " + seed + "\nacl:\n  defaultPolicy: allow\n  rules: []\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0644))
	hup <- syscall.SIGHUP

	assert.Eventually(t, func() bool {
		return srv.acl.CanModify(nspi.DTAgent, nspi.PidTagUserX509Certificate)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestReloadCommandPIDFile(t *testing.T) {
	t.Setenv("NSPID_PID_FILE", "")

	code, _, stderr := execute("reload", "acl", "--pid-file", filepath.Join(t.TempDir(), "missing.pid"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "pid file not found")

	bad := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(bad, []byte("abc\n"), 0644))
	_, err := readPIDFile(bad)
	assert.ErrorContains(t, err, "invalid pid")

	good := filepath.Join(t.TempDir(), "good.pid")
	require.NoError(t, os.WriteFile(good, []byte(" 4242\n"), 0644))
	pid, err := readPIDFile(good)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)
}

func TestBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nspid.db")
	cfgPath := writeConfig(t, "directory:\n  seedFile: "+writeSeed(t)+"\nstorage:\n  path: "+dbPath+"\n")
	bak := filepath.Join(dir, "nspid.bak")

	cfg, err := loadConfig(cfgPath)
	require.NoError(t, err)
	store, err := openStore(cfg, logging.NewNop())
	require.NoError(t, err)
	alice := directorytest.MustMId(t, store, directorytest.AliceDN)
	require.NoError(t, store.Modify(alice, func(obj *directory.Object) error {
		obj.Set(nspi.PropertyValue{Tag: nspi.PidTagUserX509Certificate, Value: [][]byte{{1}}})
		return nil
	}))
	require.NoError(t, store.Close())

	code, stdout, stderr := execute("backup", "--config", cfgPath, "--output", bak, "--compress")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Backed up 1 objects")

	code, stdout, stderr = execute("restore", "--input", bak, "--verify-only")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Backup is valid: 1 objects")

	require.NoError(t, os.Remove(dbPath))
	code, _, stderr = execute("restore", "--config", cfgPath, "--input", bak)
	require.Equal(t, 0, code, stderr)

	store, err = openStore(cfg, logging.NewNop())
	require.NoError(t, err)
	defer store.Close()
	obj, ok := store.Object(directorytest.MustMId(t, store, directorytest.AliceDN))
	require.True(t, ok)
	_, ok = obj.Get(nspi.PidTagUserX509Certificate)
	assert.True(t, ok)
}

func TestBackupRequiresStorage(t *testing.T) {
	cfgPath := writeConfig(t, "directory:\n  seedFile: "+writeSeed(t)+"\n")
	code, _, stderr := execute("backup", "--config", cfgPath, "--output", filepath.Join(t.TempDir(), "x.bak"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "storage.path")
}
