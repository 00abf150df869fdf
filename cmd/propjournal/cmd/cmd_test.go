package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/config"
	"github.com/rustyeddy/propjournal/ledger"
)

// run executes the root command with args against a scratch ledger and key.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvDBPath, filepath.Join(dir, "ledger.db"))
	t.Setenv(config.EnvKeyFile, filepath.Join(dir, "secret.key"))
	t.Setenv(config.EnvVPSURL, "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "missing.env")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "propjournal version "+version)
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pj.yaml")

	out, err := run(t, dir, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = run(t, dir, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
}

func TestAccountLifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "account", "add", "--login", "7001", "--password", "hunter2",
		"--alias", "ftmo-1", "--initial", "100000", "--max-dd", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Added account 1 (ftmo-1, login 7001)")

	l, err := ledger.NewSQLite(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	stored, err := l.GetAccountByLogin(context.Background(), 7001)
	require.NoError(t, err)
	require.NoError(t, l.Close())
	assert.NotEqual(t, "hunter2", stored.Password, "password is stored encrypted")
	assert.NotEmpty(t, stored.Password)

	out, err = run(t, dir, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ftmo-1")
	assert.NotContains(t, out, "hunter2")

	out, err = run(t, dir, "account", "deactivate", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Account 1 is inactive")

	_, err = run(t, dir, "account", "delete", "1")
	require.NoError(t, err)

	_, err = run(t, dir, "account", "delete", "1")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSyncRequiresFeedURL(t *testing.T) {
	_, err := run(t, t.TempDir(), "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vps.url is not set")
}

func TestReportOnEmptyLedger(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "report", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Dashboard")

	out, err = run(t, dir, "trades", "--date", "2024-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "no trades")

	_, err = os.Stat(filepath.Join(dir, "secret.key"))
	assert.NoError(t, err)
}
