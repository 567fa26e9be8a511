package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/bureau/pkg/auth"
	"github.com/mchmarny/bureau/pkg/config"
	"github.com/mchmarny/bureau/pkg/source"
)

func TestBatchCommand(t *testing.T) {
	ac := newTestAppConfig(t, &staticLoader{rows: testRows()})

	out, err := runApp(t, ac, "batch", "--all", "--limit", "2")
	require.NoError(t, err)

	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.EqualValues(t, 123, list[0]["crn"])
	assert.EqualValues(t, 9449274898, list[1]["crn"])
}

func TestBatchCommand_NoCustomers(t *testing.T) {
	ac := newTestAppConfig(t, &staticLoader{rows: testRows()})
	_, err := runApp(t, ac, "batch")
	assert.Error(t, err)
}

func TestLoadBehaviorDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "123.json"), []byte(`{"max_dpd_6m_cc": 0}`), 0o600))

	m, err := loadBehaviorDir(dir, []int64{123, 456})
	require.NoError(t, err)
	require.Len(t, m, 1)
	require.NotNil(t, m[123].MaxDPD6mCC)
	assert.Equal(t, 0, *m[123].MaxDPD6mCC)

	m, err = loadBehaviorDir("", []int64{123})
	require.NoError(t, err)
	assert.Empty(t, m)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "456.json"), []byte(`{"max_dpd_6m_cc": -1}`), 0o600))
	_, err = loadBehaviorDir(dir, []int64{456})
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	ac := newTestAppConfig(t, &staticLoader{rows: testRows()})
	target := "sqlite://" + filepath.Join(t.TempDir(), "bureau.db")

	out, err := runApp(t, ac, "import", "--to", target, "--table", "raw")
	require.NoError(t, err)

	var res ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, "raw", res.Table)
	assert.Equal(t, "static", res.Source)

	out, err = runApp(t, ac, "import", "--to", target, "--history")
	require.NoError(t, err)

	var runs []*source.ImportRun
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "raw", runs[0].Table)
	assert.Equal(t, 3, runs[0].Rows)

	// the imported table serves as a source
	driver, dsn, err := source.ParseDSN(target)
	require.NoError(t, err)
	l, err := source.NewSQLLoader(driver, dsn, "raw")
	require.NoError(t, err)
	records, err := l.Load(t.Context())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestImportCommand_BadTarget(t *testing.T) {
	ac := newTestAppConfig(t, &staticLoader{rows: testRows()})
	_, err := runApp(t, ac, "import", "--to", "mysql://db/risk")
	assert.ErrorIs(t, err, source.ErrUnsupported)
}

func TestAuthCommands(t *testing.T) {
	ac := newTestAppConfig(t, nil)

	_, err := runApp(t, ac, "auth", "set", "--uri", "postgres://u:p@db/risk", "--token", "secret")
	require.NoError(t, err)

	v, err := ac.Store.Get(auth.KeySourceURI)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/risk", v)

	v, err = ac.Store.Get(auth.KeySourceToken)
	require.NoError(t, err)
	assert.Equal(t, "secret", v)

	out, err := runApp(t, ac, "auth", "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2")

	_, err = ac.Store.Get(auth.KeySourceURI)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestConfigCommands(t *testing.T) {
	ac := newTestAppConfig(t, nil)

	out, err := runApp(t, ac, "config", "show")
	require.NoError(t, err)

	var shown config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, testAsOf, shown.AsOf)

	_, err = runApp(t, ac, "--source", "tradelines.tsv", "config", "reset")
	require.NoError(t, err)

	saved, err := config.ReadOrCreate(ac.Dir)
	require.NoError(t, err)
	assert.Equal(t, "tradelines.tsv", saved.Source.URI)
	assert.Empty(t, saved.AsOf)
}
