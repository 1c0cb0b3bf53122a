package cmd

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const sampleDoc = "../internal/reader/testdata/hst_11975.xml"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestIngestCmd(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "caom.db")
	promPath := filepath.Join(dir, "caomdb.prom")
	configFile := filepath.Join(dir, "caomdb.hcl")
	require.NoError(t, os.WriteFile(configFile, []byte(`
workers = 2
metrics {
  textfile = "`+promPath+`"
}
`), 0o644))

	_, _, err := run(t, "--config", configFile, "--database", dbPath, "init", "--drop")
	require.NoError(t, err)

	out, _, err := run(t, "--config", configFile, "--database", dbPath, "ingest", sampleDoc)
	require.NoError(t, err)
	assert.Contains(t, out, "1 ingested, 0 failed, 2 rows")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var uri string
	require.NoError(t, db.QueryRow(`SELECT "planeURI" FROM "Plane"`).Scan(&uri))
	assert.Equal(t, "caom:HST/11975/wfpc2_f170w", uri)

	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `caomdb_documents_total{status="ingested"} 1`)
}

func TestIngestCmd_FailedDocument(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte(`<Observation><colour/></Observation>`), 0o644))

	_, stderr, err := run(t, "--config", filepath.Join(dir, "none.hcl"), "--database", filepath.Join(dir, "caom.db"), "ingest", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 documents failed")
	assert.Contains(t, stderr, "bad.xml")
}

func TestMapCmd_JSON(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, "--config", filepath.Join(dir, "none.hcl"), "map", "--format", "json", sampleDoc)
	require.NoError(t, err)

	doc, err := oj.ParseString(out)
	require.NoError(t, err)
	rows, ok := doc.([]any)
	require.True(t, ok)
	require.Len(t, rows, 2)

	obs := rows[0].(map[string]any)
	assert.Equal(t, "Observation", obs["table"])
	values := obs["values"].(map[string]any)
	assert.Equal(t, "M31", values["target_name"])
	assert.Equal(t, "S", values["typeCode"])
	assert.Equal(t, "science", values["intent"])

	plane := rows[1].(map[string]any)["values"].(map[string]any)
	assert.Equal(t, "caom:HST/11975/wfpc2_f170w", plane["planeURI"])
}

func TestMapCmd_OtherFormats(t *testing.T) {
	dir := t.TempDir()
	noConfig := filepath.Join(dir, "none.hcl")

	out, _, err := run(t, "--config", noConfig, "map", "--format", "dump", sampleDoc)
	require.NoError(t, err)
	assert.Contains(t, out, `"target_name"`)
	assert.Contains(t, out, `"M31"`)

	out, _, err = run(t, "--config", noConfig, "map", "--format", "table", sampleDoc)
	require.NoError(t, err)
	assert.Contains(t, out, "[Plane]")
	assert.Contains(t, out, "caom:HST/11975/wfpc2_f170w")

	_, _, err = run(t, "--config", noConfig, "map", "--format", "yaml", sampleDoc)
	assert.Error(t, err)
}
