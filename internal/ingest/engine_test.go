package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/agentic-research/caomdb/api"
	"github.com/agentic-research/caomdb/internal/logger"
	"github.com/agentic-research/caomdb/internal/metrics"
	"github.com/agentic-research/caomdb/internal/reader"
	"github.com/agentic-research/caomdb/internal/record"
	"github.com/agentic-research/caomdb/internal/store"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTarget records committed documents by observation id.
type memTarget struct {
	mu   sync.Mutex
	docs map[string][]*record.Row
	fail map[string]error
}

func newMemTarget() *memTarget {
	return &memTarget{docs: map[string][]*record.Row{}, fail: map[string]error{}}
}

func (m *memTarget) WriteDocument(_ context.Context, rows []*record.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := rows[0].Get("observation_id")
	key := id.(string)
	if err := m.fail[key]; err != nil {
		return err
	}
	m.docs[key] = rows
	return nil
}

func doc(collection, observationID string) string {
	return `<Observation><collection>` + collection + `</collection><observationID>` + observationID +
		`</observationID><planes><plane><productID>p</productID></plane></planes></Observation>`
}

func writeFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
}

func sample(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../reader/testdata/hst_11975.xml")
	require.NoError(t, err)
	return data
}

func TestEngine_IngestFile(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "obs/hst.xml", string(sample(t)))
	target := newMemTarget()

	n, err := NewEngine(fs, target).IngestFile(context.Background(), "obs/hst.xml")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := target.docs["11975"]
	require.Len(t, rows, 2)
	assert.Same(t, api.ObservationTable, rows[0].Table())
	v, _ := rows[1].Get("planeURI")
	assert.Equal(t, "caom:HST/11975/wfpc2_f170w", v)
}

func TestEngine_Ingest_IsolatesFailures(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "batch/a.xml", doc("C", "a"))
	writeFile(t, fs, "batch/b.xml", `<Observation><collection>C</collection><observationID>b</observationID><colour>red</colour></Observation>`)
	writeFile(t, fs, "batch/nested/c.json", `{"collection": "C", "observationID": "c"}`)
	writeFile(t, fs, "batch/d.xml", doc("C", "d"))
	writeFile(t, fs, "batch/notes.txt", "ignored")

	target := newMemTarget()
	target.fail["d"] = errors.New("disk full")

	var logs bytes.Buffer
	e := NewEngine(fs, target)
	e.Workers = 3
	e.Logger = logger.New(logger.Config{Output: &logs})
	e.Metrics = metrics.New()

	report, err := e.Ingest(context.Background(), "batch")
	require.NoError(t, err)

	assert.Equal(t, []string{"batch/a.xml", "batch/b.xml", "batch/d.xml", "batch/nested/c.json"}, report.Paths)
	assert.Equal(t, uint64(2), report.Ingested.GetCardinality())
	assert.Equal(t, uint64(2), report.Failed.GetCardinality())
	assert.Equal(t, 3, report.Rows)
	assert.Empty(t, report.Pending())

	failures := report.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "batch/b.xml", failures[0].Path)
	assert.True(t, errors.Is(failures[0].Err, reader.ErrUnknownElement))
	assert.Equal(t, "batch/d.xml", failures[1].Path)
	assert.ErrorContains(t, failures[1].Err, "disk full")

	var be *BatchError
	require.True(t, errors.As(report.Err(), &be))
	assert.Equal(t, 2, be.Failed)
	assert.Equal(t, 4, be.Total)

	assert.Contains(t, target.docs, "a")
	assert.Contains(t, target.docs, "c")
	assert.Contains(t, logs.String(), `"path":"batch/b.xml"`)
}

func TestEngine_Ingest_UnsupportedFileNamed(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "obs.fits", "SIMPLE  =                    T")

	report, err := NewEngine(fs, newMemTarget()).Ingest(context.Background(), "obs.fits")
	require.NoError(t, err)
	require.Len(t, report.Failures(), 1)
	assert.True(t, errors.Is(report.Failures()[0].Err, ErrUnsupported))
}

func TestEngine_Ingest_MissingRoot(t *testing.T) {
	_, err := NewEngine(memfs.New(), newMemTarget()).Ingest(context.Background(), "nowhere")
	assert.Error(t, err)
}

func TestEngine_Ingest_Cancelled(t *testing.T) {
	fs := memfs.New()
	for _, id := range []string{"a", "b", "c"} {
		writeFile(t, fs, "batch/"+id+".xml", doc("C", id))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewEngine(fs, newMemTarget()).Ingest(ctx, "batch")
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.True(t, report.Ingested.IsEmpty())
}

func TestEngine_Ingest_SQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hst.xml"), sample(t), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.xml"), []byte("<Observation>"), 0o644))

	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "caom.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Prepare(ctx, true))

	e := NewEngine(osfs.New(dir), s)
	e.Workers = 2
	report, err := e.Ingest(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), report.Ingested.GetCardinality())
	assert.Equal(t, uint64(1), report.Failed.GetCardinality())

	var targetName, algorithm, keywords string
	var ra float64
	err = s.DB().QueryRowContext(ctx,
		`SELECT "target_name", "algorithm_name", "proposal_keywords", "targetPosition_coordinates_cval1" FROM "Observation"`).
		Scan(&targetName, &algorithm, &keywords, &ra)
	require.NoError(t, err)
	assert.Equal(t, "M31", targetName)
	assert.Equal(t, "exposure", algorithm)
	assert.Equal(t, "M31 | galaxies", keywords)
	assert.Equal(t, 10.6847, ra)

	var radius float64
	var bands string
	err = s.DB().QueryRowContext(ctx, `SELECT "position_bounds_radius", "energy_energyBands" FROM "Plane"`).Scan(&radius, &bands)
	require.NoError(t, err)
	assert.Equal(t, 0.0125, radius)
	assert.Equal(t, "UV", bands)

	// re-ingesting replaces rather than duplicates
	_, err = e.IngestFile(ctx, "hst.xml")
	require.NoError(t, err)
	n, err := s.Count(ctx, api.PlaneTable)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
