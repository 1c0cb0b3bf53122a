// Package ingest reads observation documents from a filesystem, maps them to
// rows and commits each document through a Target.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/agentic-research/caomdb/internal/caom"
	"github.com/agentic-research/caomdb/internal/mapper"
	"github.com/agentic-research/caomdb/internal/metrics"
	"github.com/agentic-research/caomdb/internal/reader"
	"github.com/agentic-research/caomdb/internal/record"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupported is returned for files no reader handles.
var ErrUnsupported = errors.New("unsupported document format")

// Engine drives the ingestion process.
type Engine struct {
	FS    billy.Filesystem
	Store Target

	// Workers bounds the number of documents read and mapped concurrently.
	// Commits are always serial.
	Workers int
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

func NewEngine(fs billy.Filesystem, store Target) *Engine {
	return &Engine{
		FS:      fs,
		Store:   store,
		Workers: 1,
		Logger:  zerolog.Nop(),
	}
}

// Load reads and decodes one document.
func (e *Engine) Load(path string) (*caom.Node, error) {
	r, ok := reader.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	f, err := e.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	obs, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return obs, nil
}

// Map reads one document and returns its rows without storing them.
func (e *Engine) Map(path string) ([]*record.Row, error) {
	obs, err := e.Load(path)
	if err != nil {
		return nil, err
	}
	return mapper.MapObservation(obs)
}

// IngestFile reads, maps and commits a single document. It returns the
// number of rows written.
func (e *Engine) IngestFile(ctx context.Context, path string) (int, error) {
	start := time.Now()
	rows, err := e.Map(path)
	if err == nil {
		err = e.write(ctx, rows)
	}
	e.record(path, rows, err, start)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Ingest processes files and directories. Directories are walked for
// supported documents. A document that fails to read, map or commit is
// recorded in the report and does not stop the batch; only walk errors and
// cancellation are returned as errors.
func (e *Engine) Ingest(ctx context.Context, roots ...string) (*Report, error) {
	paths, err := e.collect(roots)
	if err != nil {
		return nil, err
	}
	report := newReport(paths)
	defer func() { e.Metrics.RunFinished(time.Now()) }()

	type mapped struct {
		index uint32
		rows  []*record.Row
		err   error
		start time.Time
	}

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan uint32)
	results := make(chan mapped, workers)

	g.Go(func() error {
		defer close(jobs)
		for i := range paths {
			select {
			case jobs <- uint32(i):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				start := time.Now()
				rows, err := e.Map(paths[i])
				select {
				case results <- mapped{index: i, rows: rows, err: err, start: start}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(results)
	}()

	// Single writer: SQLite serializes writes anyway.
	for res := range results {
		if ctx.Err() != nil {
			continue
		}
		err := res.err
		if err == nil {
			err = e.write(ctx, res.rows)
		}
		e.record(paths[res.index], res.rows, err, res.start)
		if err != nil {
			report.fail(res.index, err)
			continue
		}
		report.succeed(res.index, len(res.rows))
	}

	if err := <-done; err != nil {
		return report, err
	}
	return report, ctx.Err()
}

func (e *Engine) write(ctx context.Context, rows []*record.Row) error {
	if err := e.Store.WriteDocument(ctx, rows); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	for _, r := range rows {
		e.Metrics.RecordRows(r.Table().Name, 1)
	}
	return nil
}

func (e *Engine) record(path string, rows []*record.Row, err error, start time.Time) {
	elapsed := time.Since(start)
	e.Metrics.RecordDocument(err, elapsed)
	if err != nil {
		e.Logger.Error().Err(err).Str("path", path).Dur("duration", elapsed).Msg("document failed")
		return
	}
	e.Logger.Info().Str("path", path).Int("rows", len(rows)).Dur("duration", elapsed).Msg("document ingested")
}

// collect expands roots into document paths. Files named explicitly are kept
// even when unsupported so they are reported; walked files are filtered.
func (e *Engine) collect(roots []string) ([]string, error) {
	var out []string
	for _, root := range roots {
		info, err := e.FS.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			out = append(out, root)
			continue
		}

		var found []string
		err = util.Walk(e.FS, root, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && reader.Supported(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
