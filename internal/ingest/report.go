package ingest

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// Report is the outcome of a batch. Documents are identified by their index
// in Paths.
type Report struct {
	Paths    []string
	Ingested *roaring.Bitmap
	Failed   *roaring.Bitmap
	Errors   map[uint32]error
	// Rows counts rows committed across all ingested documents.
	Rows int
}

// Failure is one document that could not be ingested.
type Failure struct {
	Path string
	Err  error
}

func newReport(paths []string) *Report {
	return &Report{
		Paths:    paths,
		Ingested: roaring.New(),
		Failed:   roaring.New(),
		Errors:   make(map[uint32]error),
	}
}

func (r *Report) succeed(i uint32, rows int) {
	r.Ingested.Add(i)
	r.Rows += rows
}

func (r *Report) fail(i uint32, err error) {
	r.Failed.Add(i)
	r.Errors[i] = err
}

// Pending returns the documents that were neither ingested nor failed, which
// happens when the batch is cancelled.
func (r *Report) Pending() []string {
	done := roaring.Or(r.Ingested, r.Failed)
	all := roaring.New()
	all.AddRange(0, uint64(len(r.Paths)))
	all.AndNot(done)

	out := make([]string, 0, all.GetCardinality())
	it := all.Iterator()
	for it.HasNext() {
		out = append(out, r.Paths[it.Next()])
	}
	return out
}

// Failures lists failed documents in path order.
func (r *Report) Failures() []Failure {
	out := make([]Failure, 0, r.Failed.GetCardinality())
	for _, i := range r.Failed.ToArray() {
		out = append(out, Failure{Path: r.Paths[i], Err: r.Errors[i]})
	}
	return out
}

// Err returns a BatchError when any document failed.
func (r *Report) Err() error {
	if r.Failed.IsEmpty() {
		return nil
	}
	return &BatchError{Failed: int(r.Failed.GetCardinality()), Total: len(r.Paths)}
}

func (r *Report) String() string {
	return fmt.Sprintf("%d ingested, %d failed, %d rows (of %d documents)",
		r.Ingested.GetCardinality(), r.Failed.GetCardinality(), r.Rows, len(r.Paths))
}

// BatchError reports that some documents of a batch failed.
type BatchError struct {
	Failed int
	Total  int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d documents failed", e.Failed, e.Total)
}
