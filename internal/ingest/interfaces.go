package ingest

import (
	"context"

	"github.com/agentic-research/caomdb/internal/record"
)

// Target stores the rows of one observation document atomically: either all
// rows commit or none do.
type Target interface {
	WriteDocument(ctx context.Context, rows []*record.Row) error
}
