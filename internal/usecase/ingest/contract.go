package ingest

import (
	"context"

	"github.com/kailas-cloud/review/internal/repository/catalog"
)

// Writer persists catalog rows.
type Writer interface {
	Write(ctx context.Context, b *catalog.Batch) error
}
