package s3blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// Snapshotter implements domain.SnapshotWriter by storing raw scraper page
// bodies under scrapes/{runID}/page-NNNN.json. Pages are kept verbatim so a
// run can be replayed or re-parsed later without hitting the API again.
type Snapshotter struct {
	writer domain.BlobWriter
}

var _ domain.SnapshotWriter = (*Snapshotter)(nil)

// NewSnapshotter creates a Snapshotter that uploads pages via the given writer.
func NewSnapshotter(writer domain.BlobWriter) *Snapshotter {
	return &Snapshotter{writer: writer}
}

// WritePage uploads one raw page for a run.
func (s *Snapshotter) WritePage(ctx context.Context, runID string, page int, body []byte) error {
	path := fmt.Sprintf("scrapes/%s/page-%04d.json", runID, page)
	if err := s.writer.Put(ctx, path, bytes.NewReader(body), "application/json"); err != nil {
		return fmt.Errorf("s3blob: write page %d for run %s: %w", page, runID, err)
	}
	return nil
}
