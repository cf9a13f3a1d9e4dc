package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// BetArchiveStore provides read access to placed bets for archival purposes.
// The Postgres BetStore satisfies this implicitly.
type BetArchiveStore interface {
	// ListBefore returns all bets placed strictly before the given cutoff.
	ListBefore(ctx context.Context, before time.Time) ([]domain.PlacedBet, error)
}

// ArchiveImpl implements domain.Archiver by querying the domain stores for
// aged records, serializing them to JSONL, and uploading the result to S3.
//
// Deletion of the archived records from the primary store is intentionally
// NOT performed here -- that is a separate, explicit step to be executed
// after the archive has been verified. Scrape runs are only marked archived.
type ArchiveImpl struct {
	writer domain.BlobWriter
	bets   BetArchiveStore
	runs   domain.ScrapeRunStore
	audit  domain.AuditStore
}

var _ domain.Archiver = (*ArchiveImpl)(nil)

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(
	writer domain.BlobWriter,
	bets BetArchiveStore,
	runs domain.ScrapeRunStore,
	audit domain.AuditStore,
) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		bets:   bets,
		runs:   runs,
		audit:  audit,
	}
}

// ArchiveBets queries all bets placed before the cutoff, serializes them to
// JSONL, and uploads the file to S3 at archive/bets/YYYY-MM.jsonl. The
// archival event is recorded in the audit log and the count of archived
// records is returned.
func (a *ArchiveImpl) ArchiveBets(ctx context.Context, before time.Time) (int64, error) {
	bets, err := a.bets.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive bets query: %w", err)
	}
	if len(bets) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(bets)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive bets marshal: %w", err)
	}

	path := archivePath("bets", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive bets upload: %w", err)
	}

	count := int64(len(bets))

	if err := a.audit.Log(ctx, "archive.bets", map[string]any{
		"path":   path,
		"count":  count,
		"before": before.Format(time.RFC3339),
	}); err != nil {
		return count, fmt.Errorf("s3blob: archive bets audit log: %w", err)
	}

	return count, nil
}

// ArchiveScrapeRuns queries all finished runs started before the cutoff,
// serializes them to JSONL, uploads the file to S3 at
// archive/scrape_runs/YYYY-MM.jsonl, and marks each run archived. The
// archival event is recorded in the audit log and the count of archived
// records is returned.
func (a *ArchiveImpl) ArchiveScrapeRuns(ctx context.Context, before time.Time) (int64, error) {
	runs, err := a.runs.ListBefore(ctx, before, domain.ScrapeStatusDone)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive scrape runs query: %w", err)
	}
	if len(runs) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(runs)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive scrape runs marshal: %w", err)
	}

	path := archivePath("scrape_runs", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive scrape runs upload: %w", err)
	}

	for _, run := range runs {
		if err := a.runs.MarkArchived(ctx, run.ID); err != nil {
			return 0, fmt.Errorf("s3blob: mark run %s archived: %w", run.ID, err)
		}
	}

	count := int64(len(runs))

	if err := a.audit.Log(ctx, "archive.scrape_runs", map[string]any{
		"path":   path,
		"count":  count,
		"before": before.Format(time.RFC3339),
	}); err != nil {
		return count, fmt.Errorf("s3blob: archive scrape runs audit log: %w", err)
	}

	return count, nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/bets/2025-01.jsonl
//	archive/scrape_runs/2025-01.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
