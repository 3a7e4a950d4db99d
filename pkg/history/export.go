// Package history renders the prompt history of a user for export.
package history

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/aretw0/architect/pkg/adapters/file"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
)

// TimeLayout is the timestamp format heading each exported block (UTC).
const TimeLayout = "2006-01-02 15:04:05"

// Render writes one block per record, in the given order:
//
//	=== 2025-01-02 03:04:05 ===
//	<prompt>
//
// Blocks are separated by a blank line.
func Render(records []domain.HistoryRecord) []byte {
	var buf bytes.Buffer
	for i, rec := range records {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "=== %s ===\n%s\n", rec.CreatedAt.UTC().Format(TimeLayout), rec.Prompt)
	}
	return buf.Bytes()
}

// Export renders the whole history of userID, newest first.
// It fails with domain.ErrNoHistory when the user has no record.
func Export(ctx context.Context, store ports.HistoryStore, userID string) ([]byte, error) {
	records, err := store.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoHistory
	}
	return Render(records), nil
}

// FileName is the name of the export document of userID.
func FileName(userID string) string {
	return "prompts_" + url.PathEscape(userID) + ".txt"
}

// WriteExport exports the history of userID into dir and returns the file path.
func WriteExport(ctx context.Context, store ports.HistoryStore, userID, dir string) (string, error) {
	doc, err := Export(ctx, store, userID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(userID))
	if err := file.WriteAtomic(path, doc, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
