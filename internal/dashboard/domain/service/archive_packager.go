package service

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/shared/errors"
)

// ArchivePackager bundles CSV payloads into a single ZIP archive
type ArchivePackager interface {
	// Pack writes one "{name}.csv" member per entry at the archive root,
	// in input order. Names are flattened to a single path element and
	// clashes after flattening get a "-2", "-3"... suffix. Zero entries
	// still produce a valid empty archive.
	Pack(entries []model.ExportEntry) ([]byte, error)
}

type zipPackager struct {
	now func() time.Time
}

// NewArchivePackager creates a deflate-compressing ZIP packager
func NewArchivePackager() ArchivePackager {
	return &zipPackager{now: time.Now}
}

func (p *zipPackager) Pack(entries []model.ExportEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	modified := p.now()
	used := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     uniqueName(used, entry.FileName()),
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, errors.NewInternalError("failed to add archive entry").
				WithCause(err).
				WithDetail("entry", entry.Name)
		}
		if _, err := w.Write([]byte(entry.Content)); err != nil {
			return nil, errors.NewInternalError("failed to write archive entry").
				WithCause(err).
				WithDetail("entry", entry.Name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.NewInternalError("failed to finalize archive").WithCause(err)
	}
	return buf.Bytes(), nil
}

func uniqueName(used map[string]struct{}, name string) string {
	candidate := name
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.csv", strings.TrimSuffix(name, ".csv"), n)
	}
}
