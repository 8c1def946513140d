package model

import (
	"fmt"
	"strings"
	"time"

	sharederrors "docdb-dashboard/internal/shared/errors"
)

// ISOTimestampLayout is the UTC millisecond timestamp used in export filenames.
const ISOTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportEntry is one named CSV payload destined for an archive.
type ExportEntry struct {
	Name    string
	Content string
}

// FileName is the archive member name for the entry. It never contains a
// path separator, so every member sits at the archive root.
func (e ExportEntry) FileName() string {
	return FlatFileName(e.Name) + ".csv"
}

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// FlatFileName turns a collection name into a single path element: slashes
// and backslashes become "_", and names made only of dots are replaced so
// "." and ".." cannot refer to a directory.
func FlatFileName(name string) string {
	flat := pathSeparators.Replace(name)
	if strings.Trim(flat, ".") == "" {
		return strings.Repeat("_", len(flat))
	}
	return flat
}

// CollectionExport is one element of the bulk CSV array response.
type CollectionExport struct {
	CollectionName string `json:"collectionName"`
	CSV            string `json:"csv"`
	DocumentCount  int    `json:"documentCount"`
}

// CSVExport is the result of exporting a single collection.
type CSVExport struct {
	Collection    string
	Content       string
	DocumentCount int
	FileName      string
}

// BulkArchive is a ZIP built from several collections. Failed lists the
// collections that were skipped; it is nil when all of them made it in.
type BulkArchive struct {
	Data     []byte
	FileName string
	Included []string
	Failed   *sharederrors.PartialFailure
}

// CSVFileName returns "{collection}-{iso}.csv".
func CSVFileName(collection string, at time.Time) string {
	return fmt.Sprintf("%s-%s.csv", FlatFileName(collection), at.UTC().Format(ISOTimestampLayout))
}

// ArchiveFileName returns "collections-export-{iso}.zip".
func ArchiveFileName(at time.Time) string {
	return fmt.Sprintf("collections-export-%s.zip", at.UTC().Format(ISOTimestampLayout))
}
