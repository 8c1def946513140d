package usecase

import (
	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/shared/errors"
)

// Request DTOs for the dashboard usecase

// BulkExportRequest is the body of both bulk export endpoints
type BulkExportRequest struct {
	Collections []string `json:"collections"`
}

// ExportCollectionRequest names a single collection to export
type ExportCollectionRequest struct {
	Collection string `json:"collection"`
}

// Validate checks the collection name
func (r ExportCollectionRequest) Validate() error {
	if err := model.ValidateCollectionName(r.Collection); err != nil {
		return errors.NewValidationError("invalid collection name").WithCause(err).WithDetail("collection", r.Collection)
	}
	return nil
}

// Names validates the request and returns the collection names with repeats
// removed, keeping the first occurrence.
func (r BulkExportRequest) Names() ([]string, error) {
	if len(r.Collections) == 0 {
		return nil, errors.NewValidationError("no collections specified").WithCause(model.ErrNoCollections)
	}

	ve := errors.NewValidationErrors()
	seen := make(map[string]struct{}, len(r.Collections))
	names := make([]string, 0, len(r.Collections))
	for i, name := range r.Collections {
		if err := model.ValidateCollectionName(name); err != nil {
			ve.Add("collections", "invalid collection name", i)
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if ve.HasErrors() {
		return nil, ve
	}
	return names, nil
}
