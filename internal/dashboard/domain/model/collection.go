package model

import (
	"errors"
	"math"
)

const bytesPerMB = 1024 * 1024

// CollectionStats is what the database reports for a single collection.
type CollectionStats struct {
	DocumentCount int64   `json:"documentCount"`
	SizeInMB      float64 `json:"sizeInMB"`
}

// CollectionDescriptor is one row of the collection listing.
type CollectionDescriptor struct {
	Name          string  `json:"name"`
	DocumentCount int64   `json:"documentCount"`
	SizeInMB      float64 `json:"sizeInMB"`
}

// NewCollectionDescriptor joins a collection name with its stats.
func NewCollectionDescriptor(name string, stats CollectionStats) CollectionDescriptor {
	return CollectionDescriptor{
		Name:          name,
		DocumentCount: stats.DocumentCount,
		SizeInMB:      stats.SizeInMB,
	}
}

// NewCollectionStats converts raw collStats numbers, clamping negatives to zero.
func NewCollectionStats(count, sizeBytes int64) CollectionStats {
	if count < 0 {
		count = 0
	}
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	return CollectionStats{
		DocumentCount: count,
		SizeInMB:      SizeInMB(sizeBytes),
	}
}

// SizeInMB converts a byte count to megabytes rounded to two decimals.
func SizeInMB(sizeBytes int64) float64 {
	return math.Round(float64(sizeBytes)/bytesPerMB*100) / 100
}

var (
	ErrInvalidCollectionName = errors.New("invalid collection name")
	ErrNoCollections         = errors.New("no collections specified")
)

// ValidateCollectionName rejects names that cannot address a collection.
func ValidateCollectionName(name string) error {
	if name == "" {
		return ErrInvalidCollectionName
	}
	for _, r := range name {
		if r == 0 {
			return ErrInvalidCollectionName
		}
	}
	return nil
}
