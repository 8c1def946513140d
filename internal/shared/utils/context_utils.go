package utils

import (
	"context"
	"errors"

	"docdb-dashboard/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrRequestIDNotFound      = errors.New("requestID not found in context")
	ErrRequestIDNotString     = errors.New("requestID in context is not a string")
	ErrCollectionNotFound     = errors.New("collection not found in context")
	ErrCollectionNotString    = errors.New("collection in context is not a string")
	ErrEnvironmentIDNotFound  = errors.New("environmentID not found in context")
	ErrEnvironmentIDNotString = errors.New("environmentID in context is not a string")
)

func stringFromContext(ctx context.Context, key interface{}, missing, wrongType error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", missing
	}
	s, ok := val.(string)
	if !ok {
		return "", wrongType
	}
	return s, nil
}

// GetRequestIDFromContext retrieves the request ID from the context.
// It returns the request ID and an error if it is not found or is not a string.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

// GetCollectionFromContext retrieves the collection name from the context.
func GetCollectionFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.CollectionKey, ErrCollectionNotFound, ErrCollectionNotString)
}

// GetEnvironmentIDFromContext retrieves the environment ID from the context.
func GetEnvironmentIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.EnvironmentIDKey, ErrEnvironmentIDNotFound, ErrEnvironmentIDNotString)
}

// Helper functions for setting context values

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

func WithCollection(ctx context.Context, collection string) context.Context {
	return context.WithValue(ctx, contextkeys.CollectionKey, collection)
}

func WithEnvironmentID(ctx context.Context, environmentID string) context.Context {
	return context.WithValue(ctx, contextkeys.EnvironmentIDKey, environmentID)
}

func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// Utility functions for checking if values exist in context

// GetRequestIDOrDefault returns the request ID or def when absent.
func GetRequestIDOrDefault(ctx context.Context, def string) string {
	if id, err := GetRequestIDFromContext(ctx); err == nil {
		return id
	}
	return def
}

// HasCollection reports whether a collection name is set.
func HasCollection(ctx context.Context) bool {
	_, err := GetCollectionFromContext(ctx)
	return err == nil
}
