package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "docdb-dashboard context key " + string(c)
}

// RequestIDKey carries the per-request identifier set by the HTTP layer.
const RequestIDKey = contextKey("requestID")

// CollectionKey carries the collection an operation is working on.
const CollectionKey = contextKey("collection")

// OperationKey carries a short operation name such as "export" or "stats".
const OperationKey = contextKey("operation")

// ComponentKey carries the name of the component emitting log lines.
const ComponentKey = contextKey("component")

// EnvironmentIDKey carries the active connection profile ID.
const EnvironmentIDKey = contextKey("environmentID")
