package mongodb

import (
	"docdb-dashboard/internal/dashboard/domain/model"

	"go.mongodb.org/mongo-driver/bson"
)

// documentFromBSON converts a decoded document into the ordered domain form.
// Embedded documents become model.Document and arrays become []interface{};
// scalar BSON types are kept as decoded.
func documentFromBSON(d bson.D) model.Document {
	fields := make([]model.Field, 0, len(d))
	for _, e := range d {
		fields = append(fields, model.Field{Key: e.Key, Value: valueFromBSON(e.Value)})
	}
	return model.NewDocument(fields...)
}

func valueFromBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.D:
		return documentFromBSON(val)
	case bson.A:
		items := make([]interface{}, len(val))
		for i, item := range val {
			items[i] = valueFromBSON(item)
		}
		return items
	default:
		return val
	}
}

// toInt64 reads a numeric collStats field, which servers report as int32,
// int64 or double depending on magnitude.
func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}
