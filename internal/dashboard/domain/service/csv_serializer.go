package service

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dateLayout renders BSON dates as RFC 3339 UTC with millisecond precision.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// CSVSerializer turns an ordered document set into CSV text
type CSVSerializer interface {
	// ToCSV renders the header from the first document's keys followed by one
	// row per document. An empty document set yields "".
	ToCSV(docs []model.Document) (string, error)
}

type csvSerializer struct{}

// NewCSVSerializer creates the comma-delimited, LF-terminated serializer
func NewCSVSerializer() CSVSerializer {
	return &csvSerializer{}
}

func (s *csvSerializer) ToCSV(docs []model.Document) (string, error) {
	if len(docs) == 0 {
		return "", nil
	}

	header := headerFrom(docs[0])

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = false

	if err := w.Write(header); err != nil {
		return "", errors.NewSerializationError("failed to write CSV header").WithCause(err)
	}

	row := make([]string, len(header))
	for i, doc := range docs {
		for j, key := range header {
			v, ok := doc.Get(key)
			if !ok {
				row[j] = ""
				continue
			}
			cell, err := FormatValue(v)
			if err != nil {
				return "", errors.NewSerializationError("failed to format CSV value").
					WithCause(err).
					WithDetail("row", i).
					WithDetail("field", key)
			}
			row[j] = cell
		}
		if err := w.Write(row); err != nil {
			return "", errors.NewSerializationError("failed to write CSV row").WithCause(err).WithDetail("row", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.NewSerializationError("failed to flush CSV output").WithCause(err)
	}
	return buf.String(), nil
}

// headerFrom returns the first document's keys without repeats.
func headerFrom(doc model.Document) []string {
	seen := make(map[string]struct{}, doc.Len())
	header := make([]string, 0, doc.Len())
	for _, key := range doc.Keys() {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		header = append(header, key)
	}
	return header
}

// FormatValue renders a single document value as CSV cell text.
func FormatValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float32:
		return formatFloat(float64(val)), nil
	case float64:
		return formatFloat(val), nil
	case primitive.ObjectID:
		return val.Hex(), nil
	case primitive.DateTime:
		return val.Time().UTC().Format(dateLayout), nil
	case time.Time:
		return val.UTC().Format(dateLayout), nil
	case primitive.Decimal128:
		return val.String(), nil
	case primitive.Binary:
		return base64.StdEncoding.EncodeToString(val.Data), nil
	case primitive.Regex:
		return val.String(), nil
	case primitive.Symbol:
		return string(val), nil
	case primitive.JavaScript:
		return string(val), nil
	case model.Document, bson.D, bson.A, bson.M, []interface{}, map[string]interface{}:
		return compactJSON(val)
	default:
		return fmt.Sprint(val), nil
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// compactJSON renders nested values as relaxed Extended JSON, keeping
// document field order. Top-level arrays are not valid ExtJSON documents,
// so the value is marshalled under a single wrapper key and unwrapped.
func compactJSON(v interface{}) (string, error) {
	out, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: toBSON(v)}}, false, false)
	if err != nil {
		return "", err
	}
	return string(out[len(`{"v":`) : len(out)-1]), nil
}

// toBSON converts domain documents to bson.D and plain maps to key-sorted
// bson.D so the encoder sees ordered input everywhere.
func toBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case model.Document:
		return fieldsToBSON(val.Fields)
	case bson.D:
		fields := make([]model.Field, 0, len(val))
		for _, e := range val {
			fields = append(fields, model.Field{Key: e.Key, Value: e.Value})
		}
		return fieldsToBSON(fields)
	case bson.M:
		return mapToBSON(val)
	case map[string]interface{}:
		return mapToBSON(val)
	case bson.A:
		return arrayToBSON(val)
	case []interface{}:
		return arrayToBSON(val)
	default:
		return val
	}
}

func fieldsToBSON(fields []model.Field) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		d = append(d, bson.E{Key: f.Key, Value: toBSON(f.Value)})
	}
	return d
}

func mapToBSON(m map[string]interface{}) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: toBSON(m[k])})
	}
	return d
}

func arrayToBSON(items []interface{}) bson.A {
	a := make(bson.A, len(items))
	for i, item := range items {
		a[i] = toBSON(item)
	}
	return a
}
