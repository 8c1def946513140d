package model

// Field is a single key/value pair of a stored document.
type Field struct {
	Key   string
	Value interface{}
}

// Document is a schemaless record that keeps fields in database order.
// CSV headers are derived from that order, so a map is not enough here.
type Document struct {
	Fields []Field
}

// NewDocument builds a document from fields in the given order.
func NewDocument(fields ...Field) Document {
	return Document{Fields: fields}
}

// Keys returns the field names in order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Get returns the value stored under key and whether it was present.
// When a key repeats, the first occurrence wins.
func (d Document) Get(key string) (interface{}, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Len returns the number of fields.
func (d Document) Len() int {
	return len(d.Fields)
}
