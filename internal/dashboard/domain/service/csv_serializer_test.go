package service

import (
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func doc(kv ...interface{}) model.Document {
	fields := make([]model.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, model.Field{Key: kv[i].(string), Value: kv[i+1]})
	}
	return model.NewDocument(fields...)
}

func TestCSVSerializer(t *testing.T) {
	serializer := NewCSVSerializer()

	t.Run("single document", func(t *testing.T) {
		out, err := serializer.ToCSV([]model.Document{doc("a", int32(1), "b", int32(2))})
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n", out)
	})

	t.Run("empty input yields empty payload", func(t *testing.T) {
		out, err := serializer.ToCSV(nil)
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("header follows first document order", func(t *testing.T) {
		docs := []model.Document{
			doc("name", "Ann", "age", int64(30), "city", "Oslo"),
			doc("age", int64(41), "name", "Bo"),
			doc("extra", true, "name", "Cy"),
		}
		out, err := serializer.ToCSV(docs)
		require.NoError(t, err)
		assert.Equal(t, "name,age,city\nAnn,30,Oslo\nBo,41,\nCy,,\n", out)
	})

	t.Run("row count equals document count", func(t *testing.T) {
		docs := []model.Document{doc("x", 1), doc("x", 2), doc("x", 3)}
		out, err := serializer.ToCSV(docs)
		require.NoError(t, err)

		records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 4)
		assert.Equal(t, []string{"x"}, records[0])
	})

	t.Run("quotes delimiters quotes and newlines", func(t *testing.T) {
		docs := []model.Document{doc("note", `say "hi", then`, "multi", "line1\nline2")}
		out, err := serializer.ToCSV(docs)
		require.NoError(t, err)
		assert.Equal(t, "note,multi\n\"say \"\"hi\"\", then\",\"line1\nline2\"\n", out)

		records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, `say "hi", then`, records[1][0])
		assert.Equal(t, "line1\nline2", records[1][1])
	})

	t.Run("repeated keys in first document appear once", func(t *testing.T) {
		out, err := serializer.ToCSV([]model.Document{doc("a", 1, "a", 2, "b", 3)})
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,3\n", out)
	})

	t.Run("unencodable nested value is a serialization error", func(t *testing.T) {
		_, err := serializer.ToCSV([]model.Document{doc("n", bson.A{func() {}})})
		require.Error(t, err)
		assert.True(t, errors.IsSerialization(err))
	})
}

func TestFormatValue(t *testing.T) {
	oid, err := primitive.ObjectIDFromHex("65f1c0ffee0000000000abcd")
	require.NoError(t, err)
	when := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	dec, err := primitive.ParseDecimal128("12.50")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"bson null", primitive.Null{}, ""},
		{"string", "plain", "plain"},
		{"bool", true, "true"},
		{"int32", int32(-7), "-7"},
		{"int64", int64(9007199254740993), "9007199254740993"},
		{"float", 1.5, "1.5"},
		{"whole float", float64(3), "3"},
		{"large float", 1e21, "1000000000000000000000"},
		{"object id", oid, "65f1c0ffee0000000000abcd"},
		{"datetime", primitive.NewDateTimeFromTime(when), "2024-01-02T03:04:05.006Z"},
		{"time", when.In(time.FixedZone("CET", 3600)), "2024-01-02T03:04:05.006Z"},
		{"decimal", dec, "12.50"},
		{"binary", primitive.Binary{Data: []byte("hi")}, "aGk="},
		{"nested document", model.NewDocument(model.Field{Key: "z", Value: int32(1)}, model.Field{Key: "a", Value: "x<y"}), `{"z":1,"a":"x<y"}`},
		{"bson document", bson.D{{Key: "k", Value: bson.A{int32(1), "two", nil}}}, `{"k":[1,"two",null]}`},
		{"map sorted", map[string]interface{}{"b": 2, "a": 1}, `{"a":1,"b":2}`},
		{"array with id", []interface{}{oid, 2.25}, `[{"$oid":"65f1c0ffee0000000000abcd"},2.25]`},
		{"nested date", bson.D{{Key: "at", Value: primitive.NewDateTimeFromTime(when)}}, `{"at":{"$date":"2024-01-02T03:04:05.006Z"}}`},
		{"nested nan", bson.A{math.NaN(), 3.0}, `[{"$numberDouble":"NaN"},3.0]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
