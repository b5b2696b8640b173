package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"docstore/internal/docstore/domain/model"
)

func TestFlattenExpand_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	fields := map[string]*model.FieldValue{
		"name":  model.NewFieldValue("Mountain View"),
		"pop":   model.NewFieldValue(int64(77846)),
		"area":  model.NewFieldValue(31.79),
		"cap":   model.NewFieldValue(false),
		"since": model.NewFieldValue(ts),
		"state": {ValueType: model.FieldTypeReference, Value: "states/CA"},
		"tags": {ValueType: model.FieldTypeArray, Value: &model.ArrayValue{Values: []*model.FieldValue{
			model.NewFieldValue("bay-area"),
			model.NewFieldValue(int64(7)),
		}}},
		"meta": {ValueType: model.FieldTypeMap, Value: &model.MapValue{Fields: map[string]*model.FieldValue{
			"founded": model.NewFieldValue(int64(1902)),
		}}},
	}

	back := expandFields(flattenFields(fields))

	assert.Equal(t, "Mountain View", back["name"].Value)
	assert.Equal(t, int64(77846), back["pop"].Value)
	assert.Equal(t, 31.79, back["area"].Value)
	assert.Equal(t, false, back["cap"].Value)
	assert.Equal(t, ts, back["since"].Value)
	assert.Equal(t, model.FieldTypeReference, back["state"].ValueType)
	assert.Equal(t, "states/CA", back["state"].Value)

	arr := back["tags"].Value.(*model.ArrayValue)
	require.Len(t, arr.Values, 2)
	assert.Equal(t, "bay-area", arr.Values[0].Value)
	assert.Equal(t, int64(7), arr.Values[1].Value)

	mp := back["meta"].Value.(*model.MapValue)
	assert.Equal(t, int64(1902), mp.Fields["founded"].Value)
}

func TestExpand_ToleratesDriverTypes(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	flat := map[string]interface{}{
		"since": primitive.M{"timestampValue": primitive.NewDateTimeFromTime(ts)},
		"pop":   primitive.M{"integerValue": int32(42)},
		"tags": primitive.M{"arrayValue": primitive.M{
			"values": primitive.A{primitive.M{"stringValue": "x"}},
		}},
	}

	back := expandFields(flat)
	assert.Equal(t, ts, back["since"].Value)
	assert.Equal(t, int64(42), back["pop"].Value)
	arr := back["tags"].Value.(*model.ArrayValue)
	require.Len(t, arr.Values, 1)
	assert.Equal(t, "x", arr.Values[0].Value)
}

func TestFlatten_SkipsNilAndSentinels(t *testing.T) {
	flat := flattenFields(map[string]*model.FieldValue{
		"nil":      nil,
		"sentinel": model.ServerTimestampValue(),
	})
	_, hasNil := flat["nil"]
	assert.False(t, hasNil)
	// unresolved sentinels degrade to null rather than leaking
	assert.Equal(t, map[string]interface{}{"nullValue": nil}, flat["sentinel"])
}
