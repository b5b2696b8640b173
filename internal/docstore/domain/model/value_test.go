package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFromWire_Scalars(t *testing.T) {
	fv, err := ValueFromWire(map[string]interface{}{"stringValue": "Mountain View"})
	require.NoError(t, err)
	assert.Equal(t, FieldTypeString, fv.ValueType)
	assert.Equal(t, "Mountain View", fv.Value)

	fv, err = ValueFromWire(map[string]interface{}{"integerValue": "77846"})
	require.NoError(t, err)
	assert.Equal(t, FieldTypeInt, fv.ValueType)
	assert.Equal(t, int64(77846), fv.Value)

	fv, err = ValueFromWire(map[string]interface{}{"doubleValue": 3.5})
	require.NoError(t, err)
	assert.Equal(t, FieldTypeDouble, fv.ValueType)

	fv, err = ValueFromWire(map[string]interface{}{"booleanValue": true})
	require.NoError(t, err)
	assert.Equal(t, true, fv.Value)

	fv, err = ValueFromWire(map[string]interface{}{"nullValue": nil})
	require.NoError(t, err)
	assert.Equal(t, FieldTypeNull, fv.ValueType)
}

func TestValueFromWire_Timestamp(t *testing.T) {
	fv, err := ValueFromWire(map[string]interface{}{"timestampValue": "2026-01-02T03:04:05.000000006Z"})
	require.NoError(t, err)
	assert.Equal(t, FieldTypeTimestamp, fv.ValueType)
	ts := fv.Value.(time.Time)
	assert.Equal(t, 2026, ts.Year())
	assert.Equal(t, 6, ts.Nanosecond())
}

func TestValueFromWire_Reference(t *testing.T) {
	fv, err := ValueFromWire(map[string]interface{}{"referenceValue": "states/CA"})
	require.NoError(t, err)
	assert.Equal(t, FieldTypeReference, fv.ValueType)
	assert.Equal(t, "states/CA", fv.Value)
}

func TestValueFromWire_ServerTimestampSentinel(t *testing.T) {
	fv, err := ValueFromWire(map[string]interface{}{"serverTimestampValue": true})
	require.NoError(t, err)
	assert.Equal(t, FieldTypeServerTimestamp, fv.ValueType)
}

func TestValueFromWire_Invalid(t *testing.T) {
	_, err := ValueFromWire("plain string")
	assert.Error(t, err)

	_, err = ValueFromWire(map[string]interface{}{"unknownValue": 1})
	assert.Error(t, err)

	_, err = ValueFromWire(map[string]interface{}{"integerValue": "not-a-number"})
	assert.Error(t, err)
}

func TestWireRoundTrip_NestedStructures(t *testing.T) {
	wire := map[string]interface{}{
		"name": map[string]interface{}{"stringValue": "Mountain View"},
		"tags": map[string]interface{}{
			"arrayValue": map[string]interface{}{
				"values": []interface{}{
					map[string]interface{}{"stringValue": "bay-area"},
					map[string]interface{}{"integerValue": "1"},
				},
			},
		},
		"meta": map[string]interface{}{
			"mapValue": map[string]interface{}{
				"fields": map[string]interface{}{
					"founded": map[string]interface{}{"integerValue": "1902"},
				},
			},
		},
	}

	fields, err := FieldsFromWire(wire)
	require.NoError(t, err)

	back := FieldsToWire(fields)
	assert.Equal(t, wire["name"], back["name"])
	assert.Equal(t, wire["tags"], back["tags"])
	assert.Equal(t, wire["meta"], back["meta"])
}

func TestFieldValue_JSONMarshalling(t *testing.T) {
	fv := NewFieldValue(int64(42))
	data, err := json.Marshal(fv)
	require.NoError(t, err)
	assert.JSONEq(t, `{"integerValue":"42"}`, string(data))

	var decoded FieldValue
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, FieldTypeInt, decoded.ValueType)
	assert.Equal(t, int64(42), decoded.Value)
}

func TestResolveServerTimestamps_AnyDepth(t *testing.T) {
	commit := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	fields := map[string]*FieldValue{
		"createdAt": ServerTimestampValue(),
		"meta": {
			ValueType: FieldTypeMap,
			Value: &MapValue{Fields: map[string]*FieldValue{
				"touchedAt": ServerTimestampValue(),
			}},
		},
		"history": {
			ValueType: FieldTypeArray,
			Value: &ArrayValue{Values: []*FieldValue{
				ServerTimestampValue(),
				NewFieldValue("kept"),
			}},
		},
	}

	ResolveServerTimestamps(fields, commit)

	assert.Equal(t, FieldTypeTimestamp, fields["createdAt"].ValueType)
	assert.Equal(t, commit, fields["createdAt"].Value)

	nested := fields["meta"].Value.(*MapValue).Fields["touchedAt"]
	assert.Equal(t, FieldTypeTimestamp, nested.ValueType)
	assert.Equal(t, commit, nested.Value)

	arr := fields["history"].Value.(*ArrayValue)
	assert.Equal(t, FieldTypeTimestamp, arr.Values[0].ValueType)
	assert.Equal(t, "kept", arr.Values[1].Value)
}

func TestNewFieldValue_NativeTypes(t *testing.T) {
	assert.Equal(t, FieldTypeInt, NewFieldValue(7).ValueType)
	assert.Equal(t, int64(7), NewFieldValue(7).Value)
	assert.Equal(t, FieldTypeDouble, NewFieldValue(1.5).ValueType)
	assert.Equal(t, FieldTypeBool, NewFieldValue(true).ValueType)
	assert.Equal(t, FieldTypeNull, NewFieldValue(nil).ValueType)
	assert.Equal(t, FieldTypeTimestamp, NewFieldValue(time.Now()).ValueType)
}

func TestToInterface_Containers(t *testing.T) {
	fv := &FieldValue{
		ValueType: FieldTypeArray,
		Value: &ArrayValue{Values: []*FieldValue{
			NewFieldValue("a"),
			{ValueType: FieldTypeMap, Value: &MapValue{Fields: map[string]*FieldValue{
				"n": NewFieldValue(int64(1)),
			}}},
		}},
	}
	native := fv.ToInterface().([]interface{})
	assert.Equal(t, "a", native[0])
	assert.Equal(t, map[string]interface{}{"n": int64(1)}, native[1])
}
