package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"docstore/internal/shared/errors"
)

// FieldType identifies the wire type of a field value.
type FieldType string

const (
	FieldTypeNull      FieldType = "null"
	FieldTypeBool      FieldType = "boolean"
	FieldTypeInt       FieldType = "integer"
	FieldTypeDouble    FieldType = "double"
	FieldTypeString    FieldType = "string"
	FieldTypeBytes     FieldType = "bytes"
	FieldTypeTimestamp FieldType = "timestamp"
	FieldTypeGeoPoint  FieldType = "geopoint"
	FieldTypeReference FieldType = "reference"
	FieldTypeArray     FieldType = "array"
	FieldTypeMap       FieldType = "map"

	// FieldTypeServerTimestamp is the write-only sentinel replaced with the
	// commit-time timestamp before persisting. It never appears in a read.
	FieldTypeServerTimestamp FieldType = "serverTimestamp"
)

// FieldValue is a typed document field value.
//
// Value holds, per ValueType: bool, int64, float64, string (string/bytes/
// reference), time.Time, *GeoPoint, *ArrayValue or *MapValue. Null and
// serverTimestamp carry nil.
type FieldValue struct {
	ValueType FieldType
	Value     interface{}
}

// ArrayValue holds an ordered list of field values.
type ArrayValue struct {
	Values []*FieldValue
}

// MapValue holds a nested field mapping.
type MapValue struct {
	Fields map[string]*FieldValue
}

// GeoPoint represents a geographical point.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// NewFieldValue builds a FieldValue for a native Go value.
func NewFieldValue(v interface{}) *FieldValue {
	switch val := v.(type) {
	case nil:
		return &FieldValue{ValueType: FieldTypeNull}
	case bool:
		return &FieldValue{ValueType: FieldTypeBool, Value: val}
	case int:
		return &FieldValue{ValueType: FieldTypeInt, Value: int64(val)}
	case int32:
		return &FieldValue{ValueType: FieldTypeInt, Value: int64(val)}
	case int64:
		return &FieldValue{ValueType: FieldTypeInt, Value: val}
	case float64:
		return &FieldValue{ValueType: FieldTypeDouble, Value: val}
	case string:
		return &FieldValue{ValueType: FieldTypeString, Value: val}
	case []byte:
		return &FieldValue{ValueType: FieldTypeBytes, Value: string(val)}
	case time.Time:
		return &FieldValue{ValueType: FieldTypeTimestamp, Value: val.UTC()}
	case *GeoPoint:
		return &FieldValue{ValueType: FieldTypeGeoPoint, Value: val}
	default:
		return &FieldValue{ValueType: FieldTypeString, Value: fmt.Sprintf("%v", v)}
	}
}

// ServerTimestampValue returns the server-timestamp sentinel.
func ServerTimestampValue() *FieldValue {
	return &FieldValue{ValueType: FieldTypeServerTimestamp}
}

// ToInterface returns the native Go value for the field.
func (fv *FieldValue) ToInterface() interface{} {
	if fv == nil {
		return nil
	}
	switch fv.ValueType {
	case FieldTypeArray:
		arr, _ := fv.Value.(*ArrayValue)
		if arr == nil {
			return []interface{}{}
		}
		out := make([]interface{}, 0, len(arr.Values))
		for _, v := range arr.Values {
			out = append(out, v.ToInterface())
		}
		return out
	case FieldTypeMap:
		mp, _ := fv.Value.(*MapValue)
		if mp == nil {
			return map[string]interface{}{}
		}
		out := make(map[string]interface{}, len(mp.Fields))
		for k, v := range mp.Fields {
			out[k] = v.ToInterface()
		}
		return out
	default:
		return fv.Value
	}
}

// wire value keys, Firestore REST style
const (
	wireNull            = "nullValue"
	wireBool            = "booleanValue"
	wireInt             = "integerValue"
	wireDouble          = "doubleValue"
	wireString          = "stringValue"
	wireBytes           = "bytesValue"
	wireTimestamp       = "timestampValue"
	wireGeoPoint        = "geoPointValue"
	wireReference       = "referenceValue"
	wireArray           = "arrayValue"
	wireMap             = "mapValue"
	wireServerTimestamp = "serverTimestampValue"
)

// ToWire converts the value to its wire (JSON) representation.
func (fv *FieldValue) ToWire() interface{} {
	if fv == nil {
		return map[string]interface{}{wireNull: nil}
	}
	switch fv.ValueType {
	case FieldTypeNull:
		return map[string]interface{}{wireNull: nil}
	case FieldTypeBool:
		return map[string]interface{}{wireBool: fv.Value}
	case FieldTypeInt:
		// Integers travel as decimal strings to survive JSON number precision.
		i, _ := fv.Value.(int64)
		return map[string]interface{}{wireInt: strconv.FormatInt(i, 10)}
	case FieldTypeDouble:
		return map[string]interface{}{wireDouble: fv.Value}
	case FieldTypeString:
		return map[string]interface{}{wireString: fv.Value}
	case FieldTypeBytes:
		s, _ := fv.Value.(string)
		return map[string]interface{}{wireBytes: base64.StdEncoding.EncodeToString([]byte(s))}
	case FieldTypeTimestamp:
		t, _ := fv.Value.(time.Time)
		return map[string]interface{}{wireTimestamp: t.UTC().Format(time.RFC3339Nano)}
	case FieldTypeGeoPoint:
		return map[string]interface{}{wireGeoPoint: fv.Value}
	case FieldTypeReference:
		return map[string]interface{}{wireReference: fv.Value}
	case FieldTypeServerTimestamp:
		return map[string]interface{}{wireServerTimestamp: true}
	case FieldTypeArray:
		arr, _ := fv.Value.(*ArrayValue)
		values := make([]interface{}, 0)
		if arr != nil {
			for _, v := range arr.Values {
				values = append(values, v.ToWire())
			}
		}
		return map[string]interface{}{wireArray: map[string]interface{}{"values": values}}
	case FieldTypeMap:
		mp, _ := fv.Value.(*MapValue)
		fields := make(map[string]interface{})
		if mp != nil {
			for k, v := range mp.Fields {
				fields[k] = v.ToWire()
			}
		}
		return map[string]interface{}{wireMap: map[string]interface{}{"fields": fields}}
	default:
		return map[string]interface{}{wireNull: nil}
	}
}

// ValueFromWire parses a wire (JSON) value into a FieldValue.
func ValueFromWire(raw interface{}) (*FieldValue, error) {
	valueMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.NewValidationError("field value must be a typed wire object").
			WithDetail("value", raw)
	}

	if _, exists := valueMap[wireNull]; exists {
		return &FieldValue{ValueType: FieldTypeNull}, nil
	}
	if v, exists := valueMap[wireBool]; exists {
		b, ok := v.(bool)
		if !ok {
			return nil, errors.NewValidationError("booleanValue must be a boolean")
		}
		return &FieldValue{ValueType: FieldTypeBool, Value: b}, nil
	}
	if v, exists := valueMap[wireInt]; exists {
		switch n := v.(type) {
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, errors.NewValidationError("integerValue is not a valid integer").WithCause(err)
			}
			return &FieldValue{ValueType: FieldTypeInt, Value: i}, nil
		case float64:
			return &FieldValue{ValueType: FieldTypeInt, Value: int64(n)}, nil
		case json.Number:
			i, err := n.Int64()
			if err != nil {
				return nil, errors.NewValidationError("integerValue is not a valid integer").WithCause(err)
			}
			return &FieldValue{ValueType: FieldTypeInt, Value: i}, nil
		default:
			return nil, errors.NewValidationError("integerValue has unsupported encoding")
		}
	}
	if v, exists := valueMap[wireDouble]; exists {
		f, ok := v.(float64)
		if !ok {
			return nil, errors.NewValidationError("doubleValue must be a number")
		}
		return &FieldValue{ValueType: FieldTypeDouble, Value: f}, nil
	}
	if v, exists := valueMap[wireString]; exists {
		s, ok := v.(string)
		if !ok {
			return nil, errors.NewValidationError("stringValue must be a string")
		}
		return &FieldValue{ValueType: FieldTypeString, Value: s}, nil
	}
	if v, exists := valueMap[wireBytes]; exists {
		s, ok := v.(string)
		if !ok {
			return nil, errors.NewValidationError("bytesValue must be a base64 string")
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, errors.NewValidationError("bytesValue is not valid base64").WithCause(err)
		}
		return &FieldValue{ValueType: FieldTypeBytes, Value: string(decoded)}, nil
	}
	if v, exists := valueMap[wireTimestamp]; exists {
		switch ts := v.(type) {
		case string:
			t, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil {
				if t, err = time.Parse(time.RFC3339, ts); err != nil {
					return nil, errors.NewValidationError("timestampValue is not RFC3339").WithCause(err)
				}
			}
			return &FieldValue{ValueType: FieldTypeTimestamp, Value: t.UTC()}, nil
		case time.Time:
			return &FieldValue{ValueType: FieldTypeTimestamp, Value: ts.UTC()}, nil
		default:
			return nil, errors.NewValidationError("timestampValue has unsupported encoding")
		}
	}
	if v, exists := valueMap[wireGeoPoint]; exists {
		gp, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.NewValidationError("geoPointValue must be an object")
		}
		lat, _ := gp["latitude"].(float64)
		lng, _ := gp["longitude"].(float64)
		return &FieldValue{ValueType: FieldTypeGeoPoint, Value: &GeoPoint{Latitude: lat, Longitude: lng}}, nil
	}
	if v, exists := valueMap[wireReference]; exists {
		s, ok := v.(string)
		if !ok {
			return nil, errors.NewValidationError("referenceValue must be a path string")
		}
		return &FieldValue{ValueType: FieldTypeReference, Value: s}, nil
	}
	if _, exists := valueMap[wireServerTimestamp]; exists {
		return &FieldValue{ValueType: FieldTypeServerTimestamp}, nil
	}
	if v, exists := valueMap[wireArray]; exists {
		inner, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.NewValidationError("arrayValue must be an object with values")
		}
		arr := &ArrayValue{}
		if rawValues, ok := inner["values"].([]interface{}); ok {
			for _, rv := range rawValues {
				parsed, err := ValueFromWire(rv)
				if err != nil {
					return nil, err
				}
				arr.Values = append(arr.Values, parsed)
			}
		}
		return &FieldValue{ValueType: FieldTypeArray, Value: arr}, nil
	}
	if v, exists := valueMap[wireMap]; exists {
		inner, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.NewValidationError("mapValue must be an object with fields")
		}
		mp := &MapValue{Fields: make(map[string]*FieldValue)}
		if rawFields, ok := inner["fields"].(map[string]interface{}); ok {
			for k, rv := range rawFields {
				parsed, err := ValueFromWire(rv)
				if err != nil {
					return nil, err
				}
				mp.Fields[k] = parsed
			}
		}
		return &FieldValue{ValueType: FieldTypeMap, Value: mp}, nil
	}

	return nil, errors.NewValidationError("unknown wire value type").WithDetail("value", raw)
}

// FieldsFromWire parses a wire fields mapping.
func FieldsFromWire(raw map[string]interface{}) (map[string]*FieldValue, error) {
	fields := make(map[string]*FieldValue, len(raw))
	for k, v := range raw {
		parsed, err := ValueFromWire(v)
		if err != nil {
			return nil, err
		}
		fields[k] = parsed
	}
	return fields, nil
}

// FieldsToWire converts a field mapping to its wire representation.
func FieldsToWire(fields map[string]*FieldValue) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v.ToWire()
	}
	return out
}

// MarshalJSON encodes the value in wire form.
func (fv *FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(fv.ToWire())
}

// UnmarshalJSON decodes the value from wire form.
func (fv *FieldValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueFromWire(raw)
	if err != nil {
		return err
	}
	*fv = *parsed
	return nil
}

// ResolveServerTimestamps replaces every server-timestamp sentinel in fields,
// at any nesting depth, with the given commit time. All sentinels in one
// write observe the same commit time.
func ResolveServerTimestamps(fields map[string]*FieldValue, commitTime time.Time) {
	for _, fv := range fields {
		resolveValue(fv, commitTime)
	}
}

func resolveValue(fv *FieldValue, commitTime time.Time) {
	if fv == nil {
		return
	}
	switch fv.ValueType {
	case FieldTypeServerTimestamp:
		fv.ValueType = FieldTypeTimestamp
		fv.Value = commitTime.UTC()
	case FieldTypeArray:
		if arr, ok := fv.Value.(*ArrayValue); ok && arr != nil {
			for _, v := range arr.Values {
				resolveValue(v, commitTime)
			}
		}
	case FieldTypeMap:
		if mp, ok := fv.Value.(*MapValue); ok && mp != nil {
			for _, v := range mp.Fields {
				resolveValue(v, commitTime)
			}
		}
	}
}
