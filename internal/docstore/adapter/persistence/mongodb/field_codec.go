package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"docstore/internal/docstore/domain/model"
)

// BSON storage mirrors the wire structure ({"stringValue": ...}) but keeps
// integers as int64 and timestamps as Mongo dates so range queries work.

func flattenFields(fields map[string]*model.FieldValue) map[string]interface{} {
	result := make(map[string]interface{}, len(fields))
	for key, fv := range fields {
		if fv == nil {
			continue
		}
		result[key] = flattenValue(fv)
	}
	return result
}

func flattenValue(fv *model.FieldValue) interface{} {
	switch fv.ValueType {
	case model.FieldTypeNull:
		return map[string]interface{}{"nullValue": nil}
	case model.FieldTypeBool:
		return map[string]interface{}{"booleanValue": fv.Value}
	case model.FieldTypeInt:
		return map[string]interface{}{"integerValue": fv.Value}
	case model.FieldTypeDouble:
		return map[string]interface{}{"doubleValue": fv.Value}
	case model.FieldTypeString:
		return map[string]interface{}{"stringValue": fv.Value}
	case model.FieldTypeBytes:
		s, _ := fv.Value.(string)
		return map[string]interface{}{"bytesValue": []byte(s)}
	case model.FieldTypeTimestamp:
		return map[string]interface{}{"timestampValue": fv.Value}
	case model.FieldTypeGeoPoint:
		gp, _ := fv.Value.(*model.GeoPoint)
		if gp == nil {
			return map[string]interface{}{"nullValue": nil}
		}
		return map[string]interface{}{"geoPointValue": map[string]interface{}{
			"latitude":  gp.Latitude,
			"longitude": gp.Longitude,
		}}
	case model.FieldTypeReference:
		return map[string]interface{}{"referenceValue": fv.Value}
	case model.FieldTypeArray:
		arr, _ := fv.Value.(*model.ArrayValue)
		values := make([]interface{}, 0)
		if arr != nil {
			for _, v := range arr.Values {
				values = append(values, flattenValue(v))
			}
		}
		return map[string]interface{}{"arrayValue": map[string]interface{}{"values": values}}
	case model.FieldTypeMap:
		mp, _ := fv.Value.(*model.MapValue)
		fields := map[string]interface{}{}
		if mp != nil {
			fields = flattenFields(mp.Fields)
		}
		return map[string]interface{}{"mapValue": map[string]interface{}{"fields": fields}}
	default:
		// Sentinels must be resolved before they reach persistence.
		return map[string]interface{}{"nullValue": nil}
	}
}

func expandFields(flat map[string]interface{}) map[string]*model.FieldValue {
	result := make(map[string]*model.FieldValue, len(flat))
	for key, value := range flat {
		if fv := expandValue(value); fv != nil {
			result[key] = fv
		}
	}
	return result
}

func expandValue(raw interface{}) *model.FieldValue {
	valueMap := asStringMap(raw)
	if valueMap == nil {
		return nil
	}

	if _, ok := valueMap["nullValue"]; ok {
		return &model.FieldValue{ValueType: model.FieldTypeNull}
	}
	if v, ok := valueMap["booleanValue"]; ok {
		b, _ := v.(bool)
		return &model.FieldValue{ValueType: model.FieldTypeBool, Value: b}
	}
	if v, ok := valueMap["integerValue"]; ok {
		return &model.FieldValue{ValueType: model.FieldTypeInt, Value: asInt64(v)}
	}
	if v, ok := valueMap["doubleValue"]; ok {
		f, _ := v.(float64)
		return &model.FieldValue{ValueType: model.FieldTypeDouble, Value: f}
	}
	if v, ok := valueMap["stringValue"]; ok {
		s, _ := v.(string)
		return &model.FieldValue{ValueType: model.FieldTypeString, Value: s}
	}
	if v, ok := valueMap["bytesValue"]; ok {
		return &model.FieldValue{ValueType: model.FieldTypeBytes, Value: string(asBytes(v))}
	}
	if v, ok := valueMap["timestampValue"]; ok {
		return &model.FieldValue{ValueType: model.FieldTypeTimestamp, Value: asTime(v)}
	}
	if v, ok := valueMap["geoPointValue"]; ok {
		gp := asStringMap(v)
		lat, _ := gp["latitude"].(float64)
		lng, _ := gp["longitude"].(float64)
		return &model.FieldValue{ValueType: model.FieldTypeGeoPoint, Value: &model.GeoPoint{Latitude: lat, Longitude: lng}}
	}
	if v, ok := valueMap["referenceValue"]; ok {
		s, _ := v.(string)
		return &model.FieldValue{ValueType: model.FieldTypeReference, Value: s}
	}
	if v, ok := valueMap["arrayValue"]; ok {
		inner := asStringMap(v)
		arr := &model.ArrayValue{}
		for _, rv := range asSlice(inner["values"]) {
			if fv := expandValue(rv); fv != nil {
				arr.Values = append(arr.Values, fv)
			}
		}
		return &model.FieldValue{ValueType: model.FieldTypeArray, Value: arr}
	}
	if v, ok := valueMap["mapValue"]; ok {
		inner := asStringMap(v)
		mp := &model.MapValue{Fields: expandFields(asStringMap(inner["fields"]))}
		return &model.FieldValue{ValueType: model.FieldTypeMap, Value: mp}
	}

	return nil
}

// asStringMap tolerates the driver decoding nested documents as bson.M,
// primitive.M or plain maps.
func asStringMap(raw interface{}) map[string]interface{} {
	switch m := raw.(type) {
	case map[string]interface{}:
		return m
	case primitive.M:
		return map[string]interface{}(m)
	default:
		return nil
	}
}

func asSlice(raw interface{}) []interface{} {
	switch s := raw.(type) {
	case []interface{}:
		return s
	case primitive.A:
		return []interface{}(s)
	default:
		return nil
	}
}

func asInt64(raw interface{}) int64 {
	switch n := raw.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asBytes(raw interface{}) []byte {
	switch b := raw.(type) {
	case []byte:
		return b
	case primitive.Binary:
		return b.Data
	case string:
		return []byte(b)
	default:
		return nil
	}
}

func asTime(raw interface{}) time.Time {
	switch t := raw.(type) {
	case time.Time:
		return t.UTC()
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return time.Time{}
	}
}
