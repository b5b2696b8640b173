package client

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// GeoPoint is a geographical point field value.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// wire value keys, Firestore REST style. These mirror the backend's typed
// value encoding.
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

// encodeFields converts a native field mapping into wire form.
func encodeFields(data map[string]interface{}) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k == "" {
			return nil, fmt.Errorf("docstore: empty field name")
		}
		encoded, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		fields[k] = encoded
	}
	return fields, nil
}

// encodeValue converts one native value into its typed wire object.
func encodeValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return map[string]interface{}{wireNull: nil}, nil
	case sentinel:
		if val != ServerTimestamp {
			return nil, fmt.Errorf("docstore: unknown sentinel %d", val)
		}
		return map[string]interface{}{wireServerTimestamp: true}, nil
	case bool:
		return map[string]interface{}{wireBool: val}, nil
	case int:
		return map[string]interface{}{wireInt: strconv.FormatInt(int64(val), 10)}, nil
	case int32:
		return map[string]interface{}{wireInt: strconv.FormatInt(int64(val), 10)}, nil
	case int64:
		return map[string]interface{}{wireInt: strconv.FormatInt(val, 10)}, nil
	case float32:
		return map[string]interface{}{wireDouble: float64(val)}, nil
	case float64:
		return map[string]interface{}{wireDouble: val}, nil
	case string:
		return map[string]interface{}{wireString: val}, nil
	case []byte:
		return map[string]interface{}{wireBytes: base64.StdEncoding.EncodeToString(val)}, nil
	case time.Time:
		return map[string]interface{}{wireTimestamp: val.UTC().Format(time.RFC3339Nano)}, nil
	case GeoPoint:
		return map[string]interface{}{wireGeoPoint: map[string]interface{}{
			"latitude":  val.Latitude,
			"longitude": val.Longitude,
		}}, nil
	case *GeoPoint:
		if val == nil {
			return map[string]interface{}{wireNull: nil}, nil
		}
		return encodeValue(*val)
	case *DocumentRef:
		if val == nil {
			return map[string]interface{}{wireNull: nil}, nil
		}
		if val.err != nil {
			return nil, val.err
		}
		return map[string]interface{}{wireReference: val.Path}, nil
	case map[string]interface{}:
		fields, err := encodeFields(val)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{wireMap: map[string]interface{}{"fields": fields}}, nil
	case []interface{}:
		values := make([]interface{}, 0, len(val))
		for _, item := range val {
			encoded, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			values = append(values, encoded)
		}
		return map[string]interface{}{wireArray: map[string]interface{}{"values": values}}, nil
	}

	// Typed slices and string-keyed maps arrive from converters; handle them
	// reflectively.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		values := make([]interface{}, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			encoded, err := encodeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			values = append(values, encoded)
		}
		return map[string]interface{}{wireArray: map[string]interface{}{"values": values}}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("docstore: unsupported map key type %s", rv.Type().Key())
		}
		fields := make(map[string]interface{}, rv.Len())
		for _, key := range rv.MapKeys() {
			encoded, err := encodeValue(rv.MapIndex(key).Interface())
			if err != nil {
				return nil, err
			}
			fields[key.String()] = encoded
		}
		return map[string]interface{}{wireMap: map[string]interface{}{"fields": fields}}, nil
	}

	return nil, fmt.Errorf("docstore: unsupported value type %T", v)
}

// decodeFields converts a wire field mapping into native values. Reference
// values decode into DocumentRefs bound to c.
func decodeFields(c *Client, fields map[string]interface{}) (map[string]interface{}, error) {
	data := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		decoded, err := decodeValue(c, v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		data[k] = decoded
	}
	return data, nil
}

// decodeValue converts one typed wire object back into a native value.
func decodeValue(c *Client, raw interface{}) (interface{}, error) {
	valueMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("docstore: malformed wire value %v", raw)
	}

	if _, exists := valueMap[wireNull]; exists {
		return nil, nil
	}
	if v, exists := valueMap[wireBool]; exists {
		return v, nil
	}
	if v, exists := valueMap[wireInt]; exists {
		switch n := v.(type) {
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("docstore: malformed integerValue %q", n)
			}
			return i, nil
		case float64:
			return int64(n), nil
		default:
			return nil, fmt.Errorf("docstore: malformed integerValue %v", v)
		}
	}
	if v, exists := valueMap[wireDouble]; exists {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("docstore: malformed doubleValue %v", v)
		}
		return f, nil
	}
	if v, exists := valueMap[wireString]; exists {
		return v, nil
	}
	if v, exists := valueMap[wireBytes]; exists {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("docstore: malformed bytesValue %v", v)
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("docstore: malformed bytesValue: %w", err)
		}
		return decoded, nil
	}
	if v, exists := valueMap[wireTimestamp]; exists {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("docstore: malformed timestampValue %v", v)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("docstore: malformed timestampValue: %w", err)
		}
		return t.UTC(), nil
	}
	if v, exists := valueMap[wireGeoPoint]; exists {
		gp, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("docstore: malformed geoPointValue %v", v)
		}
		lat, _ := gp["latitude"].(float64)
		lng, _ := gp["longitude"].(float64)
		return GeoPoint{Latitude: lat, Longitude: lng}, nil
	}
	if v, exists := valueMap[wireReference]; exists {
		path, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("docstore: malformed referenceValue %v", v)
		}
		return c.Doc(path), nil
	}
	if _, exists := valueMap[wireServerTimestamp]; exists {
		// Sentinels are resolved at commit time and never read back.
		return nil, fmt.Errorf("docstore: unexpected server-timestamp sentinel in read")
	}
	if v, exists := valueMap[wireArray]; exists {
		inner, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("docstore: malformed arrayValue %v", v)
		}
		rawValues, _ := inner["values"].([]interface{})
		values := make([]interface{}, 0, len(rawValues))
		for _, rv := range rawValues {
			decoded, err := decodeValue(c, rv)
			if err != nil {
				return nil, err
			}
			values = append(values, decoded)
		}
		return values, nil
	}
	if v, exists := valueMap[wireMap]; exists {
		inner, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("docstore: malformed mapValue %v", v)
		}
		rawFields, _ := inner["fields"].(map[string]interface{})
		return decodeFields(c, rawFields)
	}

	return nil, fmt.Errorf("docstore: unknown wire value %v", raw)
}
