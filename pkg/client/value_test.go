package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c, _ := newTestClient()
	ts := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)

	data := map[string]interface{}{
		"string":  "hello",
		"int":     int64(42),
		"double":  3.14,
		"bool":    true,
		"null":    nil,
		"bytes":   []byte{0x01, 0x02},
		"time":    ts,
		"geo":     GeoPoint{Latitude: 37.38, Longitude: -122.08},
		"ref":     c.Collection("cities").Doc("SF"),
		"array":   []interface{}{"a", int64(1), false},
		"nested": map[string]interface{}{
			"inner": []interface{}{map[string]interface{}{"deep": int64(7)}},
		},
	}

	encoded, err := encodeFields(data)
	require.NoError(t, err)

	decoded, err := decodeFields(c, encoded)
	require.NoError(t, err)

	assert.Equal(t, "hello", decoded["string"])
	assert.Equal(t, int64(42), decoded["int"])
	assert.Equal(t, 3.14, decoded["double"])
	assert.Equal(t, true, decoded["bool"])
	assert.Nil(t, decoded["null"])
	assert.Equal(t, []byte{0x01, 0x02}, decoded["bytes"])
	assert.Equal(t, ts, decoded["time"])
	assert.Equal(t, GeoPoint{Latitude: 37.38, Longitude: -122.08}, decoded["geo"])
	assert.Equal(t, []interface{}{"a", int64(1), false}, decoded["array"])

	ref, ok := decoded["ref"].(*DocumentRef)
	require.True(t, ok)
	assert.Equal(t, "cities/SF", ref.Path)

	nested := decoded["nested"].(map[string]interface{})
	inner := nested["inner"].([]interface{})
	deep := inner[0].(map[string]interface{})
	assert.Equal(t, int64(7), deep["deep"])
}

func TestEncodeIntegersAsDecimalStrings(t *testing.T) {
	encoded, err := encodeValue(int64(1<<53 + 1))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{wireInt: "9007199254740993"}, encoded)

	encoded, err = encodeValue(7)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{wireInt: "7"}, encoded)
}

func TestEncodeSentinel(t *testing.T) {
	encoded, err := encodeValue(ServerTimestamp)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{wireServerTimestamp: true}, encoded)
}

func TestEncodeTypedSlicesAndMaps(t *testing.T) {
	encoded, err := encodeValue([]string{"a", "b"})
	require.NoError(t, err)
	arr := encoded.(map[string]interface{})[wireArray].(map[string]interface{})
	assert.Len(t, arr["values"], 2)

	encoded, err = encodeValue(map[string]int64{"a": 1})
	require.NoError(t, err)
	mp := encoded.(map[string]interface{})[wireMap].(map[string]interface{})
	fields := mp["fields"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{wireInt: "1"}, fields["a"])
}

func TestEncodeRejectsUnsupportedTypes(t *testing.T) {
	_, err := encodeValue(struct{ X int }{X: 1})
	assert.Error(t, err)

	_, err = encodeValue(map[int]string{1: "a"})
	assert.Error(t, err)

	_, err = encodeFields(map[string]interface{}{"": "x"})
	assert.Error(t, err)
}

func TestDecodeRejectsSentinelInReads(t *testing.T) {
	c, _ := newTestClient()
	_, err := decodeValue(c, map[string]interface{}{wireServerTimestamp: true})
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedValues(t *testing.T) {
	c, _ := newTestClient()

	_, err := decodeValue(c, "bare string")
	assert.Error(t, err)

	_, err = decodeValue(c, map[string]interface{}{wireInt: "not-a-number"})
	assert.Error(t, err)

	_, err = decodeValue(c, map[string]interface{}{"unknownValue": 1})
	assert.Error(t, err)
}

func TestDecodeIntegerFromJSONNumber(t *testing.T) {
	c, _ := newTestClient()

	v, err := decodeValue(c, map[string]interface{}{wireInt: "77846"})
	require.NoError(t, err)
	assert.Equal(t, int64(77846), v)

	// Some encoders emit plain numbers; tolerate them.
	v, err = decodeValue(c, map[string]interface{}{wireInt: float64(42)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}
