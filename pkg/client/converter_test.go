package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type city struct {
	Name       string
	Population int64
	Capital    bool
	SisterCity *DocumentRef
}

type cityConverter struct{}

func (cityConverter) ToDocument(c city) (map[string]interface{}, error) {
	return map[string]interface{}{
		"name":       c.Name,
		"population": c.Population,
		"capital":    c.Capital,
		"sisterCity": c.SisterCity,
	}, nil
}

func (cityConverter) FromDocument(snap *DocumentSnapshot) (city, error) {
	data := snap.Data()
	c := city{}
	c.Name, _ = data["name"].(string)
	c.Population, _ = data["population"].(int64)
	c.Capital, _ = data["capital"].(bool)
	c.SisterCity, _ = data["sisterCity"].(*DocumentRef)
	return c, nil
}

// failingConverter rejects everything, for error propagation tests.
type failingConverter struct{}

func (failingConverter) ToDocument(city) (map[string]interface{}, error) {
	return nil, fmt.Errorf("encode rejected")
}

func (failingConverter) FromDocument(*DocumentSnapshot) (city, error) {
	return city{}, fmt.Errorf("decode rejected")
}

func TestConverterRoundTrip(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()

	ref := WithConverter[city](c.Collection("cities").Doc("MTV"), cityConverter{})
	defer ref.Delete(ctx)

	original := city{
		Name:       "Mountain View",
		Population: 77846,
		Capital:    false,
		SisterCity: c.Collection("cities").Doc("SF"),
	}
	require.NoError(t, ref.Set(ctx, original))

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	require.True(t, snap.Exists())

	decoded, err := snap.Data()
	require.NoError(t, err)
	assert.Equal(t, original.Name, decoded.Name)
	assert.Equal(t, original.Population, decoded.Population)
	assert.Equal(t, original.Capital, decoded.Capital)
	require.NotNil(t, decoded.SisterCity)
	assert.Equal(t, original.SisterCity.Path, decoded.SisterCity.Path)
}

func TestWithConverterDoesNotMutateOriginal(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()

	plain := c.Collection("cities").Doc("MTV")
	typed := WithConverter[city](plain, cityConverter{})
	defer plain.Delete(ctx)

	require.NoError(t, typed.Set(ctx, city{Name: "Mountain View", Population: 77846}))

	// The untyped reference still reads the raw mapping.
	snap, err := plain.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mountain View", snap.Data()["name"])
	assert.Equal(t, int64(77846), snap.Data()["population"])
}

func TestConverterErrorsMatchErrConverter(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()

	ref := WithConverter[city](c.Collection("cities").Doc("MTV"), failingConverter{})

	err := ref.Set(ctx, city{Name: "Mountain View"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConverter)
	assert.Contains(t, err.Error(), "encode rejected")

	// Seed a document so Get reaches the converter.
	require.NoError(t, c.Collection("cities").Doc("MTV").Set(ctx, map[string]interface{}{"name": "x"}))
	defer c.Collection("cities").Doc("MTV").Delete(ctx)

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	_, err = snap.Data()
	assert.ErrorIs(t, err, ErrConverter)
	assert.Contains(t, err.Error(), "decode rejected")
}

func TestTypedSnapshotMissingDocument(t *testing.T) {
	c, _ := newTestClient()

	ref := WithConverter[city](c.Collection("cities").Doc("nowhere"), cityConverter{})
	snap, err := ref.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Exists())

	_, err = snap.Data()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConverterErrorUnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := wrapConverterError(cause)

	assert.ErrorIs(t, wrapped, ErrConverter)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Nil(t, wrapConverterError(nil))
}
