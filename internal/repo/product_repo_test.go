package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ContentImport/internal/migrate"
)

type fakeProducts struct {
	saved []*Product
	err   error
}

func (f *fakeProducts) Upsert(_ context.Context, p *Product) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, p)
	return int64(len(f.saved)), nil
}

func TestProductDestination_Import(t *testing.T) {
	products := &fakeProducts{}
	dest, err := newProductDestination(products, map[string]any{"plugin": "product", "langcode": "fr"})
	require.NoError(t, err)

	id, err := dest.Import(context.Background(), map[string]any{
		"sku":   "A-1",
		"title": "Lampe",
		"price": "9.99",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "1", id)
	require.Len(t, products.saved, 1)
	assert.Equal(t, &Product{
		SKU:      "A-1",
		Langcode: "fr",
		Title:    "Lampe",
		Fields:   map[string]any{"price": "9.99"},
	}, products.saved[0])
}

func TestProductDestination_LangcodeFromValues(t *testing.T) {
	products := &fakeProducts{}
	dest, err := newProductDestination(products, map[string]any{"langcode": "fr"})
	require.NoError(t, err)

	_, err = dest.Import(context.Background(), map[string]any{"sku": "A-1", "langcode": "de"}, "")
	require.NoError(t, err)

	assert.Equal(t, "de", products.saved[0].Langcode)
	assert.NotContains(t, products.saved[0].Fields, "langcode")
}

func TestProductDestination_CustomKey(t *testing.T) {
	products := &fakeProducts{}
	dest, err := newProductDestination(products, map[string]any{"key": "code", "title": "name"})
	require.NoError(t, err)

	_, err = dest.Import(context.Background(), map[string]any{"code": "X", "name": "Chair"}, "")
	require.NoError(t, err)

	assert.Equal(t, "X", products.saved[0].SKU)
	assert.Equal(t, "Chair", products.saved[0].Title)
	assert.Equal(t, "en", products.saved[0].Langcode)
}

func TestProductDestination_MissingSKU(t *testing.T) {
	dest, err := newProductDestination(&fakeProducts{}, nil)
	require.NoError(t, err)

	_, err = dest.Import(context.Background(), map[string]any{"title": "No sku"}, "")
	assert.ErrorIs(t, err, ErrMissingSKU)
}

func TestProductDestination_UpsertError(t *testing.T) {
	dest, err := newProductDestination(&fakeProducts{err: errors.New("db down")}, nil)
	require.NoError(t, err)

	_, err = dest.Import(context.Background(), map[string]any{"sku": "A-1"}, "")
	assert.EqualError(t, err, "db down")
}

func TestProductDestination_InvalidConfig(t *testing.T) {
	_, err := newProductDestination(&fakeProducts{}, map[string]any{"key": "sku", "title": "sku"})
	assert.ErrorIs(t, err, migrate.ErrInvalidDefinition)
}
