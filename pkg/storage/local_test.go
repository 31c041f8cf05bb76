package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/pkg/storage"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")

	require.NoError(t, d.Put(ctx, "relatorios/vendas.csv", []byte("a,b\n"), "text/csv"))

	ok, err := d.Exists(ctx, "relatorios/vendas.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := d.Get(ctx, "relatorios/vendas.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	assert.Equal(t, "http://localhost:8080/storage/relatorios/vendas.csv", d.URL("relatorios/vendas.csv"))

	require.NoError(t, d.Delete(ctx, "relatorios/vendas.csv"))
	require.NoError(t, d.Delete(ctx, "relatorios/vendas.csv"))

	_, err = d.Get(ctx, "relatorios/vendas.csv")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestLocalDiskRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	d := storage.NewLocalDisk(t.TempDir(), "http://x")

	for _, p := range []string{"../etc/passwd", "/etc/passwd", "a/../../b", ""} {
		assert.ErrorIs(t, d.Put(ctx, p, []byte("x"), ""), storage.ErrInvalidPath, p)
		assert.Empty(t, d.URL(p), p)
	}
}

func TestDefaultDisk(t *testing.T) {
	d := storage.NewLocalDisk(t.TempDir(), "http://cdn.test")
	storage.RegisterDisk("test", d)
	storage.SetDefault("test")

	assert.Equal(t, "http://cdn.test/produtos/a.jpg", storage.URL("produtos/a.jpg"))
	assert.Equal(t, "", storage.URL(""))

	_, err := storage.Use("missing")
	assert.Error(t, err)
}
