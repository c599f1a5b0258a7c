package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutYGet(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := s.Put(ctx, "2026/facture_GSA-2026-000001.pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, "2026/facture_GSA-2026-000001.pdf", path)

	data, err := s.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
}

func TestLocalStore_SobrescribeMismaClave(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "a.pdf", []byte("uno"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "a.pdf", []byte("dos"))
	require.NoError(t, err)

	data, err := s.Get(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "dos", string(data))
}

func TestLocalStore_NoSaleDelDirectorioRaiz(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	path, err := s.Put(ctx, "../../escape.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "escape.pdf", path)
	data, err := s.Get(ctx, "escape.pdf")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestLocalStore_ClaveVaciaOInexistente(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "  ", []byte("x"))
	assert.Error(t, err)
	_, err = s.Get(ctx, "no-existe.pdf")
	assert.Error(t, err)
}
