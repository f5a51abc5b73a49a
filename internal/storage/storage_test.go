package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/BerylCAtieno/eia-document-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	require.NoError(t, s.Upload(ctx, "documents/a/file.txt", strings.NewReader("hello"), 5, "text/plain"))
	assert.Equal(t, 1, s.Len())

	rc, err := s.Download(ctx, "documents/a/file.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "documents/a/file.txt"))
	_, err = s.Download(ctx, "documents/a/file.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorageSizeMismatch(t *testing.T) {
	s := NewMemoryStorage()
	err := s.Upload(context.Background(), "k", strings.NewReader("abc"), 10, "text/plain")
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())

	// unknown size is accepted
	require.NoError(t, s.Upload(context.Background(), "k", strings.NewReader("abc"), -1, "text/plain"))
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(context.Background(), &config.Config{StorageBackend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	_, err = New(context.Background(), &config.Config{StorageBackend: "tape"})
	assert.Error(t, err)
}
