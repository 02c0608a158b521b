package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/store/memory"
)

func TestWriteAllReadAllRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		size int
	}{
		{"empty blob", 0},
		{"single byte", 1},
		{"below chunk cap", store.MaxValueChunkSize - 1},
		{"exactly chunk cap", store.MaxValueChunkSize},
		{"one byte over cap", store.MaxValueChunkSize + 1},
		{"several chunks", store.MaxValueChunkSize*3 + 17},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			host := memory.NewStore()
			path := store.MustPath("/blob")

			blob := make([]byte, tc.size)
			for i := range blob {
				blob[i] = byte(i)
			}

			require.NoError(t, store.WriteAll(host, path, blob))

			loaded, err := store.ReadAll(host, path)
			require.NoError(t, err)
			assert.Equal(t, blob, loaded)

			size, err := host.ValueSize(path)
			require.NoError(t, err)
			assert.Equal(t, tc.size, size)
		})
	}
}

func TestWriteAllEmptyBlobCreatesValue(t *testing.T) {
	host := memory.NewStore()
	path := store.MustPath("/empty")

	require.NoError(t, store.WriteAll(host, path, nil))

	vt, err := host.HasValue(path)
	require.NoError(t, err)
	assert.Equal(t, store.ValueOnly, vt)

	loaded, err := store.ReadAll(host, path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestReadAllAbsentValue(t *testing.T) {
	host := memory.NewStore()

	_, err := store.ReadAll(host, store.MustPath("/nowhere"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}
