package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompression_RoundTrip(t *testing.T) {
	comp, err := NewZstdCompressor()
	require.NoError(t, err)

	input := bytes.Repeat([]byte(`{"release_key":"steam_1","platforms":["steam"]}`), 100)
	compressed, err := comp.Compress(input)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(input))
	assert.True(t, IsCompressed(compressed))

	out, err := comp.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestIsCompressed(t *testing.T) {
	assert.False(t, IsCompressed([]byte(`{"version":"1.0"}`)))
	assert.False(t, IsCompressed(nil))
}

func TestZstdCompression_Corrupt(t *testing.T) {
	comp, err := NewZstdCompressor()
	require.NoError(t, err)

	_, err = comp.Decompress(append([]byte{0x28, 0xB5, 0x2F, 0xFD}, []byte("garbage")...))
	assert.Error(t, err)
}
