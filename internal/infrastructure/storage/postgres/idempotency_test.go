package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressBodyRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"lineId":"...","quantity":"1.6000","costPerUnit":"2.40"},`), 50)

	compressed := compressBody(payload)
	require.NotEmpty(t, compressed)
	assert.Less(t, len(compressed), len(payload), "repetitive JSON should shrink")

	restored, err := decompressBody(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, restored)
}

func TestCompressBodyEmpty(t *testing.T) {
	assert.Nil(t, compressBody(nil))
	assert.Nil(t, compressBody([]byte{}))

	restored, err := decompressBody(nil)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestDecompressBodyRejectsGarbage(t *testing.T) {
	_, err := decompressBody([]byte("not a zstd frame"))
	assert.Error(t, err)
}
