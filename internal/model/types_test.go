package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterMatches(t *testing.T) {
	rec := Record{Input: "DNA50M", Preprocessor: "pp", Encoder: "Huffman"}

	require.True(t, Filter{}.Matches(rec))
	require.True(t, Filter{FieldEncoder: "Huffman"}.Matches(rec))
	require.True(t, rec.Key().Filter().Matches(rec))
	require.False(t, Filter{FieldEncoder: "MTF"}.Matches(rec))
	require.False(t, Filter{"compression_ratio": "0.3"}.Matches(rec))
}

func TestTotals(t *testing.T) {
	rec := Record{
		CompressionTimes:   []float64{1, 2, 3.5},
		DecompressionTimes: []float64{0.5, 0.25},
	}
	require.InDelta(t, 6.5, rec.TotalCompression(), 1e-9)
	require.InDelta(t, 0.75, rec.TotalDecompression(), 1e-9)
	require.Zero(t, Record{}.TotalCompression())
}

func TestKeyString(t *testing.T) {
	key := Key{Input: "XML50M", Preprocessor: "pp", Encoder: "MTF-RLE"}
	require.Equal(t, "pp/MTF-RLE/XML50M", key.String())
}
