package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractTimesInRequestedOrder(t *testing.T) {
	text := "precompress,3,120\ndoTransform,5,80\n"
	times, err := ExtractTimes(text, []string{"precompress", "doTransform"})
	require.NoError(t, err)
	require.Equal(t, []float64{120, 80}, times)

	times, err = ExtractTimes(text, []string{"doTransform", "precompress"})
	require.NoError(t, err)
	require.Equal(t, []float64{80, 120}, times)
}

func TestExtractTimesMatchesDecoratedLabels(t *testing.T) {
	text := `Reading input...
BWTCompressor::compress,1,2500
  BlockManager::precompress ,12,310.5
Transformer::doTransform(),12,1400
EntropyEncoder::encodeData,12,700
`
	times, err := ExtractTimes(text, []string{"::compress", "precompress", "doTransform", "encodeData"})
	require.NoError(t, err)
	require.Equal(t, []float64{2500, 310.5, 1400, 700}, times)
}

func TestExtractTimesSkipsVeryLongLines(t *testing.T) {
	text := strings.Repeat("x", 200*1024) + "\n::compress,1,42.5\n"
	times, err := ExtractTimes(text, []string{"::compress"})
	require.NoError(t, err)
	require.Equal(t, []float64{42.5}, times)
}

func TestExtractTimesFirstMatchWins(t *testing.T) {
	text := "doTransform,1,10\ndoTransform,2,20\n"
	times, err := ExtractTimes(text, []string{"doTransform"})
	require.NoError(t, err)
	require.Equal(t, []float64{10}, times)
}

func TestExtractTimesRejectsMalformedLines(t *testing.T) {
	cases := []string{
		"precompress,3",            // no duration
		"precompress,x,120",        // non-numeric count
		"precompress,3,120,extra",  // trailing field
		"pre,compress,3,120",       // comma inside prefix
		"precompress,3,120 ms",     // trailing text
		"somethingelse,3,120",      // wrong label
	}
	for _, line := range cases {
		_, err := ExtractTimes(line, []string{"precompress"})
		require.Error(t, err, line)
		require.True(t, errors.Is(err, ErrLabelNotFound), line)
	}
}

func TestExtractTimesQuotesLabel(t *testing.T) {
	// "." in a label is literal, not a wildcard.
	_, err := ExtractTimes("aXb,1,5", []string{"a.b"})
	require.ErrorIs(t, err, ErrLabelNotFound)

	times, err := ExtractTimes("a.b,1,5", []string{"a.b"})
	require.NoError(t, err)
	require.Equal(t, []float64{5}, times)
}

func TestRescale(t *testing.T) {
	scaled, err := Rescale([]float64{100}, 2*time.Second, 1.0)
	require.NoError(t, err)
	require.InDelta(t, 200, scaled[0], 1e-9)

	scaled, err = Rescale([]float64{250, 750}, 3*time.Second, 1000)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.75, 2.25}, scaled, 1e-9)
}

func TestRescaleZeroTotal(t *testing.T) {
	_, err := Rescale([]float64{1}, time.Second, 0)
	require.ErrorIs(t, err, ErrZeroTotal)
}

func TestStageTimes(t *testing.T) {
	text := "X::decompress,1,400\nuncompress,4,100\ndoTransform,4,200\ndecodeBlock,4,100\n"
	stages, err := StageTimes(text, "::decompress", []string{"uncompress", "doTransform", "decodeBlock"}, 2*time.Second)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.5, 1.0, 0.5}, stages, 1e-9)

	_, err = StageTimes(text, "::compress", []string{"uncompress"}, time.Second)
	require.ErrorIs(t, err, ErrLabelNotFound)
}
