package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortContentSingleChunk(t *testing.T) {
	chunks, err := Split("a short announcement", Params{Size: 100, Overlap: 10, MinSize: 1})
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "a short announcement", chunks[0])
}

func TestSplit_WordBoundaries(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("word ", 60))

	chunks, err := Split(content, Params{Size: 100, Overlap: 0, MinSize: 1})
	require.NoError(t, err)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 100)
		assert.False(t, strings.HasPrefix(c, " "))
		assert.False(t, strings.HasSuffix(c, " "))
	}
}

func TestSplit_OverlapCarriesTrailingWords(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 20))

	chunks, err := Split(content, Params{Size: 60, Overlap: 12, MinSize: 1})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Each chunk after the first starts with a suffix of its predecessor.
	for i := 1; i < len(chunks); i++ {
		overlapped := false
		for k := 12; k >= 1; k-- {
			if k <= len(chunks[i]) && strings.HasSuffix(chunks[i-1], chunks[i][:k]) {
				overlapped = true
				break
			}
		}
		assert.True(t, overlapped, "chunk %d does not overlap its predecessor", i)
	}
}

func TestSplit_LongWordSplitOnRuneBoundaries(t *testing.T) {
	content := strings.Repeat("가", 250)

	chunks, err := Split(content, Params{Size: 100, Overlap: 0, MinSize: 1})
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Len(t, []rune(chunks[0]), 100)
	assert.Len(t, []rune(chunks[1]), 100)
	assert.Len(t, []rune(chunks[2]), 50)
}

func TestSplit_EmptyContent(t *testing.T) {
	chunks, err := Split("   \n\t  ", DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_OverlapMustBeLessThanSize(t *testing.T) {
	_, err := Split("some content", Params{Size: 10, Overlap: 10, MinSize: 1})
	require.Error(t, err)
}

func TestSplit_SingleShortOutputSurvivesMinSize(t *testing.T) {
	chunks, err := Split("tiny", Params{Size: 100, Overlap: 0, MinSize: 40})
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny", chunks[0])
}
