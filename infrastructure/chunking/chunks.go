// Package chunking provides fixed-size text splitting with overlap for
// long prose bodies.
package chunking

import (
	"fmt"
	"strings"
)

// Params configures the splitting algorithm. All sizes are measured in
// runes.
type Params struct {
	Size    int
	Overlap int
	MinSize int
}

// DefaultParams returns sensible defaults for announcement prose.
func DefaultParams() Params {
	return Params{
		Size:    800,
		Overlap: 120,
		MinSize: 40,
	}
}

// Split divides content into chunks of at most Size runes, carrying
// Overlap runes between consecutive chunks. Pieces shorter than MinSize
// are dropped unless they are the only output.
//
// The algorithm uses two tiers:
//   - Tier 1: accumulate whole words until the next word would exceed Size
//   - Tier 2: for words exceeding Size, split on rune boundaries
func Split(content string, params Params) ([]string, error) {
	if params.Overlap >= params.Size {
		return nil, fmt.Errorf("overlap (%d) must be less than size (%d)", params.Overlap, params.Size)
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, nil
	}

	if len([]rune(trimmed)) <= params.Size {
		return []string{trimmed}, nil
	}

	words := strings.Fields(trimmed)
	var chunks []string
	var acc []string
	accRunes := 0

	flush := func() {
		if accRunes == 0 {
			return
		}
		text := strings.Join(acc, " ")
		if len([]rune(text)) >= params.MinSize {
			chunks = append(chunks, text)
		}
		acc, accRunes = overlapWords(acc, params.Overlap)
	}

	for _, word := range words {
		wordRunes := len([]rune(word))

		if wordRunes > params.Size {
			flush()
			acc, accRunes = nil, 0
			for _, piece := range splitLongWord(word, params.Size) {
				if len([]rune(piece)) >= params.MinSize {
					chunks = append(chunks, piece)
				}
			}
			continue
		}

		// +1 accounts for the joining space.
		if accRunes > 0 && accRunes+1+wordRunes > params.Size {
			flush()
		}

		acc = append(acc, word)
		accRunes += wordRunes
		if len(acc) > 1 {
			accRunes++
		}
	}

	if accRunes > 0 {
		text := strings.Join(acc, " ")
		if len([]rune(text)) >= params.MinSize || len(chunks) == 0 {
			chunks = append(chunks, text)
		}
	}

	if len(chunks) == 0 {
		chunks = []string{trimmed}
	}
	return chunks, nil
}

// overlapWords returns the trailing words of acc totalling at most
// overlap runes, seeding the next chunk.
func overlapWords(acc []string, overlap int) ([]string, int) {
	if overlap <= 0 || len(acc) == 0 {
		return nil, 0
	}

	runes := 0
	start := len(acc)
	for i := len(acc) - 1; i >= 0; i-- {
		wordRunes := len([]rune(acc[i]))
		if runes > 0 {
			wordRunes++
		}
		if runes+wordRunes > overlap {
			break
		}
		runes += wordRunes
		start = i
	}

	if start == len(acc) {
		return nil, 0
	}

	carried := make([]string, len(acc)-start)
	copy(carried, acc[start:])
	return carried, runes
}

// splitLongWord splits a single oversized token on rune boundaries.
func splitLongWord(word string, size int) []string {
	runes := []rune(word)
	var pieces []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
