package main

import (
	"strings"
	"unicode"
)

// letterText renders input as large letters, one glyph column per character.
// Characters without a glyph fall back to '?'.
func letterText(input string) string {
	rows := make([][]byte, fontHeight)

	first := true
	for _, r := range input {
		glyph, ok := font[unicode.ToUpper(r)]
		if !ok {
			glyph = font['?']
		}

		for i := range rows {
			if !first {
				rows[i] = append(rows[i], ' ')
			}
			rows[i] = append(rows[i], glyph[i]...)
		}
		first = false
	}

	lines := make([]string, fontHeight)
	for i, row := range rows {
		lines[i] = string(row)
	}

	return strings.Join(lines, "\n")
}
