package main

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/zebreus/wasmlet/pkg/wasmletplugin"
)

// ANSI escape codes for the rainbow, cycled per character.
var rainbowColors = [...]string{
	"\x1b[31m", // red
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[36m", // cyan
	"\x1b[34m", // blue
	"\x1b[35m", // magenta
}

const colorReset = "\x1b[0m"

var scratch = wasmletplugin.NewBufferPool()

// rainbowText prefixes every character of input with the next color of the
// rainbow and resets the color at the end.
func rainbowText(input string) (string, error) {
	if strings.Contains(input, "\x1b") {
		return "", errors.New(
			"The input text already contains ANSI escape codes. I can't add color to that.")
	}

	buf := scratch.Get(len(input)*(len(rainbowColors[0])+utf8.UTFMax) + len(colorReset))

	i := 0
	for _, r := range input {
		buf = append(buf, rainbowColors[i%len(rainbowColors)]...)
		buf = utf8.AppendRune(buf, r)
		i++
	}
	buf = append(buf, colorReset...)

	output := string(buf)
	scratch.Put(buf)

	return output, nil
}
