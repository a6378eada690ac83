// Command bigfont is a wasmlet plugin that renders text as large letters.
// Build it with tinygo targeting wasm to produce bigfont.wasm.
package main

import (
	"unicode/utf8"

	"github.com/zebreus/wasmlet/pkg/wasmletplugin"
)

//export allocate_shared_buffer
func allocateSharedBuffer(size uint32) uint32 {
	return wasmletplugin.AllocateSharedBuffer(size)
}

//export free_shared_buffer
func freeSharedBuffer(addr uint32) uint32 {
	return wasmletplugin.FreeSharedBuffer(addr)
}

//export process
func process(inputAddr uint32) uint32 {
	input, ok := wasmletplugin.Input(inputAddr)
	if !ok {
		return wasmletplugin.Failure(
			"The input buffer does not exist. Use allocate_shared_buffer to allocate a buffer.")
	}
	if !utf8.Valid(input) {
		return wasmletplugin.Failure("The input text is not valid UTF-8.")
	}

	return wasmletplugin.Success(letterText(string(input)))
}

func main() {}
