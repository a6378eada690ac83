package plugins

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// resultHeaderSize is one success-flag byte plus a little-endian uint32
// payload length. The length field is 32-bit regardless of the host's word
// size; linear memory is 32-bit addressed.
const resultHeaderSize = 5

// guestMemory is the subset of wazero's api.Memory the host touches. Every
// Read and Write is a fresh view into linear memory, so nothing here may be
// cached across VM calls that could grow memory.
type guestMemory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// parseResult reads the result layout at addr: [success:u8][length:u32-LE]
// [payload:length]. Every read is bounds-checked against linear memory and
// the payload must be valid UTF-8; any violation is a malformed-datastructure
// error.
func parseResult(mem guestMemory, addr uint32) (bool, string, error) {
	if addr > math.MaxUint32-resultHeaderSize {
		return false, "", fmt.Errorf("%w: header at %d overflows address space", ErrMalformedResult, addr)
	}

	header, ok := mem.Read(addr, resultHeaderSize)
	if !ok {
		return false, "", fmt.Errorf("%w: header at %d outside linear memory", ErrMalformedResult, addr)
	}

	success := header[0] != 0
	length := binary.LittleEndian.Uint32(header[1:resultHeaderSize])

	payloadAddr := addr + resultHeaderSize
	if length > math.MaxUint32-payloadAddr {
		return false, "", fmt.Errorf("%w: payload length %d overflows address space", ErrMalformedResult, length)
	}

	payload, ok := mem.Read(payloadAddr, length)
	if !ok {
		return false, "", fmt.Errorf("%w: payload of %d bytes outside linear memory", ErrMalformedResult, length)
	}

	if !utf8.Valid(payload) {
		return false, "", fmt.Errorf("%w: payload is not valid UTF-8", ErrMalformedResult)
	}

	return success, string(payload), nil
}
