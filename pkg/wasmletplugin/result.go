package wasmletplugin

import "encoding/binary"

// ResultHeaderSize is the number of bytes preceding the payload in a result
// buffer: one success flag byte plus a little-endian uint32 payload length.
const ResultHeaderSize = 5

// Result encodes a process result into a freshly registered shared buffer and
// returns its address. The layout is [success:u8][length:u32-LE][payload].
// The host frees the buffer via free_shared_buffer.
func Result(success bool, payload []byte) uint32 {
	buf := make([]byte, ResultHeaderSize+len(payload))
	if success {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:ResultHeaderSize], uint32(len(payload)))
	copy(buf[ResultHeaderSize:], payload)

	return Share(buf)
}

// Success encodes output as a successful result buffer.
func Success(output string) uint32 {
	return Result(true, []byte(output))
}

// Failure encodes message as a failed result buffer. The host surfaces the
// payload as the guest error message.
func Failure(message string) uint32 {
	return Result(false, []byte(message))
}

// Input resolves a process input address to the bytes the host wrote there.
// The length is known only through the registry entry created when the host
// called allocate_shared_buffer.
func Input(addr uint32) ([]byte, bool) {
	return Retain(addr)
}
