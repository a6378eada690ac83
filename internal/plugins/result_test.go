package plugins

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMemory implements guestMemory over a plain byte slice with strict
// bounds checking, mirroring wazero's linear-memory semantics.
type fakeMemory struct {
	data []byte
}

func (m *fakeMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m.data)) {
		return nil, false
	}

	return m.data[offset:end:end], true
}

func (m *fakeMemory) Write(offset uint32, v []byte) bool {
	end := uint64(offset) + uint64(len(v))
	if end > uint64(len(m.data)) {
		return false
	}
	copy(m.data[offset:], v)

	return true
}

// encodeResult writes a result layout into mem at addr.
func encodeResult(mem *fakeMemory, addr uint32, success bool, payload string) {
	var flag byte
	if success {
		flag = 1
	}
	mem.data[addr] = flag
	binary.LittleEndian.PutUint32(mem.data[addr+1:addr+resultHeaderSize], uint32(len(payload)))
	copy(mem.data[addr+resultHeaderSize:], payload)
}

func TestParseResultSuccess(t *testing.T) {
	t.Parallel()

	mem := &fakeMemory{data: make([]byte, 64)}
	encodeResult(mem, 8, true, "héllo wörld")

	success, payload, err := parseResult(mem, 8)
	require.NoError(t, err)
	assert.True(t, success)
	assert.Equal(t, "héllo wörld", payload)
}

func TestParseResultFailureFlag(t *testing.T) {
	t.Parallel()

	mem := &fakeMemory{data: make([]byte, 64)}
	encodeResult(mem, 0, false, "it broke")

	success, payload, err := parseResult(mem, 0)
	require.NoError(t, err)
	assert.False(t, success)
	assert.Equal(t, "it broke", payload)
}

func TestParseResultEmptyPayload(t *testing.T) {
	t.Parallel()

	mem := &fakeMemory{data: make([]byte, 16)}
	encodeResult(mem, 4, false, "")

	success, payload, err := parseResult(mem, 4)
	require.NoError(t, err)
	assert.False(t, success)
	assert.Empty(t, payload)
}

func TestParseResultHeaderOutOfBounds(t *testing.T) {
	t.Parallel()

	mem := &fakeMemory{data: make([]byte, 4)}

	_, _, err := parseResult(mem, 2)
	require.ErrorIs(t, err, ErrMalformedResult)
}

func TestParseResultPayloadPastEndOfMemory(t *testing.T) {
	t.Parallel()

	mem := &fakeMemory{data: make([]byte, 32)}
	mem.data[0] = 1
	// Declared length reaches far past the end of linear memory.
	binary.LittleEndian.PutUint32(mem.data[1:resultHeaderSize], 1<<20)

	_, _, err := parseResult(mem, 0)
	require.ErrorIs(t, err, ErrMalformedResult)
}

func TestParseResultAddressOverflow(t *testing.T) {
	t.Parallel()

	mem := &fakeMemory{data: make([]byte, 32)}

	_, _, err := parseResult(mem, 0xFFFFFFFE)
	require.ErrorIs(t, err, ErrMalformedResult)
}

func TestParseResultInvalidUTF8(t *testing.T) {
	t.Parallel()

	mem := &fakeMemory{data: make([]byte, 32)}
	mem.data[0] = 1
	binary.LittleEndian.PutUint32(mem.data[1:resultHeaderSize], 2)
	mem.data[resultHeaderSize] = 0xFF
	mem.data[resultHeaderSize+1] = 0xFE

	_, _, err := parseResult(mem, 0)
	require.ErrorIs(t, err, ErrMalformedResult)
}
