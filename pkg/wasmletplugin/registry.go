// Package wasmletplugin provides the guest-side runtime shared by wasmlet
// plugins. It owns the shared-buffer registry that backs the
// allocate_shared_buffer/free_shared_buffer/process ABI and the encoder for
// the result layout the host parses.
package wasmletplugin

import (
	"sync"
	"unsafe"
)

// entry keeps the backing slice reachable so the runtime does not reclaim a
// buffer while the host still holds its address.
type entry struct {
	data []byte
	size uint32
}

var (
	mu     sync.Mutex
	shared = make(map[uint32]*entry)
)

// AllocateSharedBuffer allocates a zero-filled buffer of size bytes, registers
// it in the shared-buffer registry and returns its address in linear memory.
// The buffer stays registered until FreeSharedBuffer is called with the same
// address.
func AllocateSharedBuffer(size uint32) uint32 {
	// A zero-size buffer still needs a distinct address the host can hand
	// back to free_shared_buffer, so the backing array is never empty.
	capacity := size
	if capacity == 0 {
		capacity = 1
	}
	buf := make([]byte, size, capacity)

	return register(buf, size)
}

// FreeSharedBuffer removes the registry entry for addr. It returns 1 if an
// entry was removed and 0 if the address is not currently registered. Guest
// code that obtained the slice via Retain keeps the underlying memory alive
// past the free; only the registry entry is dropped here.
func FreeSharedBuffer(addr uint32) uint32 {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := shared[addr]; !ok {
		return 0
	}
	delete(shared, addr)

	return 1
}

// Share registers an existing slice as a shared buffer and returns its
// address. The caller must not reuse data's backing array for another shared
// buffer while the entry is live.
func Share(data []byte) uint32 {
	size := uint32(len(data))
	if cap(data) == 0 {
		data = make([]byte, 0, 1)
	}

	return register(data, size)
}

// Lookup returns the registered buffer at addr, sized to its logical length.
func Lookup(addr uint32) ([]byte, bool) {
	mu.Lock()
	defer mu.Unlock()

	e, ok := shared[addr]
	if !ok {
		return nil, false
	}

	return e.data[:e.size], true
}

// Retain returns the buffer at addr like Lookup does. Holding the returned
// slice extends the buffer's lifetime beyond a later FreeSharedBuffer call,
// which removes the registry entry but not the memory a holder still
// references.
func Retain(addr uint32) ([]byte, bool) {
	return Lookup(addr)
}

// Reset drops every registry entry. Test helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	shared = make(map[uint32]*entry)
}

func register(buf []byte, size uint32) uint32 {
	addr := bufferAddress(buf)
	mu.Lock()
	shared[addr] = &entry{data: buf, size: size}
	mu.Unlock()

	return addr
}

// bufferAddress returns the linear-memory offset of buf's backing array.
// Addresses crossing the ABI are 32-bit linear-memory offsets.
//
//nolint:gosec // allow unsafe pointer usage.
func bufferAddress(buf []byte) uint32 {
	return uint32(uintptr(unsafe.Pointer(unsafe.SliceData(buf))))
}
