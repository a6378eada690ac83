package wasmletplugin

import (
	"bytes"
	"testing"
)

// TestAllocateSharedBuffer verifies that allocation registers a zero-filled
// buffer retrievable by its address.
func TestAllocateSharedBuffer(t *testing.T) {
	Reset()

	addr := AllocateSharedBuffer(16)
	if addr == 0 {
		t.Fatalf("expected nonzero address")
	}

	buf, ok := Lookup(addr)
	if !ok {
		t.Fatalf("expected buffer to be registered")
	}
	if len(buf) != 16 {
		t.Fatalf("expected length 16, got %d", len(buf))
	}
	if !bytes.Equal(buf, make([]byte, 16)) {
		t.Errorf("expected zero-filled buffer, got %v", buf)
	}
}

// TestAllocateSharedBufferZeroSize verifies that zero-size allocations are
// legal and produce a freeable address.
func TestAllocateSharedBufferZeroSize(t *testing.T) {
	Reset()

	addr := AllocateSharedBuffer(0)
	if addr == 0 {
		t.Fatalf("expected nonzero address for zero-size buffer")
	}

	buf, ok := Lookup(addr)
	if !ok {
		t.Fatalf("expected buffer to be registered")
	}
	if len(buf) != 0 {
		t.Errorf("expected empty buffer, got length %d", len(buf))
	}

	if status := FreeSharedBuffer(addr); status == 0 {
		t.Errorf("expected free to succeed")
	}
}

// TestFreeSharedBuffer verifies the nonzero-on-removal status convention.
func TestFreeSharedBuffer(t *testing.T) {
	Reset()

	addr := AllocateSharedBuffer(8)

	if status := FreeSharedBuffer(addr); status != 1 {
		t.Errorf("expected status 1 on removal, got %d", status)
	}
	if status := FreeSharedBuffer(addr); status != 0 {
		t.Errorf("expected status 0 for absent address, got %d", status)
	}
	if _, ok := Lookup(addr); ok {
		t.Errorf("expected entry to be gone after free")
	}
}

// TestRetainSurvivesFree verifies that a retained slice still reads correctly
// after the registry entry is removed.
func TestRetainSurvivesFree(t *testing.T) {
	Reset()

	addr := AllocateSharedBuffer(5)
	buf, ok := Lookup(addr)
	if !ok {
		t.Fatalf("expected buffer to be registered")
	}
	copy(buf, "hello")

	retained, ok := Retain(addr)
	if !ok {
		t.Fatalf("expected retain to find the buffer")
	}

	if status := FreeSharedBuffer(addr); status == 0 {
		t.Fatalf("expected free to succeed")
	}

	if string(retained) != "hello" {
		t.Errorf("expected retained buffer to survive free, got %q", retained)
	}
}

// TestAllocateSharedBufferDistinctAddresses verifies that live entries never
// alias.
func TestAllocateSharedBufferDistinctAddresses(t *testing.T) {
	Reset()

	seen := make(map[uint32]bool)
	for range 32 {
		addr := AllocateSharedBuffer(32)
		if seen[addr] {
			t.Fatalf("address %d registered twice", addr)
		}
		seen[addr] = true
	}
}
