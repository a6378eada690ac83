package plugins

import (
	"errors"
	"fmt"
)

// Errors surfaced by the host side of the plugin boundary. Each taxonomy row
// that callers may need to test for has a sentinel.
var (
	// ErrMissingMemory reports a plugin without an exported linear memory.
	ErrMissingMemory = errors.New("plugin does not export memory")

	// ErrMemoryWrite reports a host-side write into an allocated guest
	// buffer that fell outside linear memory.
	ErrMemoryWrite = errors.New("allocated buffer caused memory error")

	// ErrMalformedResult reports a result buffer whose layout reads violate
	// linear-memory bounds or UTF-8 validity.
	ErrMalformedResult = errors.New("process returned malformed datastructure")

	// ErrFreeRefused reports a free_shared_buffer call that returned a
	// falsy status. The plugin is mis-behaving even when everything else
	// succeeded.
	ErrFreeRefused = errors.New("failed to free shared buffer")
)

// NotFoundError reports a specifier that no resolver strategy could map to a
// readable file.
type NotFoundError struct {
	Specifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find plugin %s", e.Specifier)
}

// MissingExportError reports a required function export absent from an
// instantiated plugin.
type MissingExportError struct {
	Name string
}

func (e *MissingExportError) Error() string {
	return fmt.Sprintf("plugin does not export required function %q", e.Name)
}

// GuestError is a failure the plugin itself reported: process returned a
// result buffer with the success flag cleared and the payload as message.
type GuestError struct {
	Message string
}

func (e *GuestError) Error() string {
	return "guest error: " + e.Message
}
