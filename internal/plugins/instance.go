package plugins

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Exports every plugin must provide, next to a linear memory named "memory".
const (
	exportAllocate = "allocate_shared_buffer"
	exportFree     = "free_shared_buffer"
	exportProcess  = "process"
)

// guestFunc is the subset of wazero's api.Function the host calls.
type guestFunc interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// Instance is one instantiated plugin: its own VM store, module and typed
// entry points. An instance is reusable for any number of Apply calls but
// must not be shared across goroutines; Apply calls may not interleave.
type Instance struct {
	id        uuid.UUID
	name      string
	runtime   wazero.Runtime
	module    api.Module
	memory    guestMemory
	allocFn   guestFunc
	freeFn    guestFunc
	processFn guestFunc
}

// NewInstance resolves specifier to bytecode, compiles it in a fresh VM store
// and binds the required exports. The module is instantiated with an empty
// import set; plugins bring their own allocator and need nothing from the
// host.
func NewInstance(ctx context.Context, specifier, pluginDir string) (*Instance, error) {
	bytecode, err := Resolve(specifier, pluginDir)
	if err != nil {
		return nil, err
	}

	runtime := wazero.NewRuntime(ctx)

	compiled, err := runtime.CompileModule(ctx, bytecode)
	if err != nil {
		_ = runtime.Close(ctx)

		return nil, fmt.Errorf("failed to compile plugin %s: %w", specifier, err)
	}

	cfg := wazero.NewModuleConfig().
		WithName(specifier).
		WithStartFunctions() // empty list, no start function runs

	module, err := runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		_ = runtime.Close(ctx)

		return nil, fmt.Errorf("failed to instantiate plugin %s: %w", specifier, err)
	}

	inst := &Instance{
		id:      uuid.New(),
		name:    specifier,
		runtime: runtime,
		module:  module,
	}

	for _, name := range []string{exportAllocate, exportFree, exportProcess} {
		fn := module.ExportedFunction(name)
		if fn == nil {
			_ = runtime.Close(ctx)

			return nil, &MissingExportError{Name: name}
		}

		switch name {
		case exportAllocate:
			inst.allocFn = fn
		case exportFree:
			inst.freeFn = fn
		case exportProcess:
			inst.processFn = fn
		}
	}

	memory := module.Memory()
	if memory == nil {
		_ = runtime.Close(ctx)

		return nil, ErrMissingMemory
	}
	inst.memory = memory

	log.Debug().
		Str("event", "plugin_loaded").
		Str("plugin", specifier).
		Str("instance_id", inst.id.String()).
		Msg("instantiated plugin")

	return inst, nil
}

// Name returns the specifier this instance was resolved from.
func (inst *Instance) Name() string {
	return inst.name
}

// Apply runs the plugin over input and returns the transformed text. The
// operation marshals input into a guest buffer, invokes process, parses the
// result layout and frees both buffers. Every buffer whose address the host
// learned is freed on success and failure paths alike; a cleanup failure
// never masks an earlier error.
func (inst *Instance) Apply(ctx context.Context, input string) (string, error) {
	data := []byte(input)

	inputAddr, err := inst.allocate(ctx, uint32(len(data)))
	if err != nil {
		return "", err
	}

	// The memory view is transient. Each Write and Read below acquires a
	// fresh view; nothing is reused across VM calls.
	if !inst.memory.Write(inputAddr, data) {
		inst.release(ctx, inputAddr)

		return "", ErrMemoryWrite
	}

	procRes, err := inst.processFn.Call(ctx, uint64(inputAddr))
	if err != nil || len(procRes) == 0 {
		inst.release(ctx, inputAddr)

		if err == nil {
			err = errors.New("no result returned")
		}

		return "", fmt.Errorf("runtime error while processing text: %w", err)
	}
	resultAddr := api.DecodeU32(procRes[0])

	success, payload, parseErr := parseResult(inst.memory, resultAddr)

	freeErr := inst.free(ctx, resultAddr)
	if err := inst.free(ctx, inputAddr); freeErr == nil {
		freeErr = err
	}

	switch {
	case parseErr != nil:
		if freeErr != nil {
			inst.logCleanupFailure(freeErr)
		}

		return "", parseErr
	case freeErr != nil:
		return "", freeErr
	case !success:
		return "", &GuestError{Message: payload}
	}

	log.Debug().
		Str("event", "plugin_apply").
		Str("plugin", inst.name).
		Str("instance_id", inst.id.String()).
		Int("input_bytes", len(data)).
		Int("output_bytes", len(payload)).
		Msg("applied plugin")

	return payload, nil
}

// Close releases the VM store and everything owned by it.
func (inst *Instance) Close(ctx context.Context) error {
	return inst.runtime.Close(ctx)
}

// allocate calls the guest allocator for a buffer of size bytes. Zero is a
// legal size; the guest still hands back a freeable address.
func (inst *Instance) allocate(ctx context.Context, size uint32) (uint32, error) {
	results, err := inst.allocFn.Call(ctx, uint64(size))
	if err != nil || len(results) == 0 {
		if err == nil {
			err = errors.New("no address returned")
		}

		return 0, fmt.Errorf("runtime error while allocating buffer: %w", err)
	}

	return api.DecodeU32(results[0]), nil
}

// free releases the guest buffer at addr. A trap is a guest runtime error; a
// falsy status means the plugin refused a buffer it should own.
func (inst *Instance) free(ctx context.Context, addr uint32) error {
	results, err := inst.freeFn.Call(ctx, uint64(addr))
	if err != nil {
		return fmt.Errorf("runtime error while freeing shared buffer: %w", err)
	}
	if len(results) == 0 || results[0] == 0 {
		return ErrFreeRefused
	}

	return nil
}

// release frees buffers on an error path. The original error is already on
// its way out, so failures here are only logged.
func (inst *Instance) release(ctx context.Context, addrs ...uint32) {
	for _, addr := range addrs {
		if err := inst.free(ctx, addr); err != nil {
			inst.logCleanupFailure(err)
		}
	}
}

func (inst *Instance) logCleanupFailure(err error) {
	log.Warn().
		Err(err).
		Str("plugin", inst.name).
		Str("instance_id", inst.id.String()).
		Msg("cleanup free failed")
}
