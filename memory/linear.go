package memory

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// MaxPages is the largest memory whose byte size still fits Size, in 64 KiB pages.
const MaxPages = 65535

// Linear is a standalone linear memory hosted by its own wazero runtime.
type Linear struct {
	*Wrapper
	rt  wazero.Runtime
	mod api.Module
}

// NewLinear instantiates a module that only exports a memory of pages
// 64 KiB pages.
func NewLinear(ctx context.Context, pages uint32) (*Linear, error) {
	if pages == 0 || pages > MaxPages {
		return nil, fmt.Errorf("memory pages %d outside 1..%d", pages, MaxPages)
	}

	rt := wazero.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, memoryModule(pages))
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("compile memory module: %w", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate memory module: %w", err)
	}

	return &Linear{
		Wrapper: &Wrapper{Mem: mod.ExportedMemory("memory")},
		rt:      rt,
		mod:     mod,
	}, nil
}

// Close releases the runtime and its memory.
func (l *Linear) Close(ctx context.Context) error {
	return l.rt.Close(ctx)
}

// memoryModule encodes a module with one memory of the given minimum size
// exported as "memory".
func memoryModule(pages uint32) []byte {
	mod := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}

	// memory section: 1 memory, no max, min pages
	memSec := binary.AppendUvarint([]byte{0x01, 0x00}, uint64(pages))
	mod = append(mod, 0x05)
	mod = binary.AppendUvarint(mod, uint64(len(memSec)))
	mod = append(mod, memSec...)

	// export section: "memory" -> memory 0
	expSec := []byte{0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00}
	mod = append(mod, 0x07)
	mod = binary.AppendUvarint(mod, uint64(len(expSec)))
	mod = append(mod, expSec...)

	return mod
}
