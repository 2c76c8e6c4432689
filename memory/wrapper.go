package memory

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/bitpack"
)

// Wrap wraps a wazero api.Memory to implement bitpack.Memory.
func Wrap(mem api.Memory) bitpack.Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to the bitpack.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// Read returns a view of length bytes at offset. The view aliases linear
// memory and is only valid until the next write or memory growth.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}

var (
	_ bitpack.Memory      = (*Wrapper)(nil)
	_ bitpack.MemorySizer = (*Wrapper)(nil)
)
