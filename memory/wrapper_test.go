package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

func TestWrap_Nil(t *testing.T) {
	if mem := Wrap(nil); mem != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestMemoryModule_Encoding(t *testing.T) {
	if got := memoryModule(1); !bytes.Equal(got, memoryWASM) {
		t.Errorf("memoryModule(1):\n got % x\nwant % x", got, memoryWASM)
	}

	// 200 pages needs a two-byte LEB128
	got := memoryModule(200)
	if got[9] != 0x04 || got[12] != 0xc8 || got[13] != 0x01 {
		t.Errorf("memoryModule(200) memory section: % x", got[8:14])
	}
}

func TestWrapper_ReadWrite(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}
	defer compiled.Close(ctx)

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	defer mod.Close(ctx)

	mem := Wrap(mod.ExportedMemory("memory"))
	if mem == nil {
		t.Fatal("expected non-nil wrapped memory")
	}

	data := []byte{1, 2, 3, 4}
	if err := mem.Write(100, data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := mem.Read(100, 4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Read = %v, want %v", got, data)
	}

	if err := mem.Write(65535, data); err == nil {
		t.Error("expected out of bounds write error")
	}
	if _, err := mem.Read(65534, 4); err == nil {
		t.Error("expected out of bounds read error")
	}
}

func TestLinear(t *testing.T) {
	ctx := context.Background()

	lin, err := NewLinear(ctx, 2)
	if err != nil {
		t.Fatalf("NewLinear: %v", err)
	}
	defer lin.Close(ctx)

	if lin.Size() != 2*65536 {
		t.Errorf("Size = %d, want %d", lin.Size(), 2*65536)
	}

	if err := lin.Write(70000, []byte{0xAB}); err != nil {
		t.Fatalf("Write in second page: %v", err)
	}
	got, err := lin.Read(70000, 1)
	if err != nil || got[0] != 0xAB {
		t.Errorf("Read = %v, %v", got, err)
	}
}

func TestNewLinear_BadPages(t *testing.T) {
	ctx := context.Background()
	for _, pages := range []uint32{0, MaxPages + 1} {
		if _, err := NewLinear(ctx, pages); err == nil {
			t.Errorf("NewLinear(%d): expected error", pages)
		}
	}
}
