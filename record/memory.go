package record

import (
	"fmt"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
)

// Store writes the packed bytes to mem at addr.
func (r *Record) Store(mem bitpack.Memory, addr uint32) error {
	if err := mem.Write(addr, r.data); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindOutOfBounds, err,
			fmt.Sprintf("store %s at %#x", r.layout.Name(), addr))
	}
	return nil
}

// Load reads one record of layout l from mem at addr. The bytes are copied
// out of mem.
func Load(l *layout.Layout, mem bitpack.Memory, addr uint32) (*Record, error) {
	data, err := mem.Read(addr, l.ByteSize())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindOutOfBounds, err,
			fmt.Sprintf("load %s at %#x", l.Name(), addr))
	}
	return FromBytes(l, data)
}

// StoreAll writes recs back to back starting at addr. Every record must
// share one layout.
func StoreAll(mem bitpack.Memory, addr uint32, recs []*Record) error {
	if len(recs) == 0 {
		return nil
	}
	l := recs[0].layout
	size := uint64(l.ByteSize())
	if end := uint64(addr) + size*uint64(len(recs)); end > 1<<32 {
		return errors.InvalidInput(errors.PhaseRuntime, []string{l.Name()},
			fmt.Sprintf("%d records at %#x exceed the 32-bit address space", len(recs), addr))
	}

	buf := make([]byte, 0, size*uint64(len(recs)))
	for _, r := range recs {
		if r.layout != l {
			return errors.LayoutMismatch(errors.PhaseRuntime, l.Name(), r.layout.Name())
		}
		buf = r.AppendBytes(buf)
	}
	if err := mem.Write(addr, buf); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindOutOfBounds, err,
			fmt.Sprintf("store %d %s records at %#x", len(recs), l.Name(), addr))
	}
	return nil
}

// LoadAll reads n consecutive records of layout l starting at addr.
func LoadAll(l *layout.Layout, mem bitpack.Memory, addr uint32, n int) ([]*Record, error) {
	size := uint64(l.ByteSize())
	total := size * uint64(n)
	if n < 0 || total/size != uint64(n) || total > 0xFFFFFFFF || uint64(addr)+total > 1<<32 {
		return nil, errors.InvalidInput(errors.PhaseLoad, []string{l.Name()},
			fmt.Sprintf("%d records at %#x exceed the 32-bit address space", n, addr))
	}

	data, err := mem.Read(addr, uint32(total))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindOutOfBounds, err,
			fmt.Sprintf("load %d %s records at %#x", n, l.Name(), addr))
	}

	out := make([]*Record, n)
	for i := range out {
		r := New(l)
		copy(r.data, data[uint64(i)*size:])
		out[i] = r
	}
	return out, nil
}
