package layout

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/multierr"

	bperrors "github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/ordinal"
)

func TestBuild_Offsets(t *testing.T) {
	l, err := Build("cross",
		Uint("a", 1),
		Uint("b", 3),
		Uint("c", 4),
		Uint("d", 24),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantOffsets := []uint32{0, 1, 4, 8}
	for i, want := range wantOffsets {
		if got := l.Offset(i); got != want {
			t.Errorf("offset %d: got %d, want %d", i, got, want)
		}
	}
	if l.TotalBits() != 32 {
		t.Errorf("total bits: got %d, want 32", l.TotalBits())
	}
	if l.ByteSize() != 4 {
		t.Errorf("byte size: got %d, want 4", l.ByteSize())
	}
}

func TestBuild_NoGaps(t *testing.T) {
	l := MustBuild("wide",
		Uint("a", 9),
		Uint("b", 8),
		Uint("c", 6),
		Uint("d", 13),
		Uint("x64", 64),
		Uint("e", 4),
	)

	var sum uint32
	for i := 0; i < l.NumFields(); i++ {
		f := l.Field(i)
		if f.Offset != sum {
			t.Errorf("field %s: offset %d, want %d", f.Name, f.Offset, sum)
		}
		if i+1 < l.NumFields() && l.Field(i+1).Offset != f.End() {
			t.Errorf("gap after %s", f.Name)
		}
		sum += f.Bits
	}
	if sum != l.TotalBits() || sum != 104 {
		t.Errorf("total: sum %d, TotalBits %d, want 104", sum, l.TotalBits())
	}
	if l.ByteSize() != 13 {
		t.Errorf("byte size: got %d, want 13", l.ByteSize())
	}
}

func TestBuild_NotByteAligned(t *testing.T) {
	_, err := Build("short", Uint("a", 3), Uint("b", 9))
	if err == nil {
		t.Fatal("expected error")
	}

	var e *bperrors.Error
	if !errors.As(err, &e) || e.Kind != bperrors.KindNotByteAligned {
		t.Fatalf("got %v, want not_byte_aligned", err)
	}
	if e.Value != uint32(4) {
		t.Errorf("excess bits: got %v, want 4", e.Value)
	}
	if !strings.Contains(e.Detail, "4 short of 16") {
		t.Errorf("detail: %q", e.Detail)
	}
}

func TestBuild_FieldKinds(t *testing.T) {
	modes := ordinal.MustBuild("mode",
		ordinal.Variant{Name: "idle", Ordinal: 0},
		ordinal.Variant{Name: "run", Ordinal: 1},
		ordinal.Variant{Name: "halt", Ordinal: 2},
	)

	l, err := Build("hdr",
		Uint("version", 3),
		Bool("urgent"),
		Enum("mode", modes).Expecting(2),
		Uint("length", 10),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	f, ok := l.Lookup("mode")
	if !ok {
		t.Fatal("mode not found")
	}
	if f.Kind != KindEnum || f.Bits != 2 || f.Offset != 4 || f.Enum != modes {
		t.Errorf("mode field: %+v", f)
	}
	if f, _ := l.Lookup("urgent"); f.Bits != 1 || f.Kind != KindBool {
		t.Errorf("urgent field: %+v", f)
	}
	if i, ok := l.Index("length"); !ok || i != 3 {
		t.Errorf("Index(length) = %d, %v", i, ok)
	}
	if _, ok := l.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}

func TestBuild_WidthMismatch(t *testing.T) {
	modes := ordinal.MustBuild("mode",
		ordinal.Variant{Name: "a", Ordinal: 0},
		ordinal.Variant{Name: "b", Ordinal: 1},
	)

	tests := []struct {
		name string
		spec FieldSpec
	}{
		{"expect on uint", Uint("x", 7).Expecting(8)},
		{"expect on enum", Enum("x", modes).Expecting(2)},
		{"bool with width", FieldSpec{Name: "x", Kind: KindBool, Bits: 2}},
		{"enum with width", FieldSpec{Name: "x", Kind: KindEnum, Enum: modes, Bits: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build("l", tt.spec, Uint("pad", 7))
			if !errors.Is(err, &bperrors.Error{Phase: bperrors.PhaseLayout, Kind: bperrors.KindFieldWidthMismatch}) {
				t.Errorf("got %v, want field_width_mismatch", err)
			}
		})
	}
}

func TestBuild_ExpectMatches(t *testing.T) {
	if _, err := Build("l", Uint("x", 7).Expecting(7), Bool("y").Expecting(1)); err != nil {
		t.Errorf("Build: %v", err)
	}
}

func TestBuild_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		specs []FieldSpec
		kind  bperrors.Kind
	}{
		{"empty", nil, bperrors.KindInvalidInput},
		{"zero width", []FieldSpec{Uint("a", 0), Uint("b", 8)}, bperrors.KindInvalidInput},
		{"wider than 64", []FieldSpec{Uint("a", 128)}, bperrors.KindUnsupported},
		{"empty name", []FieldSpec{Uint("", 8)}, bperrors.KindInvalidInput},
		{"duplicate", []FieldSpec{Uint("a", 4), Uint("a", 4)}, bperrors.KindDuplicate},
		{"enum without map", []FieldSpec{{Name: "e", Kind: KindEnum}, Uint("p", 7)}, bperrors.KindInvalidInput},
		{"unknown kind", []FieldSpec{{Name: "e", Kind: Kind(9), Bits: 8}}, bperrors.KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Build("l", tt.specs...)
			if l != nil {
				t.Error("partial layout returned")
			}
			if !errors.Is(err, &bperrors.Error{Phase: bperrors.PhaseLayout, Kind: tt.kind}) {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestBuild_CollectsAllProblems(t *testing.T) {
	_, err := Build("bad",
		Uint("a", 0),
		Uint("b", 65),
		Uint("c", 3),
		Uint("c", 3),
		Uint("d", 5).Expecting(6),
	)

	errs := multierr.Errors(err)
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), err)
	}

	// widths are unresolved, so alignment is not judged
	if errors.Is(err, &bperrors.Error{Phase: bperrors.PhaseLayout, Kind: bperrors.KindNotByteAligned}) {
		t.Error("alignment reported over unresolved widths")
	}
}

func TestBuild_AlignmentReportedWithOtherErrors(t *testing.T) {
	_, err := Build("bad", Uint("a", 3), Uint("a", 4))

	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}
	if !errors.Is(err, &bperrors.Error{Phase: bperrors.PhaseLayout, Kind: bperrors.KindNotByteAligned}) {
		t.Error("alignment error missing")
	}
	if !errors.Is(err, &bperrors.Error{Phase: bperrors.PhaseLayout, Kind: bperrors.KindDuplicate}) {
		t.Error("duplicate error missing")
	}
}

func TestField_StorageBits(t *testing.T) {
	tests := []struct{ bits, want uint32 }{
		{1, 8}, {8, 8}, {9, 16}, {16, 16}, {17, 32}, {32, 32}, {33, 64}, {64, 64},
	}
	for _, tt := range tests {
		f := Field{Bits: tt.bits}
		if got := f.StorageBits(); got != tt.want {
			t.Errorf("StorageBits(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

func TestField_Max(t *testing.T) {
	if got := (Field{Bits: 13}).Max(); got != 0x1FFF {
		t.Errorf("Max(13) = %#x", got)
	}
	if got := (Field{Bits: 64}).Max(); got != ^uint64(0) {
		t.Errorf("Max(64) = %#x", got)
	}
}

func TestFingerprint(t *testing.T) {
	a := MustBuild("l", Uint("a", 4), Uint("b", 4))
	b := MustBuild("l", Uint("a", 4), Uint("b", 4))
	c := MustBuild("l", Uint("a", 3), Uint("b", 5))
	d := MustBuild("l", Uint("b", 4), Uint("a", 4))

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical layouts should share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different widths should change the fingerprint")
	}
	if a.Fingerprint() == d.Fingerprint() {
		t.Error("different order should change the fingerprint")
	}

	m1 := ordinal.MustBuild("m", ordinal.Variant{Name: "x", Ordinal: 0}, ordinal.Variant{Name: "y", Ordinal: 1})
	m2 := ordinal.MustBuild("m", ordinal.Variant{Name: "x", Ordinal: 1}, ordinal.Variant{Name: "y", Ordinal: 0})
	e1 := MustBuild("l", Enum("e", m1), Uint("p", 7))
	e2 := MustBuild("l", Enum("e", m2), Uint("p", 7))
	if e1.Fingerprint() == e2.Fingerprint() {
		t.Error("different enum tables should change the fingerprint")
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	l := MustBuild("l", Uint("a", 8))
	fs := l.Fields()
	fs[0].Bits = 3
	if l.Field(0).Bits != 8 {
		t.Error("layout mutated through Fields()")
	}
}

func TestKind_String(t *testing.T) {
	for _, k := range []Kind{KindUnsigned, KindBool, KindEnum} {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if Kind(42).String() != "unknown" {
		t.Errorf("Kind(42) = %q", Kind(42).String())
	}
	if _, ok := ParseKind("float"); ok {
		t.Error("ParseKind(float) should fail")
	}
}

func TestLayout_String(t *testing.T) {
	l := MustBuild("hdr", Uint("a", 7), Bool("b"))
	want := "hdr{a uint7@0, b bool1@7} 1 bytes"
	if got := l.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
