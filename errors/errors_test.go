package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseLayout,
				Kind:   KindFieldWidthMismatch,
				Path:   []string{"header", "version"},
				Detail: "expected 4 bits, got 3",
			},
			contains: []string{"[layout]", "field_width_mismatch", "header.version", "expected 4 bits"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindUnknownOrdinal,
			},
			contains: []string{"[decode]", "unknown_ordinal"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "read header",
				Cause:  errors.New("unexpected EOF"),
			},
			contains: []string{"[load]", "invalid_data", "read header", "caused by", "unexpected EOF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseLayout,
		Kind:  KindNotByteAligned,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseLayout, Kind: KindNotByteAligned}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseMapping, Kind: KindNotByteAligned}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseLayout, Kind: KindDuplicate}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, &Error{Phase: PhaseLayout, Kind: KindNotByteAligned}) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindUnknownVariant).
		Path("packet", "mode").
		Value("turbo").
		Cause(cause).
		Detail("no variant %q", "turbo").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindUnknownVariant {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownVariant)
	}
	if len(err.Path) != 2 || err.Path[0] != "packet" || err.Path[1] != "mode" {
		t.Errorf("Path = %v, want [packet mode]", err.Path)
	}
	if err.Value != "turbo" {
		t.Errorf("Value = %v, want turbo", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != `no variant "turbo"` {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("NotByteAligned", func(t *testing.T) {
		err := NotByteAligned("hdr", 13)
		if err.Kind != KindNotByteAligned || err.Phase != PhaseLayout {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if err.Value != uint32(5) {
			t.Errorf("Value = %v, want 5", err.Value)
		}
		if !strings.Contains(err.Detail, "13 bits") || !strings.Contains(err.Detail, "3 short of 16") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("FieldWidthMismatch", func(t *testing.T) {
		err := FieldWidthMismatch("hdr", "mode", 3, 2)
		if err.Kind != KindFieldWidthMismatch {
			t.Errorf("Kind = %v", err.Kind)
		}
		if err.Value != uint32(2) {
			t.Errorf("Value = %v, want 2", err.Value)
		}
		if strings.Join(err.Path, ".") != "hdr.mode" {
			t.Errorf("Path = %v", err.Path)
		}
	})

	t.Run("NonPowerOfTwoVariantCount", func(t *testing.T) {
		err := NonPowerOfTwoVariantCount("color", 3, 2)
		if err.Kind != KindNonPowerOfTwo || err.Phase != PhaseMapping {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Detail, "need 4") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("OrdinalOutOfRange", func(t *testing.T) {
		err := OrdinalOutOfRange("color", "blue", 9, 3)
		if err.Kind != KindOrdinalOutOfRange {
			t.Errorf("Kind = %v", err.Kind)
		}
		if err.Value != uint64(9) {
			t.Errorf("Value = %v, want 9", err.Value)
		}
	})

	t.Run("UnknownOrdinal", func(t *testing.T) {
		err := UnknownOrdinal([]string{"color"}, 3)
		if err.Kind != KindUnknownOrdinal || err.Phase != PhaseDecode {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if err.Value != uint64(3) {
			t.Errorf("Value = %v, want 3", err.Value)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseLoad, []string{"rec"}, 10, 5)
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseDecode, []string{"rec", "a"}, "bool", "uint")
		if !strings.Contains(err.Error(), "field is uint, not bool") {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}
