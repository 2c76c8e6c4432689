package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLayout  Phase = "layout"  // record layout construction
	PhaseMapping Phase = "mapping" // enum ordinal map construction
	PhaseEncode  Phase = "encode"  // value to bits
	PhaseDecode  Phase = "decode"  // bits to value
	PhaseLoad    Phase = "load"    // archive and memory loading
	PhaseParse   Phase = "parse"   // schema parsing
	PhaseRuntime Phase = "runtime" // runtime operations
)

// Kind categorizes the error
type Kind string

const (
	KindNotByteAligned     Kind = "not_byte_aligned"
	KindFieldWidthMismatch Kind = "field_width_mismatch"
	KindNonPowerOfTwo      Kind = "non_power_of_two"
	KindOrdinalOutOfRange  Kind = "ordinal_out_of_range"
	KindUnknownOrdinal     Kind = "unknown_ordinal"
	KindUnknownVariant     Kind = "unknown_variant"
	KindDuplicate          Kind = "duplicate"
	KindFieldUnknown       Kind = "field_unknown"
	KindTypeMismatch       Kind = "type_mismatch"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidData        Kind = "invalid_data"
	KindUnsupported        Kind = "unsupported"
	KindLayoutMismatch     Kind = "layout_mismatch"
	KindNotFound           Kind = "not_found"
)

// Error is the structured error type used throughout bitpack
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Layout construction errors

// NotByteAligned reports a layout whose total width is not a multiple of 8.
// Value holds the excess bit count.
func NotByteAligned(layout string, totalBits uint32) *Error {
	excess := totalBits % 8
	return &Error{
		Phase: PhaseLayout,
		Kind:  KindNotByteAligned,
		Path:  []string{layout},
		Detail: fmt.Sprintf("total width %d bits is not a multiple of 8 (%d excess, %d short of %d)",
			totalBits, excess, 8-excess, totalBits+8-excess),
		Value: excess,
	}
}

// FieldWidthMismatch reports a failed explicit width assertion.
// Value holds the actual width.
func FieldWidthMismatch(layout, field string, expected, actual uint32) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindFieldWidthMismatch,
		Path:   []string{layout, field},
		Detail: fmt.Sprintf("expected %d bits, got %d", expected, actual),
		Value:  actual,
	}
}

// Duplicate reports a name or ordinal declared twice.
func Duplicate(phase Phase, path []string, what string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Path:   path,
		Detail: fmt.Sprintf("duplicate %s %v", what, value),
		Value:  value,
	}
}

// Mapping construction errors

// NonPowerOfTwoVariantCount reports an auto-ordinal map whose variant count
// does not fill its bit width exactly.
func NonPowerOfTwoVariantCount(mapping string, count int, bits uint32) *Error {
	return &Error{
		Phase:  PhaseMapping,
		Kind:   KindNonPowerOfTwo,
		Path:   []string{mapping},
		Detail: fmt.Sprintf("%d variants do not fill %d bits (need %d)", count, bits, uint64(1)<<bits),
		Value:  count,
	}
}

// OrdinalOutOfRange reports a variant ordinal that does not fit the map width.
func OrdinalOutOfRange(mapping, variant string, ordinal, max uint64) *Error {
	return &Error{
		Phase:  PhaseMapping,
		Kind:   KindOrdinalOutOfRange,
		Path:   []string{mapping, variant},
		Detail: fmt.Sprintf("ordinal %d out of range (max %d)", ordinal, max),
		Value:  ordinal,
	}
}

// Data errors

// UnknownOrdinal reports a raw enum value no variant owns.
func UnknownOrdinal(path []string, raw uint64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownOrdinal,
		Path:   path,
		Detail: fmt.Sprintf("no variant for ordinal %d", raw),
		Value:  raw,
	}
}

// UnknownVariant reports an enum variant name the map does not contain.
func UnknownVariant(path []string, name string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnknownVariant,
		Path:   path,
		Detail: fmt.Sprintf("unknown variant %q", name),
		Value:  name,
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// TypeMismatch reports an accessor used on a field of another kind.
func TypeMismatch(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("field is %s, not %s", got, want),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// LayoutMismatch reports data bound to a different layout than expected.
func LayoutMismatch(phase Phase, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLayoutMismatch,
		Detail: fmt.Sprintf("expected layout %s, got %s", want, got),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
