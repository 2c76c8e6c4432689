// Package errors provides structured error types for the bitpack library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the layout/field path, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindUnknownVariant).
//		Path("packet", "mode").
//		Value("turbo").
//		Detail("no such variant").
//		Build()
//
// Or use convenience constructors for the construction and data errors:
//
//	err := errors.NotByteAligned("packet", 13)
//	err := errors.UnknownOrdinal([]string{"packet", "mode"}, 3)
//
// Construction errors are data-independent and fail a build as a whole;
// UnknownOrdinal is the only data error a field read can return once a layout
// exists; FieldUnknown and TypeMismatch report API misuse.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
