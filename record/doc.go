// Package record provides packed record instances over a layout.
//
// A Record owns exactly layout.ByteSize() bytes, zeroed on creation, and
// references (does not own) its Layout. Accessors compute the field's
// (offset, width) from the layout and delegate the bit work to bitspan.
//
// Name-addressed accessors return an error for unknown names or a kind
// mismatch. Once those are right, the only data-dependent failure is
// GetEnum on a bit pattern the field's ordinal map does not own.
//
// GetAt and SetAt skip the name lookup and panic on a bad index.
package record
