// Package memory provides memory access adapters for wazero.
//
// Wrap adapts a module's exported api.Memory to bitpack.Memory so packed
// records can be stored into and loaded from guest linear memory. Linear
// hosts a standalone memory-only module for tools and tests that need a
// linear memory without a guest program.
package memory
