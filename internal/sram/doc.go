// Package sram implements the bank-sliced, double-ended bump allocator
// used to lay out the input/weight/output/PLE tiles of one pass.
//
// # Reading Guide
//
//   - allocator.go: SramAllocator, Allocate/Free, Clone for the
//     "try on a copy, adopt on success" idiom used throughout strategy
//     selection.
package sram
