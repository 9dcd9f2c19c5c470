// Package graph models the node chain the pass builder walks: an
// append-only arena of Node values addressed by opaque NodeID indices
// rather than a pointer-threaded class hierarchy (SPEC_FULL.md §9).
//
// # Reading Guide
//
//   - node.go: NodeID, NodeKind, Node (a tagged union: Kind selects which
//     per-kind fields are meaningful), and the Graph arena itself.
//   - hint.go: FixGraphHint, returned by value from the pass builder, and
//     ApplyHint, the one place a hint is written back onto a node.
package graph
