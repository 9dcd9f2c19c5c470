package graph

import (
	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/shape"
)

// NodeID is an opaque index into a Graph's arena. Graphs are append-only
// and a node's inputs are always lower-indexed IDs already present in the
// arena, so cycles are impossible by construction.
type NodeID int

// NodeKind is the closed set of node kinds the pass builder recognizes.
// Any kind outside this set is represented as KindOther, which always
// terminates chain extension.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindFormatConversion
	KindExtractSubtensor
	KindMceOperation
	KindMcePostProcess
	KindFuseOnlyPleOperation
	KindRequantize
	KindCopy
)

func (k NodeKind) String() string {
	switch k {
	case KindFormatConversion:
		return "FormatConversion"
	case KindExtractSubtensor:
		return "ExtractSubtensor"
	case KindMceOperation:
		return "MceOperation"
	case KindMcePostProcess:
		return "McePostProcess"
	case KindFuseOnlyPleOperation:
		return "FuseOnlyPleOperation"
	case KindRequantize:
		return "Requantize"
	case KindCopy:
		return "Copy"
	default:
		return "Other"
	}
}

// CompressionHint constrains whether a node's input may be read compressed.
type CompressionHint int

const (
	CompressionNone CompressionHint = iota
	CompressionRequiredUncompressed
)

// PleOpInfo describes a fused PLE operation: which operation, and how it
// scales its input shape to its output shape.
type PleOpInfo struct {
	Op         op.PleOperation
	Multiplier shape.ShapeMultiplier
}

// Node is a tagged union over NodeKind: Kind selects which of the
// per-kind fields below are meaningful, replacing the downcast-based
// dispatch of a class hierarchy (SPEC_FULL.md §9).
type Node struct {
	ID   NodeID
	Kind NodeKind

	// InputIDs are this node's data-dependency inputs, always
	// lower-indexed than ID.
	InputIDs []NodeID

	InputFormat   shape.DataFormat
	Format        shape.DataFormat
	InputShape    shape.TensorShape
	OutputShape   shape.TensorShape
	Location      shape.BufferLocation
	InputLocation shape.BufferLocation

	// LocationHint is set only by graph.ApplyHint when a HintLocation
	// fires on a previously-failed attempt at this node — it requires a
	// future CreateGreedily attempt to keep this node's output in DRAM.
	// It is distinct from Location (the committed buffer placement of a
	// successfully-built pass): a node can have LocationHint ==
	// LocationDram before any pass through it has ever succeeded, and
	// Location is meaningless until one has.
	LocationHint shape.BufferLocation

	CompressionHint CompressionHint

	// Meaningful when Kind == KindMceOperation.
	MceOp         op.MceOperation
	Algorithm     op.Algorithm
	WeightsFormat shape.DataFormat
	KernelH       uint32
	KernelW       uint32
	StrideH       uint32
	StrideW       uint32
	Upsample      op.UpsampleType
	// MceMultiplier is how this op scales its input shape to its output
	// shape (e.g. 1/stride for a strided convolution).
	MceMultiplier shape.ShapeMultiplier

	// Meaningful when Kind == KindFuseOnlyPleOperation.
	PleOp PleOpInfo

	// CompressedFormat records the intermediate-output compression a
	// prior pass chose for this node's output, if any. Read by the
	// pass builder when deciding whether a downstream consumer's input
	// compression is compatible with its chosen stripe shape.
	CompressedFormat shape.CompressionFormat

	// Applied by graph.ApplyHint; nil until a hint targeting this node
	// has actually been applied by the driver loop. The core pass
	// builder never writes this field itself (hints are returned by
	// value, see hint.go).
	AppliedHint *FixGraphHint
}

// Graph is an append-only arena of nodes.
type Graph struct {
	nodes []Node
}

// NewGraph returns an empty arena.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends n, assigning it the next NodeID.
func (g *Graph) Add(n Node) NodeID {
	id := NodeID(len(g.nodes))
	n.ID = id
	g.nodes = append(g.nodes, n)
	return id
}

// Node returns a pointer to the node with the given ID, for in-place
// mutation (e.g. by ApplyHint).
func (g *Graph) Node(id NodeID) *Node {
	return &g.nodes[id]
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Successor returns the node immediately following id in the arena, and
// whether one exists. The pass builder only ever walks forward along a
// linear chain, so "next node" is simply "next index".
func (g *Graph) Successor(id NodeID) (NodeID, bool) {
	next := id + 1
	if int(next) >= len(g.nodes) {
		return 0, false
	}
	return next, true
}
