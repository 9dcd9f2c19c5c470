package pass

import (
	"github.com/npupass/compiler/internal/graph"
	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
	"github.com/npupass/compiler/internal/strategy"
)

// LinearWorkingNodes is the scratch result FindLinearWorkingNodes builds
// while extending a node chain: which nodes it tentatively includes, the
// MCE/PLE it found, and the most recent successful strategy selection
// against that node set (spec.md §3). StrategySelected, MceNode,
// FuseNode, Algorithm and ValidBlockConfigs reflect the *last attempted*
// extension, which may have failed
// even when WorkingNodes/StrategyConfig still hold an earlier success —
// see find.go for why that distinction matters.
type LinearWorkingNodes struct {
	WorkingNodes []graph.NodeID

	HasMceOp bool
	MceNode  graph.NodeID

	HasFusePle bool
	FuseNode   graph.NodeID

	StrategySelected     bool
	StrategyConfig       strategy.StrategyConfig
	RequiredOutputFormat shape.DataFormat
	OutputLocation       shape.BufferLocation
	SramAllocatorAfter   *sram.SramAllocator
	Algorithm            op.Algorithm
	ValidBlockConfigs    []shape.BlockConfig
}

// Pass is one fully-parameterized MCE(+PLE) invocation: the consumed
// nodes, the chosen SRAM layout, where its output lives, and the
// intermediate compression format chosen for a DRAM-bound output.
type Pass struct {
	Nodes                   []graph.NodeID
	StrategyConfig          strategy.StrategyConfig
	OutputLocation          shape.BufferLocation
	IntermediateCompression shape.CompressionFormat
	Algorithm               op.Algorithm
}

// Outcome is CreateGreedily's result: at most one of Pass (success) or
// Hint (a graph-mutation hint for the caller's retry loop) is populated;
// both empty means no pass was built and there is no hint to offer (for
// example no MCE was found, or nothing fit and no upstream node is in
// SRAM). It is never an error.
type Outcome struct {
	Pass    *Pass
	Hint    graph.FixGraphHint
	HasHint bool
}
