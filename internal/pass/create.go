package pass

import (
	"github.com/npupass/compiler/internal/graph"
	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
	"github.com/npupass/compiler/internal/strategy"
)

// freeOrPanic frees offset from alloc. A failure here means the strategy
// engine handed back an allocator whose own tile offsets it can no longer
// account for — an IllegalConfig-class programmer error (SPEC_FULL.md
// §7), fatal by design rather than locally recoverable.
func freeOrPanic(alloc *sram.SramAllocator, offset uint32) {
	if err := alloc.Free("pass", offset); err != nil {
		panic(err)
	}
}

// CreateParams bundles FindParams with the extra knobs CreateGreedily
// needs once a node set has been selected.
type CreateParams struct {
	FindParams

	EnableIntermediateCompression bool
	// ForwardEst loosens the compression-compatibility check the way the
	// original's "forward-looking estimate" mode does, for every strategy
	// except S7 (FCAF is never modeled as compatible with S7's layout).
	ForwardEst bool
}

// CreateGreedily is the top-level entry point: it runs
// FindLinearWorkingNodes, then classifies the result into either a
// committed Pass or a FixGraphHint telling the caller how to mutate the
// graph before retrying (spec.md §4.9).
func CreateGreedily(p CreateParams) Outcome {
	g := p.Graph
	linear := FindLinearWorkingNodes(p.FindParams)

	if !linear.HasMceOp {
		return Outcome{}
	}

	lastID := linear.MceNode
	if len(linear.WorkingNodes) > 0 {
		lastID = linear.WorkingNodes[len(linear.WorkingNodes)-1]
	}
	last := g.Node(lastID)

	// Required-output-format mismatch on the last node.
	if linear.RequiredOutputFormat != shape.FormatNone && last.Format != linear.RequiredOutputFormat {
		return Outcome{Hint: graph.FixGraphConvertOutputTo(lastID, linear.RequiredOutputFormat), HasHint: true}
	}

	// No valid block config, or no strategy fit, while Winograd was in play:
	// fall back to Direct and retry.
	if (len(linear.ValidBlockConfigs) == 0 || !linear.StrategySelected) && linear.Algorithm == op.Winograd {
		return Outcome{Hint: graph.FixGraphAlgorithmHint(linear.MceNode), HasHint: true}
	}

	// MaxPool3x3 after a non-depthwise MCE with no strategy fit: insert an
	// identity depthwise node so the PLE's width-traversal constraint can
	// be met.
	if !linear.StrategySelected && linear.HasFusePle {
		fuse := g.Node(linear.FuseNode)
		mce := g.Node(linear.MceNode)
		if fuse.PleOp.Op.IsMaxPool3x3() && mce.MceOp != op.DepthwiseConvolution {
			return Outcome{Hint: graph.FixGraphInsertIdentityNodeHint(linear.FuseNode, true), HasHint: true}
		}
	}

	if !linear.StrategySelected {
		// SRAM may simply be full: find the nearest upstream node still
		// resident in SRAM and force it to DRAM.
		if nodeID, found := findSramUpstream(g, linear.MceNode); found {
			return Outcome{Hint: graph.FixGraphLocationHint(nodeID), HasHint: true}
		}
		return Outcome{}
	}

	if len(linear.WorkingNodes) == 0 {
		return Outcome{}
	}

	first := g.Node(linear.WorkingNodes[0])

	// NCHW anywhere in the chain restricts us to Strategy3.
	if (first.InputFormat == shape.NCHW || last.Format == shape.NCHW) && linear.StrategyConfig.Strategy != strategy.S3 {
		return Outcome{}
	}

	// NHWC input that the chosen stripe shape doesn't cover fully in either
	// C, or in both H and W, can't be DMA'd by the firmware as NHWC.
	inStripe := linear.StrategyConfig.Input.StripeShape
	if first.InputFormat == shape.NHWC &&
		(inStripe.C < first.InputShape.C ||
			(inStripe.H < first.InputShape.H && inStripe.W < first.InputShape.W)) {
		if producer, ok := firstInput(first); ok {
			return Outcome{Hint: graph.FixGraphConvertOutputTo(producer, shape.NHWCB), HasHint: true}
		}
		return Outcome{}
	}

	// If the IFM is compressed but the chosen stripe shape can't be read
	// compressed, ask the producer to emit it uncompressed instead.
	if producer, ok := firstInput(first); ok {
		prod := g.Node(producer)
		if prod.CompressedFormat != shape.CompressionFormatNone &&
			!isCompressionCompatible(prod.CompressedFormat, inStripe, linear.StrategyConfig.Strategy, p.ForwardEst) {
			return Outcome{Hint: graph.FixGraphCompressionHint(producer), HasHint: true}
		}
	}

	// Commit: adopt the allocator state the winning strategy produced,
	// then free the tiles that don't need to survive past this pass.
	*p.SramAllocator = *linear.SramAllocatorAfter
	freeOrPanic(p.SramAllocator, linear.StrategyConfig.Weights.OffsetBytes)
	freeOrPanic(p.SramAllocator, linear.StrategyConfig.Ple.OffsetBytes)
	if first.InputLocation != shape.LocationSram {
		freeOrPanic(p.SramAllocator, linear.StrategyConfig.Input.OffsetBytes)
	}
	if linear.OutputLocation == shape.LocationDram {
		freeOrPanic(p.SramAllocator, linear.StrategyConfig.Output.OffsetBytes)
	}

	last.Location = linear.OutputLocation
	last.CompressedFormat = chooseCompression(p.EnableIntermediateCompression, last, linear, p.ForwardEst)

	return Outcome{Pass: &Pass{
		Nodes:                   append([]graph.NodeID(nil), linear.WorkingNodes...),
		StrategyConfig:          linear.StrategyConfig,
		OutputLocation:          linear.OutputLocation,
		IntermediateCompression: last.CompressedFormat,
		Algorithm:               linear.Algorithm,
	}}
}

func firstInput(n *graph.Node) (graph.NodeID, bool) {
	if len(n.InputIDs) == 0 {
		return 0, false
	}
	return n.InputIDs[0], true
}

// findSramUpstream walks the data-dependency tree rooted at start's
// inputs looking for a node whose output currently resides in SRAM. The
// arena has no cycles by construction, so a plain DFS terminates.
func findSramUpstream(g *graph.Graph, start graph.NodeID) (graph.NodeID, bool) {
	visited := make(map[graph.NodeID]bool)
	var stack []graph.NodeID
	stack = append(stack, g.Node(start).InputIDs...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		n := g.Node(id)
		if n.Location == shape.LocationSram {
			return id, true
		}
		stack = append(stack, n.InputIDs...)
	}
	return 0, false
}

// isCompressionCompatible mirrors the original's
// IsCompressionFormatCompatible: a stripe must be a multiple of the
// format's cell shape, unless a forward-looking estimate override is in
// effect (never for Strategy7, which FCAF never supports).
func isCompressionCompatible(format shape.CompressionFormat, stripe shape.TensorShape, strat strategy.Tag, forwardEst bool) bool {
	estimateOverride := forwardEst && strat != strategy.S7
	var tensorCompressible bool
	switch format {
	case shape.CompressionFormatFcafDeep:
		tensorCompressible = stripe.H%8 == 0 && stripe.W%8 == 0 && stripe.C%32 == 0
	case shape.CompressionFormatFcafWide:
		tensorCompressible = stripe.H%8 == 0 && stripe.W%16 == 0 && stripe.C%16 == 0
	default:
		return false
	}
	return tensorCompressible || estimateOverride
}

// isNodeCompressible reports whether node's output could be compressed at
// all, independent of any particular stripe shape: its compression hint
// must not forbid it, and its format must be NHWCB (FCAF is a brick-group
// format).
func isNodeCompressible(n *graph.Node) bool {
	return n.CompressionHint != graph.CompressionRequiredUncompressed && n.Format == shape.NHWCB
}

// chooseCompression implements GetIntermediateOutputCompressedFormat:
// FCAF-DEEP is preferred over FCAF-WIDE; compression is only even
// considered when the output actually spills to DRAM and the node allows
// it.
func chooseCompression(enabled bool, last *graph.Node, linear LinearWorkingNodes, forwardEst bool) shape.CompressionFormat {
	if !isNodeCompressible(last) || linear.OutputLocation != shape.LocationDram {
		return shape.CompressionFormatNone
	}
	if !enabled {
		return shape.CompressionFormatNone
	}
	stripe := linear.StrategyConfig.Output.StripeShape
	strat := linear.StrategyConfig.Strategy
	if isCompressionCompatible(shape.CompressionFormatFcafDeep, stripe, strat, forwardEst) {
		return shape.CompressionFormatFcafDeep
	}
	if isCompressionCompatible(shape.CompressionFormatFcafWide, stripe, strat, forwardEst) {
		return shape.CompressionFormatFcafWide
	}
	return shape.CompressionFormatNone
}
