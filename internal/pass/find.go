package pass

import (
	"github.com/npupass/compiler/internal/graph"
	"github.com/npupass/compiler/internal/hwcaps"
	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
	"github.com/npupass/compiler/internal/strategy"
)

// FindParams is the context FindLinearWorkingNodes needs: where to start,
// the allocator state to try candidates against (never mutated directly —
// every attempt works on a clone), and the strategy/block-config universe
// the caller allows.
type FindParams struct {
	Graph             *graph.Graph
	FirstNode         graph.NodeID
	SramAllocator     *sram.SramAllocator
	Caps              hwcaps.HardwareCapabilities
	AllowedStrategies []strategy.Tag
	AllowedBlocks     []shape.BlockConfig
	EnableWinograd    bool
	BytesPerElement   uint32
}

// effectiveAlgorithm resolves Winograd vs Direct for one MCE node: the
// author may have requested Winograd, but it's only usable for a genuinely
// 2D kernel (both dimensions > 1) and only when the caller has it enabled
// at all.
func effectiveAlgorithm(mce *graph.Node, enableWinograd bool) op.Algorithm {
	if enableWinograd && mce.Algorithm == op.Winograd && mce.KernelH > 1 && mce.KernelW > 1 {
		return op.Winograd
	}
	return op.Direct
}

func containsTag(tags []strategy.Tag, want strategy.Tag) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

func depthMaxFor(caps hwcaps.HardwareCapabilities, mce *graph.Node, haveFuse bool, fuse *graph.Node) uint32 {
	if !haveFuse || !fuse.PleOp.Op.IsMaxPool3x3() {
		return 0
	}
	if mce.MceOp == op.DepthwiseConvolution {
		return caps.NumSrams
	}
	return caps.NumOgs
}

// acceptNext decides whether nextNode may extend the current working set,
// per the ordered acceptance rules of spec.md §4.8. It also reports the
// state-flag updates extending would cause.
type chainState struct {
	haveMce              bool
	mceNode              graph.NodeID
	haveFuse             bool
	fuseNode             graph.NodeID
	extractSeen          bool
	foundPostConversions bool
	foundRequantizes     bool
}

func acceptNext(g *graph.Graph, st *chainState, id graph.NodeID, requiredOutputFormat shape.DataFormat) bool {
	n := g.Node(id)
	switch {
	case !st.haveMce && n.Kind == graph.KindFormatConversion:
		return true
	case !st.haveMce && !st.extractSeen && n.Kind == graph.KindExtractSubtensor:
		st.extractSeen = true
		return true
	case !st.haveMce && n.Kind == graph.KindMceOperation:
		st.haveMce = true
		st.mceNode = id
		return true
	case st.haveMce && !st.haveFuse && !st.foundPostConversions && n.Kind == graph.KindMcePostProcess && !st.foundRequantizes:
		return true
	case st.haveMce && !st.haveFuse && !st.foundPostConversions && n.Kind == graph.KindFuseOnlyPleOperation:
		st.haveFuse = true
		st.fuseNode = id
		return true
	case st.haveMce && n.Kind == graph.KindRequantize:
		if st.haveFuse {
			if !g.Node(st.fuseNode).PleOp.Op.IsAgnosticToRequantisation() {
				return false
			}
		}
		st.foundRequantizes = true
		return true
	case st.haveMce && n.Kind == graph.KindFormatConversion:
		if requiredOutputFormat != shape.FormatNone && n.Format != requiredOutputFormat {
			return false
		}
		st.foundPostConversions = true
		return true
	case st.haveMce && n.Kind == graph.KindCopy:
		return true
	default:
		return false
	}
}

// FindLinearWorkingNodes extends the node chain starting at p.FirstNode
// one node at a time, re-running strategy selection after each tentative
// extension. Only when strategy selection succeeds does it update the
// "committed" working-node set, allocator, and strategy config — so a
// later extension that fails leaves the previously successful result
// intact (spec.md §4.8: "keep the last successful result").
func FindLinearWorkingNodes(p FindParams) LinearWorkingNodes {
	g := p.Graph
	current := p.FirstNode

	var attempted []graph.NodeID
	var st chainState
	requiredOutputFormat := shape.FormatNone

	var res LinearWorkingNodes

	for {
		if !acceptNext(g, &st, current, requiredOutputFormat) {
			break
		}
		attempted = append(attempted, current)
		requiredOutputFormat = shape.FormatNone

		if st.haveMce {
			mce := g.Node(st.mceNode)
			last := g.Node(current)
			first := g.Node(attempted[0])

			algorithm := effectiveAlgorithm(mce, p.EnableWinograd)

			var fuse *graph.Node
			if st.haveFuse {
				fuse = g.Node(st.fuseNode)
			}
			depthMax := depthMaxFor(p.Caps, mce, st.haveFuse, fuse)

			validStrategies := strategy.GetValidStrategies(mce.MceOp, p.AllowedStrategies)
			if st.haveFuse {
				validStrategies = strategy.FilterForPle(fuse.PleOp.Op, true, validStrategies)
			}
			validBlocks := strategy.FilterBlockConfigsForAlgorithm(p.AllowedBlocks, algorithm, mce.KernelH, mce.KernelW)

			pleMult := shape.IdentityMultiplier()
			if st.haveFuse {
				pleMult = fuse.PleOp.Multiplier
			}

			bpe := p.BytesPerElement
			if bpe == 0 {
				bpe = 1
			}

			req := strategy.StripeRequest{
				Caps:                 p.Caps,
				OutputTensorShape:    last.OutputShape,
				InputTensorShape:     mce.InputShape,
				MceMultiplier:        mce.MceMultiplier,
				PleMultiplier:        pleMult,
				KernelH:              mce.KernelH,
				KernelW:              mce.KernelW,
				StrideH:              mce.StrideH,
				StrideW:              mce.StrideW,
				WeightsFormat:        mce.WeightsFormat,
				InputIsStatic:        first.InputLocation == shape.LocationSram,
				InputPreloaded:       first.InputLocation == shape.LocationSram,
				InputPreloadedOffset: 0,
				DepthMax:             depthMax,
				BytesPerElement:      bpe,
			}

			selectedOk := false
			var selCfg strategy.StrategyConfig
			var selAllocAfter *sram.SramAllocator

			attempt := p.SramAllocator.Clone()
			stripeRes, ok, allocAfter := strategy.ChooseAndSetupStrategy(attempt, req, validStrategies, validBlocks)
			if ok {
				selCfg = stripeRes.Config
				selectedOk = true
				selAllocAfter = allocAfter
			}

			s7Allowed := containsTag(validStrategies, strategy.S7)
			tagSoFar := strategy.None
			if selectedOk {
				tagSoFar = selCfg.Strategy
			}
			if strategy.IsStrategyX(mce.MceOp, algorithm, tagSoFar, s7Allowed) {
				xctx := strategy.XContext{IsFullyConnected: mce.MceOp == op.FullyConnected, Upsample: mce.Upsample}
				attemptX := p.SramAllocator.Clone()
				if resX, okX, allocAfterX := strategy.TryStrategyX(attemptX, req, validBlocks, xctx); okX {
					selCfg = resX.Config
					selectedOk = true
					selAllocAfter = allocAfterX
				}
			}

			if selectedOk {
				if (selCfg.Output.StripeShape.C < last.OutputShape.C || selCfg.Output.StripeShape.W < last.OutputShape.W) &&
					mce.MceOp != op.FullyConnected {
					requiredOutputFormat = shape.NHWCB
				} else if mce.MceOp == op.FullyConnected {
					requiredOutputFormat = shape.NHWC
				}

				outputLocation := shape.LocationDram
				if selCfg.Strategy == strategy.S3 && last.Format == shape.NHWCB && last.LocationHint != shape.LocationDram {
					requiredOutputFormat = shape.NHWCB
					outputLocation = shape.LocationSram
				}

				res.WorkingNodes = append([]graph.NodeID(nil), attempted...)
				res.SramAllocatorAfter = selAllocAfter
				res.RequiredOutputFormat = requiredOutputFormat
				res.StrategyConfig = selCfg
				res.OutputLocation = outputLocation
			}
			res.StrategySelected = selectedOk
			res.ValidBlockConfigs = validBlocks
			res.Algorithm = algorithm
			res.HasMceOp = true
			res.MceNode = st.mceNode
			res.HasFusePle = st.haveFuse
			if st.haveFuse {
				res.FuseNode = st.fuseNode
			}
		}

		next, ok := g.Successor(current)
		if !ok {
			break
		}
		current = next
	}

	return res
}
