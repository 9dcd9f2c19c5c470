package strategy

import (
	"github.com/sirupsen/logrus"

	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
)

type strategyFunc func(*sram.SramAllocator, StripeRequest, []shape.BlockConfig) (StripeResult, bool, *sram.SramAllocator)

var dispatch = map[Tag]strategyFunc{
	S0: Strategy0,
	S1: Strategy1,
	S3: Strategy3,
	S4: Strategy4,
	S6: Strategy6,
	S7: Strategy7,
}

// ChooseAndSetupStrategy tries strategies in the given preference order,
// each against the given (already PLE/algorithm-filtered) block configs.
// The first strategy to succeed wins; StrategyX is not in this list — the
// caller invokes it separately once IsStrategyX says it applies (see
// SPEC_FULL.md §4.5/§4.9).
func ChooseAndSetupStrategy(alloc *sram.SramAllocator, req StripeRequest, order []Tag, blocks []shape.BlockConfig) (StripeResult, bool, *sram.SramAllocator) {
	for _, tag := range order {
		fn, known := dispatch[tag]
		if !known {
			logrus.Warnf("strategy: %s is not a selectable strategy, skipping", tag)
			continue
		}
		if res, ok, a := fn(alloc, req, blocks); ok {
			logrus.Debugf("strategy: selected %s block=%dx%d", tag, res.Config.BlockWidth, res.Config.BlockHeight)
			return res, true, a
		}
	}
	return StripeResult{}, false, nil
}

// GetValidStrategies clears the 0/1/3/4/6/7 candidate list entirely when
// the MCE operation is fully-connected: only StrategyX is ever tried for
// that op (SPEC_FULL.md §9, invariant 8.5).
func GetValidStrategies(mceOp op.MceOperation, allowed []Tag) []Tag {
	if mceOp == op.FullyConnected {
		return nil
	}
	out := make([]Tag, len(allowed))
	copy(out, allowed)
	return out
}

// FilterForPle removes strategies the fused PLE operation cannot express:
// MaxPool-3x3 cannot split width (removes S4, S6); TransposeXY cannot
// split width or height at all (removes S0, S4, S6, S7).
func FilterForPle(pleOp op.PleOperation, hasFusedPle bool, strategies []Tag) []Tag {
	if !hasFusedPle {
		return strategies
	}
	excluded := map[Tag]bool{}
	if pleOp.IsMaxPool3x3() {
		excluded[S4] = true
		excluded[S6] = true
	}
	if pleOp == op.TransposeXY {
		excluded[S0] = true
		excluded[S4] = true
		excluded[S6] = true
		excluded[S7] = true
	}
	out := make([]Tag, 0, len(strategies))
	for _, t := range strategies {
		if !excluded[t] {
			out = append(out, t)
		}
	}
	return out
}

// FilterBlockConfigsForAlgorithm keeps only block configs valid for the
// chosen convolution algorithm. 1D Winograd (one kernel dimension == 1)
// and Direct both accept every block config. 2D Winograd (both kernel
// dimensions > 1) restricts to square blocks: the transform tiles the
// MCE input block into square patches along both spatial dimensions, so
// a non-square block config would need two different transform sizes
// in flight at once, which the hardware does not support. This is a
// simplified stand-in for the real FilterAlgoBlockConfigs (its body
// wasn't in the retrieved source); if no square block survives, every
// block is returned rather than leaving the caller with an empty list.
func FilterBlockConfigsForAlgorithm(blocks []shape.BlockConfig, algorithm op.Algorithm, kernelH, kernelW uint32) []shape.BlockConfig {
	if algorithm != op.Winograd || kernelH <= 1 || kernelW <= 1 {
		return blocks
	}
	square := make([]shape.BlockConfig, 0, len(blocks))
	for _, b := range blocks {
		if b.Width == b.Height {
			square = append(square, b)
		}
	}
	if len(square) == 0 {
		return blocks
	}
	return square
}
