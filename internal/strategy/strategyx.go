package strategy

import (
	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
)

// WeightsReloadingOption is StrategyX's choice of whether weights are
// reloaded from DRAM between stripes, and if so, whether double-buffered.
type WeightsReloadingOption int

const (
	NoReloading WeightsReloadingOption = iota
	ReloadingDoubleBuffering
	ReloadingNoDoubleBuffering
)

// XContext carries the extra facts StrategyX needs beyond a plain
// StripeRequest: whether the op is fully-connected, whether upsampling is
// active, and the upsample kind (which fixes the required block config).
type XContext struct {
	IsFullyConnected bool
	Upsample         op.UpsampleType
}

func isBlockCompatibleForX(b shape.BlockConfig, totalAccumulatorsPerOg uint32, ctx XContext) bool {
	if b.Width*b.Height > totalAccumulatorsPerOg {
		return false
	}
	if ctx.IsFullyConnected {
		return b.Width == 8 && b.Height == 8
	}
	if ctx.Upsample != op.UpsampleOff {
		return b.Width == 16 && b.Height == 16
	}
	return true
}

// TryInputXYOutputXYZ is StrategyX's fully-connected-only sub-scheduler:
// one block, full-channel input, input-buffering tried true then false.
func TryInputXYOutputXYZ(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig, ctx XContext) (StripeResult, bool, *sram.SramAllocator) {
	if !ctx.IsFullyConnected {
		return StripeResult{}, false, nil
	}
	for _, block := range blocks {
		if !isBlockCompatibleForX(block, req.Caps.TotalAccumulatorsPerOg, ctx) {
			continue
		}
		outW := req.PleMultiplier.W.Apply(block.Width)
		outH := req.PleMultiplier.H.Apply(block.Height)
		for _, inputPreloaded := range [2]bool{true, false} {
			candidate := req
			candidate.RequestedOutputStripe = shape.TensorShape{N: 1, H: outH, W: outW, C: req.OutputTensorShape.C}
			candidate.AllowSubBrickGroupStripe = true
			candidate.InputPreloaded = inputPreloaded
			if res, a, ok := tryCandidate(alloc, candidate, block, SX); ok {
				return res, true, a
			}
		}
	}
	return StripeResult{}, false, nil
}

// TryInputZXYOutputXYZ is StrategyX's general fallback: split the input in
// C and iterate block configs, weight-reloading policies, and
// input-buffering policies until one combination fits.
func TryInputZXYOutputXYZ(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig, ctx XContext) (StripeResult, bool, *sram.SramAllocator) {
	if req.InputIsStatic {
		return StripeResult{}, false, nil
	}
	compatible := make([]shape.BlockConfig, 0, len(blocks))
	for _, b := range blocks {
		if isBlockCompatibleForX(b, req.Caps.TotalAccumulatorsPerOg, ctx) {
			compatible = append(compatible, b)
		}
	}
	compatible = shape.SortBlockConfigs(compatible, req.OutputTensorShape.H, req.OutputTensorShape.W, weightsWiderThanTall(req))

	compressionOptions := []bool{true, false}
	if ctx.IsFullyConnected {
		compressionOptions = []bool{false}
	}

	type bufferingPolicy struct {
		allowInputBuffering bool
		avoidInputReloading bool
	}
	policies := []bufferingPolicy{
		{allowInputBuffering: true, avoidInputReloading: true},
		{allowInputBuffering: true, avoidInputReloading: false},
		{allowInputBuffering: false, avoidInputReloading: false},
	}

	reloadOptions := []WeightsReloadingOption{NoReloading, ReloadingDoubleBuffering, ReloadingNoDoubleBuffering}

	for _, reload := range reloadOptions {
		for _, pol := range policies {
			for k := uint32(2); k < req.InputTensorShape.C; k++ {
				inC := req.InputTensorShape.C / k
				if inC == 0 || inC >= req.InputTensorShape.C {
					continue
				}
				for _, block := range compatible {
					for _, useCompression := range compressionOptions {
						candidate := req
						candidate.AllowSubBrickGroupStripe = true
						candidate.RequestedOutputStripe = scaledOutputForInputC(req, inC)
						candidate.InputPreloaded = pol.allowInputBuffering && !pol.avoidInputReloading
						candidate.MaxWeightTileSlots = weightReloadSlots(reload)
						if useCompression {
							candidate.RequestedOutputStripe = alignForFcaf(candidate.RequestedOutputStripe, req.OutputTensorShape)
						}
						res, a, ok := tryCandidate(alloc, candidate, block, SX)
						if !ok {
							continue
						}
						// Reject results that collapse to the full input
						// channel count: that is Strategy3, not X.
						if res.Config.Input.StripeShape.C >= req.InputTensorShape.C {
							continue
						}
						return res, true, a
					}
				}
			}
		}
	}
	return StripeResult{}, false, nil
}

func weightReloadSlots(r WeightsReloadingOption) uint32 {
	switch r {
	case NoReloading:
		return defaultMaxWeightTileSlots
	case ReloadingDoubleBuffering:
		return 2
	default:
		return 1
	}
}

func scaledOutputForInputC(req StripeRequest, inC uint32) shape.TensorShape {
	outC := req.MceMultiplier.C.Apply(inC)
	if outC == 0 {
		outC = req.OutputTensorShape.C
	}
	return shape.TensorShape{N: 1, H: req.OutputTensorShape.H, W: req.OutputTensorShape.W, C: outC}
}

// alignForFcaf rounds H,W up to 8 and C up to 16 (FCAF-wide), or to 32 when
// the full tensor H,W are already <= 8 (FCAF-deep), per SPEC_FULL.md §4.5.
func alignForFcaf(s shape.TensorShape, fullTensor shape.TensorShape) shape.TensorShape {
	out := s
	out.H = shape.RoundUpToMultiple(s.H, 8)
	out.W = shape.RoundUpToMultiple(s.W, 8)
	if fullTensor.H <= 8 && fullTensor.W <= 8 {
		out.C = shape.RoundUpToMultiple(s.C, 32)
	} else {
		out.C = shape.RoundUpToMultiple(s.C, 16)
	}
	return out
}

// TryStrategyX tries the fully-connected-only scheduler first, then the
// general channel-split fallback.
func TryStrategyX(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig, ctx XContext) (StripeResult, bool, *sram.SramAllocator) {
	if res, ok, a := TryInputXYOutputXYZ(alloc, req, blocks, ctx); ok {
		return res, true, a
	}
	return TryInputZXYOutputXYZ(alloc, req, blocks, ctx)
}

// IsStrategyX reports whether StrategyX should even be attempted, per
// SPEC_FULL.md §4.5: the op must be Convolution or FullyConnected, the
// algorithm must be Direct, and either no strategy has succeeded yet, or
// the one that succeeded is S7. On top of that, a convolution qualifies
// only when S7 is among the allowed strategies; fully-connected always
// qualifies.
func IsStrategyX(mceOp op.MceOperation, algorithm op.Algorithm, current Tag, s7Allowed bool) bool {
	if algorithm != op.Direct {
		return false
	}
	if mceOp != op.Convolution && mceOp != op.FullyConnected {
		return false
	}
	if current != S7 && current != None {
		return false
	}
	return s7Allowed || mceOp == op.FullyConnected
}
