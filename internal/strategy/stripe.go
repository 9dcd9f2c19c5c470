package strategy

import (
	"github.com/sirupsen/logrus"

	"github.com/npupass/compiler/internal/hwcaps"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
)

// defaultMaxInputTileSlots and defaultMaxWeightTileSlots mirror the
// source's g_DefaultMaxNumInputBuffersInTile / g_DefaultMaxNumWeightBuffersInTile.
const (
	defaultMaxInputTileSlots  = 3
	defaultMaxWeightTileSlots = 2
)

// WeightStripeShape is the weight-tensor stripe shape, kept distinct from
// shape.TensorShape because HWIO/HWIM weight dimensions (kernel height,
// kernel width, input channels, output channels) don't share TensorShape's
// N,H,W,C semantics.
type WeightStripeShape struct {
	KernelH, KernelW uint32
	InputChannels    uint32
	OutputChannels   uint32
}

// StripeRequest is the full context TryStripeShapes needs to round, size,
// and place one candidate output stripe shape.
type StripeRequest struct {
	Caps hwcaps.HardwareCapabilities

	OutputTensorShape     shape.TensorShape
	InputTensorShape      shape.TensorShape
	RequestedOutputStripe shape.TensorShape

	MceMultiplier shape.ShapeMultiplier
	PleMultiplier shape.ShapeMultiplier

	KernelH, KernelW uint32
	StrideH, StrideW uint32

	WeightsFormat shape.DataFormat // HWIO or HWIM

	InputIsStatic        bool
	InputPreloaded       bool
	InputPreloadedOffset uint32

	DepthMax uint32 // 0 == uncapped, imposed by a fused PLE op such as MaxPool3x3

	MaxWeightTileSlots uint32
	MaxInputTileSlots  uint32

	BytesPerElement uint32

	// AllowSubBrickGroupStripe relaxes the brick-group floor on the
	// rounded output W/H. Only StrategyX's own oracle variant sets this.
	AllowSubBrickGroupStripe bool
}

// StripeResult is what TryStripeShapes produces on success.
type StripeResult struct {
	Config StrategyConfig
	Stats  InputStats
}

func effectiveMultiplier(req StripeRequest) shape.ShapeMultiplier {
	return req.MceMultiplier.Compose(req.PleMultiplier)
}

// roundOutputWOrH rounds a requested W or H output-stripe dimension
// against the brick-group floor, per SPEC_FULL.md §4.3.
func roundOutputWOrH(requested, brickDim, tensorDim uint32, mult shape.Fraction, patchDim uint32, allowSub bool) uint32 {
	if patchDim != 0 && requested == patchDim {
		return patchDim
	}
	floor := shape.MaxU32(brickDim, mult.Apply(brickDim))
	if floor == 0 {
		floor = brickDim
	}
	if allowSub {
		floor = shape.MaxU32(1, mult.Apply(brickDim))
	}
	rounded := shape.RoundUpToMultiple(requested, floor)
	tensorRounded := shape.RoundUpToMultiple(tensorDim, brickDim)
	if rounded > tensorRounded {
		rounded = tensorRounded
	}
	return rounded
}

// roundOutputC rounds the requested channel count, capping it by depthMax
// when the tensor is also split in H (a PLE spill constraint).
func roundOutputC(requested, brickC, numSrams, tensorC uint32, mult shape.Fraction, splitInH bool, depthMax uint32) uint32 {
	var rounded uint32
	if requested >= tensorC {
		rounded = tensorC
	} else {
		coarse := brickC * uint32(mult.Float64()+0.5)
		if coarse == 0 {
			coarse = brickC
		}
		if requested > coarse {
			rounded = shape.RoundUpToMultiple(requested, coarse)
		} else {
			fine := numSrams * uint32(mult.Float64()+0.5)
			if fine == 0 {
				fine = numSrams
			}
			rounded = shape.RoundUpToMultiple(requested, fine)
		}
	}
	if splitInH && depthMax > 0 && rounded > depthMax {
		rounded = depthMax
	}
	return rounded
}

// TryStripeShapes is the rounding + tile-sizing + SRAM-fit oracle: given
// one requested output stripe shape, it either rejects the candidate or
// returns a fully-populated StrategyConfig with an updated allocator.
// Callers must pass alloc.Clone() and adopt the clone only on success.
func TryStripeShapes(alloc *sram.SramAllocator, req StripeRequest) (StripeResult, bool) {
	caps := req.Caps
	brick := caps.BrickGroupShape
	mult := effectiveMultiplier(req)

	var patchW uint32
	if req.RequestedOutputStripe.W == caps.PatchShape.W {
		patchW = caps.PatchShape.W
	}

	outW := roundOutputWOrH(req.RequestedOutputStripe.W, brick.W, req.OutputTensorShape.W, mult.W, patchW, req.AllowSubBrickGroupStripe)
	outH := roundOutputWOrH(req.RequestedOutputStripe.H, brick.H, req.OutputTensorShape.H, mult.H, 0, req.AllowSubBrickGroupStripe)

	splitInOutputH := outH < shape.RoundUpToMultiple(req.OutputTensorShape.H, brick.H)
	outC := roundOutputC(req.RequestedOutputStripe.C, brick.C, caps.NumSrams, req.OutputTensorShape.C, mult.C, splitInOutputH, req.DepthMax)

	// Derive the input stripe from the rounded output stripe.
	inH := shape.RoundUpToMultiple(
		shape.AccountForFullDimensionFrac(outH, req.OutputTensorShape.H, req.InputTensorShape.H, req.MceMultiplier.H),
		brick.H)
	inW := shape.RoundUpToMultiple(
		shape.AccountForFullDimensionFrac(outW, req.OutputTensorShape.W, req.InputTensorShape.W, req.MceMultiplier.W),
		brick.W)

	inC := shape.RoundUpToMultiple(req.InputTensorShape.C, caps.NumSrams)
	if req.WeightsFormat == shape.HWIM {
		inC *= shape.MaxU32(1, req.StrideH*req.StrideW)
	}

	splitInInputH := inH < shape.RoundUpToMultiple(req.InputTensorShape.H, brick.H)
	splitInInputW := inW < shape.RoundUpToMultiple(req.InputTensorShape.W, brick.W)

	useBoundary := false
	if req.KernelH > 1 {
		if splitInInputH && splitInInputW {
			if 2*caps.BoundaryStripeHeight < req.KernelH-1 {
				return StripeResult{}, false
			}
			useBoundary = true
		} else if splitInInputH {
			if 2*inH < req.KernelH-1 {
				return StripeResult{}, false
			}
		}
	}
	if req.KernelW > 1 && splitInInputW && !splitInInputH {
		if 2*inW < req.KernelW-1 {
			return StripeResult{}, false
		}
	}

	numOutputStripesH := ceilDiv(req.OutputTensorShape.H, outH)
	numOutputStripesW := ceilDiv(req.OutputTensorShape.W, outW)
	numInputStripesH := ceilDiv(req.InputTensorShape.H, inH)
	numInputStripesW := ceilDiv(req.InputTensorShape.W, inW)

	// Preserved exactly from the source; noted there as possibly overly
	// permissive. TODO: revisit once the firmware stripe-streamer's real
	// mismatch tolerance is documented.
	if (numInputStripesW != numOutputStripesW && numOutputStripesH > 1) || numInputStripesH < numOutputStripesH {
		return StripeResult{}, false
	}

	totalInputStripes := numInputStripesH * numInputStripesW
	kernelPrimary := shape.MaxU32(req.KernelH, req.KernelW)
	inputTileSlots := shape.MinU32(shape.MinU32(kernelPrimary, defaultMaxInputTileSlots)+1, maxOr(req.MaxInputTileSlots, defaultMaxInputTileSlots+1))
	inputTileSlots = shape.MinU32(inputTileSlots, totalInputStripes)
	if inputTileSlots > caps.NumCentralSlots {
		return StripeResult{}, false
	}

	numOutputStripesC := ceilDiv(req.OutputTensorShape.C, outC)
	totalWeightStripes := numOutputStripesC
	maxWeightSlots := maxOr(req.MaxWeightTileSlots, defaultMaxWeightTileSlots)
	weightTileSlots := shape.MinU32(maxWeightSlots, totalWeightStripes)

	// Weight stripe shape derivation.
	var weightStripe WeightStripeShape
	if req.WeightsFormat == shape.HWIM {
		weightStripe = WeightStripeShape{
			KernelH: req.KernelH, KernelW: req.KernelW,
			InputChannels:  1,
			OutputChannels: outC * shape.MaxU32(1, req.StrideH*req.StrideW),
		}
	} else {
		weightStripe = WeightStripeShape{
			KernelH: req.KernelH, KernelW: req.KernelW,
			InputChannels:  req.InputTensorShape.C,
			OutputChannels: outC,
		}
	}

	bpe := req.BytesPerElement
	if bpe == 0 {
		bpe = 1
	}

	inputStripeShape := shape.TensorShape{N: 1, H: inH, W: inW, C: inC}
	outputStripeShape := shape.TensorShape{N: 1, H: outH, W: outW, C: outC}

	inputStripeBytes := tensorBytes(inputStripeShape, bpe)
	outputStripeBytes := tensorBytes(outputStripeShape, bpe)
	weightStripeBytes := EstimateWeightSizeBytes(weightStripe, req.WeightsFormat, bpe)

	var inputTileBytes uint32
	if req.InputIsStatic {
		fullInput := shape.TensorShape{N: 1, H: shape.RoundUpToMultiple(req.InputTensorShape.H, brick.H), W: shape.RoundUpToMultiple(req.InputTensorShape.W, brick.W), C: inC}
		inputTileBytes = tensorBytes(fullInput, bpe)
		inputTileSlots = totalInputStripes
	} else {
		inputTileBytes = inputStripeBytes * inputTileSlots
		if useBoundary {
			inputTileBytes += inputStripeBytes * caps.NumBoundarySlots
		}
	}

	weightTileBytes := weightStripeBytes * weightTileSlots

	fullOutputTensorBytes := tensorBytes(shape.TensorShape{N: 1, H: shape.RoundUpToMultiple(req.OutputTensorShape.H, brick.H), W: shape.RoundUpToMultiple(req.OutputTensorShape.W, brick.W), C: req.OutputTensorShape.C}, bpe)
	outputTileBytes := 2 * outputStripeBytes
	if outputTileBytes > fullOutputTensorBytes {
		outputTileBytes = fullOutputTensorBytes
	}
	if outputTileBytes < outputStripeBytes {
		outputTileBytes = outputStripeBytes
	}

	fits := FitsInSram(alloc, FitsRequest{
		InputTotalBytes:       inputTileBytes,
		WeightTotalBytes:      weightTileBytes,
		OutputTotalBytes:      outputTileBytes,
		PleCodeBytes:          caps.MaxPleSize,
		InputIsPreloaded:      req.InputPreloaded,
		InputPreloadedOffset:  req.InputPreloadedOffset,
		NumSrams:              caps.NumSrams,
	})
	if !fits.Success {
		logrus.Debugf("strategy: candidate stripe %+v rejected by FitsInSram", outputStripeShape)
		return StripeResult{}, false
	}

	numInputStripesInTile := inputTileSlots
	stats := InputStats{
		DramNonParallelBytes: uint64(inputStripeBytes),
	}
	if numInputStripesInTile > 0 && totalInputStripes > 1 {
		stats.DramParallelBytes = uint64(inputStripeBytes) * uint64(totalInputStripes-1)
	}

	cfg := StrategyConfig{
		Input: SramTensorAllocation{
			StripeShape: inputStripeShape, TileSizeBytes: inputTileBytes,
			NumStripesInTile: inputTileSlots, OffsetBytes: fits.InputOffset,
		},
		Output: SramTensorAllocation{
			StripeShape: outputStripeShape, TileSizeBytes: outputTileBytes,
			NumStripesInTile: outputTileBytes / maxOr1(outputStripeBytes), OffsetBytes: fits.OutputOffset,
		},
		Weights: SramTensorAllocation{
			StripeShape: shape.TensorShape{N: weightStripe.KernelH, H: weightStripe.KernelW, W: weightStripe.InputChannels, C: weightStripe.OutputChannels},
			TileSizeBytes: weightTileBytes, NumStripesInTile: weightTileSlots, OffsetBytes: fits.WeightOffset,
		},
		Ple: SramTensorAllocation{
			TileSizeBytes: caps.MaxPleSize, NumStripesInTile: 1, OffsetBytes: fits.PleOffset,
		},
	}

	return StripeResult{Config: cfg, Stats: stats}, true
}

func ceilDiv(a, b uint32) uint32 {
	if b == 0 {
		return 1
	}
	if a%b == 0 {
		return a / b
	}
	return a/b + 1
}

func tensorBytes(s shape.TensorShape, bpe uint32) uint32 {
	return s.H * s.W * s.C * bpe
}

func maxOr(v, fallback uint32) uint32 {
	if v == 0 {
		return fallback
	}
	return v
}

func maxOr1(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

// EstimateWeightSizeBytes is a simplified stand-in for the hardware weight
// encoder (out of scope, SPEC_FULL.md §1 Non-goals): it computes a
// monotonic-in-stripe-size upper bound good enough for tile sizing, plus a
// small fixed per-stripe header the real encoder also emits.
func EstimateWeightSizeBytes(w WeightStripeShape, format shape.DataFormat, bpe uint32) uint32 {
	const headerBytesPerStripe = 16
	inC := w.InputChannels
	if format == shape.HWIM {
		inC = 1
	}
	raw := w.KernelH * w.KernelW * inC * w.OutputChannels * bpe
	return raw + headerBytesPerStripe
}
