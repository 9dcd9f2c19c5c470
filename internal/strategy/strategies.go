package strategy

import (
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
)

// weightsWiderThanTall reports whether the weight tensor for this request
// is wider than it is tall, the tie-break BlockConfig sorting needs.
func weightsWiderThanTall(req StripeRequest) bool {
	return req.KernelW > req.KernelH
}

// tryCandidate clones alloc, attempts one (output stripe, block config)
// candidate, and on success stamps the block config and strategy tag onto
// the result. The clone is only returned to the caller on success — a
// failed attempt's allocator mutations are discarded with it.
func tryCandidate(alloc *sram.SramAllocator, req StripeRequest, block shape.BlockConfig, tag Tag) (StripeResult, *sram.SramAllocator, bool) {
	attempt := alloc.Clone()
	res, ok := TryStripeShapes(attempt, req)
	if !ok {
		return StripeResult{}, nil, false
	}
	res.Config.BlockWidth = block.Width
	res.Config.BlockHeight = block.Height
	res.Config.Strategy = tag
	return res, attempt, true
}

func mceOutputShape(req StripeRequest) shape.TensorShape {
	return shape.TensorShape{
		N: 1,
		H: req.MceMultiplier.H.Apply(req.InputTensorShape.H),
		W: req.MceMultiplier.W.Apply(req.InputTensorShape.W),
		C: req.MceMultiplier.C.Apply(req.InputTensorShape.C),
	}
}

func sortedBlocks(blocks []shape.BlockConfig, req StripeRequest) []shape.BlockConfig {
	return shape.SortBlockConfigs(blocks, req.OutputTensorShape.H, req.OutputTensorShape.W, weightsWiderThanTall(req))
}

// Strategy3 keeps the entire output in SRAM at once: no splitting at all.
func Strategy3(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig) (StripeResult, bool, *sram.SramAllocator) {
	for _, block := range sortedBlocks(blocks, req) {
		candidate := req
		candidate.RequestedOutputStripe = req.OutputTensorShape
		if res, a, ok := tryCandidate(alloc, candidate, block, S3); ok {
			return res, true, a
		}
	}
	return StripeResult{}, false, nil
}

// Strategy0 splits only in H: the output-height stripe shrinks from half
// the MCE's output height down to one block row, trying 4 then 3 input
// tile slots at each height.
func Strategy0(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig) (StripeResult, bool, *sram.SramAllocator) {
	mceOut := mceOutputShape(req)
	for _, block := range sortedBlocks(blocks, req) {
		if block.Height == 0 {
			continue
		}
		maxH := shape.RoundUpToMultiple(mceOut.H/2, block.Height)
		for h := maxH; h >= block.Height; h -= block.Height {
			for _, slots := range [2]uint32{4, defaultMaxInputTileSlots} {
				candidate := req
				candidate.RequestedOutputStripe = shape.TensorShape{N: 1, H: h, W: req.OutputTensorShape.W, C: req.OutputTensorShape.C}
				candidate.MaxInputTileSlots = slots
				if res, a, ok := tryCandidate(alloc, candidate, block, S0); ok {
					return res, true, a
				}
			}
			if h == block.Height {
				break
			}
		}
	}
	return StripeResult{}, false, nil
}

// Strategy1 splits only in C, trying weight-tile slot counts 3, then 2,
// then (as a last resort, across every split again) 1.
func Strategy1(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig) (StripeResult, bool, *sram.SramAllocator) {
	if req.OutputTensorShape.C < 2 {
		return StripeResult{}, false, nil
	}
	sorted := sortedBlocks(blocks, req)
	for k := uint32(2); k < req.OutputTensorShape.C; k++ {
		cStripe := req.OutputTensorShape.C / k
		if cStripe == 0 {
			continue
		}
		for _, slots := range [2]uint32{3, defaultMaxWeightTileSlots} {
			for _, block := range sorted {
				candidate := req
				candidate.RequestedOutputStripe = shape.TensorShape{N: 1, H: req.OutputTensorShape.H, W: req.OutputTensorShape.W, C: cStripe}
				candidate.MaxWeightTileSlots = slots
				if res, a, ok := tryCandidate(alloc, candidate, block, S1); ok {
					return res, true, a
				}
			}
		}
	}
	// Last resort: a single weight buffer, tried across every split again.
	for k := uint32(2); k < req.OutputTensorShape.C; k++ {
		cStripe := req.OutputTensorShape.C / k
		if cStripe == 0 {
			continue
		}
		for _, block := range sorted {
			candidate := req
			candidate.RequestedOutputStripe = shape.TensorShape{N: 1, H: req.OutputTensorShape.H, W: req.OutputTensorShape.W, C: cStripe}
			candidate.MaxWeightTileSlots = 1
			if res, a, ok := tryCandidate(alloc, candidate, block, S1); ok {
				return res, true, a
			}
		}
	}
	return StripeResult{}, false, nil
}

// Strategy7 splits in both H and C, and only applies to depthwise
// (HWIM-weighted) convolution with a non-static input.
func Strategy7(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig) (StripeResult, bool, *sram.SramAllocator) {
	if req.WeightsFormat != shape.HWIM || req.InputIsStatic {
		return StripeResult{}, false, nil
	}
	mceOut := mceOutputShape(req)
	sorted := sortedBlocks(blocks, req)
	tryAt := func(weightSlots uint32) (StripeResult, bool, *sram.SramAllocator) {
		for _, block := range sorted {
			if block.Height == 0 {
				continue
			}
			maxH := shape.RoundUpToMultiple(mceOut.H/2, block.Height)
			for h := maxH; h >= block.Height; h -= block.Height {
				for k := uint32(2); k < req.OutputTensorShape.C; k++ {
					cStripe := req.OutputTensorShape.C / k
					if cStripe == 0 {
						continue
					}
					candidate := req
					candidate.RequestedOutputStripe = shape.TensorShape{N: 1, H: h, W: req.OutputTensorShape.W, C: cStripe}
					candidate.MaxWeightTileSlots = weightSlots
					if res, a, ok := tryCandidate(alloc, candidate, block, S7); ok {
						return res, true, a
					}
				}
				if h == block.Height {
					break
				}
			}
		}
		return StripeResult{}, false, nil
	}
	for _, slots := range [2]uint32{3, defaultMaxWeightTileSlots} {
		if res, ok, a := tryAt(slots); ok {
			return res, true, a
		}
	}
	return tryAt(1)
}

// Strategy4 fixes W to one brick group and C to one output-generator
// group, and iterates block configs (preferring the one matching its
// fixed MCE-output stripe width) with weight-tile slots 2 then 1.
func Strategy4(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig) (StripeResult, bool, *sram.SramAllocator) {
	caps := req.Caps
	inputStripeW := caps.BrickGroupShape.W
	mceOutputStripeW := req.MceMultiplier.W.Apply(inputStripeW)
	outputStripeW := req.PleMultiplier.W.Apply(mceOutputStripeW)

	mult := effectiveMultiplier(req)
	cStripe := shape.MaxU32(1, caps.NumOgs) * uint32(mult.C.Float64()+0.5)
	if cStripe == 0 {
		cStripe = caps.NumOgs
	}

	sorted := sortedBlocks(blocks, req)
	sorted = shape.PromoteBlockWidth(sorted, mceOutputStripeW)

	for _, slots := range [2]uint32{defaultMaxWeightTileSlots, 1} {
		for _, block := range sorted {
			candidate := req
			candidate.RequestedOutputStripe = shape.TensorShape{N: 1, H: req.OutputTensorShape.H, W: outputStripeW, C: cStripe}
			candidate.MaxWeightTileSlots = slots
			if res, a, ok := tryCandidate(alloc, candidate, block, S4); ok {
				return res, true, a
			}
		}
	}
	return StripeResult{}, false, nil
}

// candidate6 is one feasible Strategy6 attempt, kept around so every
// feasible shape can be compared by cost before committing to one.
type candidate6 struct {
	result StripeResult
	alloc  *sram.SramAllocator
	cost   float64
}

// Strategy6 splits in H, W, and C simultaneously: it collects every
// feasible shape in the cross-product and keeps the one minimizing
// IFM DRAM bandwidth, halved when the output is FCAF-compressible. The
// factor of 2 is a heuristic inherited as-is, not re-derived.
func Strategy6(alloc *sram.SramAllocator, req StripeRequest, blocks []shape.BlockConfig) (StripeResult, bool, *sram.SramAllocator) {
	if req.InputIsStatic {
		return StripeResult{}, false, nil
	}
	mceOut := mceOutputShape(req)
	sorted := sortedBlocks(blocks, req)

	var best *candidate6
	for k := uint32(2); k < req.OutputTensorShape.C; k++ {
		cStripe := req.OutputTensorShape.C / k
		if cStripe == 0 {
			continue
		}
		for _, block := range sorted {
			if block.Height == 0 || block.Width == 0 {
				continue
			}
			maxH := shape.RoundUpToMultiple(mceOut.H/2, block.Height)
			if maxH >= mceOut.H {
				continue
			}
			maxW := shape.RoundUpToMultiple(mceOut.W/2, block.Width)
			if maxW > mceOut.W {
				continue
			}
			for h := maxH; h >= block.Height; h -= block.Height {
				for w := maxW; w >= block.Width; w -= block.Width {
					candidate := req
					candidate.RequestedOutputStripe = shape.TensorShape{N: 1, H: h, W: w, C: cStripe}
					if res, a, ok := tryCandidate(alloc, candidate, block, S6); ok {
						cost := float64(res.Stats.TotalBandwidth())
						if isFcafCompatible(res.Config.Output.StripeShape) {
							cost /= 2
						}
						if best == nil || cost < best.cost {
							best = &candidate6{result: res, alloc: a, cost: cost}
						}
					}
					if w == block.Width {
						break
					}
				}
				if h == block.Height {
					break
				}
			}
		}
	}
	if best == nil {
		return StripeResult{}, false, nil
	}
	return best.result, true, best.alloc
}

// isFcafCompatible is a simplified stand-in for the real FCAF-DEEP stripe
// geometry check: a stripe is assumed compatible when its H and W are
// multiples of 8 and its C is a multiple of 32 (the 8x8x32 FCAF-DEEP cell).
func isFcafCompatible(s shape.TensorShape) bool {
	return s.C%32 == 0 && s.H%8 == 0 && s.W%8 == 0
}
