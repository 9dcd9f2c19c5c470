package strategy

import "github.com/npupass/compiler/internal/sram"

// FitsRequest is the input to FitsInSram: the total byte size of each
// tile and whether the input is already resident (pre-staged by an
// earlier pass, at a known offset) rather than needing its own
// allocation.
type FitsRequest struct {
	InputTotalBytes   uint32
	WeightTotalBytes  uint32
	OutputTotalBytes  uint32
	PleCodeBytes      uint32
	InputIsPreloaded  bool
	InputPreloadedOffset uint32
	NumSrams          uint32
}

// FitsResult reports whether placement succeeded and, if so, the offset
// chosen for each tile.
type FitsResult struct {
	Success      bool
	InputOffset  uint32
	WeightOffset uint32
	OutputOffset uint32
	PleOffset    uint32
}

// userTag namespaces allocator records by what they're for; any caller
// composing multiple FitsInSram calls against the same allocator (as
// TryStripeShapes does, one per candidate) should give each attempt a
// fresh allocator clone rather than reusing tags across attempts.
const (
	tagPle     = "ple"
	tagInput   = "input"
	tagWeights = "weights"
	tagOutput  = "output"
)

// FitsInSram places the four tiles of one pass into alloc, in place.
// Callers wanting a speculative "try, discard on failure" attempt must
// pass alloc.Clone() and adopt the result only on success — FitsInSram
// itself does not undo partial allocations on failure, matching the
// "Success field with an implementation-defined state on failure"
// contract in SPEC_FULL.md §4.2.
func FitsInSram(alloc *sram.SramAllocator, req FitsRequest) FitsResult {
	// PLE code always goes low.
	ok, pleOffset := alloc.Allocate(req.PleCodeBytes, sram.Start, "pass", tagPle)
	if !ok {
		return FitsResult{Success: false}
	}

	// Every tile is striped evenly across the SRAM banks, so only its
	// per-bank share needs to be allocated against the (per-bank-sized)
	// allocator.
	inputBytes := req.InputTotalBytes / req.NumSrams
	weightBytes := req.WeightTotalBytes / req.NumSrams
	outputBytes := req.OutputTotalBytes / req.NumSrams

	var inputOffset uint32
	if req.InputIsPreloaded {
		inputOffset = req.InputPreloadedOffset
	} else {
		ok, inputOffset = alloc.Allocate(inputBytes, sram.Start, "pass", tagInput)
		if !ok {
			return FitsResult{Success: false}
		}
	}

	// Overlap DMA with compute: if the input landed in the lower half of
	// SRAM, put weights low and output high; otherwise the opposite.
	weightsAtStart := inputOffset <= alloc.PerBankBytes()/2

	var weightOffset, outputOffset uint32
	if weightsAtStart {
		ok, weightOffset = alloc.Allocate(weightBytes, sram.Start, "pass", tagWeights)
		if !ok {
			return FitsResult{Success: false}
		}
		ok, outputOffset = alloc.Allocate(outputBytes, sram.End, "pass", tagOutput)
		if !ok {
			return FitsResult{Success: false}
		}
	} else {
		ok, outputOffset = alloc.Allocate(outputBytes, sram.Start, "pass", tagOutput)
		if !ok {
			return FitsResult{Success: false}
		}
		ok, weightOffset = alloc.Allocate(weightBytes, sram.End, "pass", tagWeights)
		if !ok {
			return FitsResult{Success: false}
		}
	}

	return FitsResult{
		Success:      true,
		InputOffset:  inputOffset,
		WeightOffset: weightOffset,
		OutputOffset: outputOffset,
		PleOffset:    pleOffset,
	}
}
