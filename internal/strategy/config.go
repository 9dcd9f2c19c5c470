package strategy

import "github.com/npupass/compiler/internal/shape"

// Tag is the strategy identifier. Gaps in the numbering (no S2, S5) are
// historical and preserved so external identifiers stay stable.
type Tag int

const (
	None Tag = iota
	S0
	S1
	S3
	S4
	S6
	S7
	SX
)

func (t Tag) String() string {
	switch t {
	case S0:
		return "S0"
	case S1:
		return "S1"
	case S3:
		return "S3"
	case S4:
		return "S4"
	case S6:
		return "S6"
	case S7:
		return "S7"
	case SX:
		return "SX"
	default:
		return "NONE"
	}
}

// SramTensorAllocation describes one tensor's placement in per-bank SRAM.
type SramTensorAllocation struct {
	StripeShape      shape.TensorShape
	TileSizeBytes    uint32
	NumStripesInTile uint32
	OffsetBytes      uint32
}

// StrategyConfig is the output of ChooseAndSetupStrategy: a fully
// populated SRAM layout for one pass. Invariant: all four tiles are
// disjoint in SRAM; Ple is always allocated at the low end.
type StrategyConfig struct {
	Input    SramTensorAllocation
	Output   SramTensorAllocation
	Weights  SramTensorAllocation
	Ple      SramTensorAllocation
	BlockWidth  uint32
	BlockHeight uint32
	Strategy Tag
}

// InputStats records the DRAM-transfer bytes a chosen stripe shape
// implies, used by Strategy6's cost comparison and available to any
// caller doing a cross-strategy cost tiebreak.
type InputStats struct {
	DramParallelBytes    uint64
	DramNonParallelBytes uint64
}

func (s InputStats) TotalBandwidth() uint64 {
	return s.DramParallelBytes + s.DramNonParallelBytes
}
