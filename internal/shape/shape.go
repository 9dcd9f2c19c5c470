package shape

// TensorShape is the 4-tuple (N,H,W,C). N is always 1 in this compiler;
// it is kept as a field so shapes round-trip through the same layout the
// hardware capability header and downstream emitters expect.
type TensorShape struct {
	N, H, W, C uint32
}

// DataFormat is the sum type of tensor layouts the firmware understands.
type DataFormat int

const (
	FormatNone DataFormat = iota
	NHWC
	NHWCB // brick-group packed
	NCHW
	HWIO // weights, standard convolution
	HWIM // weights, depthwise convolution
	WeightStream
)

func (f DataFormat) String() string {
	switch f {
	case NHWC:
		return "NHWC"
	case NHWCB:
		return "NHWCB"
	case NCHW:
		return "NCHW"
	case HWIO:
		return "HWIO"
	case HWIM:
		return "HWIM"
	case WeightStream:
		return "WEIGHT_STREAM"
	default:
		return "NONE"
	}
}

// BufferLocation is where a tensor currently resides.
type BufferLocation int

const (
	LocationNone BufferLocation = iota
	LocationSram
	LocationDram
)

// CompressionFormat is the intermediate-output compression a pass may
// choose for a DRAM-bound tensor (spec.md §4.9, "intermediate output
// compression"). FCAF-DEEP cells are 8x8x32 (H,W,C); FCAF-WIDE cells are
// 8x16x16.
type CompressionFormat int

const (
	CompressionFormatNone CompressionFormat = iota
	CompressionFormatFcafDeep
	CompressionFormatFcafWide
)

func (c CompressionFormat) String() string {
	switch c {
	case CompressionFormatFcafDeep:
		return "FCAF_DEEP"
	case CompressionFormatFcafWide:
		return "FCAF_WIDE"
	default:
		return "NONE"
	}
}

// BrickGroupShape is the fixed hardware DMA granule, (1,8,8,16) in N,H,W,C.
var BrickGroupShape = TensorShape{N: 1, H: 8, W: 8, C: 16}

// PatchShape is the fixed sub-brick unit, (1,4,4,16).
var PatchShape = TensorShape{N: 1, H: 4, W: 4, C: 16}

// RoundUpToMultiple rounds v up to the nearest multiple of m. m must be > 0.
func RoundUpToMultiple(v, m uint32) uint32 {
	if m == 0 {
		return v
	}
	if v%m == 0 {
		return v
	}
	return ((v / m) + 1) * m
}

// MinU32 and MaxU32 are small helpers kept local to avoid importing a
// generics-heavy stdlib math package for two three-line functions; the
// teacher's own sim package does the same (see sim/metrics_utils.go).
func MinU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func MaxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// AccountForFullDimension implements the original's AccountForFullDimension
// helper: when the output stripe spans the whole output dimension, the
// corresponding input stripe must span the whole input dimension rather
// than a naively-divided fraction of it.
func AccountForFullDimension(outputStripeDim, outputTensorDim, inputTensorDim, multiplier uint32) uint32 {
	if outputStripeDim >= outputTensorDim {
		return inputTensorDim
	}
	if multiplier == 0 {
		return outputStripeDim
	}
	return outputStripeDim / multiplier
}

// AccountForFullDimensionFrac is AccountForFullDimension generalized to a
// rational multiplier (H/W scale factors are not always integers).
func AccountForFullDimensionFrac(outputStripeDim, outputTensorDim, inputTensorDim uint32, multiplier Fraction) uint32 {
	if outputStripeDim >= outputTensorDim {
		return inputTensorDim
	}
	return multiplier.Inverse().Apply(outputStripeDim)
}
