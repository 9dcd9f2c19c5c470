package op

// MceOperation is the closed set of matrix-compute-engine operations.
type MceOperation int

const (
	Convolution MceOperation = iota
	DepthwiseConvolution
	FullyConnected
)

func (o MceOperation) String() string {
	switch o {
	case Convolution:
		return "Convolution"
	case DepthwiseConvolution:
		return "DepthwiseConvolution"
	case FullyConnected:
		return "FullyConnected"
	default:
		return "Unknown"
	}
}

// Algorithm is the convolution algorithm the MCE uses for one pass.
type Algorithm int

const (
	Direct Algorithm = iota
	Winograd
)

// UpsampleType is the upsampling mode applied before the MCE, if any.
type UpsampleType int

const (
	UpsampleOff UpsampleType = iota
	UpsampleNearestNeighbour
	UpsampleBilinear
)

// PleOperation is the closed set of programmable-logic-engine operations
// that may fuse onto an MCE output.
type PleOperation int

const (
	Passthrough PleOperation = iota
	MaxPool3x3Even
	MaxPool3x3Odd
	Interleave2x2
	Sigmoid
	LeakyRelu
	TransposeXY
)

// IsAgnosticToRequantisation reports whether this PLE operation's result
// is unaffected by the exact requantisation applied to its input, which
// governs whether a Requantize node downstream of it can be folded into
// the MCE's own output requantisation (SPEC_FULL.md §4.8).
func (p PleOperation) IsAgnosticToRequantisation() bool {
	switch p {
	case Passthrough, MaxPool3x3Even, MaxPool3x3Odd, Interleave2x2, TransposeXY:
		return true
	default:
		return false
	}
}

func (p PleOperation) String() string {
	switch p {
	case Passthrough:
		return "Passthrough"
	case MaxPool3x3Even:
		return "MaxPool3x3_2_2_Even"
	case MaxPool3x3Odd:
		return "MaxPool3x3_2_2_Odd"
	case Interleave2x2:
		return "Interleave2x2_2_2"
	case Sigmoid:
		return "Sigmoid"
	case LeakyRelu:
		return "LeakyRelu"
	case TransposeXY:
		return "TransposeXY"
	default:
		return "Unknown"
	}
}

// IsMaxPool3x3 reports whether p is either MaxPool3x3 variant; both
// impose the same stripe-depth cap on TryStripeShapes.
func (p PleOperation) IsMaxPool3x3() bool {
	return p == MaxPool3x3Even || p == MaxPool3x3Odd
}
