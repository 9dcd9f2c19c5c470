package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npupass/compiler/internal/hwcaps"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
)

func testCaps() hwcaps.HardwareCapabilities {
	return hwcaps.HardwareCapabilities{
		TotalSramBytes:         40000,
		NumSrams:               4,
		NumOgs:                 4,
		MaxPleSize:              256,
		BoundaryStripeHeight:   8,
		NumBoundarySlots:       2,
		NumCentralSlots:        4,
		BrickGroupShape:        shape.TensorShape{N: 1, H: 8, W: 8, C: 16},
		PatchShape:             shape.TensorShape{N: 1, H: 4, W: 4, C: 16},
		TotalAccumulatorsPerOg: 256,
	}
}

func TestTryStripeShapes_WholeTensorFitsWhenUnsplit(t *testing.T) {
	caps := testCaps()
	tensor := shape.TensorShape{N: 1, H: 16, W: 16, C: 16}
	alloc := sram.New(caps.SramBytesPerBank())

	req := StripeRequest{
		Caps:                  caps,
		OutputTensorShape:     tensor,
		InputTensorShape:      tensor,
		RequestedOutputStripe: tensor,
		MceMultiplier:         shape.IdentityMultiplier(),
		PleMultiplier:         shape.IdentityMultiplier(),
		KernelH:               1,
		KernelW:               1,
		WeightsFormat:         shape.HWIO,
		BytesPerElement:       1,
	}

	res, ok := TryStripeShapes(alloc, req)
	assert.True(t, ok)
	assert.Equal(t, tensor, res.Config.Output.StripeShape)
	assert.Equal(t, tensor, res.Config.Input.StripeShape)
	assert.Equal(t, uint32(4096), res.Config.Output.TileSizeBytes)
}

func TestTryStripeShapes_RejectsWhenSramTooSmall(t *testing.T) {
	caps := testCaps()
	tensor := shape.TensorShape{N: 1, H: 16, W: 16, C: 16}
	alloc := sram.New(10) // far too small for even one stripe

	req := StripeRequest{
		Caps:                  caps,
		OutputTensorShape:     tensor,
		InputTensorShape:      tensor,
		RequestedOutputStripe: tensor,
		MceMultiplier:         shape.IdentityMultiplier(),
		PleMultiplier:         shape.IdentityMultiplier(),
		KernelH:               1,
		KernelW:               1,
		WeightsFormat:         shape.HWIO,
		BytesPerElement:       1,
	}

	_, ok := TryStripeShapes(alloc, req)
	assert.False(t, ok)
}

func TestTryStripeShapes_RoundsOutputToBrickGroup(t *testing.T) {
	caps := testCaps()
	tensor := shape.TensorShape{N: 1, H: 17, W: 17, C: 16}
	alloc := sram.New(1 << 20)

	req := StripeRequest{
		Caps:                  caps,
		OutputTensorShape:     tensor,
		InputTensorShape:      tensor,
		RequestedOutputStripe: tensor,
		MceMultiplier:         shape.IdentityMultiplier(),
		PleMultiplier:         shape.IdentityMultiplier(),
		KernelH:               1,
		KernelW:               1,
		WeightsFormat:         shape.HWIO,
		BytesPerElement:       1,
	}

	res, ok := TryStripeShapes(alloc, req)
	assert.True(t, ok)
	// 17 rounds up to 24 (next multiple of the brick-group's 8).
	assert.Equal(t, uint32(24), res.Config.Output.StripeShape.H)
	assert.Equal(t, uint32(24), res.Config.Output.StripeShape.W)
}

func TestTryStripeShapes_RejectsBoundarySlotTooSmallForKernel(t *testing.T) {
	caps := testCaps()
	caps.BoundaryStripeHeight = 1 // too small for a 5x5 kernel's boundary requirement
	tensor := shape.TensorShape{N: 1, H: 64, W: 64, C: 16}
	alloc := sram.New(1 << 20)

	req := StripeRequest{
		Caps:                  caps,
		OutputTensorShape:     tensor,
		InputTensorShape:      tensor,
		RequestedOutputStripe: shape.TensorShape{N: 1, H: 16, W: 16, C: 16},
		MceMultiplier:         shape.IdentityMultiplier(),
		PleMultiplier:         shape.IdentityMultiplier(),
		KernelH:               5,
		KernelW:               5,
		WeightsFormat:         shape.HWIO,
		BytesPerElement:       1,
	}

	_, ok := TryStripeShapes(alloc, req)
	assert.False(t, ok)
}
