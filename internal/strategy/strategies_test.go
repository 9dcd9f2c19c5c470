package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
)

func TestStrategy3_WholeTensorFitsUnsplit(t *testing.T) {
	caps := testCaps()
	tensor := shape.TensorShape{N: 1, H: 16, W: 16, C: 16}
	alloc := sram.New(caps.SramBytesPerBank())

	req := StripeRequest{
		Caps:              caps,
		OutputTensorShape: tensor,
		InputTensorShape:  tensor,
		MceMultiplier:     shape.IdentityMultiplier(),
		PleMultiplier:     shape.IdentityMultiplier(),
		KernelH:           1,
		KernelW:           1,
		WeightsFormat:     shape.HWIO,
		BytesPerElement:   1,
	}

	res, ok, _ := Strategy3(alloc, req, shape.AllBlockConfigs())
	assert.True(t, ok)
	assert.Equal(t, S3, res.Config.Strategy)
	assert.Equal(t, tensor, res.Config.Output.StripeShape)
}

func TestStrategy1_RefusesSingleChannelOutput(t *testing.T) {
	caps := testCaps()
	alloc := sram.New(caps.SramBytesPerBank())
	req := StripeRequest{
		Caps:              caps,
		OutputTensorShape: shape.TensorShape{N: 1, H: 16, W: 16, C: 1},
		InputTensorShape:  shape.TensorShape{N: 1, H: 16, W: 16, C: 1},
		MceMultiplier:     shape.IdentityMultiplier(),
		PleMultiplier:     shape.IdentityMultiplier(),
		WeightsFormat:     shape.HWIO,
		BytesPerElement:   1,
	}

	_, ok, _ := Strategy1(alloc, req, shape.AllBlockConfigs())
	assert.False(t, ok)
}

func TestStrategy1_SplitsChannelsWhenWide(t *testing.T) {
	caps := testCaps()
	tensor := shape.TensorShape{N: 1, H: 16, W: 16, C: 64}
	alloc := sram.New(caps.SramBytesPerBank())
	req := StripeRequest{
		Caps:              caps,
		OutputTensorShape: tensor,
		InputTensorShape:  tensor,
		MceMultiplier:     shape.IdentityMultiplier(),
		PleMultiplier:     shape.IdentityMultiplier(),
		KernelH:           1,
		KernelW:           1,
		WeightsFormat:     shape.HWIO,
		BytesPerElement:   1,
	}

	res, ok, _ := Strategy1(alloc, req, shape.AllBlockConfigs())
	assert.True(t, ok)
	assert.Equal(t, S1, res.Config.Strategy)
	assert.True(t, res.Config.Output.StripeShape.C < tensor.C)
}

func TestStrategy7_RefusesNonDepthwiseWeights(t *testing.T) {
	caps := testCaps()
	alloc := sram.New(caps.SramBytesPerBank())
	req := StripeRequest{
		Caps:              caps,
		OutputTensorShape: shape.TensorShape{N: 1, H: 16, W: 16, C: 16},
		InputTensorShape:  shape.TensorShape{N: 1, H: 16, W: 16, C: 16},
		WeightsFormat:     shape.HWIO, // not HWIM: Strategy7 only applies to depthwise
	}

	_, ok, _ := Strategy7(alloc, req, shape.AllBlockConfigs())
	assert.False(t, ok)
}

func TestStrategy7_RefusesStaticInput(t *testing.T) {
	caps := testCaps()
	alloc := sram.New(caps.SramBytesPerBank())
	req := StripeRequest{
		Caps:              caps,
		OutputTensorShape: shape.TensorShape{N: 1, H: 16, W: 16, C: 16},
		InputTensorShape:  shape.TensorShape{N: 1, H: 16, W: 16, C: 16},
		WeightsFormat:     shape.HWIM,
		InputIsStatic:     true,
	}

	_, ok, _ := Strategy7(alloc, req, shape.AllBlockConfigs())
	assert.False(t, ok)
}

func TestIsFcafCompatible(t *testing.T) {
	assert.True(t, isFcafCompatible(shape.TensorShape{H: 8, W: 8, C: 32}))
	assert.True(t, isFcafCompatible(shape.TensorShape{H: 16, W: 24, C: 64}))
	assert.False(t, isFcafCompatible(shape.TensorShape{H: 8, W: 8, C: 16}))
	assert.False(t, isFcafCompatible(shape.TensorShape{H: 5, W: 8, C: 32}))
}

func TestWeightsWiderThanTall(t *testing.T) {
	assert.True(t, weightsWiderThanTall(StripeRequest{KernelW: 3, KernelH: 1}))
	assert.False(t, weightsWiderThanTall(StripeRequest{KernelW: 1, KernelH: 3}))
}
