package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/shape"
	"github.com/npupass/compiler/internal/sram"
)

func TestChooseAndSetupStrategy_PicksFirstSucceedingInOrder(t *testing.T) {
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

	res, ok, _ := ChooseAndSetupStrategy(alloc, req, []Tag{S0, S3}, shape.AllBlockConfigs())
	assert.True(t, ok)
	assert.Equal(t, S0, res.Config.Strategy, "S0 is tried before S3 and the whole tensor also fits unsplit in H")
}

func TestChooseAndSetupStrategy_FailsWhenNoneApply(t *testing.T) {
	caps := testCaps()
	alloc := sram.New(10) // too small for any strategy
	req := StripeRequest{
		Caps:              caps,
		OutputTensorShape: shape.TensorShape{N: 1, H: 16, W: 16, C: 16},
		InputTensorShape:  shape.TensorShape{N: 1, H: 16, W: 16, C: 16},
		MceMultiplier:     shape.IdentityMultiplier(),
		PleMultiplier:     shape.IdentityMultiplier(),
		WeightsFormat:     shape.HWIO,
		BytesPerElement:   1,
	}

	_, ok, _ := ChooseAndSetupStrategy(alloc, req, []Tag{S0, S1, S3, S4, S6, S7}, shape.AllBlockConfigs())
	assert.False(t, ok)
}

func TestGetValidStrategies_FullyConnectedOnlyAllowsStrategyX(t *testing.T) {
	allowed := []Tag{S0, S1, S3, S4, S6, S7}
	assert.Nil(t, GetValidStrategies(op.FullyConnected, allowed))
	assert.Equal(t, allowed, GetValidStrategies(op.Convolution, allowed))
}

func TestFilterForPle_MaxPool3x3ExcludesWidthSplittingStrategies(t *testing.T) {
	in := []Tag{S0, S1, S3, S4, S6, S7}
	out := FilterForPle(op.MaxPool3x3Even, true, in)
	assert.NotContains(t, out, S4)
	assert.NotContains(t, out, S6)
	assert.Contains(t, out, S0)
	assert.Contains(t, out, S1)
}

func TestFilterForPle_TransposeXYExcludesAllSplitting(t *testing.T) {
	in := []Tag{S0, S1, S3, S4, S6, S7}
	out := FilterForPle(op.TransposeXY, true, in)
	assert.Equal(t, []Tag{S1, S3}, out)
}

func TestFilterForPle_NoFusedPleIsNoOp(t *testing.T) {
	in := []Tag{S0, S1, S3}
	out := FilterForPle(op.MaxPool3x3Even, false, in)
	assert.Equal(t, in, out)
}

func TestFilterBlockConfigsForAlgorithm_2DWinogradKeepsOnlySquareBlocks(t *testing.T) {
	out := FilterBlockConfigsForAlgorithm(shape.AllBlockConfigs(), op.Winograd, 3, 3)
	for _, b := range out {
		assert.Equal(t, b.Width, b.Height, "2D Winograd must only keep square blocks, got %+v", b)
	}
	assert.NotEmpty(t, out)
}

func TestFilterBlockConfigsForAlgorithm_1DWinogradIsNoOp(t *testing.T) {
	in := shape.AllBlockConfigs()
	out := FilterBlockConfigsForAlgorithm(in, op.Winograd, 1, 3)
	assert.Equal(t, in, out)
}

func TestFilterBlockConfigsForAlgorithm_DirectIsNoOp(t *testing.T) {
	in := shape.AllBlockConfigs()
	out := FilterBlockConfigsForAlgorithm(in, op.Direct, 3, 3)
	assert.Equal(t, in, out)
}
