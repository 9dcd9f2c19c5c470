package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npupass/compiler/internal/shape"
)

func TestGraph_AddAssignsSequentialIDs(t *testing.T) {
	g := NewGraph()
	id0 := g.Add(Node{Kind: KindFormatConversion})
	id1 := g.Add(Node{Kind: KindMceOperation, InputIDs: []NodeID{id0}})

	assert.Equal(t, NodeID(0), id0)
	assert.Equal(t, NodeID(1), id1)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []NodeID{id0}, g.Node(id1).InputIDs)
}

func TestGraph_Successor(t *testing.T) {
	g := NewGraph()
	a := g.Add(Node{Kind: KindMceOperation})
	b := g.Add(Node{Kind: KindCopy})

	next, ok := g.Successor(a)
	assert.True(t, ok)
	assert.Equal(t, b, next)

	_, ok = g.Successor(b)
	assert.False(t, ok)
}

func TestApplyHint_ConvertOutputTo(t *testing.T) {
	g := NewGraph()
	id := g.Add(Node{Kind: KindMceOperation, Format: shape.NHWC})

	ApplyHint(g, FixGraphConvertOutputTo(id, shape.NHWCB))

	n := g.Node(id)
	assert.Equal(t, shape.NHWCB, n.Format)
	assert.NotNil(t, n.AppliedHint)
	assert.Equal(t, HintConvertOutputTo, n.AppliedHint.Kind)
}

func TestApplyHint_LocationSetsLocationHintNotLocation(t *testing.T) {
	// LocationHint is a pending constraint for the next CreateGreedily
	// attempt; it must not overwrite Location, the committed buffer
	// placement of a prior successful pass.
	g := NewGraph()
	id := g.Add(Node{Kind: KindMceOperation, Location: shape.LocationSram})

	ApplyHint(g, FixGraphLocationHint(id))

	n := g.Node(id)
	assert.Equal(t, shape.LocationDram, n.LocationHint)
	assert.Equal(t, shape.LocationSram, n.Location, "Location is untouched by ApplyHint")
}

func TestApplyHint_NoneIsNoOp(t *testing.T) {
	g := NewGraph()
	id := g.Add(Node{Kind: KindMceOperation, Format: shape.NHWC})

	ApplyHint(g, FixGraphHint{})

	assert.Nil(t, g.Node(id).AppliedHint)
}

func TestNodeKind_StringCoversAllKinds(t *testing.T) {
	kinds := []NodeKind{
		KindOther, KindFormatConversion, KindExtractSubtensor, KindMceOperation,
		KindMcePostProcess, KindFuseOnlyPleOperation, KindRequantize, KindCopy,
	}
	for _, k := range kinds {
		assert.NotEmpty(t, k.String())
	}
}
