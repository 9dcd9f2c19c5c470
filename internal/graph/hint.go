package graph

import (
	"github.com/npupass/compiler/internal/op"
	"github.com/npupass/compiler/internal/shape"
)

// HintKind is the closed set of graph-mutation hints CreateGreedily can
// emit when it cannot build a pass.
type HintKind int

const (
	HintNone HintKind = iota
	HintConvertOutputTo
	HintAlgorithm
	HintInsertIdentityNode
	HintLocation
	HintCompression
)

// FixGraphHint is an explicit return value, never a side effect on a
// node: CreateGreedily returns one of these, and the driver loop decides
// whether and how to apply it before retrying (SPEC_FULL.md §9, "make
// hints an explicit return value").
type FixGraphHint struct {
	Kind   HintKind
	Target NodeID

	ConvertTo           shape.DataFormat // HintConvertOutputTo
	RequireDirect       bool             // HintAlgorithm
	InsertIdentity      bool             // HintInsertIdentityNode
	RequireDram         bool             // HintLocation
	RequireUncompressed bool             // HintCompression
}

func FixGraphConvertOutputTo(target NodeID, format shape.DataFormat) FixGraphHint {
	return FixGraphHint{Kind: HintConvertOutputTo, Target: target, ConvertTo: format}
}

func FixGraphAlgorithmHint(target NodeID) FixGraphHint {
	return FixGraphHint{Kind: HintAlgorithm, Target: target, RequireDirect: true}
}

func FixGraphInsertIdentityNodeHint(target NodeID, insert bool) FixGraphHint {
	return FixGraphHint{Kind: HintInsertIdentityNode, Target: target, InsertIdentity: insert}
}

func FixGraphLocationHint(target NodeID) FixGraphHint {
	return FixGraphHint{Kind: HintLocation, Target: target, RequireDram: true}
}

func FixGraphCompressionHint(target NodeID) FixGraphHint {
	return FixGraphHint{Kind: HintCompression, Target: target, RequireUncompressed: true}
}

// ApplyHint is the one place a hint is written back onto a node. The core
// pass builder never calls this itself; a driver loop calls it between a
// failed CreateGreedily attempt and its retry.
func ApplyHint(g *Graph, hint FixGraphHint) {
	if hint.Kind == HintNone {
		return
	}
	n := g.Node(hint.Target)
	applied := hint
	n.AppliedHint = &applied
	switch hint.Kind {
	case HintConvertOutputTo:
		n.Format = hint.ConvertTo
	case HintAlgorithm:
		if hint.RequireDirect {
			n.Algorithm = op.Direct
		}
	case HintLocation:
		if hint.RequireDram {
			n.LocationHint = shape.LocationDram
		}
	case HintCompression:
		if hint.RequireUncompressed {
			n.CompressionHint = CompressionRequiredUncompressed
		}
	case HintInsertIdentityNode:
		// Inserting the identity node itself is a graph-structural edit
		// (a new node with InputIDs pointing at hint.Target's producer)
		// that only the driver, which owns node construction, can do;
		// ApplyHint just records that the hint fired.
	}
}
