// Package pass implements the greedy pass builder: FindLinearWorkingNodes
// extends a node chain one node at a time, re-running strategy selection
// at each step, and CreateGreedily turns the result into either a Pass
// descriptor or a graph-mutation hint.
//
// # Reading Guide
//
//   - types.go: LinearWorkingNodes, Pass, Outcome.
//   - find.go: FindLinearWorkingNodes, the "keep the last successful
//     result" state machine, and the working-node acceptance state.
//   - create.go: CreateGreedily, the ordered hint-emission checks.
package pass
