// Package shape provides the tensor-shape and block-configuration value
// types shared by the strategy-selection engine.
//
// # Reading Guide
//
//   - shape.go: TensorShape, DataFormat, BufferLocation, rounding helpers
//   - fraction.go: Fraction and ShapeMultiplier (exact rational arithmetic)
//   - block.go: BlockConfig, the fixed MCE tile-size set, and the
//     efficiency ordering used by strategy selection
package shape
