// Package strategy implements the stripe-partitioning strategy-selection
// engine: the rounding/tile-sizing oracle (TryStripeShapes), the seven
// strategies that drive it (Strategy0/1/3/4/6/7 and StrategyX), and
// ChooseAndSetupStrategy, which tries them in preference order.
//
// # Reading Guide
//
//   - config.go: Tag, SramTensorAllocation, StrategyConfig — the result
//     types every strategy populates.
//   - fits.go: FitsInSram, the SRAM-placement step every stripe shape
//     must pass.
//   - stripe.go: TryStripeShapes, the rounding + tile-sizing oracle every
//     strategy calls for each candidate shape.
//   - strategies.go: Strategy0, Strategy1, Strategy3, Strategy4, Strategy6,
//     Strategy7 — each a generator over a strategy-specific shape space.
//   - strategyx.go: StrategyX, the fallback used for fully-connected and
//     upsampling cases and as a last resort for convolution.
//   - choose.go: ChooseAndSetupStrategy, plus the filters that run ahead
//     of it: strategies by fused PLE operation, block configs by algorithm.
//
// # Key Interface
//
// Strategy is a closed enum, not an interface with implementations: the
// number of strategies is small and fixed, so each is a plain function
// with the same (allocator, request, blocks) -> (StripeResult, ok,
// allocator) shape rather
// than a class hierarchy with virtual TrySetup (SPEC_FULL.md §9).
package strategy
