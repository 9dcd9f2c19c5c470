// Package op defines the small, closed vocabularies of MCE and PLE
// operations the strategy-selection engine reasons about, replacing the
// virtual-dispatch operation hierarchy of the source system with plain
// enums (see SPEC_FULL.md §9, "Strategy base class + virtual TrySetup").
package op
