package hwcaps

import "errors"

// ErrIllegalConfig marks a programmer/configuration error in a capability
// profile: fatal, not locally recoverable (see SPEC_FULL.md §7).
var ErrIllegalConfig = errors.New("hwcaps: illegal capability configuration")

// ErrCapabilityMismatch marks an unknown capability-blob version.
var ErrCapabilityMismatch = errors.New("hwcaps: capability version mismatch")
