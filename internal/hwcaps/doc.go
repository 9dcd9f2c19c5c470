// Package hwcaps describes the read-only hardware/firmware capability
// profile the strategy-selection engine is configured against.
//
// # Reading Guide
//
//   - capabilities.go: HardwareCapabilities, its binary wire decode, and
//     Validate()
//   - yamlconfig.go: a YAML profile format for the CLI and tests, so
//     capability sets can be authored by hand without hand-encoding the
//     binary header
package hwcaps
