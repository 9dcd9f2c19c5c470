package hwcaps

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/npupass/compiler/internal/shape"
)

// headerSize is the byte size of FirmwareAndHardwareCapabilitiesHeader:
// two little-endian uint32s, {version, size}. These first 8 bytes must
// never move; every consumer reads them before deciding how to decode the
// remainder of the blob.
const headerSize = 8

// CurrentVersion is the only capability-blob version this compiler knows
// how to decode.
const CurrentVersion = 1

// HardwareCapabilities is the read-only configuration consumed by the
// strategy-selection engine. Fields follow the order of the binary wire
// format; Decode reads the body into rawLayout (after the header has been
// consumed separately) and copies it into this struct.
type HardwareCapabilities struct {
	TotalSramBytes       uint32
	NumSrams             uint32
	NumOgs               uint32
	NumIgs               uint32
	NumEmcs              uint32
	MaxPleSize            uint32
	BoundaryStripeHeight uint32
	NumBoundarySlots     uint32
	NumCentralSlots      uint32
	BrickGroupShape      shape.TensorShape
	PatchShape           shape.TensorShape
	MacUnitsPerOg           uint32
	AccumulatorsPerMacUnit  uint32
	TotalAccumulatorsPerOg  uint32
	NumPleLanes             uint32
	WeightCompressionVersion   uint32
	ActivationCompressionVersion uint32
	IsNchwSupported bool

	// Firmware-side fields.
	AgentWindowSize             uint32
	MaxMceStripesPerPleStripe   uint32
	MaxIfmAndWgtStripesPerPleStripe uint32
}

// Header is the stable first 8 bytes of a capability blob.
type Header struct {
	Version uint32
	Size    uint32
}

// DecodeHeader reads only the {version, size} prefix, letting a caller
// decide how to interpret the rest before committing to a full decode.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("hwcaps: capability blob shorter than header (%d bytes)", len(data))
	}
	return Header{
		Version: binary.LittleEndian.Uint32(data[0:4]),
		Size:    binary.LittleEndian.Uint32(data[4:8]),
	}, nil
}

// rawLayout mirrors the on-wire struct field-for-field (flattened tensor
// shapes to four uint32s each) so encoding/binary can decode it directly.
type rawLayout struct {
	TotalSramBytes       uint32
	NumSrams             uint32
	NumOgs               uint32
	NumIgs               uint32
	NumEmcs              uint32
	MaxPleSize           uint32
	BoundaryStripeHeight uint32
	NumBoundarySlots     uint32
	NumCentralSlots      uint32
	BrickGroupN, BrickGroupH, BrickGroupW, BrickGroupC uint32
	PatchN, PatchH, PatchW, PatchC                     uint32
	MacUnitsPerOg                   uint32
	AccumulatorsPerMacUnit          uint32
	TotalAccumulatorsPerOg          uint32
	NumPleLanes                     uint32
	WeightCompressionVersion        uint32
	ActivationCompressionVersion    uint32
	IsNchwSupported                 uint32
	AgentWindowSize                 uint32
	MaxMceStripesPerPleStripe       uint32
	MaxIfmAndWgtStripesPerPleStripe uint32
}

// Decode parses a full capability blob: header, then the fixed-layout
// body. A version other than CurrentVersion is a CapabilityMismatch: the
// caller's firmware and this compiler disagree on the wire format, and
// that is a fatal condition (see the error taxonomy in SPEC_FULL.md §7).
func Decode(data []byte) (HardwareCapabilities, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return HardwareCapabilities{}, err
	}
	if hdr.Version != CurrentVersion {
		return HardwareCapabilities{}, fmt.Errorf("%w: got version %d, want %d", ErrCapabilityMismatch, hdr.Version, CurrentVersion)
	}
	body := data[headerSize:]
	if uint32(len(body)) < hdr.Size {
		return HardwareCapabilities{}, fmt.Errorf("hwcaps: blob declares size %d but only %d bytes follow the header", hdr.Size, len(body))
	}
	var raw rawLayout
	if err := binary.Read(bytes.NewReader(body), binary.LittleEndian, &raw); err != nil {
		return HardwareCapabilities{}, fmt.Errorf("hwcaps: decode body: %w", err)
	}
	caps := HardwareCapabilities{
		TotalSramBytes:       raw.TotalSramBytes,
		NumSrams:             raw.NumSrams,
		NumOgs:               raw.NumOgs,
		NumIgs:               raw.NumIgs,
		NumEmcs:              raw.NumEmcs,
		MaxPleSize:           raw.MaxPleSize,
		BoundaryStripeHeight: raw.BoundaryStripeHeight,
		NumBoundarySlots:     raw.NumBoundarySlots,
		NumCentralSlots:      raw.NumCentralSlots,
		BrickGroupShape: shape.TensorShape{
			N: raw.BrickGroupN, H: raw.BrickGroupH, W: raw.BrickGroupW, C: raw.BrickGroupC,
		},
		PatchShape: shape.TensorShape{
			N: raw.PatchN, H: raw.PatchH, W: raw.PatchW, C: raw.PatchC,
		},
		MacUnitsPerOg:                 raw.MacUnitsPerOg,
		AccumulatorsPerMacUnit:        raw.AccumulatorsPerMacUnit,
		TotalAccumulatorsPerOg:        raw.TotalAccumulatorsPerOg,
		NumPleLanes:                   raw.NumPleLanes,
		WeightCompressionVersion:      raw.WeightCompressionVersion,
		ActivationCompressionVersion:  raw.ActivationCompressionVersion,
		IsNchwSupported:               raw.IsNchwSupported != 0,
		AgentWindowSize:               raw.AgentWindowSize,
		MaxMceStripesPerPleStripe:     raw.MaxMceStripesPerPleStripe,
		MaxIfmAndWgtStripesPerPleStripe: raw.MaxIfmAndWgtStripesPerPleStripe,
	}
	return caps, caps.Validate()
}

// Validate checks the capability set for internally-inconsistent values
// that would make the allocator or stripe oracle misbehave. Mirrors the
// teacher's Validate() error pattern (sim/cluster/engine_config.go).
func (c HardwareCapabilities) Validate() error {
	if c.NumSrams == 0 {
		return fmt.Errorf("%w: num_srams must be > 0", ErrIllegalConfig)
	}
	if c.TotalSramBytes == 0 {
		return fmt.Errorf("%w: total_sram_bytes must be > 0", ErrIllegalConfig)
	}
	if c.TotalSramBytes%c.NumSrams != 0 {
		return fmt.Errorf("%w: total_sram_bytes (%d) not a multiple of num_srams (%d)", ErrIllegalConfig, c.TotalSramBytes, c.NumSrams)
	}
	if c.MaxPleSize == 0 {
		return fmt.Errorf("%w: max_ple_size must be > 0", ErrIllegalConfig)
	}
	if c.NumOgs == 0 {
		return fmt.Errorf("%w: num_ogs must be > 0", ErrIllegalConfig)
	}
	if c.BrickGroupShape.H == 0 || c.BrickGroupShape.W == 0 || c.BrickGroupShape.C == 0 {
		return fmt.Errorf("%w: brick_group_shape dimensions must be > 0", ErrIllegalConfig)
	}
	return nil
}

// SramBytesPerBank is total_sram_bytes / num_srams, the per-bank size the
// allocator addresses.
func (c HardwareCapabilities) SramBytesPerBank() uint32 {
	return c.TotalSramBytes / c.NumSrams
}
