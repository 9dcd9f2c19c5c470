package hwcaps

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/npupass/compiler/internal/shape"
)

// Profile is a human-authored capability description, the YAML analog of
// the binary blob Decode parses. The CLI and tests load profiles this way
// rather than hand-encoding bytes, the way sim/workload/spec.go loads a
// WorkloadSpec instead of requiring a caller to build one in Go.
type Profile struct {
	TotalSramBytes       uint32 `yaml:"total_sram_bytes"`
	NumSrams             uint32 `yaml:"num_srams"`
	NumOgs               uint32 `yaml:"num_ogs"`
	NumIgs               uint32 `yaml:"num_igs"`
	NumEmcs              uint32 `yaml:"num_emcs"`
	MaxPleSize           uint32 `yaml:"max_ple_size"`
	BoundaryStripeHeight uint32 `yaml:"boundary_stripe_height"`
	NumBoundarySlots     uint32 `yaml:"num_boundary_slots"`
	NumCentralSlots      uint32 `yaml:"num_central_slots"`
	TotalAccumulatorsPerOg uint32 `yaml:"total_accumulators_per_og"`
	IsNchwSupported      bool   `yaml:"is_nchw_supported"`
}

// LoadProfile reads and validates a YAML capability profile from path.
func LoadProfile(path string) (HardwareCapabilities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HardwareCapabilities{}, fmt.Errorf("hwcaps: read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return HardwareCapabilities{}, fmt.Errorf("hwcaps: parse profile: %w", err)
	}
	return p.ToCapabilities()
}

// ToCapabilities fills in the brick-group/patch constants (fixed by
// hardware, never authored per-profile) and validates the result.
func (p Profile) ToCapabilities() (HardwareCapabilities, error) {
	caps := HardwareCapabilities{
		TotalSramBytes:         p.TotalSramBytes,
		NumSrams:               p.NumSrams,
		NumOgs:                 p.NumOgs,
		NumIgs:                 p.NumIgs,
		NumEmcs:                p.NumEmcs,
		MaxPleSize:             p.MaxPleSize,
		BoundaryStripeHeight:   p.BoundaryStripeHeight,
		NumBoundarySlots:       p.NumBoundarySlots,
		NumCentralSlots:        p.NumCentralSlots,
		BrickGroupShape:        shape.BrickGroupShape,
		PatchShape:             shape.PatchShape,
		TotalAccumulatorsPerOg: p.TotalAccumulatorsPerOg,
		IsNchwSupported:        p.IsNchwSupported,
	}
	return caps, caps.Validate()
}

// DefaultProfile is a representative mid-range capability set, used by the
// CLI when no --caps flag is given and by tests that don't care about
// exact hardware numbers.
func DefaultProfile() HardwareCapabilities {
	caps, err := Profile{
		TotalSramBytes:         1024 * 1024,
		NumSrams:                16,
		NumOgs:                  8,
		NumIgs:                  8,
		NumEmcs:                 8,
		MaxPleSize:              16 * 1024,
		BoundaryStripeHeight:    8,
		NumBoundarySlots:        2,
		NumCentralSlots:         4,
		TotalAccumulatorsPerOg:  256,
		IsNchwSupported:         false,
	}.ToCapabilities()
	if err != nil {
		panic(fmt.Sprintf("hwcaps: DefaultProfile is invalid: %v", err))
	}
	return caps
}
