package hwcaps

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encodeValidBlob(t *testing.T) []byte {
	t.Helper()
	body := rawLayout{
		TotalSramBytes:       1024 * 1024,
		NumSrams:             16,
		NumOgs:               8,
		NumIgs:               8,
		NumEmcs:              8,
		MaxPleSize:           16 * 1024,
		BoundaryStripeHeight: 8,
		NumBoundarySlots:     2,
		NumCentralSlots:      4,
		BrickGroupN:          1, BrickGroupH: 8, BrickGroupW: 8, BrickGroupC: 16,
		PatchN: 1, PatchH: 4, PatchW: 4, PatchC: 16,
		MacUnitsPerOg:                   16,
		AccumulatorsPerMacUnit:          16,
		TotalAccumulatorsPerOg:          256,
		NumPleLanes:                     1,
		WeightCompressionVersion:        1,
		ActivationCompressionVersion:    1,
		IsNchwSupported:                 0,
		AgentWindowSize:                 16,
		MaxMceStripesPerPleStripe:       2,
		MaxIfmAndWgtStripesPerPleStripe: 2,
	}
	var buf bytes.Buffer
	assert.NoError(t, binary.Write(&buf, binary.LittleEndian, body))

	var header bytes.Buffer
	assert.NoError(t, binary.Write(&header, binary.LittleEndian, uint32(CurrentVersion)))
	assert.NoError(t, binary.Write(&header, binary.LittleEndian, uint32(buf.Len())))
	return append(header.Bytes(), buf.Bytes()...)
}

func TestDecodeHeader_TooShort(t *testing.T) {
	_, err := DecodeHeader([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecode_ValidBlobRoundTrips(t *testing.T) {
	data := encodeValidBlob(t)
	caps, err := Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, uint32(1024*1024), caps.TotalSramBytes)
	assert.Equal(t, uint32(16), caps.NumSrams)
	assert.Equal(t, uint32(65536), caps.SramBytesPerBank())
	assert.Equal(t, uint32(8), caps.BrickGroupShape.H)
	assert.False(t, caps.IsNchwSupported)
}

func TestDecode_VersionMismatchIsFatal(t *testing.T) {
	data := encodeValidBlob(t)
	binary.LittleEndian.PutUint32(data[0:4], CurrentVersion+1)
	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
}

func TestValidate_RejectsSramNotDivisibleByBanks(t *testing.T) {
	bad := HardwareCapabilities{
		TotalSramBytes: 100, NumSrams: 3, MaxPleSize: 1, NumOgs: 1,
		BrickGroupShape: DefaultProfile().BrickGroupShape,
	}
	err := bad.Validate()
	assert.ErrorIs(t, err, ErrIllegalConfig)
}

func TestDefaultProfile_IsValid(t *testing.T) {
	caps := DefaultProfile()
	assert.NoError(t, caps.Validate())
}
