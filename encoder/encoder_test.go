package encoder_test

import (
	"testing"

	"github.com/Gaok1/FALCON-ASM-sub000/decoder"
	"github.com/Gaok1/FALCON-ASM-sub000/encoder"
	"github.com/Gaok1/FALCON-ASM-sub000/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRType(t *testing.T) {
	word, err := encoder.Encode(isa.Instruction{Op: isa.OpADD, Rd: 1, Rs1: 2, Rs2: 3})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x003100B3), word)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []isa.Instruction{
		{Op: isa.OpADD, Rd: 5, Rs1: 6, Rs2: 7},
		{Op: isa.OpSUB, Rd: 1, Rs1: 2, Rs2: 3},
		{Op: isa.OpMUL, Rd: 10, Rs1: 11, Rs2: 12},
		{Op: isa.OpDIV, Rd: 1, Rs1: 2, Rs2: 3},
		{Op: isa.OpREMU, Rd: 4, Rs1: 5, Rs2: 6},
		{Op: isa.OpADDI, Rd: 1, Rs1: 0, Imm: 2047},
		{Op: isa.OpADDI, Rd: 1, Rs1: 0, Imm: -2048},
		{Op: isa.OpSLLI, Rd: 1, Rs1: 2, Shamt: 31},
		{Op: isa.OpSRAI, Rd: 1, Rs1: 2, Shamt: 1},
		{Op: isa.OpLW, Rd: 1, Rs1: 2, Imm: -4},
		{Op: isa.OpSW, Rs1: 2, Rs2: 1, Imm: 0},
		{Op: isa.OpBEQ, Rs1: 0, Rs2: 0, Imm: 4094},
		{Op: isa.OpBNE, Rs1: 1, Rs2: 2, Imm: -4096},
		{Op: isa.OpLUI, Rd: 5, Imm: int32(0xFFFFF000)},
		{Op: isa.OpAUIPC, Rd: 5, Imm: 0x1000},
		{Op: isa.OpJAL, Rd: 1, Imm: (1 << 20) - 2}, // max positive J-type offset
		{Op: isa.OpJALR, Rd: 0, Rs1: 1, Imm: 0},
		{Op: isa.OpECALL},
		{Op: isa.OpHALT},
	}

	for _, inst := range tests {
		word, err := encoder.Encode(inst)
		require.NoErrorf(t, err, "encoding %v", inst)

		decoded, err := decoder.Decode(word)
		require.NoErrorf(t, err, "decoding word 0x%08X for %v", word, inst)
		assert.Equalf(t, inst, decoded, "round trip mismatch for %v", inst)
	}
}

func TestHaltIsEbreakEncoding(t *testing.T) {
	word, err := encoder.Encode(isa.Instruction{Op: isa.OpHALT})
	require.NoError(t, err)
	assert.Equal(t, isa.HaltWord, word)
	assert.Equal(t, uint32(0x00100073), word)
}

func TestEncodeRejectsOddBranchOffset(t *testing.T) {
	_, err := encoder.Encode(isa.Instruction{Op: isa.OpBEQ, Imm: 3})
	assert.Error(t, err)
}

func TestEncodeRejectsOversizedShift(t *testing.T) {
	_, err := encoder.Encode(isa.Instruction{Op: isa.OpSLLI, Shamt: 32})
	assert.Error(t, err)
}

func TestEncodeUTypeRejectsNonzeroLowBits(t *testing.T) {
	_, err := encoder.Encode(isa.Instruction{Op: isa.OpLUI, Rd: 1, Imm: 0x1001})
	assert.Error(t, err)
}

func TestEncodeMaxUType(t *testing.T) {
	word, err := encoder.Encode(isa.Instruction{Op: isa.OpLUI, Rd: 1, Imm: int32(0xFFFFF000)})
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFF0B7), word)
}
