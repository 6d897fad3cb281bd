package decoder

import (
	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

type rKey struct {
	funct3 uint32
	funct7 uint32
}

var rOps = map[rKey]isa.Op{
	{isa.Funct3ADDSUB, isa.Funct7Base}: isa.OpADD,
	{isa.Funct3ADDSUB, isa.Funct7Alt}:  isa.OpSUB,
	{isa.Funct3SLL, isa.Funct7Base}:    isa.OpSLL,
	{isa.Funct3SLT, isa.Funct7Base}:    isa.OpSLT,
	{isa.Funct3SLTU, isa.Funct7Base}:   isa.OpSLTU,
	{isa.Funct3XOR, isa.Funct7Base}:    isa.OpXOR,
	{isa.Funct3SRLSRA, isa.Funct7Base}: isa.OpSRL,
	{isa.Funct3SRLSRA, isa.Funct7Alt}:  isa.OpSRA,
	{isa.Funct3OR, isa.Funct7Base}:     isa.OpOR,
	{isa.Funct3AND, isa.Funct7Base}:    isa.OpAND,

	{isa.Funct3MUL, isa.Funct7MExt}:    isa.OpMUL,
	{isa.Funct3MULH, isa.Funct7MExt}:   isa.OpMULH,
	{isa.Funct3MULHSU, isa.Funct7MExt}: isa.OpMULHSU,
	{isa.Funct3MULHU, isa.Funct7MExt}:  isa.OpMULHU,
	{isa.Funct3DIV, isa.Funct7MExt}:    isa.OpDIV,
	{isa.Funct3DIVU, isa.Funct7MExt}:   isa.OpDIVU,
	{isa.Funct3REM, isa.Funct7MExt}:    isa.OpREM,
	{isa.Funct3REMU, isa.Funct7MExt}:   isa.OpREMU,
}

var iArithOps = map[uint32]isa.Op{
	isa.Funct3ADDSUB: isa.OpADDI,
	isa.Funct3SLT:    isa.OpSLTI,
	isa.Funct3SLTU:   isa.OpSLTIU,
	isa.Funct3XOR:    isa.OpXORI,
	isa.Funct3OR:     isa.OpORI,
	isa.Funct3AND:    isa.OpANDI,
}

var loadOps = map[uint32]isa.Op{
	isa.Funct3LB:  isa.OpLB,
	isa.Funct3LH:  isa.OpLH,
	isa.Funct3LW:  isa.OpLW,
	isa.Funct3LBU: isa.OpLBU,
	isa.Funct3LHU: isa.OpLHU,
}

var storeOps = map[uint32]isa.Op{
	isa.Funct3SB: isa.OpSB,
	isa.Funct3SH: isa.OpSH,
	isa.Funct3SW: isa.OpSW,
}

var branchOps = map[uint32]isa.Op{
	isa.Funct3BEQ:  isa.OpBEQ,
	isa.Funct3BNE:  isa.OpBNE,
	isa.Funct3BLT:  isa.OpBLT,
	isa.Funct3BGE:  isa.OpBGE,
	isa.Funct3BLTU: isa.OpBLTU,
	isa.Funct3BGEU: isa.OpBGEU,
}

// sext sign-extends the low n bits of v into a 32-bit value.
func sext(v uint32, n uint) int32 {
	shift := 32 - n
	return int32(v<<shift) >> shift
}

// Decode reconstructs the Instruction encoded in word.
func Decode(word uint32) (isa.Instruction, error) {
	opcode := word & 0x7F
	rd := uint8((word >> 7) & 0x1F)
	funct3 := (word >> 12) & 0x7
	rs1 := uint8((word >> 15) & 0x1F)
	rs2 := uint8((word >> 20) & 0x1F)
	funct7 := (word >> 25) & 0x7F

	switch opcode {
	case isa.OpcodeR:
		op, ok := rOps[rKey{funct3, funct7}]
		if !ok {
			return isa.Instruction{}, newError(ErrInvalidRCombination,
				"invalid R-type funct3=0x%x funct7=0x%x", funct3, funct7)
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}, nil

	case isa.OpcodeOpImm:
		switch funct3 {
		case isa.Funct3SLL:
			if funct7 != isa.Funct7Base {
				return isa.Instruction{}, newError(ErrInvalidRCombination, "invalid SLLI funct7=0x%x", funct7)
			}
			return isa.Instruction{Op: isa.OpSLLI, Rd: rd, Rs1: rs1, Shamt: uint8(rs2)}, nil
		case isa.Funct3SRLSRA:
			switch funct7 {
			case isa.Funct7Base:
				return isa.Instruction{Op: isa.OpSRLI, Rd: rd, Rs1: rs1, Shamt: uint8(rs2)}, nil
			case isa.Funct7Alt:
				return isa.Instruction{Op: isa.OpSRAI, Rd: rd, Rs1: rs1, Shamt: uint8(rs2)}, nil
			default:
				return isa.Instruction{}, newError(ErrInvalidRCombination, "invalid shift funct7=0x%x", funct7)
			}
		default:
			op, ok := iArithOps[funct3]
			if !ok {
				return isa.Instruction{}, newError(ErrUnknownOpcode, "invalid OP-IMM funct3=0x%x", funct3)
			}
			imm := sext(word>>20, 12)
			return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: imm}, nil
		}

	case isa.OpcodeLoad:
		op, ok := loadOps[funct3]
		if !ok {
			return isa.Instruction{}, newError(ErrInvalidLoadFunct3, "invalid load funct3=0x%x", funct3)
		}
		imm := sext(word>>20, 12)
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: imm}, nil

	case isa.OpcodeStore:
		op, ok := storeOps[funct3]
		if !ok {
			return isa.Instruction{}, newError(ErrInvalidStoreFunct3, "invalid store funct3=0x%x", funct3)
		}
		immBits := (funct7 << 5) | uint32(rd)
		imm := sext(immBits, 12)
		return isa.Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: imm}, nil

	case isa.OpcodeBranch:
		op, ok := branchOps[funct3]
		if !ok {
			return isa.Instruction{}, newError(ErrInvalidBranchFunct3, "invalid branch funct3=0x%x", funct3)
		}
		bit11 := (word >> 7) & 0x1
		bits4_1 := (word >> 8) & 0xF
		bits10_5 := (word >> 25) & 0x3F
		bit12 := (word >> 31) & 0x1
		immBits := (bit12 << 12) | (bit11 << 11) | (bits10_5 << 5) | (bits4_1 << 1)
		imm := sext(immBits, 13)
		return isa.Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: imm}, nil

	case isa.OpcodeJAL:
		bits19_12 := (word >> 12) & 0xFF
		bit11 := (word >> 20) & 0x1
		bits10_1 := (word >> 21) & 0x3FF
		bit20 := (word >> 31) & 0x1
		immBits := (bit20 << 20) | (bits19_12 << 12) | (bit11 << 11) | (bits10_1 << 1)
		imm := sext(immBits, 21)
		return isa.Instruction{Op: isa.OpJAL, Rd: rd, Imm: imm}, nil

	case isa.OpcodeJALR:
		if funct3 != isa.Funct3JALR {
			return isa.Instruction{}, newError(ErrInvalidJALRFunct3, "invalid JALR funct3=0x%x", funct3)
		}
		imm := sext(word>>20, 12)
		return isa.Instruction{Op: isa.OpJALR, Rd: rd, Rs1: rs1, Imm: imm}, nil

	case isa.OpcodeLUI:
		return isa.Instruction{Op: isa.OpLUI, Rd: rd, Imm: int32(word & 0xFFFFF000)}, nil

	case isa.OpcodeAUIPC:
		return isa.Instruction{Op: isa.OpAUIPC, Rd: rd, Imm: int32(word & 0xFFFFF000)}, nil

	case isa.OpcodeSystem:
		switch word {
		case isa.ECallWord:
			return isa.Instruction{Op: isa.OpECALL}, nil
		case isa.HaltWord:
			return isa.Instruction{Op: isa.OpHALT}, nil
		default:
			return isa.Instruction{}, newError(ErrUnknownOpcode, "unsupported SYSTEM encoding 0x%08X", word)
		}

	default:
		return isa.Instruction{}, newError(ErrUnknownOpcode, "unknown opcode 0x%x", opcode)
	}
}
