package encoder

import (
	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

// rTypeFields is the (funct3, funct7) pair for an R-type Op; the opcode is
// always OpcodeR. Shift-immediates use shiftImmFunct3/shiftImmFunct7.
type rTypeFields struct {
	funct3 uint32
	funct7 uint32
}

var rFields = map[isa.Op]rTypeFields{
	isa.OpADD: {isa.Funct3ADDSUB, isa.Funct7Base},
	isa.OpSUB: {isa.Funct3ADDSUB, isa.Funct7Alt},
	isa.OpSLL: {isa.Funct3SLL, isa.Funct7Base},
	isa.OpSLT: {isa.Funct3SLT, isa.Funct7Base},
	isa.OpSLTU: {isa.Funct3SLTU, isa.Funct7Base},
	isa.OpXOR: {isa.Funct3XOR, isa.Funct7Base},
	isa.OpSRL: {isa.Funct3SRLSRA, isa.Funct7Base},
	isa.OpSRA: {isa.Funct3SRLSRA, isa.Funct7Alt},
	isa.OpOR:  {isa.Funct3OR, isa.Funct7Base},
	isa.OpAND: {isa.Funct3AND, isa.Funct7Base},

	isa.OpMUL:    {isa.Funct3MUL, isa.Funct7MExt},
	isa.OpMULH:   {isa.Funct3MULH, isa.Funct7MExt},
	isa.OpMULHSU: {isa.Funct3MULHSU, isa.Funct7MExt},
	isa.OpMULHU:  {isa.Funct3MULHU, isa.Funct7MExt},
	isa.OpDIV:    {isa.Funct3DIV, isa.Funct7MExt},
	isa.OpDIVU:   {isa.Funct3DIVU, isa.Funct7MExt},
	isa.OpREM:    {isa.Funct3REM, isa.Funct7MExt},
	isa.OpREMU:   {isa.Funct3REMU, isa.Funct7MExt},
}

var shiftImmFunct3 = map[isa.Op]uint32{
	isa.OpSLLI: isa.Funct3SLL,
	isa.OpSRLI: isa.Funct3SRLSRA,
	isa.OpSRAI: isa.Funct3SRLSRA,
}

var shiftImmFunct7 = map[isa.Op]uint32{
	isa.OpSLLI: isa.Funct7Base,
	isa.OpSRLI: isa.Funct7Base,
	isa.OpSRAI: isa.Funct7Alt,
}

var iArithFunct3 = map[isa.Op]uint32{
	isa.OpADDI:  isa.Funct3ADDSUB,
	isa.OpSLTI:  isa.Funct3SLT,
	isa.OpSLTIU: isa.Funct3SLTU,
	isa.OpXORI:  isa.Funct3XOR,
	isa.OpORI:   isa.Funct3OR,
	isa.OpANDI:  isa.Funct3AND,
}

var loadFunct3 = map[isa.Op]uint32{
	isa.OpLB:  isa.Funct3LB,
	isa.OpLH:  isa.Funct3LH,
	isa.OpLW:  isa.Funct3LW,
	isa.OpLBU: isa.Funct3LBU,
	isa.OpLHU: isa.Funct3LHU,
}

var storeFunct3 = map[isa.Op]uint32{
	isa.OpSB: isa.Funct3SB,
	isa.OpSH: isa.Funct3SH,
	isa.OpSW: isa.Funct3SW,
}

var branchFunct3 = map[isa.Op]uint32{
	isa.OpBEQ:  isa.Funct3BEQ,
	isa.OpBNE:  isa.Funct3BNE,
	isa.OpBLT:  isa.Funct3BLT,
	isa.OpBGE:  isa.Funct3BGE,
	isa.OpBLTU: isa.Funct3BLTU,
	isa.OpBGEU: isa.Funct3BGEU,
}

// Encode converts inst into its 32-bit RV32IM machine word.
func Encode(inst isa.Instruction) (uint32, error) {
	switch isa.FormatOf(inst.Op) {
	case isa.FormatR:
		return encodeR(inst)
	case isa.FormatI:
		return encodeIGroup(inst)
	case isa.FormatS:
		return encodeS(inst)
	case isa.FormatB:
		return encodeB(inst)
	case isa.FormatU:
		return encodeU(inst)
	case isa.FormatJ:
		return encodeJ(inst)
	case isa.FormatSystem:
		return encodeSystem(inst)
	default:
		return 0, newError("unknown op %v", inst.Op)
	}
}

func encodeR(inst isa.Instruction) (uint32, error) {
	f, ok := rFields[inst.Op]
	if !ok {
		return 0, newError("%v is not an R-type op", inst.Op)
	}
	if err := checkReg(inst.Rd); err != nil {
		return 0, err
	}
	if err := checkReg(inst.Rs1); err != nil {
		return 0, err
	}
	if err := checkReg(inst.Rs2); err != nil {
		return 0, err
	}
	word := isa.OpcodeR
	word |= uint32(inst.Rd&0x1F) << 7
	word |= f.funct3 << 12
	word |= uint32(inst.Rs1&0x1F) << 15
	word |= uint32(inst.Rs2&0x1F) << 20
	word |= f.funct7 << 25
	return word, nil
}

// encodeIGroup dispatches the several Ops that share the I-type shape:
// shift-immediates, arithmetic, loads, and JALR each use different funct3
// tables and (for shifts) a funct7-style field over the immediate.
func encodeIGroup(inst isa.Instruction) (uint32, error) {
	if err := checkReg(inst.Rd); err != nil {
		return 0, err
	}
	if err := checkReg(inst.Rs1); err != nil {
		return 0, err
	}

	if funct3, ok := shiftImmFunct3[inst.Op]; ok {
		if inst.Shamt > 31 {
			return 0, newError("shift amount %d exceeds 5 bits", inst.Shamt)
		}
		funct7 := shiftImmFunct7[inst.Op]
		word := isa.OpcodeOpImm
		word |= uint32(inst.Rd&0x1F) << 7
		word |= funct3 << 12
		word |= uint32(inst.Rs1&0x1F) << 15
		word |= uint32(inst.Shamt&0x1F) << 20
		word |= funct7 << 25
		return word, nil
	}

	if funct3, ok := iArithFunct3[inst.Op]; ok {
		return encodeI(isa.OpcodeOpImm, funct3, inst)
	}

	if funct3, ok := loadFunct3[inst.Op]; ok {
		return encodeI(isa.OpcodeLoad, funct3, inst)
	}

	if inst.Op == isa.OpJALR {
		return encodeI(isa.OpcodeJALR, isa.Funct3JALR, inst)
	}

	return 0, newError("%v is not an I-type op", inst.Op)
}

func encodeI(opcode, funct3 uint32, inst isa.Instruction) (uint32, error) {
	if inst.Imm < -2048 || inst.Imm > 2047 {
		return 0, newError("I-type immediate %d out of 12-bit signed range", inst.Imm)
	}
	word := opcode
	word |= uint32(inst.Rd&0x1F) << 7
	word |= funct3 << 12
	word |= uint32(inst.Rs1&0x1F) << 15
	word |= (uint32(inst.Imm) & 0xFFF) << 20
	return word, nil
}

func encodeS(inst isa.Instruction) (uint32, error) {
	funct3, ok := storeFunct3[inst.Op]
	if !ok {
		return 0, newError("%v is not an S-type op", inst.Op)
	}
	if err := checkReg(inst.Rs1); err != nil {
		return 0, err
	}
	if err := checkReg(inst.Rs2); err != nil {
		return 0, err
	}
	if inst.Imm < -2048 || inst.Imm > 2047 {
		return 0, newError("S-type immediate %d out of 12-bit signed range", inst.Imm)
	}
	imm := uint32(inst.Imm) & 0xFFF
	word := isa.OpcodeStore
	word |= (imm & 0x1F) << 7
	word |= funct3 << 12
	word |= uint32(inst.Rs1&0x1F) << 15
	word |= uint32(inst.Rs2&0x1F) << 20
	word |= ((imm >> 5) & 0x7F) << 25
	return word, nil
}

func encodeB(inst isa.Instruction) (uint32, error) {
	funct3, ok := branchFunct3[inst.Op]
	if !ok {
		return 0, newError("%v is not a B-type op", inst.Op)
	}
	if err := checkReg(inst.Rs1); err != nil {
		return 0, err
	}
	if err := checkReg(inst.Rs2); err != nil {
		return 0, err
	}
	if inst.Imm%2 != 0 {
		return 0, newError("branch offset %d is odd", inst.Imm)
	}
	if inst.Imm < -4096 || inst.Imm > 4094 {
		return 0, newError("branch offset %d out of 13-bit signed range", inst.Imm)
	}
	imm := uint32(inst.Imm)
	word := isa.OpcodeBranch
	word |= ((imm >> 11) & 0x1) << 7
	word |= ((imm >> 1) & 0xF) << 8
	word |= funct3 << 12
	word |= uint32(inst.Rs1&0x1F) << 15
	word |= uint32(inst.Rs2&0x1F) << 20
	word |= ((imm >> 5) & 0x3F) << 25
	word |= ((imm >> 12) & 0x1) << 31
	return word, nil
}

func encodeU(inst isa.Instruction) (uint32, error) {
	if inst.Op != isa.OpLUI && inst.Op != isa.OpAUIPC {
		return 0, newError("%v is not a U-type op", inst.Op)
	}
	if err := checkReg(inst.Rd); err != nil {
		return 0, err
	}
	if uint32(inst.Imm)&0xFFF != 0 {
		return 0, newError("U-type immediate 0x%08X has nonzero low 12 bits", uint32(inst.Imm))
	}
	opcode := isa.OpcodeLUI
	if inst.Op == isa.OpAUIPC {
		opcode = isa.OpcodeAUIPC
	}
	word := opcode
	word |= uint32(inst.Rd&0x1F) << 7
	word |= uint32(inst.Imm) & 0xFFFFF000
	return word, nil
}

func encodeJ(inst isa.Instruction) (uint32, error) {
	if inst.Op != isa.OpJAL {
		return 0, newError("%v is not a J-type op", inst.Op)
	}
	if err := checkReg(inst.Rd); err != nil {
		return 0, err
	}
	if inst.Imm%2 != 0 {
		return 0, newError("jump offset %d is odd", inst.Imm)
	}
	if inst.Imm < -(1<<20) || inst.Imm > (1<<20)-2 {
		return 0, newError("jump offset %d out of 21-bit signed range", inst.Imm)
	}
	imm := uint32(inst.Imm)
	word := isa.OpcodeJAL
	word |= uint32(inst.Rd&0x1F) << 7
	word |= ((imm >> 12) & 0xFF) << 12
	word |= ((imm >> 11) & 0x1) << 20
	word |= ((imm >> 1) & 0x3FF) << 21
	word |= ((imm >> 20) & 0x1) << 31
	return word, nil
}

func encodeSystem(inst isa.Instruction) (uint32, error) {
	switch inst.Op {
	case isa.OpECALL:
		return isa.ECallWord, nil
	case isa.OpHALT:
		return isa.HaltWord, nil
	default:
		return 0, newError("%v is not a system op", inst.Op)
	}
}

func checkReg(r uint8) error {
	if r > 31 {
		return newError("register index %d out of range", r)
	}
	return nil
}
