// Package isa defines the architectural instruction representation shared
// by the assembler, encoder, decoder, and executor: a single tagged-variant
// Instruction type plus the register and opcode tables all four stages
// agree on.
package isa

import "fmt"

// Op identifies a mnemonic variant. It is the tag of the Instruction union.
type Op uint8

const (
	OpInvalid Op = iota

	// R-type: rd, rs1, rs2
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// I-type arithmetic: rd, rs1, imm (12-bit signed)
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI

	// I-type shift-immediate: rd, rs1, shamt (5-bit unsigned)
	OpSLLI
	OpSRLI
	OpSRAI

	// I-type load: rd, rs1, imm (12-bit signed offset)
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	// I-type jump register: rd, rs1, imm
	OpJALR

	// S-type: rs1, rs2, imm (12-bit signed offset)
	OpSB
	OpSH
	OpSW

	// B-type: rs1, rs2, imm (13-bit signed, even, byte offset)
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// U-type: rd, imm (low 12 bits zero)
	OpLUI
	OpAUIPC

	// J-type: rd, imm (21-bit signed, even, byte offset)
	OpJAL

	// System: no operands
	OpECALL
	OpHALT
)

var opNames = map[Op]string{
	OpADD: "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt", OpSLTU: "sltu",
	OpXOR: "xor", OpSRL: "srl", OpSRA: "sra", OpOR: "or", OpAND: "and",
	OpMUL: "mul", OpMULH: "mulh", OpMULHSU: "mulhsu", OpMULHU: "mulhu",
	OpDIV: "div", OpDIVU: "divu", OpREM: "rem", OpREMU: "remu",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori", OpORI: "ori", OpANDI: "andi",
	OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu",
	OpJALR: "jalr",
	OpSB:   "sb", OpSH: "sh", OpSW: "sw",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge", OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLUI: "lui", OpAUIPC: "auipc",
	OpJAL:   "jal",
	OpECALL: "ecall", OpHALT: "halt",
}

// String returns the canonical lowercase mnemonic for op.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "invalid"
}

// OpByName resolves a canonical real-instruction mnemonic (case-insensitive
// at the caller) to its Op. Pseudo-instructions are not part of this table;
// the assembler's pseudo expander resolves those into real instructions.
func OpByName(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return op, true
		}
	}
	return OpInvalid, false
}

// Instruction is the single tagged-variant representation used between
// assembly, encoding, decoding, and execution. Which fields are meaningful
// depends on Op; constructing one through the encoder's range checks (or
// the assembler, which calls into the same checks) guarantees it encodes
// without further validation.
type Instruction struct {
	Op   Op
	Rd   uint8 // destination register, 0-31
	Rs1  uint8 // first source register, 0-31
	Rs2  uint8 // second source register, 0-31
	Imm  int32 // sign-extended immediate; byte offset for B/J; upper bits only for U
	Shamt uint8 // shift amount, 0-31, used only by *I shift-immediates
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s(rd=%d,rs1=%d,rs2=%d,imm=%d,shamt=%d)", i.Op, i.Rd, i.Rs1, i.Rs2, i.Imm, i.Shamt)
}

// Format categorizes an Op by its encoding shape.
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatSystem
)

var opFormats = map[Op]Format{
	OpADD: FormatR, OpSUB: FormatR, OpSLL: FormatR, OpSLT: FormatR, OpSLTU: FormatR,
	OpXOR: FormatR, OpSRL: FormatR, OpSRA: FormatR, OpOR: FormatR, OpAND: FormatR,
	OpMUL: FormatR, OpMULH: FormatR, OpMULHSU: FormatR, OpMULHU: FormatR,
	OpDIV: FormatR, OpDIVU: FormatR, OpREM: FormatR, OpREMU: FormatR,

	OpADDI: FormatI, OpSLTI: FormatI, OpSLTIU: FormatI, OpXORI: FormatI, OpORI: FormatI, OpANDI: FormatI,
	OpSLLI: FormatI, OpSRLI: FormatI, OpSRAI: FormatI,
	OpLB: FormatI, OpLH: FormatI, OpLW: FormatI, OpLBU: FormatI, OpLHU: FormatI,
	OpJALR: FormatI,

	OpSB: FormatS, OpSH: FormatS, OpSW: FormatS,

	OpBEQ: FormatB, OpBNE: FormatB, OpBLT: FormatB, OpBGE: FormatB, OpBLTU: FormatB, OpBGEU: FormatB,

	OpLUI: FormatU, OpAUIPC: FormatU,

	OpJAL: FormatJ,

	OpECALL: FormatSystem, OpHALT: FormatSystem,
}

// FormatOf returns the encoding format for op.
func FormatOf(op Op) Format {
	return opFormats[op]
}
