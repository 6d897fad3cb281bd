package asm

import (
	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

// Syscall codes mirrored from the executor's syscall ABI (vm.Syscall*),
// duplicated here as untyped constants so the assembler does not import vm.
const (
	syscallPrintInt   = 1
	syscallPrintStr   = 2
	syscallReadStr    = 3
	syscallPrintStrLn = 4
	syscallReadByte   = 64
	syscallReadHalf   = 65
	syscallReadWord   = 66
)

// pseudoSizes is the pass-1 contract: the byte count each pseudo
// mnemonic's expansion will consume, known before pass 2 ever runs it.
// If pass 2 emits a different instruction count, labels computed from
// pass 1 would be wrong, so expandPseudo below must stay in lockstep
// with this table.
var pseudoSizes = map[string]uint32{
	"nop":  4,
	"mv":   4,
	"li":   4,
	"subi": 4,
	"j":    4,
	"call": 4,
	"jr":   4,
	"ret":  4,

	"la":   8,
	"push": 8,
	"pop":  8,

	"print": 12,

	"printstr":    16,
	"printstring": 16,
	"printstrln":  16,
	"read":        16,
	"readbyte":    16,
	"readhalf":    16,
	"readword":    16,
}

func isPseudo(mnemonic string) bool {
	_, ok := pseudoSizes[mnemonic]
	return ok
}

// laExpansion computes the lui/addi pair for loading an absolute address,
// compensating for the sign extension the following addi applies: hi must
// be rounded so that hi + sext12(addr-hi) == addr.
func laExpansion(rd uint8, addr uint32) [2]isa.Instruction {
	hi := int32(((addr + 0x800) >> 12) << 12)
	lo := int32(addr) - hi
	return [2]isa.Instruction{
		{Op: isa.OpLUI, Rd: rd, Imm: hi},
		{Op: isa.OpADDI, Rd: rd, Rs1: rd, Imm: lo},
	}
}

// expandPseudo expands a pseudo-instruction into its real-instruction
// sequence, per the table in the pseudo-instruction expansion contract.
// pc is the address of the pseudo itself (needed for branch-style offsets,
// though none of the current pseudos are branch-shaped).
func expandPseudo(mnemonic string, operands []string, line int, pc uint32, resolve *labelResolver) ([]isa.Instruction, *Error) {
	switch mnemonic {
	case "nop":
		if err := expectOperands(operands, 0, line, mnemonic); err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpADDI}}, nil

	case "mv":
		if err := expectOperands(operands, 2, line, mnemonic); err != nil {
			return nil, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return nil, err
		}
		rs, err := parseRegister(operands[1], line)
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpADDI, Rd: rd, Rs1: rs}}, nil

	case "li":
		if err := expectOperands(operands, 2, line, mnemonic); err != nil {
			return nil, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return nil, err
		}
		imm, ierr := parseImmediate(operands[1], line)
		if ierr != nil {
			return nil, ierr
		}
		if cerr := checkSignedRange(imm, 12, line, "li immediate"); cerr != nil {
			return nil, cerr
		}
		return []isa.Instruction{{Op: isa.OpADDI, Rd: rd, Imm: int32(imm)}}, nil

	case "subi":
		if err := expectOperands(operands, 3, line, mnemonic); err != nil {
			return nil, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return nil, err
		}
		rs, err := parseRegister(operands[1], line)
		if err != nil {
			return nil, err
		}
		imm, ierr := parseImmediate(operands[2], line)
		if ierr != nil {
			return nil, ierr
		}
		neg := -imm
		if cerr := checkSignedRange(neg, 12, line, "subi immediate"); cerr != nil {
			return nil, cerr
		}
		return []isa.Instruction{{Op: isa.OpADDI, Rd: rd, Rs1: rs, Imm: int32(neg)}}, nil

	case "j":
		if err := expectOperands(operands, 1, line, mnemonic); err != nil {
			return nil, err
		}
		off, err := resolve.branchOffset(operands[0], line, pc)
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpJAL, Rd: 0, Imm: off}}, nil

	case "call":
		if err := expectOperands(operands, 1, line, mnemonic); err != nil {
			return nil, err
		}
		off, err := resolve.branchOffset(operands[0], line, pc)
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpJAL, Rd: 1, Imm: off}}, nil

	case "jr":
		if err := expectOperands(operands, 1, line, mnemonic); err != nil {
			return nil, err
		}
		rs, err := parseRegister(operands[0], line)
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpJALR, Rd: 0, Rs1: rs}}, nil

	case "ret":
		if err := expectOperands(operands, 0, line, mnemonic); err != nil {
			return nil, err
		}
		return []isa.Instruction{{Op: isa.OpJALR, Rd: 0, Rs1: 1}}, nil

	case "la":
		if err := expectOperands(operands, 2, line, mnemonic); err != nil {
			return nil, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return nil, err
		}
		addr, aerr := resolve.address(operands[1], line)
		if aerr != nil {
			return nil, aerr
		}
		pair := laExpansion(rd, addr)
		return pair[:], nil

	case "push":
		if err := expectOperands(operands, 1, line, mnemonic); err != nil {
			return nil, err
		}
		rs, err := parseRegister(operands[0], line)
		if err != nil {
			return nil, err
		}
		sp, _ := isa.RegByName("sp")
		return []isa.Instruction{
			{Op: isa.OpADDI, Rd: sp, Rs1: sp, Imm: -4},
			{Op: isa.OpSW, Rs1: sp, Rs2: rs, Imm: 4},
		}, nil

	case "pop":
		if err := expectOperands(operands, 1, line, mnemonic); err != nil {
			return nil, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return nil, err
		}
		sp, _ := isa.RegByName("sp")
		return []isa.Instruction{
			{Op: isa.OpLW, Rd: rd, Rs1: sp, Imm: 4},
			{Op: isa.OpADDI, Rd: sp, Rs1: sp, Imm: 4},
		}, nil

	case "print":
		if err := expectOperands(operands, 1, line, mnemonic); err != nil {
			return nil, err
		}
		rs, err := parseRegister(operands[0], line)
		if err != nil {
			return nil, err
		}
		a0, _ := isa.RegByName("a0")
		a7, _ := isa.RegByName("a7")
		return []isa.Instruction{
			{Op: isa.OpADDI, Rd: a7, Imm: syscallPrintInt},
			{Op: isa.OpADDI, Rd: a0, Rs1: rs},
			{Op: isa.OpECALL},
		}, nil

	case "printstr", "printstring", "printstrln", "read", "readbyte", "readhalf", "readword":
		if err := expectOperands(operands, 1, line, mnemonic); err != nil {
			return nil, err
		}
		addr, aerr := resolve.address(operands[0], line)
		if aerr != nil {
			return nil, aerr
		}
		a0, _ := isa.RegByName("a0")
		a7, _ := isa.RegByName("a7")
		code := syscallCodeFor(mnemonic)
		pair := laExpansion(a0, addr)
		return []isa.Instruction{
			{Op: isa.OpADDI, Rd: a7, Imm: code},
			pair[0],
			pair[1],
			{Op: isa.OpECALL},
		}, nil

	default:
		return nil, newError(line, ErrUnknownMnemonic, "unknown pseudo-instruction %q", mnemonic)
	}
}

func syscallCodeFor(mnemonic string) int32 {
	switch mnemonic {
	case "printstr", "printstring":
		return syscallPrintStr
	case "printstrln":
		return syscallPrintStrLn
	case "read":
		return syscallReadStr
	case "readbyte":
		return syscallReadByte
	case "readhalf":
		return syscallReadHalf
	case "readword":
		return syscallReadWord
	}
	return 0
}
