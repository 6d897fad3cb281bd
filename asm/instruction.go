package asm

import (
	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

var shiftImmOps = map[isa.Op]bool{
	isa.OpSLLI: true, isa.OpSRLI: true, isa.OpSRAI: true,
}

var loadOps = map[isa.Op]bool{
	isa.OpLB: true, isa.OpLH: true, isa.OpLW: true, isa.OpLBU: true, isa.OpLHU: true,
}

// realMnemonic resolves a non-pseudo mnemonic to its Op, additionally
// accepting "ebreak" as a synonym for halt (both encode to 0x00100073).
func realMnemonic(name string) (isa.Op, bool) {
	if name == "ebreak" {
		return isa.OpHALT, true
	}
	return isa.OpByName(name)
}

// parseRealInstruction builds the isa.Instruction for a non-pseudo
// mnemonic, dispatching on its encoding format to pick the right operand
// grammar (§4.1's operand grammar section).
func parseRealInstruction(mnemonic string, operands []string, line int, pc uint32, resolve *labelResolver) (isa.Instruction, *Error) {
	op, ok := realMnemonic(mnemonic)
	if !ok {
		return isa.Instruction{}, newError(line, ErrUnknownMnemonic, "unknown mnemonic %q", mnemonic)
	}

	switch isa.FormatOf(op) {
	case isa.FormatR:
		if err := expectOperands(operands, 3, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := parseRegister(operands[1], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs2, err := parseRegister(operands[2], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}, nil

	case isa.FormatI:
		return parseIType(op, mnemonic, operands, line)

	case isa.FormatS:
		if err := expectOperands(operands, 2, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rs2, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		imm, reg, merr := parseMemOperand(operands[1], line)
		if merr != nil {
			return isa.Instruction{}, merr
		}
		if cerr := checkSignedRange(imm, 12, line, "store offset"); cerr != nil {
			return isa.Instruction{}, cerr
		}
		return isa.Instruction{Op: op, Rs1: reg, Rs2: rs2, Imm: int32(imm)}, nil

	case isa.FormatB:
		if err := expectOperands(operands, 3, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs2, err := parseRegister(operands[1], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		off, oerr := resolve.branchOffset(operands[2], line, pc)
		if oerr != nil {
			return isa.Instruction{}, oerr
		}
		if cerr := checkEvenOffset(int64(off), line, "branch offset"); cerr != nil {
			return isa.Instruction{}, cerr
		}
		if cerr := checkSignedRange(int64(off), 13, line, "branch offset"); cerr != nil {
			return isa.Instruction{}, cerr
		}
		return isa.Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: off}, nil

	case isa.FormatU:
		if err := expectOperands(operands, 2, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		imm, ierr := parseImmediate(operands[1], line)
		if ierr != nil {
			return isa.Instruction{}, ierr
		}
		if cerr := checkUTypeImm(imm, line); cerr != nil {
			return isa.Instruction{}, cerr
		}
		return isa.Instruction{Op: op, Rd: rd, Imm: int32(imm)}, nil

	case isa.FormatJ:
		if err := expectOperands(operands, 2, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		off, oerr := resolve.branchOffset(operands[1], line, pc)
		if oerr != nil {
			return isa.Instruction{}, oerr
		}
		if cerr := checkEvenOffset(int64(off), line, "jump offset"); cerr != nil {
			return isa.Instruction{}, cerr
		}
		if cerr := checkSignedRange(int64(off), 21, line, "jump offset"); cerr != nil {
			return isa.Instruction{}, cerr
		}
		return isa.Instruction{Op: op, Rd: rd, Imm: off}, nil

	case isa.FormatSystem:
		if err := expectOperands(operands, 0, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		return isa.Instruction{Op: op}, nil

	default:
		return isa.Instruction{}, newError(line, ErrInternal, "mnemonic %q has no known encoding format", mnemonic)
	}
}

func parseIType(op isa.Op, mnemonic string, operands []string, line int) (isa.Instruction, *Error) {
	switch {
	case shiftImmOps[op]:
		if err := expectOperands(operands, 3, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := parseRegister(operands[1], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		shamt, serr := parseImmediate(operands[2], line)
		if serr != nil {
			return isa.Instruction{}, serr
		}
		if cerr := checkShamt(shamt, line); cerr != nil {
			return isa.Instruction{}, cerr
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Shamt: uint8(shamt)}, nil

	case loadOps[op]:
		if err := expectOperands(operands, 2, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		imm, reg, merr := parseMemOperand(operands[1], line)
		if merr != nil {
			return isa.Instruction{}, merr
		}
		if cerr := checkSignedRange(imm, 12, line, "load offset"); cerr != nil {
			return isa.Instruction{}, cerr
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: reg, Imm: int32(imm)}, nil

	case op == isa.OpJALR:
		if err := expectOperands(operands, 3, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := parseRegister(operands[1], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		imm, ierr := parseImmediate(operands[2], line)
		if ierr != nil {
			return isa.Instruction{}, ierr
		}
		if cerr := checkSignedRange(imm, 12, line, "jalr offset"); cerr != nil {
			return isa.Instruction{}, cerr
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil

	default: // arithmetic immediate: addi, slti, sltiu, xori, ori, andi
		if err := expectOperands(operands, 3, line, mnemonic); err != nil {
			return isa.Instruction{}, err
		}
		rd, err := parseRegister(operands[0], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := parseRegister(operands[1], line)
		if err != nil {
			return isa.Instruction{}, err
		}
		imm, ierr := parseImmediate(operands[2], line)
		if ierr != nil {
			return isa.Instruction{}, ierr
		}
		if cerr := checkSignedRange(imm, 12, line, "immediate"); cerr != nil {
			return isa.Instruction{}, cerr
		}
		return isa.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil
	}
}
