// Package disasm renders a decoded instruction back into assembly text
// using ABI register names, the mirror image of what the assembler's
// instruction.go accepts as operand grammar. It never encodes or
// validates; it only formats whatever isa.Instruction it is given.
package disasm

import (
	"fmt"

	"github.com/Gaok1/FALCON-ASM-sub000/decoder"
	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

var shiftImmOps = map[isa.Op]bool{
	isa.OpSLLI: true, isa.OpSRLI: true, isa.OpSRAI: true,
}

var loadOps = map[isa.Op]bool{
	isa.OpLB: true, isa.OpLH: true, isa.OpLW: true, isa.OpLBU: true, isa.OpLHU: true,
}

var storeOps = map[isa.Op]bool{
	isa.OpSB: true, isa.OpSH: true, isa.OpSW: true,
}

// Format renders a single decoded instruction as assembly text, e.g.
// "addi a0, zero, 10" or "sw a1, 4(sp)". addr is the instruction's own
// address, used to render branch and jump immediates as absolute target
// addresses alongside the raw signed offset.
func Format(inst isa.Instruction, addr uint32) string {
	mnemonic := inst.Op.String()

	switch isa.FormatOf(inst.Op) {
	case isa.FormatR:
		return fmt.Sprintf("%s %s, %s, %s", mnemonic, isa.RegName(inst.Rd), isa.RegName(inst.Rs1), isa.RegName(inst.Rs2))

	case isa.FormatI:
		switch {
		case shiftImmOps[inst.Op]:
			return fmt.Sprintf("%s %s, %s, %d", mnemonic, isa.RegName(inst.Rd), isa.RegName(inst.Rs1), inst.Shamt)
		case loadOps[inst.Op]:
			return fmt.Sprintf("%s %s, %d(%s)", mnemonic, isa.RegName(inst.Rd), inst.Imm, isa.RegName(inst.Rs1))
		case inst.Op == isa.OpJALR:
			return fmt.Sprintf("%s %s, %s, %d", mnemonic, isa.RegName(inst.Rd), isa.RegName(inst.Rs1), inst.Imm)
		default:
			return fmt.Sprintf("%s %s, %s, %d", mnemonic, isa.RegName(inst.Rd), isa.RegName(inst.Rs1), inst.Imm)
		}

	case isa.FormatS:
		return fmt.Sprintf("%s %s, %d(%s)", mnemonic, isa.RegName(inst.Rs2), inst.Imm, isa.RegName(inst.Rs1))

	case isa.FormatB:
		target := addr + uint32(inst.Imm)
		return fmt.Sprintf("%s %s, %s, %d # 0x%08x", mnemonic, isa.RegName(inst.Rs1), isa.RegName(inst.Rs2), inst.Imm, target)

	case isa.FormatU:
		return fmt.Sprintf("%s %s, 0x%x", mnemonic, isa.RegName(inst.Rd), uint32(inst.Imm))

	case isa.FormatJ:
		target := addr + uint32(inst.Imm)
		return fmt.Sprintf("%s %s, %d # 0x%08x", mnemonic, isa.RegName(inst.Rd), inst.Imm, target)

	case isa.FormatSystem:
		return mnemonic

	default:
		return mnemonic
	}
}

// DecodeAndFormat decodes a 32-bit word at addr and renders it as assembly
// text. A decode error is reported inline rather than returned, since
// disassembly listings (the debugger's disassembly view, Listing) want to keep
// walking subsequent words after hitting one they cannot decode.
func DecodeAndFormat(word uint32, addr uint32) string {
	inst, err := decoder.Decode(word)
	if err != nil {
		return fmt.Sprintf(".word 0x%08x # undecodable: %v", word, err)
	}
	return Format(inst, addr)
}

// Listing disassembles a contiguous run of text words starting at base,
// one line per instruction, in address order.
func Listing(words []uint32, base uint32) []string {
	lines := make([]string, len(words))
	for i, w := range words {
		addr := base + uint32(i)*4
		lines[i] = fmt.Sprintf("%08x:  %s", addr, DecodeAndFormat(w, addr))
	}
	return lines
}
