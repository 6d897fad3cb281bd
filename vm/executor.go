package vm

import (
	"github.com/Gaok1/FALCON-ASM-sub000/decoder"
	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

// Step fetches the word at cpu.PC, decodes it, and executes exactly one
// instruction. It returns false to signal that the machine has halted
// (HALT/EBREAK, a decode failure, or a bus fault); a fault leaves PC
// pointing at the faulting fetch address so the host can inspect it.
//
// All arithmetic wraps modulo 2^32; shift amounts are masked to 5 bits;
// signed comparisons operate on the int32 reinterpretation of the operand
// registers. Register writes to x0 are dropped by CPU.SetReg.
func Step(cpu *CPU, bus *Bus, console Console) bool {
	word, err := bus.Load32(cpu.PC)
	if err != nil {
		return false
	}

	inst, err := decoder.Decode(word)
	if err != nil {
		return false
	}

	nextPC := cpu.PC + 4
	cpu.Cycles++

	switch inst.Op {
	case isa.OpHALT:
		return false

	case isa.OpECALL:
		result, err := doSyscall(cpu, bus, console)
		if err != nil {
			return false
		}
		if result == syscallWaiting {
			return true // PC does not advance; host retries once input exists.
		}
		cpu.PC = nextPC
		return true

	// R-type
	case isa.OpADD:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)+cpu.GetReg(inst.Rs2))
	case isa.OpSUB:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)-cpu.GetReg(inst.Rs2))
	case isa.OpSLL:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)<<(cpu.GetReg(inst.Rs2)&0x1F))
	case isa.OpSLT:
		cpu.SetReg(inst.Rd, boolToWord(int32(cpu.GetReg(inst.Rs1)) < int32(cpu.GetReg(inst.Rs2))))
	case isa.OpSLTU:
		cpu.SetReg(inst.Rd, boolToWord(cpu.GetReg(inst.Rs1) < cpu.GetReg(inst.Rs2)))
	case isa.OpXOR:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)^cpu.GetReg(inst.Rs2))
	case isa.OpSRL:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)>>(cpu.GetReg(inst.Rs2)&0x1F))
	case isa.OpSRA:
		cpu.SetReg(inst.Rd, uint32(int32(cpu.GetReg(inst.Rs1))>>(cpu.GetReg(inst.Rs2)&0x1F)))
	case isa.OpOR:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)|cpu.GetReg(inst.Rs2))
	case isa.OpAND:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)&cpu.GetReg(inst.Rs2))

	case isa.OpMUL:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)*cpu.GetReg(inst.Rs2))
	case isa.OpMULH:
		cpu.SetReg(inst.Rd, mulHighSigned(int32(cpu.GetReg(inst.Rs1)), int32(cpu.GetReg(inst.Rs2))))
	case isa.OpMULHSU:
		cpu.SetReg(inst.Rd, mulHighSignedUnsigned(int32(cpu.GetReg(inst.Rs1)), cpu.GetReg(inst.Rs2)))
	case isa.OpMULHU:
		cpu.SetReg(inst.Rd, mulHighUnsigned(cpu.GetReg(inst.Rs1), cpu.GetReg(inst.Rs2)))
	case isa.OpDIV:
		cpu.SetReg(inst.Rd, uint32(divSigned(int32(cpu.GetReg(inst.Rs1)), int32(cpu.GetReg(inst.Rs2)))))
	case isa.OpDIVU:
		cpu.SetReg(inst.Rd, divUnsigned(cpu.GetReg(inst.Rs1), cpu.GetReg(inst.Rs2)))
	case isa.OpREM:
		cpu.SetReg(inst.Rd, uint32(remSigned(int32(cpu.GetReg(inst.Rs1)), int32(cpu.GetReg(inst.Rs2)))))
	case isa.OpREMU:
		cpu.SetReg(inst.Rd, remUnsigned(cpu.GetReg(inst.Rs1), cpu.GetReg(inst.Rs2)))

	// I-type arithmetic
	case isa.OpADDI:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)+uint32(inst.Imm))
	case isa.OpSLTI:
		cpu.SetReg(inst.Rd, boolToWord(int32(cpu.GetReg(inst.Rs1)) < inst.Imm))
	case isa.OpSLTIU:
		cpu.SetReg(inst.Rd, boolToWord(cpu.GetReg(inst.Rs1) < uint32(inst.Imm)))
	case isa.OpXORI:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)^uint32(inst.Imm))
	case isa.OpORI:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)|uint32(inst.Imm))
	case isa.OpANDI:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)&uint32(inst.Imm))

	// Shift-immediate
	case isa.OpSLLI:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)<<(uint32(inst.Shamt)&0x1F))
	case isa.OpSRLI:
		cpu.SetReg(inst.Rd, cpu.GetReg(inst.Rs1)>>(uint32(inst.Shamt)&0x1F))
	case isa.OpSRAI:
		cpu.SetReg(inst.Rd, uint32(int32(cpu.GetReg(inst.Rs1))>>(uint32(inst.Shamt)&0x1F)))

	// Loads
	case isa.OpLB:
		v, err := bus.Load8(cpu.GetReg(inst.Rs1) + uint32(inst.Imm))
		if err != nil {
			return false
		}
		cpu.SetReg(inst.Rd, uint32(int32(int8(v))))
	case isa.OpLBU:
		v, err := bus.Load8(cpu.GetReg(inst.Rs1) + uint32(inst.Imm))
		if err != nil {
			return false
		}
		cpu.SetReg(inst.Rd, uint32(v))
	case isa.OpLH:
		v, err := bus.Load16(cpu.GetReg(inst.Rs1) + uint32(inst.Imm))
		if err != nil {
			return false
		}
		cpu.SetReg(inst.Rd, uint32(int32(int16(v))))
	case isa.OpLHU:
		v, err := bus.Load16(cpu.GetReg(inst.Rs1) + uint32(inst.Imm))
		if err != nil {
			return false
		}
		cpu.SetReg(inst.Rd, uint32(v))
	case isa.OpLW:
		v, err := bus.Load32(cpu.GetReg(inst.Rs1) + uint32(inst.Imm))
		if err != nil {
			return false
		}
		cpu.SetReg(inst.Rd, v)

	// Stores
	case isa.OpSB:
		if err := bus.Store8(cpu.GetReg(inst.Rs1)+uint32(inst.Imm), byte(cpu.GetReg(inst.Rs2))); err != nil {
			return false
		}
	case isa.OpSH:
		if err := bus.Store16(cpu.GetReg(inst.Rs1)+uint32(inst.Imm), uint16(cpu.GetReg(inst.Rs2))); err != nil {
			return false
		}
	case isa.OpSW:
		if err := bus.Store32(cpu.GetReg(inst.Rs1)+uint32(inst.Imm), cpu.GetReg(inst.Rs2)); err != nil {
			return false
		}

	// Branches
	case isa.OpBEQ:
		if cpu.GetReg(inst.Rs1) == cpu.GetReg(inst.Rs2) {
			nextPC = cpu.PC + uint32(inst.Imm)
		}
	case isa.OpBNE:
		if cpu.GetReg(inst.Rs1) != cpu.GetReg(inst.Rs2) {
			nextPC = cpu.PC + uint32(inst.Imm)
		}
	case isa.OpBLT:
		if int32(cpu.GetReg(inst.Rs1)) < int32(cpu.GetReg(inst.Rs2)) {
			nextPC = cpu.PC + uint32(inst.Imm)
		}
	case isa.OpBGE:
		if int32(cpu.GetReg(inst.Rs1)) >= int32(cpu.GetReg(inst.Rs2)) {
			nextPC = cpu.PC + uint32(inst.Imm)
		}
	case isa.OpBLTU:
		if cpu.GetReg(inst.Rs1) < cpu.GetReg(inst.Rs2) {
			nextPC = cpu.PC + uint32(inst.Imm)
		}
	case isa.OpBGEU:
		if cpu.GetReg(inst.Rs1) >= cpu.GetReg(inst.Rs2) {
			nextPC = cpu.PC + uint32(inst.Imm)
		}

	case isa.OpJAL:
		linkAddr := cpu.PC + 4
		nextPC = cpu.PC + uint32(inst.Imm)
		cpu.SetReg(inst.Rd, linkAddr)

	case isa.OpJALR:
		target := (cpu.GetReg(inst.Rs1) + uint32(inst.Imm)) &^ 1
		linkAddr := cpu.PC + 4
		nextPC = target
		cpu.SetReg(inst.Rd, linkAddr)

	case isa.OpLUI:
		cpu.SetReg(inst.Rd, uint32(inst.Imm))
	case isa.OpAUIPC:
		cpu.SetReg(inst.Rd, cpu.PC+uint32(inst.Imm))

	default:
		return false
	}

	cpu.PC = nextPC
	return true
}

// Run drives Step up to maxSteps times, stopping early on halt. It returns
// the number of steps actually taken; reaching maxSteps without halting is
// not itself a fault, it just means the caller's step budget ran out.
func Run(cpu *CPU, bus *Bus, console Console, maxSteps int) int {
	for i := 0; i < maxSteps; i++ {
		if !Step(cpu, bus, console) {
			return i + 1
		}
	}
	return maxSteps
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
