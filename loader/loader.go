// Package loader places an assembled program image onto a VM's bus: text
// words at the program's base PC, data bytes at its data segment, and a
// zero-filled bss region, then parks the CPU at the entry point.
package loader

import (
	"fmt"

	"github.com/Gaok1/FALCON-ASM-sub000/asm"
	"github.com/Gaok1/FALCON-ASM-sub000/vm"
)

// LoadProgram writes prog's text, data, and bss segments onto machine's
// bus and sets the CPU's PC to the program's entry point (its base PC,
// unless entryLabel names a label to start from instead). It does not
// reset the machine first; callers that want a clean slate should call
// machine.Reset() before loading.
func LoadProgram(machine *vm.VM, prog *asm.Program, entryLabel string) error {
	if err := machine.Bus.LoadWords(prog.BasePC, prog.TextWords); err != nil {
		return fmt.Errorf("loading text segment at 0x%08X: %w", prog.BasePC, err)
	}
	if len(prog.DataBytes) > 0 {
		if err := machine.Bus.LoadBytes(prog.DataBase, prog.DataBytes); err != nil {
			return fmt.Errorf("loading data segment at 0x%08X: %w", prog.DataBase, err)
		}
	}
	if prog.BssSize > 0 {
		if err := machine.Bus.ZeroBytes(prog.BssBase, prog.BssSize); err != nil {
			return fmt.Errorf("zeroing bss segment at 0x%08X: %w", prog.BssBase, err)
		}
	}

	entry := prog.BasePC
	if entryLabel != "" {
		addr, ok := prog.Labels[entryLabel]
		if !ok {
			return fmt.Errorf("entry label %q not found in program", entryLabel)
		}
		entry = addr
	}
	machine.CPU.PC = entry

	return nil
}

// AssembleAndLoad assembles source and loads the result onto a freshly
// reset machine, the common path the CLI and debugger both take: neither
// wants to hand-manage a Program value between assembling and running.
func AssembleAndLoad(machine *vm.VM, source string, basePC uint32, entryLabel string) (*asm.Program, error) {
	prog, err := asm.Assemble(source, basePC)
	if err != nil {
		return nil, fmt.Errorf("assembling program: %w", err)
	}
	machine.Reset()
	if err := LoadProgram(machine, prog, entryLabel); err != nil {
		return nil, err
	}
	return prog, nil
}
