package asm_test

import (
	"testing"

	"github.com/Gaok1/FALCON-ASM-sub000/asm"
	"github.com/Gaok1/FALCON-ASM-sub000/loader"
	"github.com/Gaok1/FALCON-ASM-sub000/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadAndRun places prog onto a fresh VM and runs it to completion,
// returning the pieces individual assertions need.
func loadAndRun(t *testing.T, prog *asm.Program, maxSteps int) (*vm.CPU, *vm.Bus, *vm.BufferedConsole) {
	t.Helper()
	machine := vm.NewVM(vm.DefaultMemorySize)
	require.NoError(t, loader.LoadProgram(machine, prog, ""))
	machine.Run(maxSteps)
	return machine.CPU, machine.Bus, machine.Console.(*vm.BufferedConsole)
}

func TestAssembleStoreAndHalt(t *testing.T) {
	src := `
.text
addi x1, x0, 10
addi x2, x0, 32
sw x1, 0(x2)
halt
`
	prog, err := asm.Assemble(src, 0)
	require.NoError(t, err)

	cpu, bus, _ := loadAndRun(t, prog, 100)
	word, err := bus.Load32(0x20)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), word)
	assert.Equal(t, uint32(0), cpu.GetReg(0))
}

func TestAssembleBranchLoopSum(t *testing.T) {
	src := `
.text
addi a0, x0, 0
addi a1, x0, 5
loop:
add a0, a0, a1
addi a1, a1, -1
bne a1, x0, loop
halt
`
	prog, err := asm.Assemble(src, 0)
	require.NoError(t, err)

	cpu, _, _ := loadAndRun(t, prog, 1000)
	assert.Equal(t, uint32(15), cpu.GetReg(10))
}

func TestAssembleStringPrintViaPseudo(t *testing.T) {
	src := `
.data
msg: .asciz "hi"
.text
printStr msg
halt
`
	prog, err := asm.Assemble(src, 0)
	require.NoError(t, err)
	assert.Len(t, prog.TextWords, 5) // 4 for printStr + 1 for halt

	_, _, console := loadAndRun(t, prog, 100)
	assert.Equal(t, "hi", console.Output())
}

func TestAssembleCallRet(t *testing.T) {
	src := `
.text
call f
halt
f:
addi a0, x0, 7
ret
`
	prog, err := asm.Assemble(src, 0)
	require.NoError(t, err)

	cpu, _, _ := loadAndRun(t, prog, 1000)
	assert.Equal(t, uint32(7), cpu.GetReg(10))
	assert.Equal(t, uint32(4), cpu.GetReg(1))
}

func TestAssembleDivisionEdgeCases(t *testing.T) {
	src := `
.text
lui a1, 0x80000000
addi a2, x0, -1
div a0, a1, a2
divu a3, a1, x0
rem a4, a1, a2
halt
`
	prog, err := asm.Assemble(src, 0)
	require.NoError(t, err)

	cpu, _, _ := loadAndRun(t, prog, 1000)
	assert.Equal(t, uint32(0x80000000), cpu.GetReg(10))
	assert.Equal(t, uint32(0xFFFFFFFF), cpu.GetReg(13))
	assert.Equal(t, uint32(0), cpu.GetReg(14))
}

func TestAssembleLabelInBssAndLa(t *testing.T) {
	src := `
.data
d: .byte 7
.section .bss
b: .space 8
.section .text
la t0, b
lb t1, 0(t0)
halt
`
	prog, err := asm.Assemble(src, 0)
	require.NoError(t, err)

	cpu, _, _ := loadAndRun(t, prog, 1000)
	assert.Equal(t, uint32(0), cpu.GetReg(6)) // t1 == x6
}

func TestAddiRangeBoundary(t *testing.T) {
	_, err := asm.Assemble(".text\naddi x1, x0, 2047\nhalt\n", 0)
	require.NoError(t, err)

	_, err = asm.Assemble(".text\naddi x1, x0, 2048\nhalt\n", 0)
	require.Error(t, err)
	var aerr *asm.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, asm.ErrImmediateRange, aerr.Kind)
}

func TestBeqRangeAndOddBoundary(t *testing.T) {
	_, err := asm.Assemble(".text\nbeq x0, x0, 4094\n", 0)
	require.NoError(t, err)

	_, err = asm.Assemble(".text\nbeq x0, x0, 4096\n", 0)
	require.Error(t, err)

	_, err = asm.Assemble(".text\nbeq x0, x0, 3\n", 0)
	require.Error(t, err)
	var aerr *asm.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, asm.ErrMisalignedBranch, aerr.Kind)
}

func TestLuiMaxAndRejectsNonzeroLowBits(t *testing.T) {
	_, err := asm.Assemble(".text\nlui x1, 0xfffff000\n", 0)
	require.NoError(t, err)

	_, err = asm.Assemble(".text\nlui x1, 0xfffff001\n", 0)
	require.Error(t, err)
}

func TestBssRejectsWordDirective(t *testing.T) {
	_, err := asm.Assemble(".bss\nb: .word 1\n", 0)
	require.Error(t, err)
	var aerr *asm.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, asm.ErrBssExplicitData, aerr.Kind)
}

func TestLaExpansionMatchesSpecExample(t *testing.T) {
	src := `
.section .data
buf: .space 4
.section .text
la t0, buf
halt
`
	prog, err := asm.Assemble(src, 0)
	require.NoError(t, err)
	require.Len(t, prog.TextWords, 3)

	// la t0, buf with buf at 0x1000 -> lui t0, 0x1000 ; addi t0, t0, 0
	assert.Equal(t, prog.DataBase, uint32(0x1000))
	assert.Equal(t, uint32(0x000012B7), prog.TextWords[0]) // lui x5, 0x1000
	assert.Equal(t, uint32(0x00028293), prog.TextWords[1]) // addi x5, x5, 0
}

func TestAssembleIsDeterministic(t *testing.T) {
	src := ".text\naddi a0, x0, 1\nbne a0, x0, -4\nhalt\n"
	p1, err := asm.Assemble(src, 0)
	require.NoError(t, err)
	p2, err := asm.Assemble(src, 0)
	require.NoError(t, err)
	assert.Equal(t, p1.TextWords, p2.TextWords)
	assert.Equal(t, p1.DataBytes, p2.DataBytes)
}

func TestAssembleUnknownMnemonicReported(t *testing.T) {
	_, err := asm.Assemble(".text\nbogus x1, x2, x3\n", 0)
	require.Error(t, err)
	var aerr *asm.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, asm.ErrUnknownMnemonic, aerr.Kind)
}

func TestAssembleDuplicateLabelRejected(t *testing.T) {
	_, err := asm.Assemble(".text\nloop: nop\nloop: nop\n", 0)
	require.Error(t, err)
	var aerr *asm.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, asm.ErrDuplicateLabel, aerr.Kind)
}

func TestAssembleNopMvLiDecodeAsAddi(t *testing.T) {
	prog, err := asm.Assemble(".text\nnop\nmv t0, t1\nli t2, 5\n", 0)
	require.NoError(t, err)
	require.Len(t, prog.TextWords, 3)
	// 0x13 is the OP-IMM opcode shared by addi; all three pseudos decode as addi.
	for _, w := range prog.TextWords {
		assert.Equal(t, uint32(0x13), w&0x7F)
	}
}
