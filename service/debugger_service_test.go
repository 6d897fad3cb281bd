package service

import (
	"strings"
	"testing"

	"github.com/Gaok1/FALCON-ASM-sub000/vm"
)

func newTestService(t *testing.T) *DebuggerService {
	t.Helper()
	return NewDebuggerService(vm.NewVM(vm.DefaultMemorySize))
}

func TestLoadProgram_PopulatesSymbols(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi x10, x0, 42
		halt
	`
	if err := svc.LoadProgram(source, 0x1000); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	symbols := svc.GetSymbols()
	if addr, ok := symbols["_start"]; !ok || addr != 0x1000 {
		t.Errorf("expected _start at 0x1000, got %v (present=%v)", addr, ok)
	}
}

func TestLoadProgram_InvalidSourceReturnsError(t *testing.T) {
	svc := newTestService(t)

	if err := svc.LoadProgram("frobnicate x5, x6", 0); err == nil {
		t.Fatal("expected error loading invalid program")
	}
}

func TestStep_AdvancesRegistersAndHalts(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi x10, x0, 42
		addi x11, x10, 1
		halt
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	if err := svc.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	regs := svc.GetRegisterState()
	if regs.Registers[10] != 42 {
		t.Errorf("expected x10 = 42, got %d", regs.Registers[10])
	}

	if err := svc.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	regs = svc.GetRegisterState()
	if regs.Registers[11] != 43 {
		t.Errorf("expected x11 = 43, got %d", regs.Registers[11])
	}

	if err := svc.Step(); err != nil {
		t.Fatalf("Step (halt) failed: %v", err)
	}
	if svc.GetExecutionState() != StateHalted {
		t.Errorf("expected state halted after executing halt, got %v", svc.GetExecutionState())
	}

	if err := svc.Step(); err == nil {
		t.Error("expected error stepping a halted program")
	}
}

func TestRunUntilHalt_RunsToCompletion(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi x5, x0, 0
loop:	addi x5, x5, 1
		addi x6, x0, 3
		blt x5, x6, loop
		halt
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	svc.SetRunning(true)
	if err := svc.RunUntilHalt(); err != nil {
		t.Fatalf("RunUntilHalt failed: %v", err)
	}

	if svc.GetExecutionState() != StateHalted {
		t.Errorf("expected halted state, got %v", svc.GetExecutionState())
	}
	regs := svc.GetRegisterState()
	if regs.Registers[5] != 3 {
		t.Errorf("expected x5 = 3, got %d", regs.Registers[5])
	}
}

func TestRunUntilHalt_StopsAtBreakpoint(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi x5, x0, 1
		addi x5, x5, 1
		addi x5, x5, 1
		halt
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	if err := svc.AddBreakpoint(8); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	svc.SetRunning(true)
	if err := svc.RunUntilHalt(); err != nil {
		t.Fatalf("RunUntilHalt failed: %v", err)
	}

	if svc.GetExecutionState() == StateHalted {
		t.Error("expected execution to stop at breakpoint before halting")
	}
	if svc.GetRegisterState().PC != 8 {
		t.Errorf("expected PC = 8 at breakpoint, got %d", svc.GetRegisterState().PC)
	}
}

func TestBreakpoints_AddListRemove(t *testing.T) {
	svc := newTestService(t)

	if err := svc.AddBreakpoint(0x40); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}
	if err := svc.AddBreakpoint(0x80); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	bps := svc.GetBreakpoints()
	if len(bps) != 2 {
		t.Fatalf("expected 2 breakpoints, got %d", len(bps))
	}

	if err := svc.RemoveBreakpoint(0x40); err != nil {
		t.Fatalf("RemoveBreakpoint failed: %v", err)
	}
	bps = svc.GetBreakpoints()
	if len(bps) != 1 || bps[0].Address != 0x80 {
		t.Errorf("expected one breakpoint at 0x80, got %+v", bps)
	}
}

func TestWatchpoints_AddListRemove(t *testing.T) {
	svc := newTestService(t)

	if err := svc.AddWatchpoint(0x200, "write"); err != nil {
		t.Fatalf("AddWatchpoint failed: %v", err)
	}

	wps := svc.GetWatchpoints()
	if len(wps) != 1 || wps[0].Address != 0x200 || wps[0].Type != "write" {
		t.Fatalf("expected one write watchpoint at 0x200, got %+v", wps)
	}

	if err := svc.RemoveWatchpoint(wps[0].ID); err != nil {
		t.Fatalf("RemoveWatchpoint failed: %v", err)
	}
	if len(svc.GetWatchpoints()) != 0 {
		t.Error("expected no watchpoints after removal")
	}
}

func TestAddWatchpoint_RejectsInvalidType(t *testing.T) {
	svc := newTestService(t)

	if err := svc.AddWatchpoint(0x100, "bogus"); err == nil {
		t.Error("expected error for invalid watchpoint type")
	}
}

func TestGetMemory_ReadsLoadedData(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	halt
		.word 0xdeadbeef
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	data, err := svc.GetMemory(4, 4)
	if err != nil {
		t.Fatalf("GetMemory failed: %v", err)
	}
	if len(data) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(data))
	}
	got := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	if got != 0xdeadbeef {
		t.Errorf("expected 0xdeadbeef, got 0x%x", got)
	}
}

func TestGetDisassembly_ResolvesSymbols(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi x5, x0, 1
		halt
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	lines := svc.GetDisassembly(0, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 disassembled lines, got %d", len(lines))
	}
	if lines[0].Symbol != "_start" {
		t.Errorf("expected first line symbol _start, got %q", lines[0].Symbol)
	}
	if !strings.Contains(lines[1].Text, "halt") {
		t.Errorf("expected halt in second line text, got %q", lines[1].Text)
	}
}

func TestGetStack_ReadsAboveStackPointer(t *testing.T) {
	svc := newTestService(t)

	source := `_start:	halt`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	entries := svc.GetStack(0, 4)
	if len(entries) != 4 {
		t.Errorf("expected 4 stack entries, got %d", len(entries))
	}
}

func TestGetOutput_CapturesPrintInt(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi a7, x0, 1
		addi a0, x0, 5
		ecall
		halt
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	svc.SetRunning(true)
	if err := svc.RunUntilHalt(); err != nil {
		t.Fatalf("RunUntilHalt failed: %v", err)
	}

	if out := svc.GetOutput(); !strings.Contains(out, "5") {
		t.Errorf("expected output to contain '5', got %q", out)
	}
}

func TestExecutionTrace_EnableDisable(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi x5, x0, 1
		addi x5, x5, 1
		halt
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	svc.EnableExecutionTrace(10)
	svc.SetRunning(true)
	if err := svc.RunUntilHalt(); err != nil {
		t.Fatalf("RunUntilHalt failed: %v", err)
	}

	entries := svc.GetExecutionTraceData()
	if len(entries) != 3 {
		t.Errorf("expected 3 recorded PCs, got %d", len(entries))
	}

	svc.DisableExecutionTrace()
	if svc.GetExecutionTraceData() != nil {
		t.Error("expected nil trace data after disabling")
	}
}

func TestReset_ClearsStateAndBreakpoints(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi x5, x0, 1
		halt
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}
	if err := svc.AddBreakpoint(4); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}
	if err := svc.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if err := svc.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if len(svc.GetBreakpoints()) != 0 {
		t.Error("expected breakpoints cleared after reset")
	}
	if len(svc.GetSymbols()) != 0 {
		t.Error("expected symbols cleared after reset")
	}
	regs := svc.GetRegisterState()
	if regs.PC != 0 || regs.Registers[5] != 0 {
		t.Errorf("expected CPU state cleared after reset, got %+v", regs)
	}
}

func TestEvaluateExpression_ResolvesRegisterAndSymbol(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	addi x5, x0, 99
		halt
data:	.word 7
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}
	if err := svc.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	value, err := svc.EvaluateExpression("x5")
	if err != nil {
		t.Fatalf("EvaluateExpression failed: %v", err)
	}
	if value != 99 {
		t.Errorf("expected x5 = 99, got %d", value)
	}
}

func TestStepOver_SkipsCalledFunction(t *testing.T) {
	svc := newTestService(t)

	source := `
_start:	call add_one
		halt
add_one:
		addi x5, x5, 1
		ret
	`
	if err := svc.LoadProgram(source, 0); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	if err := svc.StepOver(); err != nil {
		t.Fatalf("StepOver failed: %v", err)
	}

	regs := svc.GetRegisterState()
	if regs.PC != 4 {
		t.Errorf("expected PC past the call at 4, got %d", regs.PC)
	}
}
