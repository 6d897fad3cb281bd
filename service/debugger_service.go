// Package service wraps a VM and a debugger behind a thread-safe facade
// shared by every host that drives execution from an event loop instead
// of a blocking call: the HTTP API's session handlers and its websocket
// broadcaster both call in from their own goroutines.
package service

import (
	"fmt"
	"io"
	"sync"

	"github.com/Gaok1/FALCON-ASM-sub000/asm"
	"github.com/Gaok1/FALCON-ASM-sub000/debugger"
	"github.com/Gaok1/FALCON-ASM-sub000/disasm"
	"github.com/Gaok1/FALCON-ASM-sub000/loader"
	"github.com/Gaok1/FALCON-ASM-sub000/vm"
)

// teeConsole mirrors every console write to an external sink, letting a
// host (the HTTP API's websocket broadcaster) observe output as it is
// produced while the service still buffers it for later GetOutput calls.
// ReportError is mirrored the same way: an unknown syscall code or a
// malformed numeric input token is diagnostic output a live client wants
// pushed immediately, not just visible on the next poll.
type teeConsole struct {
	*vm.BufferedConsole
	sink    io.Writer
	errSink io.Writer
}

func (t *teeConsole) Write(p []byte) (int, error) {
	n, err := t.BufferedConsole.Write(p)
	if err == nil && t.sink != nil {
		t.sink.Write(p)
	}
	return n, err
}

func (t *teeConsole) ReportError(message string) {
	t.BufferedConsole.ReportError(message)
	if t.errSink != nil {
		fmt.Fprintln(t.errSink, message)
	}
}

const (
	maxDisassemblyCount = 1000 // Maximum number of instructions to disassemble per request
	maxStackCount       = 1000 // Maximum number of stack entries to return per request
	maxStackOffset      = 100000
)

// DebuggerService provides a thread-safe interface to debugger functionality.
// The debugger and VM it wraps are not safe for concurrent use on their own;
// s.mu serializes every access to them, including calls made from the HTTP
// handlers' own goroutines and the one driving RunUntilHalt.
type DebuggerService struct {
	mu       sync.RWMutex
	vm       *vm.VM
	debugger *debugger.Debugger
	console  *vm.BufferedConsole
	symbols  map[string]uint32
	basePC   uint32
	loaded   bool
	running  bool
}

// NewDebuggerService wraps machine in a new service, installing a
// BufferedConsole so output capture and queued stdin both work without a
// blocking reader.
func NewDebuggerService(machine *vm.VM) *DebuggerService {
	return NewDebuggerServiceWithSink(machine, nil)
}

// NewDebuggerServiceWithSink is like NewDebuggerService but mirrors every
// byte the program writes to sink as it is produced, for a host that
// pushes output to clients in real time instead of polling GetOutput.
func NewDebuggerServiceWithSink(machine *vm.VM, sink io.Writer) *DebuggerService {
	return NewDebuggerServiceWithSinks(machine, sink, nil)
}

// NewDebuggerServiceWithSinks is NewDebuggerServiceWithSink plus a second
// sink fed console diagnostics (unknown syscalls, malformed numeric input)
// as they are reported, instead of only through GetDiagnostics polling.
func NewDebuggerServiceWithSinks(machine *vm.VM, sink, errSink io.Writer) *DebuggerService {
	console := vm.NewBufferedConsole()
	machine.Console = &teeConsole{BufferedConsole: console, sink: sink, errSink: errSink}

	return &DebuggerService{
		vm:       machine,
		debugger: debugger.NewDebugger(machine),
		console:  console,
		symbols:  make(map[string]uint32),
	}
}

// GetVM returns the underlying VM, for tests.
func (s *DebuggerService) GetVM() *vm.VM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm
}

// LoadProgram assembles source at basePC and loads it onto a freshly reset
// VM, the same path the CLI's -assemble/-run flags take.
func (s *DebuggerService) LoadProgram(source string, basePC uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, err := loader.AssembleAndLoad(s.vm, source, basePC, "")
	if err != nil {
		return err
	}

	s.basePC = basePC
	s.loaded = true
	s.running = false
	s.symbols = make(map[string]uint32, len(prog.Labels))
	for name, addr := range prog.Labels {
		s.symbols[name] = addr
	}

	s.debugger.LoadSymbols(s.symbols)
	s.debugger.Breakpoints.Clear()
	s.debugger.Running = false

	return nil
}

// GetRegisterState returns a snapshot of the register file and PC.
func (s *DebuggerService) GetRegisterState() RegisterState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var regs [32]uint32
	for i := uint8(0); i < 32; i++ {
		regs[i] = s.vm.CPU.GetReg(i)
	}

	return RegisterState{
		Registers: regs,
		PC:        s.vm.CPU.PC,
		Cycles:    s.vm.CPU.Cycles,
	}
}

// Step executes a single instruction.
func (s *DebuggerService) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vm.Halted {
		return fmt.Errorf("program has halted")
	}
	s.vm.Step()
	if s.vm.Halted {
		s.running = false
	}
	return nil
}

// Pause stops a RunUntilHalt loop at its next iteration boundary.
func (s *DebuggerService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.debugger.Running = false
}

// SetRunning sets the running flag synchronously, before RunUntilHalt is
// launched in a goroutine, closing the race where a client calls Pause
// before the goroutine's first loop check.
func (s *DebuggerService) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
	s.debugger.Running = running
}

// Reset clears the VM back to its power-on state, including the loaded
// program, breakpoints, and symbols.
func (s *DebuggerService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vm.Reset()
	s.loaded = false
	s.running = false
	s.symbols = make(map[string]uint32)
	s.debugger.Breakpoints.Clear()
	s.debugger.Running = false

	return nil
}

// GetExecutionState reports whether the session is running, stopped at a
// breakpoint, or halted.
func (s *DebuggerService) GetExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.vm.Halted:
		return StateHalted
	case s.running:
		return StateRunning
	default:
		return StateBreakpoint
	}
}

// AddBreakpoint sets a breakpoint at address. Fails for a non-word-aligned
// address, since no RV32 instruction can ever start there.
func (s *DebuggerService) AddBreakpoint(address uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.debugger.Breakpoints.AddBreakpoint(address, false, "")
	return err
}

// RemoveBreakpoint deletes the breakpoint at address.
func (s *DebuggerService) RemoveBreakpoint(address uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugger.Breakpoints.DeleteBreakpointAt(address)
}

// GetBreakpoints returns every breakpoint currently set.
func (s *DebuggerService) GetBreakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bps := s.debugger.Breakpoints.GetAllBreakpoints()
	result := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		result[i] = BreakpointInfo{Address: bp.Address, Enabled: bp.Enabled}
	}
	return result
}

// GetMemory reads size bytes starting at address, substituting zero for
// any byte that can't be read so a partial view at a segment boundary
// doesn't fail the whole request.
func (s *DebuggerService) GetMemory(address uint32, size uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := make([]byte, size)
	for i := uint32(0); i < size; i++ {
		b, err := s.vm.Bus.Load8(address + i)
		if err != nil {
			continue
		}
		data[i] = b
	}
	return data, nil
}

// GetSymbols returns a copy of the label table.
func (s *DebuggerService) GetSymbols() map[string]uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make(map[string]uint32, len(s.symbols))
	for k, v := range s.symbols {
		symbols[k] = v
	}
	return symbols
}

func (s *DebuggerService) symbolForAddressLocked(addr uint32) string {
	for name, symbolAddr := range s.symbols {
		if symbolAddr == addr {
			return name
		}
	}
	return ""
}

// RunUntilHalt steps the VM until it halts, a breakpoint fires, or Pause
// is called. If running was already cleared before this goroutine got
// scheduled, it returns immediately rather than stepping once more.
func (s *DebuggerService) RunUntilHalt() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if !s.running || s.vm.Halted {
			s.running = false
			s.debugger.Running = false
			s.mu.Unlock()
			break
		}

		if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
			s.running = false
			s.debugger.Running = false
			s.mu.Unlock()
			break
		}

		s.vm.Step()
		halted := s.vm.Halted
		s.mu.Unlock()

		if halted {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			break
		}
	}

	return nil
}

// GetDisassembly decodes count instructions starting at startAddr.
func (s *DebuggerService) GetDisassembly(startAddr uint32, count int) []DisassemblyLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 || count > maxDisassemblyCount || startAddr&0x3 != 0 {
		return []DisassemblyLine{}
	}

	lines := make([]DisassemblyLine, 0, count)
	addr := startAddr
	for i := 0; i < count; i++ {
		word, err := s.vm.Bus.Load32(addr)
		if err != nil {
			break
		}

		lines = append(lines, DisassemblyLine{
			Address: addr,
			Opcode:  word,
			Text:    disasm.DecodeAndFormat(word, addr),
			Symbol:  s.symbolForAddressLocked(addr),
		})
		addr += 4
	}

	return lines
}

// GetStack returns count stack words starting offset words from SP.
func (s *DebuggerService) GetStack(offset int, count int) []StackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 || count > maxStackCount || offset < -maxStackOffset || offset > maxStackOffset {
		return []StackEntry{}
	}

	sp := s.vm.CPU.GetReg(2) // sp = x2
	startAddr := int64(sp) + int64(offset)*4
	if startAddr < 0 || startAddr > 0xFFFFFFFF {
		return []StackEntry{}
	}

	entries := make([]StackEntry, 0, count)
	for i := 0; i < count; i++ {
		next := startAddr + int64(i)*4
		if next < 0 || next > 0xFFFFFFFF {
			break
		}
		addr := uint32(next)

		value, err := s.vm.Bus.Load32(addr)
		if err != nil {
			break
		}

		entries = append(entries, StackEntry{
			Address: addr,
			Value:   value,
			Symbol:  s.symbolForAddressLocked(value),
		})
	}

	return entries
}

// StepOver executes one instruction, stepping over call instructions
// rather than into them.
func (s *DebuggerService) StepOver() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return fmt.Errorf("no program loaded")
	}

	s.debugger.SetStepOver()
	for s.debugger.Running {
		if s.debugger.StepMode != debugger.StepSingle {
			if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
				s.debugger.Running = false
				break
			}
		}

		if !s.vm.Step() {
			s.debugger.Running = false
			break
		}

		if s.debugger.StepMode == debugger.StepSingle {
			if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
				s.debugger.Running = false
				break
			}
		}
	}

	return nil
}

// StepOut configures the debugger to run until the current function
// returns.
func (s *DebuggerService) StepOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return fmt.Errorf("no program loaded")
	}
	s.debugger.SetStepOut()
	return nil
}

// AddWatchpoint sets a memory watchpoint at address.
func (s *DebuggerService) AddWatchpoint(address uint32, watchType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var wpType debugger.WatchType
	switch watchType {
	case "read":
		wpType = debugger.WatchRead
	case "write":
		wpType = debugger.WatchWrite
	case "readwrite":
		wpType = debugger.WatchReadWrite
	default:
		return fmt.Errorf("invalid watchpoint type: %s", watchType)
	}

	expression := fmt.Sprintf("[0x%08X]", address)
	_, err := s.debugger.Watchpoints.AddWatchpoint(wpType, expression, address, false, 0)
	return err
}

// RemoveWatchpoint deletes the watchpoint with the given ID.
func (s *DebuggerService) RemoveWatchpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugger.Watchpoints.DeleteWatchpoint(id)
}

// GetWatchpoints returns every watchpoint currently set.
func (s *DebuggerService) GetWatchpoints() []WatchpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wps := s.debugger.Watchpoints.GetAllWatchpoints()
	result := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		var wpType string
		switch wp.Type {
		case debugger.WatchRead:
			wpType = "read"
		case debugger.WatchWrite:
			wpType = "write"
		case debugger.WatchReadWrite:
			wpType = "readwrite"
		}

		result[i] = WatchpointInfo{ID: wp.ID, Address: wp.Address, Type: wpType, Enabled: wp.Enabled}
	}
	return result
}

// ExecuteCommand runs a debugger command and returns its textual output.
func (s *DebuggerService) ExecuteCommand(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.debugger.ExecuteCommand(command)
	return s.debugger.GetOutput(), err
}

// EvaluateExpression evaluates a watch/print expression against the
// current VM state.
func (s *DebuggerService) EvaluateExpression(expr string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debugger.Evaluator == nil {
		return 0, fmt.Errorf("no program loaded")
	}
	return s.debugger.Evaluator.EvaluateExpression(expr, s.vm, s.symbols)
}

// SendInput queues a line of input for the next read_str/read_byte/
// read_half/read_word syscall. Input sent before execution starts is
// buffered in the console's own pending queue and served once the
// program asks for it.
func (s *DebuggerService) SendInput(input string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.console.PushLine(input)
	return nil
}

// GetOutput returns everything the program has written to the console so
// far. Unlike SendInput's queue, output is not consumed by reading it.
func (s *DebuggerService) GetOutput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.console.Output()
}

// GetDiagnostics returns every message the console has reported via
// ReportError: unknown syscall codes and malformed numeric input tokens.
// The VM never halts for these, so they're surfaced here rather than as
// an error return anywhere.
func (s *DebuggerService) GetDiagnostics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.console.Errors()
}

// EnableExecutionTrace turns on PC history recording, bounded to the last
// limit entries.
func (s *DebuggerService) EnableExecutionTrace(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vm.Trace = vm.NewExecutionTrace(limit)
}

// DisableExecutionTrace turns off PC history recording.
func (s *DebuggerService) DisableExecutionTrace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vm.Trace = nil
}

// GetExecutionTraceData returns the recorded PC history, oldest first.
func (s *DebuggerService) GetExecutionTraceData() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm.Trace.Entries()
}
