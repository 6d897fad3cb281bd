// Command rv32 assembles and runs RV32IM programs, either as a one-shot
// batch run, an interactive TUI debugger, or an HTTP API server for
// browser-based front ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/Gaok1/FALCON-ASM-sub000/api"
	"github.com/Gaok1/FALCON-ASM-sub000/config"
	"github.com/Gaok1/FALCON-ASM-sub000/debugger"
	"github.com/Gaok1/FALCON-ASM-sub000/loader"
	"github.com/Gaok1/FALCON-ASM-sub000/vm"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		showHelp     = flag.Bool("help", false, "Show help information")
		assembleOnly = flag.Bool("assemble", false, "Assemble the file and print its symbol table, then exit")
		runMode      = flag.Bool("run", false, "Assemble and run the file to completion")
		debugMode    = flag.Bool("debug", false, "Start the TUI debugger on the given file")
		apiServer    = flag.Bool("api-server", false, "Start the HTTP API server")
		apiPort      = flag.Int("port", 8080, "API server port (used with -api-server)")
		maxSteps     = flag.Int("max-steps", 10000000, "Maximum instructions to execute before aborting")
		basePCFlag   = flag.String("base-pc", "", "Address the .text segment is loaded at (hex 0x... or decimal, default from config)")
		configPath   = flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32 %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		return
	}

	if *showHelp {
		printHelp()
		return
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32: loading config: %v\n", err)
		os.Exit(1)
	}

	basePC := mustBasePC(cfg, *basePCFlag)

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "rv32: expected an assembly source file")
		printHelp()
		os.Exit(1)
	}
	sourcePath := args[0]

	source, err := os.ReadFile(sourcePath) // #nosec G304 -- user-supplied path is the whole point of a CLI assembler
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32: reading %s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	switch {
	case *assembleOnly:
		runAssembleOnly(string(source), basePC)
	case *debugMode:
		runDebugger(string(source), basePC)
	case *runMode:
		runProgram(string(source), basePC, *maxSteps)
	default:
		runProgram(string(source), basePC, *maxSteps)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func mustBasePC(cfg *config.Config, override string) uint32 {
	s := override
	if s == "" {
		s = cfg.Execution.DefaultBasePC
	}
	basePC, err := config.ParseBasePC(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32: invalid base PC %q: %v\n", s, err)
		os.Exit(1)
	}
	return basePC
}

func runAssembleOnly(source string, basePC uint32) {
	machine := vm.NewVM(vm.DefaultMemorySize)
	prog, err := loader.AssembleAndLoad(machine, source, basePC, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32: assembly failed: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(prog.Labels))
	for name := range prog.Labels {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("text: %d words at 0x%08X\n", len(prog.TextWords), prog.BasePC)
	fmt.Printf("data: %d bytes at 0x%08X\n", len(prog.DataBytes), prog.DataBase)
	fmt.Printf("bss:  %d bytes at 0x%08X\n", prog.BssSize, prog.BssBase)
	fmt.Println("symbols:")
	for _, name := range names {
		fmt.Printf("  0x%08X  %s\n", prog.Labels[name], name)
	}
}

func runProgram(source string, basePC uint32, maxSteps int) {
	machine := vm.NewVM(vm.DefaultMemorySize)
	machine.Console = vm.NewStdIOConsole(os.Stdout, os.Stdin)

	if _, err := loader.AssembleAndLoad(machine, source, basePC, ""); err != nil {
		fmt.Fprintf(os.Stderr, "rv32: assembly failed: %v\n", err)
		os.Exit(1)
	}

	steps := machine.Run(maxSteps)
	if !machine.Halted {
		fmt.Fprintf(os.Stderr, "rv32: stopped after %d steps without reaching halt\n", steps)
		os.Exit(1)
	}
}

func runDebugger(source string, basePC uint32) {
	machine := vm.NewVM(vm.DefaultMemorySize)
	machine.Console = vm.NewStdIOConsole(os.Stdout, os.Stdin)

	prog, err := loader.AssembleAndLoad(machine, source, basePC, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32: assembly failed: %v\n", err)
		os.Exit(1)
	}

	dbg := debugger.NewDebugger(machine)
	dbg.LoadSymbols(prog.Labels)

	tui := debugger.NewTUI(dbg)
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "rv32: debugger exited with error: %v\n", err)
		os.Exit(1)
	}
}

func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}
		})
	}

	go func() {
		<-sigChan
		performShutdown()
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "rv32: API server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`rv32 - RISC-V RV32IM assembler and emulator

Usage:
  rv32 [flags] <file.s>

Flags:
  -assemble        Assemble the file and print its symbol table, then exit
  -run             Assemble and run the file to completion (default)
  -debug           Start the TUI debugger on the given file
  -api-server      Start the HTTP API server instead of running a file
  -port int        API server port (default 8080)
  -max-steps int   Maximum instructions to execute before aborting (default 10000000)
  -base-pc string  Address the .text segment is loaded at (default from config)
  -config string   Path to a TOML config file
  -version         Show version information
  -help            Show this help text`)
}
