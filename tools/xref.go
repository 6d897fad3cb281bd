package tools

import (
	"fmt"
	"sort"
	"strings"
)

// ReferenceType indicates how a symbol is used
type ReferenceType int

const (
	RefDefinition ReferenceType = iota // Symbol defined here
	RefBranch                          // Branch target
	RefLoad                            // Load from address
	RefStore                           // Store to address
	RefCall                            // Function call (call; jal is recorded as RefBranch)
)

func (r ReferenceType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefBranch:
		return "branch"
	case RefLoad:
		return "load"
	case RefStore:
		return "store"
	case RefCall:
		return "call"
	default:
		return "unknown"
	}
}

// Reference represents a single reference to a symbol
type Reference struct {
	Type ReferenceType
	Line int
}

// Symbol represents a symbol and all its references
type Symbol struct {
	Name       string
	Definition *Reference
	References []*Reference
	IsFunction bool // true if it's referenced with "call"
	IsDataOnly bool // true if it's only ever loaded/stored, never branched to
}

// XRefGenerator builds a cross-reference table for a source file: every
// label's definition site and every place it is branched to, called,
// loaded from, or stored to.
type XRefGenerator struct {
	lines   []SourceLine
	symbols map[string]*Symbol
}

// NewXRefGenerator creates a new cross-reference generator
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[string]*Symbol)}
}

// Generate generates cross-reference information from source code
func (x *XRefGenerator) Generate(input string) map[string]*Symbol {
	x.lines = ScanSource(input)

	x.collectDefinitions()
	x.collectReferences()
	x.analyzeCallGraph()

	return x.symbols
}

func (x *XRefGenerator) collectDefinitions() {
	for _, ln := range x.lines {
		if ln.Label == "" {
			continue
		}
		sym := x.symbolFor(ln.Label)
		sym.Definition = &Reference{Type: RefDefinition, Line: ln.Num}
	}
}

func (x *XRefGenerator) collectReferences() {
	for _, ln := range x.lines {
		if ln.Mnemonic == "" || ln.IsDirective {
			continue
		}

		switch {
		case branchMnemonics[ln.Mnemonic] && len(ln.Operands) >= 3:
			x.addReference(ln.Operands[2], RefBranch, ln.Num)

		case jumpMnemonics[ln.Mnemonic] && len(ln.Operands) >= 1:
			target := ln.Operands[len(ln.Operands)-1]
			if !isRegisterOperand(target) && !isImmediateOperand(target) {
				refType := RefBranch
				if ln.Mnemonic == "call" {
					refType = RefCall
				}
				x.addReference(target, refType, ln.Num)
			}

		case ln.Mnemonic == "la" && len(ln.Operands) == 2:
			x.addReference(ln.Operands[1], RefLoad, ln.Num)

		case (ln.Mnemonic == "lb" || ln.Mnemonic == "lh" || ln.Mnemonic == "lw" ||
			ln.Mnemonic == "lbu" || ln.Mnemonic == "lhu") && len(ln.Operands) == 2:
			if label, ok := memOperandLabel(ln.Operands[1]); ok {
				x.addReference(label, RefLoad, ln.Num)
			}

		case (ln.Mnemonic == "sb" || ln.Mnemonic == "sh" || ln.Mnemonic == "sw") && len(ln.Operands) == 2:
			if label, ok := memOperandLabel(ln.Operands[1]); ok {
				x.addReference(label, RefStore, ln.Num)
			}
		}
	}
}

// memOperandLabel recognizes a bare label used in place of an imm(reg)
// memory operand, a shorthand this assembler doesn't itself support but
// which the cross-referencer still treats as a data reference for
// sources written that way against a future relocatable form.
func memOperandLabel(operand string) (string, bool) {
	operand = strings.TrimSpace(operand)
	if operand == "" || strings.ContainsAny(operand, "()") {
		return "", false
	}
	if isImmediateOperand(operand) || isRegisterOperand(operand) {
		return "", false
	}
	return operand, true
}

func (x *XRefGenerator) addReference(name string, refType ReferenceType, line int) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	sym := x.symbolFor(name)
	sym.References = append(sym.References, &Reference{Type: refType, Line: line})
}

func (x *XRefGenerator) symbolFor(name string) *Symbol {
	if sym, ok := x.symbols[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name}
	x.symbols[name] = sym
	return sym
}

func (x *XRefGenerator) analyzeCallGraph() {
	for _, sym := range x.symbols {
		dataOnly := len(sym.References) > 0
		for _, ref := range sym.References {
			if ref.Type == RefCall {
				sym.IsFunction = true
			}
			if ref.Type != RefLoad && ref.Type != RefStore {
				dataOnly = false
			}
		}
		sym.IsDataOnly = dataOnly
	}
}

// GetSymbols returns all symbols found in the source
func (x *XRefGenerator) GetSymbols() map[string]*Symbol {
	return x.symbols
}

// GetFunctions returns all symbols called with "call"
func (x *XRefGenerator) GetFunctions() []*Symbol {
	return filterSortSymbols(x.symbols, func(s *Symbol) bool { return s.IsFunction })
}

// GetUndefinedSymbols returns all symbols that are referenced but not defined
func (x *XRefGenerator) GetUndefinedSymbols() []*Symbol {
	return filterSortSymbols(x.symbols, func(s *Symbol) bool {
		return s.Definition == nil && len(s.References) > 0
	})
}

// GetUnusedSymbols returns all symbols that are defined but never referenced
func (x *XRefGenerator) GetUnusedSymbols() []*Symbol {
	return filterSortSymbols(x.symbols, func(s *Symbol) bool {
		return s.Definition != nil && len(s.References) == 0 && !isSpecialLabel(s.Name)
	})
}

func filterSortSymbols(symbols map[string]*Symbol, keep func(*Symbol) bool) []*Symbol {
	var out []*Symbol
	for _, sym := range symbols {
		if keep(sym) {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// XRefReport generates a formatted cross-reference report
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport creates a new cross-reference report
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	sorted := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		sorted = append(sorted, sym)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &XRefReport{symbols: sorted}
}

// String generates a text report
func (r *XRefReport) String() string {
	var sb strings.Builder

	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(fmt.Sprintf("%-30s", sym.Name))
		switch {
		case sym.IsFunction:
			sb.WriteString(" [function]")
		case sym.IsDataOnly:
			sb.WriteString(" [data]")
		default:
			sb.WriteString(" [label]")
		}
		sb.WriteString("\n")

		if sym.Definition != nil {
			sb.WriteString(fmt.Sprintf("  Defined:     line %d\n", sym.Definition.Line))
		} else {
			sb.WriteString("  Defined:     (undefined)\n")
		}

		if len(sym.References) == 0 {
			sb.WriteString("  Referenced:  (never)\n")
		} else {
			sb.WriteString(fmt.Sprintf("  Referenced:  %d time(s)\n", len(sym.References)))

			refsByType := make(map[ReferenceType][]*Reference)
			for _, ref := range sym.References {
				refsByType[ref.Type] = append(refsByType[ref.Type], ref)
			}

			for _, refType := range []ReferenceType{RefCall, RefBranch, RefLoad, RefStore} {
				refs := refsByType[refType]
				if len(refs) == 0 {
					continue
				}
				lines := make([]string, len(refs))
				for i, ref := range refs {
					lines[i] = fmt.Sprintf("%d", ref.Line)
				}
				sb.WriteString(fmt.Sprintf("    %-10s: line(s) %s\n", refType.String(), strings.Join(lines, ", ")))
			}
		}

		sb.WriteString("\n")
	}

	definedSymbols, undefinedSymbols, unusedSymbols, functionCount := 0, 0, 0, 0
	for _, sym := range r.symbols {
		if sym.Definition != nil {
			definedSymbols++
		} else {
			undefinedSymbols++
		}
		if len(sym.References) == 0 {
			unusedSymbols++
		}
		if sym.IsFunction {
			functionCount++
		}
	}

	sb.WriteString("Summary\n")
	sb.WriteString("=======\n")
	sb.WriteString(fmt.Sprintf("Total symbols:     %d\n", len(r.symbols)))
	sb.WriteString(fmt.Sprintf("Defined:           %d\n", definedSymbols))
	sb.WriteString(fmt.Sprintf("Undefined:         %d\n", undefinedSymbols))
	sb.WriteString(fmt.Sprintf("Unused:            %d\n", unusedSymbols))
	sb.WriteString(fmt.Sprintf("Functions:         %d\n", functionCount))

	return sb.String()
}

// GenerateXRef is a convenience function to generate a cross-reference report
func GenerateXRef(input string) string {
	gen := NewXRefGenerator()
	symbols := gen.Generate(input)
	return NewXRefReport(symbols).String()
}
