package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

// LintLevel represents the severity of a lint issue
type LintLevel int

const (
	LintError   LintLevel = iota // Syntax errors, undefined references
	LintWarning                  // Best practice violations, potential issues
	LintInfo                     // Suggestions, style recommendations
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue represents a single lint finding
type LintIssue struct {
	Level   LintLevel
	Line    int
	Message string
	Code    string // Issue code like "UNDEF_LABEL", "UNREACHABLE_CODE"
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("line %d: %s: %s [%s]", i.Line, i.Level, i.Message, i.Code)
}

// LintOptions controls linter behavior
type LintOptions struct {
	CheckUnused  bool // Check for unused labels
	CheckReach   bool // Check for unreachable code
	CheckRegUse  bool // Check register usage
	SuggestFixes bool // Suggest fixes for common issues
}

// DefaultLintOptions returns default linter options
func DefaultLintOptions() *LintOptions {
	return &LintOptions{
		CheckUnused:  true,
		CheckReach:   true,
		CheckRegUse:  true,
		SuggestFixes: true,
	}
}

// Linter analyzes RV32IM assembly source and reports every issue it finds
// at once: errors the assembler also rejects (undefined labels, unknown
// mnemonics) but stops at the first of, and warnings the assembler accepts
// silently (unused or duplicate labels, unreachable code, writes to x0).
type Linter struct {
	options *LintOptions
	issues  []*LintIssue
	lines   []SourceLine

	definedLabels    map[string]int   // label -> line number
	referencedLabels map[string][]int // label -> line numbers where used
}

// NewLinter creates a new linter
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{
		options:          options,
		definedLabels:    make(map[string]int),
		referencedLabels: make(map[string][]int),
	}
}

// Lint analyzes the given assembly source code
func (l *Linter) Lint(source string) []*LintIssue {
	l.lines = ScanSource(source)

	l.collectLabels()
	l.checkUndefinedLabels()

	if l.options.CheckUnused {
		l.checkUnusedLabels()
	}
	if l.options.CheckReach {
		l.checkUnreachableCode()
	}
	if l.options.CheckRegUse {
		l.checkRegisterUsage()
	}
	l.checkMnemonics()

	sort.Slice(l.issues, func(i, j int) bool {
		return l.issues[i].Line < l.issues[j].Line
	})

	return l.issues
}

func (l *Linter) collectLabels() {
	for _, ln := range l.lines {
		if ln.Label == "" {
			continue
		}
		if _, exists := l.definedLabels[ln.Label]; exists {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintWarning,
				Line:    ln.Num,
				Message: fmt.Sprintf("duplicate label %q", ln.Label),
				Code:    "DUPLICATE_LABEL",
			})
			continue
		}
		l.definedLabels[ln.Label] = ln.Num
	}
}

// checkUndefinedLabels checks branch, jump, and la references against the
// set of defined labels.
func (l *Linter) checkUndefinedLabels() {
	for _, ln := range l.lines {
		if ln.Mnemonic == "" || ln.IsDirective {
			continue
		}

		switch {
		case branchMnemonics[ln.Mnemonic] && len(ln.Operands) >= 3:
			l.checkLabelReference(ln.Operands[2], ln.Num)
		case jumpMnemonics[ln.Mnemonic] && len(ln.Operands) >= 1:
			target := ln.Operands[len(ln.Operands)-1]
			if !isRegisterOperand(target) {
				l.checkLabelReference(target, ln.Num)
			}
		case ln.Mnemonic == "la" && len(ln.Operands) == 2:
			l.checkLabelReference(ln.Operands[1], ln.Num)
		}
	}
}

func (l *Linter) checkLabelReference(label string, line int) {
	label = strings.TrimSpace(label)
	if label == "" || isImmediateOperand(label) {
		return
	}

	l.referencedLabels[label] = append(l.referencedLabels[label], line)

	if _, exists := l.definedLabels[label]; !exists {
		suggestion := l.findSimilarLabel(label)
		msg := fmt.Sprintf("undefined label %q", label)
		if suggestion != "" && l.options.SuggestFixes {
			msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
		}
		l.issues = append(l.issues, &LintIssue{
			Level:   LintError,
			Line:    line,
			Message: msg,
			Code:    "UNDEF_LABEL",
		})
	}
}

// checkUnusedLabels warns about defined but unused labels
func (l *Linter) checkUnusedLabels() {
	for label, defLine := range l.definedLabels {
		if isSpecialLabel(label) {
			continue
		}
		if _, used := l.referencedLabels[label]; !used {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintWarning,
				Line:    defLine,
				Message: fmt.Sprintf("label %q defined but never referenced", label),
				Code:    "UNUSED_LABEL",
			})
		}
	}
}

// checkUnreachableCode detects code after unconditional control transfers
// that isn't itself a branch target.
func (l *Linter) checkUnreachableCode() {
	for i, ln := range l.lines {
		if ln.Mnemonic == "" || !unconditionalExit[ln.Mnemonic] {
			continue
		}
		if i+1 >= len(l.lines) {
			continue
		}
		next := l.lines[i+1]
		if next.Label != "" {
			continue
		}
		l.issues = append(l.issues, &LintIssue{
			Level:   LintWarning,
			Line:    next.Num,
			Message: "unreachable code detected",
			Code:    "UNREACHABLE_CODE",
		})
	}
}

// checkRegisterUsage warns about writes to the hardwired-zero register,
// the one register-usage mistake that silently discards the result rather
// than failing to assemble.
func (l *Linter) checkRegisterUsage() {
	for _, ln := range l.lines {
		if ln.Mnemonic == "" || ln.IsDirective || len(ln.Operands) == 0 {
			continue
		}
		if branchMnemonics[ln.Mnemonic] || ln.Mnemonic == "sb" || ln.Mnemonic == "sh" || ln.Mnemonic == "sw" {
			continue // no destination register operand
		}
		dest := strings.TrimSpace(ln.Operands[0])
		if reg, ok := isa.RegByName(dest); ok && reg == 0 && ln.Mnemonic != "nop" {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintWarning,
				Line:    ln.Num,
				Message: fmt.Sprintf("%s writes to x0, which discards the result", ln.Mnemonic),
				Code:    "WRITE_TO_ZERO",
			})
		}
	}
}

// checkMnemonics flags instructions that are neither a real opcode nor a
// known pseudo-instruction, a mistake the assembler also rejects but which
// the linter reports alongside everything else in the file.
func (l *Linter) checkMnemonics() {
	for _, ln := range l.lines {
		if ln.Mnemonic == "" || ln.IsDirective {
			continue
		}
		if pseudoMnemonics[ln.Mnemonic] {
			continue
		}
		if _, ok := isa.OpByName(ln.Mnemonic); ok {
			continue
		}
		l.issues = append(l.issues, &LintIssue{
			Level:   LintError,
			Line:    ln.Num,
			Message: fmt.Sprintf("unknown mnemonic %q", ln.Mnemonic),
			Code:    "UNKNOWN_MNEMONIC",
		})
	}
}

// findSimilarLabel finds a label with a similar name (for suggestions)
func (l *Linter) findSimilarLabel(target string) string {
	target = strings.ToLower(target)
	bestMatch := ""
	bestDistance := 999

	for label := range l.definedLabels {
		dist := levenshteinDistance(strings.ToLower(label), target)
		if dist < bestDistance && dist <= 3 {
			bestMatch = label
			bestDistance = dist
		}
	}

	return bestMatch
}

// levenshteinDistance calculates edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = minOf3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

// isSpecialLabel checks if a label is a special entry point
func isSpecialLabel(label string) bool {
	special := []string{"_start", "main", "start"}
	for _, s := range special {
		if strings.EqualFold(label, s) {
			return true
		}
	}
	return false
}

func minOf3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
