// Package tools provides source-level analysis utilities for RV32IM
// assembly: a linter, a formatter, and a symbol cross-referencer. All three
// work directly on source text rather than on asm.Program, since the
// assembler's internal per-line classification is not part of its public
// surface and these tools need per-line diagnostics the assembler itself
// has no reason to keep around after a successful build.
package tools

import (
	"strings"

	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

// SourceLine is one non-blank source line, classified into the same parts
// the assembler's own pass 1 splits it into: an optional label, a mnemonic
// or directive name, its operands, and a trailing comment.
type SourceLine struct {
	Num         int
	Label       string
	Mnemonic    string // lowercase; empty if the line is a label only
	Operands    []string
	Comment     string
	Raw         string
	IsDirective bool
}

// ScanSource splits assembly source into classified, comment-stripped,
// non-blank lines, mirroring asm.Assemble's preprocessing pass closely
// enough that line numbers and label/mnemonic splits agree with what the
// assembler itself would see.
func ScanSource(text string) []SourceLine {
	var out []SourceLine
	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		body, comment := splitComment(raw)
		trimmed := strings.TrimSpace(body)
		if trimmed == "" {
			continue
		}

		label, rest := splitLabel(trimmed)
		if rest == "" {
			out = append(out, SourceLine{Num: lineNo, Label: label, Comment: comment, Raw: raw})
			continue
		}

		mnemonic, operandText := splitMnemonic(rest)
		out = append(out, SourceLine{
			Num:         lineNo,
			Label:       label,
			Mnemonic:    strings.ToLower(mnemonic),
			Operands:    splitOperandList(operandText),
			Comment:     comment,
			Raw:         raw,
			IsDirective: strings.HasPrefix(mnemonic, "."),
		})
	}
	return out
}

// splitComment separates a line's code from a trailing ';' or '#' comment,
// respecting quoted string literals.
func splitComment(line string) (code, comment string) {
	inQuotes := false
	for i, r := range line {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ';', '#':
			if !inQuotes {
				return line[:i], strings.TrimSpace(line[i+1:])
			}
		}
	}
	return line, ""
}

// splitLabel extracts a leading "label:" prefix, if present.
func splitLabel(line string) (label, rest string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", line
	}
	candidate := strings.TrimSpace(line[:idx])
	if candidate == "" || !isValidLabelName(candidate) {
		return "", line
	}
	return candidate, strings.TrimSpace(line[idx+1:])
}

func isValidLabelName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}

// splitMnemonic separates the first whitespace-delimited token from the
// remaining operand text.
func splitMnemonic(body string) (mnemonic, rest string) {
	body = strings.TrimSpace(body)
	idx := strings.IndexAny(body, " \t")
	if idx < 0 {
		return body, ""
	}
	return body[:idx], strings.TrimSpace(body[idx+1:])
}

// splitOperandList splits a comma-separated operand list at top level,
// leaving quoted string literals intact even when they contain commas.
func splitOperandList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var parts []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ',' && !inQuotes:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, strings.TrimSpace(cur.String()))
	return parts
}

// branchMnemonics are B-type conditional branches: rs1, rs2, label.
var branchMnemonics = map[string]bool{
	"beq": true, "bne": true, "blt": true, "bge": true, "bltu": true, "bgeu": true,
}

// jumpMnemonics are unconditional control transfers that take a label
// operand directly (real jal, or the j/call pseudo-instructions).
var jumpMnemonics = map[string]bool{
	"jal": true, "j": true, "call": true,
}

// pseudoMnemonics mirrors asm.pseudoSizes: the set of pseudo-instruction
// names the assembler expands, needed here so the linter and formatter
// don't reject them as unknown real mnemonics.
var pseudoMnemonics = map[string]bool{
	"nop": true, "mv": true, "li": true, "subi": true,
	"j": true, "call": true, "jr": true, "ret": true,
	"la": true, "push": true, "pop": true,
	"print": true, "printstr": true, "printstring": true, "printstrln": true,
	"read": true, "readbyte": true, "readhalf": true, "readword": true,
}

// unconditionalExit are mnemonics after which straight-line control flow
// never continues to the next instruction: a bare jump, a return, or a
// halt. "call" and "jal"/"jalr" used as calls are excluded since they
// expect control to come back.
var unconditionalExit = map[string]bool{
	"j": true, "jr": true, "ret": true, "halt": true,
}

func isRegisterOperand(operand string) bool {
	operand = strings.TrimSpace(operand)
	if operand == "" {
		return false
	}
	_, ok := isa.RegByName(operand)
	return ok
}

func isImmediateOperand(operand string) bool {
	operand = strings.TrimSpace(operand)
	operand = strings.TrimPrefix(operand, "+")
	operand = strings.TrimPrefix(operand, "-")
	if operand == "" {
		return false
	}
	if strings.HasPrefix(operand, "0x") || strings.HasPrefix(operand, "0X") {
		operand = operand[2:]
		if operand == "" {
			return false
		}
		for _, c := range operand {
			if !isHexDigit(c) {
				return false
			}
		}
		return true
	}
	for _, c := range operand {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
