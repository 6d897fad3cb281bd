package tools

import (
	"strings"
)

// FormatStyle defines formatting options
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // Standard formatting
	FormatCompact                     // Minimal whitespace
	FormatExpanded                    // Extra whitespace for readability
)

// FormatOptions controls formatter behavior
type FormatOptions struct {
	Style             FormatStyle
	InstructionColumn int  // Column for instructions
	OperandColumn     int  // Column for operands
	CommentColumn     int  // Column for comments
	AlignOperands     bool // Align operands in columns
	AlignComments     bool // Align comments in columns
	Lowercase         bool // Lowercase mnemonics and directives
}

// DefaultFormatOptions returns default formatter options
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:             FormatDefault,
		InstructionColumn: 8,
		OperandColumn:     16,
		CommentColumn:     40,
		AlignOperands:     true,
		AlignComments:     true,
		Lowercase:         true,
	}
}

// CompactFormatOptions returns options for compact formatting
func CompactFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatCompact
	opts.InstructionColumn = 0
	opts.OperandColumn = 0
	opts.CommentColumn = 0
	opts.AlignOperands = false
	opts.AlignComments = false
	return opts
}

// ExpandedFormatOptions returns options for expanded formatting
func ExpandedFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatExpanded
	opts.InstructionColumn = 12
	opts.OperandColumn = 28
	opts.CommentColumn = 50
	return opts
}

// Formatter reformats RV32IM assembly source into a consistent column
// layout: label, mnemonic, operands, comment, each padded to a fixed
// column the way a hand-tuned listing would be.
type Formatter struct {
	options *FormatOptions
	output  strings.Builder
}

// NewFormatter creates a new formatter
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format formats the given assembly source code
func (f *Formatter) Format(input string) string {
	f.output.Reset()
	for _, ln := range ScanSource(input) {
		f.formatLine(ln)
	}
	return f.output.String()
}

func (f *Formatter) formatLine(ln SourceLine) {
	line := strings.Builder{}

	mnemonic := ln.Mnemonic
	if !f.options.Lowercase {
		mnemonic = strings.ToUpper(mnemonic)
	}

	switch {
	case ln.Label != "" && mnemonic == "":
		// Standalone label line.
		line.WriteString(ln.Label)
		line.WriteString(":")

	case ln.Label != "":
		line.WriteString(ln.Label)
		line.WriteString(":")
		if f.options.Style != FormatCompact {
			f.padToColumn(&line, f.options.InstructionColumn)
		} else {
			line.WriteString(" ")
		}
		f.writeMnemonicAndOperands(&line, mnemonic, ln.Operands)

	default:
		if f.options.Style != FormatCompact {
			f.padToColumn(&line, f.options.InstructionColumn)
		}
		f.writeMnemonicAndOperands(&line, mnemonic, ln.Operands)
	}

	if ln.Comment != "" {
		comment := strings.TrimSpace(ln.Comment)
		switch {
		case f.options.Style == FormatCompact:
			line.WriteString(" ; ")
			line.WriteString(comment)
		case f.options.AlignComments:
			f.padToColumn(&line, f.options.CommentColumn)
			line.WriteString("; ")
			line.WriteString(comment)
		default:
			line.WriteString("\t; ")
			line.WriteString(comment)
		}
	}

	f.output.WriteString(line.String())
	f.output.WriteString("\n")
}

func (f *Formatter) writeMnemonicAndOperands(line *strings.Builder, mnemonic string, operands []string) {
	if mnemonic == "" {
		return
	}
	line.WriteString(mnemonic)
	if len(operands) == 0 {
		return
	}
	if f.options.Style == FormatCompact {
		line.WriteString(" ")
	} else if f.options.AlignOperands {
		f.padToColumn(line, f.options.OperandColumn)
	} else {
		line.WriteString("\t")
	}
	for i, op := range operands {
		if i > 0 {
			line.WriteString(", ")
		}
		line.WriteString(strings.TrimSpace(op))
	}
}

// padToColumn pads the string builder to the specified column
func (f *Formatter) padToColumn(sb *strings.Builder, column int) {
	current := sb.Len()
	switch {
	case current < column:
		sb.WriteString(strings.Repeat(" ", column-current))
	case current == column:
	default:
		sb.WriteString(" ")
	}
}

// FormatString is a convenience function to format a string with default options
func FormatString(input string) string {
	return NewFormatter(DefaultFormatOptions()).Format(input)
}

// FormatStringWithStyle formats a string with the specified style
func FormatStringWithStyle(input string, style FormatStyle) string {
	var options *FormatOptions
	switch style {
	case FormatCompact:
		options = CompactFormatOptions()
	case FormatExpanded:
		options = ExpandedFormatOptions()
	default:
		options = DefaultFormatOptions()
	}
	return NewFormatter(options).Format(input)
}
