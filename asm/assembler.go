package asm

import (
	"strings"

	"github.com/Gaok1/FALCON-ASM-sub000/encoder"
	"github.com/Gaok1/FALCON-ASM-sub000/isa"
)

// Program is the output of a successful assembly: encoded text words, the
// data segment's final byte layout, and the size reserved for bss. Its
// three base addresses are fixed by the external interface contract.
type Program struct {
	TextWords []uint32
	DataBytes []byte
	BssSize   uint32

	BasePC   uint32
	DataBase uint32
	BssBase  uint32

	Labels map[string]uint32
}

type section int

const (
	sectionText section = iota
	sectionData
	sectionBss
)

func (s section) String() string {
	switch s {
	case sectionText:
		return ".text"
	case sectionData:
		return ".data"
	case sectionBss:
		return ".bss"
	default:
		return "?"
	}
}

// textItem is a classified .text line awaiting pass-2 expansion: a real
// instruction or a pseudo-instruction, with its byte size already
// committed during pass 1.
type textItem struct {
	line      int
	pc        uint32
	mnemonic  string
	operands  []string
	size      uint32
	isPseudo  bool
}

// labelResolver turns an assembly-time operand token into an address or a
// PC-relative byte offset, consulting the fully-populated label table.
// Non-label numeric tokens are accepted directly, matching the boundary
// tests that assemble raw literal branch offsets.
type labelResolver struct {
	labels map[string]uint32
}

func (r *labelResolver) address(tok string, line int) (uint32, *Error) {
	tok = strings.TrimSpace(tok)
	if v, err := parseImmediate(tok, line); err == nil {
		return uint32(v), nil
	}
	addr, ok := r.labels[tok]
	if !ok {
		return 0, newError(line, ErrUnresolvedLabel, "undefined label %q", tok)
	}
	return addr, nil
}

func (r *labelResolver) branchOffset(tok string, line int, pc uint32) (int32, *Error) {
	tok = strings.TrimSpace(tok)
	if v, err := parseImmediate(tok, line); err == nil {
		return int32(v), nil
	}
	addr, ok := r.labels[tok]
	if !ok {
		return 0, newError(line, ErrUnresolvedLabel, "undefined label %q", tok)
	}
	return int32(addr - pc), nil
}

// preprocess strips ';' and '#' comment tails and blank lines, keeping
// each surviving line's original 1-based line number.
func preprocess(text string) []struct {
	line int
	text string
} {
	var out []struct {
		line int
		text string
	}
	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		stripped := stripComment(raw)
		stripped = strings.TrimSpace(stripped)
		if stripped == "" {
			continue
		}
		out = append(out, struct {
			line int
			text string
		}{lineNo, stripped})
	}
	return out
}

// stripComment removes a trailing ';' or '#' comment, respecting quoted
// string literals so a '#' or ';' inside "..." is not mistaken for one.
func stripComment(line string) string {
	inQuotes := false
	for i, r := range line {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ';', '#':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

// splitLabel extracts a leading "label:" prefix, returning the label name
// (empty if none) and the remaining text.
func splitLabel(line string) (string, string) {
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

// splitMnemonic separates the first whitespace-delimited token (the
// mnemonic or directive) from the remaining operand text.
func splitMnemonic(body string) (string, string) {
	body = strings.TrimSpace(body)
	idx := strings.IndexAny(body, " \t")
	if idx < 0 {
		return body, ""
	}
	return body[:idx], strings.TrimSpace(body[idx+1:])
}

// Assemble translates assembly source text into a Program, performing the
// two-pass layout: pass 1 classifies every line, advances per-section
// pointers, and builds the label table (data and bss bytes are final at
// the end of pass 1, since neither depends on a forward scan of .text);
// pass 2 walks the classified .text items and emits encoded words now that
// every label is resolvable, including forward references.
func Assemble(text string, basePC uint32) (*Program, error) {
	lines := preprocess(text)

	sec := sectionText
	labels := make(map[string]uint32)
	labelSections := make(map[string]section)

	var textItems []textItem
	var dataBytes []byte
	var bssSize uint32
	textPC := basePC

	for _, l := range lines {
		lineText := l.text
		label, body := splitLabel(lineText)
		if label != "" {
			if _, exists := labels[label]; exists {
				return nil, newError(l.line, ErrDuplicateLabel, "label %q already defined", label)
			}
			labelSections[label] = sec
			switch sec {
			case sectionText:
				labels[label] = textPC
			case sectionData:
				labels[label] = uint32(len(dataBytes)) // relocated to data_base after pass 1
			case sectionBss:
				labels[label] = bssSize // relocated to bss_base after pass 1
			}
		}
		if body == "" {
			continue
		}

		mnemonic, rest := splitMnemonic(body)
		lower := strings.ToLower(mnemonic)

		if lower == ".text" || lower == ".data" || lower == ".bss" {
			sec = sectionFromName(lower)
			continue
		}
		if lower == ".section" {
			name := strings.ToLower(strings.TrimSpace(rest))
			newSec, ok := sectionFromDotArg(name)
			if !ok {
				return nil, newError(l.line, ErrUnknownSection, "unknown section %q", rest)
			}
			sec = newSec
			continue
		}

		if strings.HasPrefix(mnemonic, ".") {
			operands := splitOperands(rest)
			switch sec {
			case sectionData:
				var err *Error
				dataBytes, err = emitDataDirective(dataBytes, lower, operands, l.line)
				if err != nil {
					return nil, err
				}
			case sectionBss:
				if !isBssDirective(lower) {
					return nil, newError(l.line, ErrBssExplicitData, "%s is not permitted in .bss", lower)
				}
				var err *Error
				bssSize, err = bssDirectiveSize(bssSize, lower, operands, l.line)
				if err != nil {
					return nil, err
				}
			case sectionText:
				return nil, newError(l.line, ErrUnknownDirective, "directive %q is not valid in .text", lower)
			}
			continue
		}

		if sec != sectionText {
			return nil, newError(l.line, ErrUnknownMnemonic, "instruction %q found outside .text", mnemonic)
		}

		operands := splitOperands(rest)
		lowerMn := strings.ToLower(mnemonic)
		var size uint32 = 4
		isP := false
		if isPseudo(lowerMn) {
			size = pseudoSizes[lowerMn]
			isP = true
		} else if _, ok := realMnemonic(lowerMn); !ok {
			return nil, newError(l.line, ErrUnknownMnemonic, "unknown mnemonic %q", mnemonic)
		}

		textItems = append(textItems, textItem{
			line:     l.line,
			pc:       textPC,
			mnemonic: lowerMn,
			operands: operands,
			size:     size,
			isPseudo: isP,
		})
		textPC += size
	}

	dataBase := basePC + 0x1000
	bssBase := dataBase + uint32(len(dataBytes))

	// Relocate data/bss label offsets recorded during pass 1 into absolute
	// addresses now that the segment bases are known. Text labels are
	// already absolute.
	for name, sec := range labelSections {
		switch sec {
		case sectionData:
			labels[name] = dataBase + labels[name]
		case sectionBss:
			labels[name] = bssBase + labels[name]
		}
	}

	resolver := &labelResolver{labels: labels}

	var textWords []uint32
	for _, item := range textItems {
		var insts []isa.Instruction
		if item.isPseudo {
			expanded, err := expandPseudo(item.mnemonic, item.operands, item.line, item.pc, resolver)
			if err != nil {
				return nil, err
			}
			insts = expanded
		} else {
			inst, err := parseRealInstruction(item.mnemonic, item.operands, item.line, item.pc, resolver)
			if err != nil {
				return nil, err
			}
			insts = []isa.Instruction{inst}
		}
		if uint32(len(insts))*4 != item.size {
			return nil, newError(item.line, ErrInternal, "pseudo %q pass-1/pass-2 size mismatch: reserved %d, emitted %d", item.mnemonic, item.size, len(insts)*4)
		}
		for _, inst := range insts {
			word, eerr := encoder.Encode(inst)
			if eerr != nil {
				return nil, newError(item.line, ErrImmediateRange, "%v", eerr)
			}
			textWords = append(textWords, word)
		}
	}

	return &Program{
		TextWords: textWords,
		DataBytes: dataBytes,
		BssSize:   bssSize,
		BasePC:    basePC,
		DataBase:  dataBase,
		BssBase:   bssBase,
		Labels:    labels,
	}, nil
}

func sectionFromName(dotName string) section {
	switch dotName {
	case ".text":
		return sectionText
	case ".data":
		return sectionData
	default:
		return sectionBss
	}
}

func sectionFromDotArg(name string) (section, bool) {
	switch name {
	case ".text", "text":
		return sectionText, true
	case ".data", "data":
		return sectionData, true
	case ".bss", "bss":
		return sectionBss, true
	default:
		return 0, false
	}
}
