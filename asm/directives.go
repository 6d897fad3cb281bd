package asm

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// isDataDirective reports whether name is a directive legal in .data (and,
// in the .space/.zero/.skip/.align case, also in .bss).
func isDataDirective(name string) bool {
	switch name {
	case ".byte", ".half", ".word", ".dword", ".ascii", ".asciz", ".string", ".space", ".zero", ".skip", ".align":
		return true
	}
	return false
}

// isBssDirective reports whether name is legal inside .bss.
func isBssDirective(name string) bool {
	switch name {
	case ".space", ".zero", ".skip", ".align":
		return true
	}
	return false
}

// emitDataDirective appends the bytes a .data directive contributes,
// returning the updated buffer.
func emitDataDirective(buf []byte, directive string, operands []string, line int) ([]byte, *Error) {
	switch directive {
	case ".byte":
		for _, op := range operands {
			v, err := parseImmediate(op, line)
			if err != nil {
				return nil, err
			}
			if v < 0 || v > 255 {
				return nil, newError(line, ErrImmediateRange, ".byte value %d out of [0,255]", v)
			}
			buf = append(buf, byte(v))
		}
	case ".half":
		for _, op := range operands {
			v, err := parseImmediate(op, line)
			if err != nil {
				return nil, err
			}
			if v < 0 || v > 65535 {
				return nil, newError(line, ErrImmediateRange, ".half value %d out of [0,65535]", v)
			}
			var tmp [2]byte
			binary.LittleEndian.PutUint16(tmp[:], uint16(v))
			buf = append(buf, tmp[:]...)
		}
	case ".word":
		for _, op := range operands {
			v, err := parseImmediate(op, line)
			if err != nil {
				return nil, err
			}
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], uint32(v))
			buf = append(buf, tmp[:]...)
		}
	case ".dword":
		for _, op := range operands {
			v, err := parseImmediate64(op, line)
			if err != nil {
				return nil, err
			}
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], uint64(v))
			buf = append(buf, tmp[:]...)
		}
	case ".ascii":
		for _, op := range operands {
			s, err := parseStringLiteral(op, line)
			if err != nil {
				return nil, err
			}
			buf = append(buf, s...)
		}
	case ".asciz", ".string":
		for _, op := range operands {
			s, err := parseStringLiteral(op, line)
			if err != nil {
				return nil, err
			}
			buf = append(buf, s...)
			buf = append(buf, 0)
		}
	case ".space", ".zero", ".skip":
		if err := expectOperands(operands, 1, line, directive); err != nil {
			return nil, err
		}
		n, err := parseImmediate(operands[0], line)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, newError(line, ErrImmediateRange, "%s count %d must be non-negative", directive, n)
		}
		buf = append(buf, make([]byte, n)...)
	case ".align":
		if err := expectOperands(operands, 1, line, directive); err != nil {
			return nil, err
		}
		n, err := parseImmediate(operands[0], line)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, newError(line, ErrImmediateRange, "%s requires a positive alignment, got %d", directive, n)
		}
		rem := int64(len(buf)) % n
		if rem != 0 {
			buf = append(buf, make([]byte, n-rem)...)
		}
	default:
		return nil, newError(line, ErrUnknownDirective, "unknown data directive %q", directive)
	}
	return buf, nil
}

// bssDirectiveSize computes how many bytes a .bss directive reserves,
// returning the new running size.
func bssDirectiveSize(size uint32, directive string, operands []string, line int) (uint32, *Error) {
	switch directive {
	case ".space", ".zero", ".skip":
		if err := expectOperands(operands, 1, line, directive); err != nil {
			return 0, err
		}
		n, err := parseImmediate(operands[0], line)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, newError(line, ErrImmediateRange, "%s count %d must be non-negative", directive, n)
		}
		return size + uint32(n), nil
	case ".align":
		if err := expectOperands(operands, 1, line, directive); err != nil {
			return 0, err
		}
		n, err := parseImmediate(operands[0], line)
		if err != nil {
			return 0, err
		}
		if n <= 0 {
			return 0, newError(line, ErrImmediateRange, "%s requires a positive alignment, got %d", directive, n)
		}
		rem := int64(size) % n
		if rem != 0 {
			size += uint32(n - rem)
		}
		return size, nil
	default:
		return 0, newError(line, ErrBssExplicitData, "%s is not permitted in .bss (explicit data)", directive)
	}
}

// parseImmediate64 is parseImmediate widened for .dword operands, which
// carry a 64-bit value rather than a 32-bit one.
func parseImmediate64(tok string, line int) (int64, *Error) {
	t := strings.TrimSpace(tok)
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		v, err := strconv.ParseUint(t[2:], 16, 64)
		if err != nil {
			return 0, newError(line, ErrBadImmediate, "invalid immediate literal %q", t)
		}
		return int64(v), nil
	}
	return parseImmediate(t, line)
}

// parseStringLiteral strips the surrounding double quotes from a string
// operand. Escape handling is literal passthrough, matching the grammar's
// "no escape decoding beyond passthrough" rule.
func parseStringLiteral(tok string, line int) (string, *Error) {
	tok = strings.TrimSpace(tok)
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", newError(line, ErrBadImmediate, "expected a quoted string, got %q", tok)
	}
	return tok[1 : len(tok)-1], nil
}
