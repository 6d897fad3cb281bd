// Package encoder translates isa.Instruction values into 32-bit RV32IM
// machine words, one emitter per encoding format (R, I, S, B, U, J).
package encoder

import "fmt"

// Error reports a failure to encode an instruction. It is returned only for
// conditions the assembler should already have rejected (an odd branch/jump
// offset, an out-of-range shift amount); the encoder checks them again
// defensively rather than trusting its caller.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("encode error: %s", e.Message)
}

func newError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
