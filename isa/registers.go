package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// abiNames maps register index to its RISC-V calling-convention alias.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// RegName returns the ABI alias for a register index (fp is reported as s0).
func RegName(idx uint8) string {
	if int(idx) >= len(abiNames) {
		return fmt.Sprintf("x%d", idx)
	}
	return abiNames[idx]
}

// RegByName resolves a register operand: numeric x0..x31 or an ABI alias
// (fp is accepted as an alias of s0). Matching is case-insensitive.
func RegByName(name string) (uint8, bool) {
	lower := strings.ToLower(name)
	if lower == "fp" {
		return 8, true
	}
	if strings.HasPrefix(lower, "x") {
		n, err := strconv.Atoi(lower[1:])
		if err != nil || n < 0 || n > 31 {
			return 0, false
		}
		return uint8(n), true
	}
	for i, n := range abiNames {
		if n == lower {
			return uint8(i), true
		}
	}
	return 0, false
}
