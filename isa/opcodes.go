package isa

// Opcode values occupy bits 0-6 of every encoded word.
const (
	OpcodeR       uint32 = 0x33
	OpcodeOpImm   uint32 = 0x13
	OpcodeLoad    uint32 = 0x03
	OpcodeStore   uint32 = 0x23
	OpcodeBranch  uint32 = 0x63
	OpcodeJAL     uint32 = 0x6F
	OpcodeJALR    uint32 = 0x67
	OpcodeLUI     uint32 = 0x37
	OpcodeAUIPC   uint32 = 0x17
	OpcodeSystem  uint32 = 0x73
)

// Funct3 selects the sub-operation within R/I/S/B encodings.
const (
	Funct3ADDSUB  uint32 = 0x0
	Funct3SLL     uint32 = 0x1
	Funct3SLT     uint32 = 0x2
	Funct3SLTU    uint32 = 0x3
	Funct3XOR     uint32 = 0x4
	Funct3SRLSRA  uint32 = 0x5
	Funct3OR      uint32 = 0x6
	Funct3AND     uint32 = 0x7

	Funct3MUL    uint32 = 0x0
	Funct3MULH   uint32 = 0x1
	Funct3MULHSU uint32 = 0x2
	Funct3MULHU  uint32 = 0x3
	Funct3DIV    uint32 = 0x4
	Funct3DIVU   uint32 = 0x5
	Funct3REM    uint32 = 0x6
	Funct3REMU   uint32 = 0x7

	Funct3LB  uint32 = 0x0
	Funct3LH  uint32 = 0x1
	Funct3LW  uint32 = 0x2
	Funct3LBU uint32 = 0x4
	Funct3LHU uint32 = 0x5

	Funct3SB uint32 = 0x0
	Funct3SH uint32 = 0x1
	Funct3SW uint32 = 0x2

	Funct3BEQ  uint32 = 0x0
	Funct3BNE  uint32 = 0x1
	Funct3BLT  uint32 = 0x4
	Funct3BGE  uint32 = 0x5
	Funct3BLTU uint32 = 0x6
	Funct3BGEU uint32 = 0x7

	Funct3JALR uint32 = 0x0

	Funct3ECALL uint32 = 0x0
)

// Funct7 disambiguates R-type and shift-immediate instructions that share
// an opcode/funct3 pair.
const (
	Funct7Base  uint32 = 0x00
	Funct7Alt   uint32 = 0x20 // SUB, SRA, SRAI
	Funct7MExt  uint32 = 0x01 // M-extension (mul/div family)
)

// HaltWord is the EBREAK encoding, adopted as the halt sentinel.
const HaltWord uint32 = 0x00100073

// ECallWord is the canonical ECALL encoding (imm=0, funct3=0, rd=rs1=x0).
const ECallWord uint32 = 0x00000073
