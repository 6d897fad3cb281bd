package vm

import "fmt"

// DefaultMemorySize is the byte bus size a VM is given when none is
// requested explicitly. It must be large enough to hold a loaded
// program's text/data/bss plus headroom for a stack growing down from
// the top of the bus.
const DefaultMemorySize uint32 = 1 << 20 // 1 MiB

// BusErrorKind categorizes a Bus access failure.
type BusErrorKind int

const (
	ErrOutOfRange BusErrorKind = iota
)

// BusError is returned by a strict Bus access outside its backing storage.
type BusError struct {
	Kind    BusErrorKind
	Address uint32
	Message string
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bus error at 0x%08X: %s", e.Address, e.Message)
}

func newBusError(addr uint32, format string, args ...any) *BusError {
	return &BusError{Kind: ErrOutOfRange, Address: addr, Message: fmt.Sprintf(format, args...)}
}

// Bus is the flat little-endian byte-addressable memory the executor reads
// instructions and data from. It enforces no alignment and no permissions;
// the architecture does not trap on misalignment, and privilege modes are
// out of scope.
type Bus struct {
	mem []byte
}

// NewBus allocates a zeroed bus of the given size.
func NewBus(size uint32) *Bus {
	return &Bus{mem: make([]byte, size)}
}

// Size returns the number of addressable bytes.
func (b *Bus) Size() uint32 {
	return uint32(len(b.mem))
}

// Reset zeroes every byte.
func (b *Bus) Reset() {
	for i := range b.mem {
		b.mem[i] = 0
	}
}

func (b *Bus) inRange(addr uint32, width uint32) bool {
	return uint64(addr)+uint64(width) <= uint64(len(b.mem))
}

// Load8 reads one byte at addr.
func (b *Bus) Load8(addr uint32) (byte, error) {
	if !b.inRange(addr, 1) {
		return 0, newBusError(addr, "byte load out of range (bus size %d)", len(b.mem))
	}
	return b.mem[addr], nil
}

// Load16 reads a little-endian halfword at addr.
func (b *Bus) Load16(addr uint32) (uint16, error) {
	if !b.inRange(addr, 2) {
		return 0, newBusError(addr, "halfword load out of range (bus size %d)", len(b.mem))
	}
	return uint16(b.mem[addr]) | uint16(b.mem[addr+1])<<8, nil
}

// Load32 reads a little-endian word at addr.
func (b *Bus) Load32(addr uint32) (uint32, error) {
	if !b.inRange(addr, 4) {
		return 0, newBusError(addr, "word load out of range (bus size %d)", len(b.mem))
	}
	return uint32(b.mem[addr]) |
		uint32(b.mem[addr+1])<<8 |
		uint32(b.mem[addr+2])<<16 |
		uint32(b.mem[addr+3])<<24, nil
}

// Store8 writes one byte at addr.
func (b *Bus) Store8(addr uint32, v byte) error {
	if !b.inRange(addr, 1) {
		return newBusError(addr, "byte store out of range (bus size %d)", len(b.mem))
	}
	b.mem[addr] = v
	return nil
}

// Store16 writes a little-endian halfword at addr.
func (b *Bus) Store16(addr uint32, v uint16) error {
	if !b.inRange(addr, 2) {
		return newBusError(addr, "halfword store out of range (bus size %d)", len(b.mem))
	}
	b.mem[addr] = byte(v)
	b.mem[addr+1] = byte(v >> 8)
	return nil
}

// Store32 writes a little-endian word at addr.
func (b *Bus) Store32(addr uint32, v uint32) error {
	if !b.inRange(addr, 4) {
		return newBusError(addr, "word store out of range (bus size %d)", len(b.mem))
	}
	b.mem[addr] = byte(v)
	b.mem[addr+1] = byte(v >> 8)
	b.mem[addr+2] = byte(v >> 16)
	b.mem[addr+3] = byte(v >> 24)
	return nil
}

// PeekWord32 is a relaxed Load32 for previews: it returns zero instead of
// an error for an out-of-range address, since a preview reading past the
// end of loaded code is not a fault.
func (b *Bus) PeekWord32(addr uint32) uint32 {
	v, err := b.Load32(addr)
	if err != nil {
		return 0
	}
	return v
}

// LoadBytes copies data into the bus starting at base.
func (b *Bus) LoadBytes(base uint32, data []byte) error {
	for i, v := range data {
		if err := b.Store8(base+uint32(i), v); err != nil {
			return fmt.Errorf("loading byte %d: %w", i, err)
		}
	}
	return nil
}

// LoadWords copies a sequence of pre-encoded words into the bus starting
// at base, 4 bytes apart.
func (b *Bus) LoadWords(base uint32, words []uint32) error {
	for i, w := range words {
		if err := b.Store32(base+uint32(i)*4, w); err != nil {
			return fmt.Errorf("loading word %d: %w", i, err)
		}
	}
	return nil
}

// ZeroBytes ensures size bytes starting at base read as zero. The backing
// store is already zero-initialized, so this only needs to act when a
// region has previously been written to (e.g. across a session reset).
func (b *Bus) ZeroBytes(base uint32, size uint32) error {
	if !b.inRange(base, size) {
		return newBusError(base, "zero-fill out of range (bus size %d)", len(b.mem))
	}
	for i := uint32(0); i < size; i++ {
		b.mem[base+i] = 0
	}
	return nil
}
