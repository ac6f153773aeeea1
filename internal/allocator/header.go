package allocator

import "unsafe"

// nameCapacity is the fixed capacity of a block's name field, including the
// terminating NUL.
const nameCapacity = 24

// minAlignment is the payload alignment guaranteed to every caller.
const minAlignment = 8

// header is the fixed-layout record placed at offset 0 of every block. It
// plays three roles at once: list node, in-use block descriptor, and — when
// regionStart points to itself — region descriptor. There is no separate
// region type; isRegionHead is the derived predicate spec.md's design notes
// call for instead of a class hierarchy.
type header struct {
	next        *header
	regionStart *header
	allocID     uint64
	size        uintptr
	usage       uintptr
	regionSize  uintptr
	name        [nameCapacity]byte
}

// headerSize is the number of bytes every block reserves for its header
// before the payload begins.
const headerSize = unsafe.Sizeof(header{})

// isRegionHead reports whether h is the first header of its region.
func (h *header) isRegionHead() bool {
	return h.regionStart == h
}

// addr returns h's own address, i.e. the start of the block it describes.
func (h *header) addr() uintptr {
	return uintptr(unsafe.Pointer(h))
}

// end returns the address one past the last byte of the block.
func (h *header) end() uintptr {
	return h.addr() + h.size
}

// regionEnd returns the address one past the last byte of h's region.
func (h *header) regionEnd() uintptr {
	return h.regionStart.addr() + h.regionStart.regionSize
}

// payload returns the address of the first payload byte, immediately after
// the header.
func (h *header) payload() unsafe.Pointer {
	return unsafe.Pointer(h.addr() + headerSize)
}

// payloadSize returns the user-visible size of the block's current
// allocation: 0 if free, else usage minus the header.
func (h *header) payloadSize() uintptr {
	if h.usage == 0 {
		return 0
	}

	return h.usage - headerSize
}

// slack returns the tail slack available for splitting: size - usage.
func (h *header) slack() uintptr {
	return h.size - h.usage
}

// headerFromPayload recovers the header owning a payload pointer previously
// handed to a caller.
func headerFromPayload(p unsafe.Pointer) *header {
	return (*header)(unsafe.Pointer(uintptr(p) - headerSize))
}

// headerAt interprets the byte at addr as a header. addr must point into
// memory owned by this allocator.
func headerAt(addr uintptr) *header {
	return (*header)(unsafe.Pointer(addr))
}

// setName copies name into h's fixed-capacity name field, truncating to fit
// and always leaving the field NUL-terminated.
func (h *header) setName(name string) {
	for i := range h.name {
		h.name[i] = 0
	}

	n := len(name)
	if n > nameCapacity-1 {
		n = nameCapacity - 1
	}

	copy(h.name[:n], name[:n])
}

// nameString returns the block's name, or "" if unnamed.
func (h *header) nameString() string {
	n := 0
	for n < nameCapacity && h.name[n] != 0 {
		n++
	}

	return string(h.name[:n])
}

// align8 rounds n up to the nearest multiple of 8.
func align8(n uintptr) uintptr {
	return (n + minAlignment - 1) &^ (minAlignment - 1)
}

// alignUp rounds n up to the nearest multiple of m, where m is a power of
// two (used to round a region request up to whole pages).
func alignUp(n, m uintptr) uintptr {
	return (n + m - 1) &^ (m - 1)
}
