// Package allocator implements the process-wide general-purpose heap: a
// single global free-space list threaded through OS-mapped regions, with
// first/best/worst-fit placement, named and zero-initialized allocation,
// reallocation, and a hand-rolled introspection dump.
package allocator

import (
	"io"
	"sync"
	"unsafe"

	"github.com/orizon-lang/memalloc/internal/allocator/osmem"
	"github.com/orizon-lang/memalloc/internal/allocatorenv"
	"github.com/orizon-lang/memalloc/internal/diagnostic"
	"github.com/orizon-lang/memalloc/internal/errors"
)

// Heap is the free-space manager: one process-wide mutex guarding one
// global header list. There is no per-thread state; every call serializes
// on mu, matching the single global structure the design calls for.
type Heap struct {
	mu sync.Mutex

	head *header

	nextAllocID uint64

	pages osmem.Provider
	diag  *diagnostic.Reporter
}

// NewHeap creates an empty Heap backed by pages. diag receives out-of-band
// OS failure reports; it may be nil to discard them.
func NewHeap(pages osmem.Provider, diag *diagnostic.Reporter) *Heap {
	return &Heap{pages: pages, diag: diag}
}

// Allocator is the seam the public entries are expressed against. Its sole
// purpose is testability (a mock heap can stand in for *Heap in a caller's
// tests); unlike the teacher's Allocator interface it is not meant to
// select between multiple allocator kinds, since the Non-goals reject that
// plurality.
type Allocator interface {
	Alloc(size uintptr) unsafe.Pointer
	AllocNamed(size uintptr, name string) unsafe.Pointer
	AllocZeroed(nmemb, size uintptr) unsafe.Pointer
	Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer
	Free(p unsafe.Pointer)
	Dump(w io.Writer)
	Stats() Stats
}

var _ Allocator = (*Heap)(nil)

// Stats is the one sanctioned statistics snapshot: the Non-goals exclude
// everything except a monotonic allocation id, so this reports that
// counter plus the region/block counts needed to make it useful, grounded
// on the teacher's trimmed-down AllocatorStats shape.
type Stats struct {
	// NextAllocID is the id that will be assigned to the next successful
	// allocation.
	NextAllocID uint64
	// LiveRegions is the number of OS-mapped regions currently held.
	LiveRegions int
	// LiveBlocks is the number of headers (free or in-use) across every
	// live region.
	LiveBlocks int
}

// Stats reports a snapshot of the heap's state.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	var s Stats

	s.NextAllocID = h.nextAllocID + 1

	for cur := h.head; cur != nil; cur = cur.next {
		s.LiveBlocks++

		if cur.isRegionHead() {
			s.LiveRegions++
		}
	}

	return s
}

var defaultHeap = NewHeap(osmem.Default(), diagnostic.NewReporter(nil))

// GetStats reports a snapshot of the default process-wide heap's state.
func GetStats() Stats { return defaultHeap.Stats() }

// Alloc allocates an untyped block of s payload bytes using the default
// process-wide heap.
func Alloc(s uintptr) unsafe.Pointer { return defaultHeap.Alloc(s) }

// AllocNamed allocates a block of s payload bytes tagged with name.
func AllocNamed(s uintptr, name string) unsafe.Pointer { return defaultHeap.AllocNamed(s, name) }

// AllocZeroed allocates nmemb*size zero-filled payload bytes.
func AllocZeroed(nmemb, size uintptr) unsafe.Pointer { return defaultHeap.AllocZeroed(nmemb, size) }

// Realloc resizes the block at p to s payload bytes.
func Realloc(p unsafe.Pointer, s uintptr) unsafe.Pointer { return defaultHeap.Realloc(p, s) }

// Free releases the block at p.
func Free(p unsafe.Pointer) { defaultHeap.Free(p) }

// Dump writes the default heap's introspection text to w.
func Dump(w io.Writer) { defaultHeap.Dump(w) }

// Alloc allocates an untyped block of s payload bytes, rounded up to an
// 8-byte multiple, and returns a pointer to the payload. It returns nil on
// OS mapping failure.
func (h *Heap) Alloc(s uintptr) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()

	hdr := h.allocUnsafe(s)
	if hdr == nil {
		return nil
	}

	h.scribbleUnsafe(hdr, s)

	return hdr.payload()
}

// AllocNamed behaves like Alloc but tags the block with name, truncated to
// the header's fixed name capacity.
func (h *Heap) AllocNamed(s uintptr, name string) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()

	hdr := h.allocUnsafe(s)
	if hdr == nil {
		return nil
	}

	hdr.setName(name)
	h.scribbleUnsafe(hdr, s)

	return hdr.payload()
}

// AllocZeroed allocates nmemb*size bytes and zero-fills the payload,
// overriding the scribble flag (zeroing happens last). Returns nil without
// touching the heap if nmemb*size overflows uintptr.
func (h *Heap) AllocZeroed(nmemb, size uintptr) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if nmemb != 0 && size > ^uintptr(0)/nmemb {
		h.diag.Reportf("alloc_zeroed: %v", errors.InvalidSize(nmemb*size, "nmemb*size overflow"))

		return nil
	}

	s := nmemb * size

	hdr := h.allocUnsafe(s)
	if hdr == nil {
		return nil
	}

	zeroBytes(hdr.payload(), s)

	return hdr.payload()
}

// Realloc resizes the block at p to s payload bytes. p == nil behaves like
// Alloc(s); s == 0 frees p and returns nil.
func (h *Heap) Realloc(p unsafe.Pointer, s uintptr) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if p == nil {
		hdr := h.allocUnsafe(s)
		if hdr == nil {
			return nil
		}

		h.scribbleUnsafe(hdr, s)

		return hdr.payload()
	}

	if s == 0 {
		h.freeUnsafe(p)

		return nil
	}

	return h.reallocUnsafe(p, s)
}

// Free releases the block at p. A nil p is a no-op.
func (h *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.freeUnsafe(p)
}

// Dump writes the heap's introspection text to w, in list order.
func (h *Heap) Dump(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dumpUnsafe(w)
}

// allocUnsafe implements §4.3 steps 1-5 and returns the chosen or newly
// split header, or nil on OS mapping failure. Scribbling (step 6) is left
// to the caller since named/zeroed allocation interleave their own header
// edits between split and fill.
func (h *Heap) allocUnsafe(s uintptr) *header {
	payload := align8(s)
	need := payload + headerSize

	algo := allocatorenv.CurrentAlgorithm()

	chosen := placementSearch(h.head, need, algo)
	if chosen == nil {
		region, err := h.newRegion(need)
		if err != nil {
			h.diag.Reportf("alloc: %v", err)

			return nil
		}

		chosen = region
	}

	if chosen.usage == 0 {
		chosen.usage = need

		return chosen
	}

	return h.splitTail(chosen, need)
}

// splitTail carves a fresh header from chosen's tail slack, per §4.3 step 5
// else-branch, and links it in place of chosen.next.
func (h *Heap) splitTail(chosen *header, need uintptr) *header {
	fresh := headerAt(chosen.addr() + chosen.usage)
	fresh.next = chosen.next
	fresh.regionStart = chosen.regionStart
	fresh.regionSize = chosen.regionSize
	fresh.size = chosen.size - chosen.usage
	fresh.usage = need
	fresh.allocID = h.nextID()
	fresh.name = [nameCapacity]byte{}

	chosen.size = chosen.usage
	chosen.next = fresh

	return fresh
}

// newRegion maps a fresh region sized to hold at least need bytes, rounded
// up to whole pages, installs its sole free header, and appends it to the
// tail of the global list.
func (h *Heap) newRegion(need uintptr) (*header, error) {
	pageSize := h.pages.PageSize()
	regionSize := alignUp(need, pageSize)

	mem, err := h.pages.Map(regionSize)
	if err != nil {
		return nil, errors.MapFailed(regionSize, err)
	}

	region := (*header)(unsafe.Pointer(&mem[0]))
	*region = header{}
	region.regionStart = region
	region.regionSize = regionSize
	region.size = regionSize
	region.usage = 0
	region.allocID = h.nextID()

	h.appendRegion(region)

	return region, nil
}

// freeUnsafe implements §4.5: mark the block free, then unmap its region if
// every block in it is now free.
func (h *Heap) freeUnsafe(p unsafe.Pointer) {
	hdr := headerFromPayload(p)
	hdr.usage = 0

	region := hdr.regionStart
	if !regionIsEmpty(region) {
		return
	}

	after := firstAfterRegion(region)

	mem := unsafe.Slice((*byte)(unsafe.Pointer(region)), region.regionSize)
	if err := h.pages.Unmap(mem); err != nil {
		h.diag.Reportf("free: %v", errors.UnmapFailed(region.addr(), region.regionSize, err))
	}

	h.unlinkRegion(region, after)
}

// reallocUnsafe implements §4.4 for a non-nil p and non-zero s: grow/shrink
// in place when the current block's size permits, otherwise
// allocate-copy-free. The copy length uses min(old, new) payload size,
// resolving the open question in favor of never reading past the old
// payload.
func (h *Heap) reallocUnsafe(p unsafe.Pointer, s uintptr) unsafe.Pointer {
	old := headerFromPayload(p)
	oldPayload := old.payloadSize()

	need := align8(s) + headerSize
	if old.size >= need {
		old.usage = need

		return p
	}

	fresh := h.allocUnsafe(s)
	if fresh == nil {
		return nil
	}

	copyLen := oldPayload
	if s < copyLen {
		copyLen = s
	}

	copyBytes(fresh.payload(), p, copyLen)
	h.freeUnsafe(p)

	return fresh.payload()
}

// scribbleUnsafe fills a freshly split or placed block's payload with 0xAA
// when ALLOCATOR_SCRIBBLE is set, per §4.3 step 6.
func (h *Heap) scribbleUnsafe(hdr *header, s uintptr) {
	if !allocatorenv.ScribbleEnabled() {
		return
	}

	b := unsafe.Slice((*byte)(hdr.payload()), s)
	for i := range b {
		b[i] = 0xAA
	}
}

// nextID returns a fresh, process-wide monotonically increasing allocation
// id. Callers always hold h.mu, so a plain increment suffices.
func (h *Heap) nextID() uint64 {
	h.nextAllocID++

	return h.nextAllocID
}

func zeroBytes(p unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}

	b := unsafe.Slice((*byte)(p), n)
	for i := range b {
		b[i] = 0
	}
}

func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}

	d := unsafe.Slice((*byte)(dst), n)
	s := unsafe.Slice((*byte)(src), n)
	copy(d, s)
}
