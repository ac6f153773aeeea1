package allocator

// appendRegion links a freshly mapped region's sole header onto the tail of
// the global list. Regions are always installed in acquisition order, never
// spliced into the middle, so list order across regions reflects the order
// they were mapped (minus any since unmapped).
func (h *Heap) appendRegion(region *header) {
	if h.head == nil {
		h.head = region

		return
	}

	last := h.head
	for last.next != nil {
		last = last.next
	}

	last.next = region
}

// unlinkRegion removes every header belonging to region from the global
// list, replacing the run with after (the first header, if any, outside the
// region's address range).
func (h *Heap) unlinkRegion(region, after *header) {
	if h.head == region {
		h.head = after

		return
	}

	prev := h.head
	for prev != nil && prev.next != region {
		prev = prev.next
	}

	if prev != nil {
		prev.next = after
	}
}

// regionIsEmpty walks region's headers (bounded by its address range) and
// reports whether every one of them is free.
func regionIsEmpty(region *header) bool {
	start, end := region.addr(), region.regionEnd()

	for cur := region; cur != nil && cur.addr() >= start && cur.addr() < end; cur = cur.next {
		if cur.usage != 0 {
			return false
		}
	}

	return true
}

// firstAfterRegion returns the first header in the list whose address lies
// outside region, or nil if region's run extends to the end of the list.
func firstAfterRegion(region *header) *header {
	start, end := region.addr(), region.regionEnd()

	for cur := region; cur != nil; cur = cur.next {
		if cur.addr() < start || cur.addr() >= end {
			return cur
		}
	}

	return nil
}
