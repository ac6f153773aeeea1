package allocator

import "github.com/orizon-lang/memalloc/internal/allocatorenv"

// placementSearch scans the global list front to back for a header whose
// tail slack (size - usage) is at least need, using the given algorithm. It
// returns nil if no such header exists, which forces the caller to expand
// with a new region. A header is a candidate regardless of whether it is
// currently free or in use: an in-use header with spare tail slack is just
// as valid a split source as a fully free one (see §9, free-tail-only
// splitting).
func placementSearch(head *header, need uintptr, algo allocatorenv.Algorithm) *header {
	switch algo {
	case allocatorenv.FirstFit:
		return firstFit(head, need)
	case allocatorenv.BestFit:
		return bestFit(head, need)
	case allocatorenv.WorstFit:
		return worstFit(head, need)
	default:
		// Unrecognized algorithm values force region expansion.
		return nil
	}
}

// firstFit returns the first header with enough tail slack.
func firstFit(head *header, need uintptr) *header {
	for cur := head; cur != nil; cur = cur.next {
		if cur.slack() >= need {
			return cur
		}
	}

	return nil
}

// bestFit returns the header minimizing tail slack while still satisfying
// need. Ties are broken by list order: the earliest candidate wins because
// later equal-slack candidates only replace it on a strictly smaller slack.
func bestFit(head *header, need uintptr) *header {
	var best *header

	var bestSlack uintptr

	for cur := head; cur != nil; cur = cur.next {
		slack := cur.slack()
		if slack < need {
			continue
		}

		if best == nil || slack < bestSlack {
			best = cur
			bestSlack = slack
		}
	}

	return best
}

// worstFit returns the header maximizing tail slack while still satisfying
// need. Ties are broken by list order: the earliest candidate wins because
// later equal-slack candidates only replace it on a strictly larger slack.
func worstFit(head *header, need uintptr) *header {
	var worst *header

	var worstSlack uintptr

	for cur := head; cur != nil; cur = cur.next {
		slack := cur.slack()
		if slack < need {
			continue
		}

		if worst == nil || slack > worstSlack {
			worst = cur
			worstSlack = slack
		}
	}

	return worst
}
