// Package allocatorenv decodes the two environment variables that steer the
// allocator's runtime behavior. Both are re-read on every call rather than
// cached at startup: this matches the allocator's documented policy-per-call
// semantics and lets a long-running process switch placement strategy, or
// toggle scribbling, without a restart.
package allocatorenv

import "os"

// Algorithm identifies a placement strategy.
type Algorithm int

const (
	// FirstFit returns the first candidate block with enough tail slack.
	FirstFit Algorithm = iota
	// BestFit returns the candidate with the least tail slack.
	BestFit
	// WorstFit returns the candidate with the most tail slack.
	WorstFit
	// Unrecognized is returned for any value other than the three known
	// ones; it forces region expansion, the same as placement exhaustion.
	Unrecognized
)

// String renders the algorithm the way it is spelled in the environment.
func (a Algorithm) String() string {
	switch a {
	case FirstFit:
		return "first_fit"
	case BestFit:
		return "best_fit"
	case WorstFit:
		return "worst_fit"
	default:
		return "unrecognized"
	}
}

const (
	algorithmVar = "ALLOCATOR_ALGORITHM"
	scribbleVar  = "ALLOCATOR_SCRIBBLE"
)

// CurrentAlgorithm reads ALLOCATOR_ALGORITHM and decodes it. An unset
// variable defaults to FirstFit; any value other than "first_fit",
// "best_fit", or "worst_fit" decodes to Unrecognized.
func CurrentAlgorithm() Algorithm {
	return parseAlgorithm(os.Getenv(algorithmVar))
}

func parseAlgorithm(v string) Algorithm {
	switch v {
	case "", "first_fit":
		return FirstFit
	case "best_fit":
		return BestFit
	case "worst_fit":
		return WorstFit
	default:
		return Unrecognized
	}
}

// ScribbleEnabled reports whether ALLOCATOR_SCRIBBLE is set to exactly "1".
func ScribbleEnabled() bool {
	return os.Getenv(scribbleVar) == "1"
}
