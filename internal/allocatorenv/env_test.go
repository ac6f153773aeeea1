package allocatorenv

import "testing"

func TestParseAlgorithm(t *testing.T) {
	cases := []struct {
		in   string
		want Algorithm
	}{
		{"", FirstFit},
		{"first_fit", FirstFit},
		{"best_fit", BestFit},
		{"worst_fit", WorstFit},
		{"bogus", Unrecognized},
	}

	for _, c := range cases {
		if got := parseAlgorithm(c.in); got != c.want {
			t.Errorf("parseAlgorithm(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCurrentAlgorithmReadsEnv(t *testing.T) {
	t.Setenv("ALLOCATOR_ALGORITHM", "best_fit")

	if got := CurrentAlgorithm(); got != BestFit {
		t.Errorf("CurrentAlgorithm() = %v, want BestFit", got)
	}

	t.Setenv("ALLOCATOR_ALGORITHM", "")

	if got := CurrentAlgorithm(); got != FirstFit {
		t.Errorf("CurrentAlgorithm() = %v, want FirstFit", got)
	}
}

func TestScribbleEnabled(t *testing.T) {
	t.Setenv("ALLOCATOR_SCRIBBLE", "1")

	if !ScribbleEnabled() {
		t.Error("ScribbleEnabled() = false, want true for \"1\"")
	}

	t.Setenv("ALLOCATOR_SCRIBBLE", "true")

	if ScribbleEnabled() {
		t.Error("ScribbleEnabled() = true, want false for \"true\"")
	}

	t.Setenv("ALLOCATOR_SCRIBBLE", "")

	if ScribbleEnabled() {
		t.Error("ScribbleEnabled() = true, want false when unset")
	}
}
