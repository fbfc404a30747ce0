package compare

// Agreement describes how closely two downsampled value sequences match.
type Agreement struct {
	Ours          int // Length of our output
	Theirs        int // Length of the reference output
	Matched       int // Positions holding equal values
	FirstMismatch int // First differing position, -1 if none
}

// Identical reports whether both sequences have the same length and values.
func (a Agreement) Identical() bool {
	return a.Ours == a.Theirs && a.FirstMismatch < 0
}

// Ratio returns the fraction of positions that match, relative to the longer sequence.
func (a Agreement) Ratio() float64 {
	n := max(a.Ours, a.Theirs)
	if n == 0 {
		return 1
	}
	return float64(a.Matched) / float64(n)
}

// Compare compares ours and theirs position by position. When lengths differ,
// the first position past the shorter sequence counts as a mismatch.
func Compare(ours, theirs []int16) Agreement {
	a := Agreement{Ours: len(ours), Theirs: len(theirs), FirstMismatch: -1}

	n := min(len(ours), len(theirs))
	for i := range n {
		if ours[i] == theirs[i] {
			a.Matched++
		} else if a.FirstMismatch < 0 {
			a.FirstMismatch = i
		}
	}
	if a.FirstMismatch < 0 && len(ours) != len(theirs) {
		a.FirstMismatch = n
	}
	return a
}
