package search

import (
	"fmt"
	"strconv"
	"strings"
)

// Limit caps the number of ranked results. All disables the cap.
type Limit int

const (
	// All returns every record meeting the threshold.
	All Limit = -1

	// DefaultLimit is the result cap used when the caller sets none.
	DefaultLimit Limit = 5

	// DefaultThreshold is the minimum cosine similarity of a result.
	DefaultThreshold float32 = 0.5
)

// ParseLimit parses a positive integer or "all", ignoring case.
func ParseLimit(s string) (Limit, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return All, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLimit, s)
	}
	l := Limit(n)
	if err := l.Validate(); err != nil {
		return 0, err
	}
	return l, nil
}

// Validate rejects zero and negative limits other than All.
func (l Limit) Validate() error {
	if l == All || l > 0 {
		return nil
	}
	return fmt.Errorf("%w: %d", ErrInvalidLimit, int(l))
}

func (l Limit) String() string {
	if l == All {
		return "all"
	}
	return strconv.Itoa(int(l))
}

// apply truncates n results to the limit.
func (l Limit) apply(n int) int {
	if l == All || int(l) > n {
		return n
	}
	return int(l)
}
