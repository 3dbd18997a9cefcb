package pkg

import (
	"time"
)

const DateLayout = "2006-01-02"

// Today returns the server-local calendar date used by every day-scoped
// operation. The server clock is the single source of truth; clients
// never supply dates.
func Today() string {
	return time.Now().Format(DateLayout)
}

func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// OrderedPair returns the two ids in ascending order, used to take row
// locks in a fixed order regardless of which side initiated the
// operation.
func OrderedPair(a, b int64) (int64, int64) {
	if a <= b {
		return a, b
	}
	return b, a
}
