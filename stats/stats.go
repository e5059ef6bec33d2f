// Package stats tracks live text statistics for a streamed response.
package stats

import "strings"

// Counter accumulates per-fragment statistics over the text deltas of
// one stream. It is observational only and owned by a single consumer,
// so no synchronization is needed.
type Counter struct {
	Fragments  int
	Words      int
	Sentences  int
	Characters int
}

// Observe records one text delta. Words are counted per delta with a
// whitespace split and sentences with a simple .!? heuristic, matching
// the display-only precision this is used for.
func (c *Counter) Observe(delta string) {
	if delta == "" {
		return
	}
	c.Fragments++
	c.Words += len(strings.Fields(delta))
	c.Sentences += strings.Count(delta, ".") +
		strings.Count(delta, "!") +
		strings.Count(delta, "?")
	c.Characters += len(delta)
}

// Reset clears the counter for reuse.
func (c *Counter) Reset() {
	*c = Counter{}
}
