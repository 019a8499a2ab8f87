package shell

import (
	"fmt"
	"io"
	"strings"
)

// historyWindow is how many entries the bare ! command displays. Storage
// itself is unbounded.
const historyWindow = 10

// History is the append-only log of executed command lines, stored as
// token slices. Index 1 is the most recent entry.
type History struct {
	entries [][]string
}

func (h *History) Append(tokens []string) {
	entry := make([]string, len(tokens))
	copy(entry, tokens)
	h.entries = append(h.entries, entry)
}

func (h *History) Len() int {
	return len(h.entries)
}

// At returns the n-th most recent entry, n starting at 1.
func (h *History) At(n int) ([]string, error) {
	if n < 1 || n > len(h.entries) {
		return nil, &HistoryRangeError{Asked: n, Max: len(h.entries)}
	}
	return h.entries[len(h.entries)-n], nil
}

// Last returns the most recent entry, used by the !! token.
func (h *History) Last() ([]string, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[len(h.entries)-1], true
}

// FindPrefix scans from the most recent entry backwards and returns the
// first command line starting with prefix. A miss is not an error.
func (h *History) FindPrefix(prefix string) ([]string, bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.Join(h.entries[i], " "), prefix) {
			return h.entries[i], true
		}
	}
	return nil, false
}

// Show writes the most recent entries, oldest of the window first, labeled
// so that the label of each line is the index that !<n> would recall.
func (h *History) Show(out io.Writer) {
	start := 0
	if len(h.entries) > historyWindow {
		start = len(h.entries) - historyWindow
	}
	window := h.entries[start:]
	for i, tokens := range window {
		fmt.Fprintf(out, "%d: %s\n", len(window)-i, strings.Join(tokens, " "))
	}
}
