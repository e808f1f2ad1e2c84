package sandbox

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// capBuffer keeps at most limit bytes and counts what it dropped. Once
// anything is dropped every later write is dropped too, so the kept text
// is always a prefix of the output. It is
// written by the interpreter goroutine and may be read by a caller that
// gave up waiting, hence the mutex.
type capBuffer struct {
	mu      sync.Mutex
	limit   int
	buf     strings.Builder
	dropped int
	full    bool
}

func newCapBuffer(limit int) *capBuffer {
	return &capBuffer{limit: limit}
}

func (c *capBuffer) WriteString(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.limit - c.buf.Len()
	if !c.full && room >= len(s) {
		c.buf.WriteString(s)
		return
	}
	kept := 0
	if !c.full && room > 0 {
		kept = runeCut(s, room)
		c.buf.WriteString(s[:kept])
	}
	c.full = true
	c.dropped += len(s) - kept
}

func (c *capBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return truncationMarker(c.buf.String(), c.dropped)
}

// Truncate caps s at limit bytes, marking how much was cut. The cut never
// splits a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := runeCut(s, limit)
	return truncationMarker(s[:cut], len(s)-cut)
}

// runeCut returns the largest n <= limit such that s[:n] ends on a rune
// boundary.
func runeCut(s string, limit int) int {
	if limit >= len(s) {
		return len(s)
	}
	n := limit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

func truncationMarker(s string, dropped int) string {
	if dropped == 0 {
		return s
	}
	return fmt.Sprintf("%s... [truncated %d bytes]", s, dropped)
}
