// Package broadcast holds the process-wide log of operator broadcasts.
package broadcast

import (
	"fmt"
	"sync"
	"time"
)

// TimeFormat is the layout used when rendering broadcast timestamps.
const TimeFormat = "2006-01-02 15:04"

// Entry is one operator broadcast.
type Entry struct {
	Text      string
	Timestamp time.Time
}

// String renders the entry the way sessions see it.
func (e Entry) String() string {
	return fmt.Sprintf("[BROADCAST %s] %s", e.Timestamp.Format(TimeFormat), e.Text)
}

// Queue is an append-only broadcast log. Entries are never trimmed, so the
// log grows for the lifetime of the process.
type Queue struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

// Append adds a broadcast stamped with the current time.
func (q *Queue) Append(text string) Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := Entry{Text: text, Timestamp: q.now()}
	q.entries = append(q.entries, e)
	return e
}

// Len returns the number of entries ever appended.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries)
}

// Tail returns the index of the newest entry, or -1 when empty. A new
// session starts with this as its last-seen index.
func (q *Queue) Tail() int {
	return q.Len() - 1
}

// Since returns the entries after index lastSeen, oldest first, and the new
// last-seen index. The returned index never goes below lastSeen.
func (q *Queue) Since(lastSeen int) ([]Entry, int) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if lastSeen < -1 {
		lastSeen = -1
	}
	if lastSeen >= len(q.entries)-1 {
		return nil, lastSeen
	}
	unseen := make([]Entry, len(q.entries)-1-lastSeen)
	copy(unseen, q.entries[lastSeen+1:])
	return unseen, len(q.entries) - 1
}
