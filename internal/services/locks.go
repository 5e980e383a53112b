package services

import "sync"

// submissionLocks serializes grading operations per submission ID. The
// grading workflow itself is a pure value transformation, so without this
// two concurrent graders could both read, grade and write the same
// submission and silently drop one grade.
type submissionLocks struct {
	mu      sync.Mutex
	entries map[uint]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSubmissionLocks() *submissionLocks {
	return &submissionLocks{
		entries: make(map[uint]*lockEntry),
	}
}

// Lock acquires the mutex for a submission ID and returns the matching
// unlock function. Entries are reference counted and removed once the last
// holder releases, so the map does not grow with the submission table.
func (l *submissionLocks) Lock(submissionID uint) func() {
	l.mu.Lock()
	entry, ok := l.entries[submissionID]
	if !ok {
		entry = &lockEntry{}
		l.entries[submissionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, submissionID)
		}
		l.mu.Unlock()
	}
}
