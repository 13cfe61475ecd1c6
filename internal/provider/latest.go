package provider

import "sync"

// Latest hands out increasing sequence tokens per key so that, of several
// overlapping requests for the same key, only the most recently issued one
// may commit its response. An older response arriving late is discarded
// instead of overwriting a fresher one.
//
// A key is tracked only while it has a request in flight. Sequence numbers
// are global, so a token issued before a key was forgotten never matches
// again.
type Latest struct {
	mu   sync.Mutex
	next uint64
	seq  map[string]uint64
}

// Token identifies one issued request.
type Token struct {
	key string
	seq uint64
}

// NewLatest returns an empty guard.
func NewLatest() *Latest {
	return &Latest{seq: make(map[string]uint64)}
}

// Issue returns a token that supersedes every token issued earlier for key.
func (l *Latest) Issue(key string) Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.seq[key] = l.next
	return Token{key: key, seq: l.next}
}

// IsLatest reports whether no newer token has been issued for t's key.
func (l *Latest) IsLatest(t Token) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq[t.key] == t.seq
}

// Commit runs apply only if t is still the latest token for its key, and
// reports whether it ran. apply runs under the guard's lock, so no newer
// token can be issued while it executes. A successful commit settles the key.
func (l *Latest) Commit(t Token, apply func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seq[t.key] != t.seq {
		return false
	}
	apply()
	delete(l.seq, t.key)
	return true
}

// Release settles t's key without committing anything, if t is still the
// latest token for it. Use it when the request failed.
func (l *Latest) Release(t Token) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seq[t.key] == t.seq {
		delete(l.seq, t.key)
	}
}

// Pending reports how many keys have a request in flight.
func (l *Latest) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seq)
}
