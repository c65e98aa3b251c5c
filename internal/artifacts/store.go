// Package artifacts holds rendered CSV exports in memory until they are
// downloaded or expire.
package artifacts

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store maps filenames to CSV text with a per-entry TTL. Lookup is
// exact after one canonicalization step (percent-decoding plus case
// folding), which absorbs client-side encoding mismatches without the
// ambiguity of substring matching.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	filename  string
	content   string
	expiresAt time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Put(filename, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}

	s.entries[canonical(filename)] = entry{
		filename:  filename,
		content:   content,
		expiresAt: now.Add(s.ttl),
	}
}

// Get returns the stored filename and content for a requested name. The
// returned filename is the stored one, which may differ from the
// request in case or encoding.
func (s *Store) Get(requested string) (filename, content string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, found := s.entries[canonical(requested)]
	if !found || s.now().After(e.expiresAt) {
		return "", "", false
	}
	return e.filename, e.content, true
}

// Names lists the stored filenames, sorted, for download-miss
// diagnostics.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if now.After(e.expiresAt) {
			continue
		}
		names = append(names, e.filename)
	}
	sort.Strings(names)
	return names
}

func canonical(filename string) string {
	if decoded, err := url.PathUnescape(filename); err == nil {
		filename = decoded
	}
	return strings.ToLower(filename)
}
