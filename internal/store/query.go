package store

import "strings"

// Search returns every record whose name or author contains the query,
// case-insensitively, in store order. An empty query matches everything.
func (s *Store) Search(query string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	var out []Record
	for _, r := range s.recs {
		if q == "" ||
			strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Author), q) {
			out = append(out, r)
		}
	}
	return out
}

// Page returns the records of page idx (0-indexed, size records per page)
// together with the clamped page index and the total page count. Out-of-range
// page indexes are clamped. An empty store yields (nil, 0, 0).
func (s *Store) Page(idx, size int) ([]Record, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.recs) == 0 || size < 1 {
		return nil, 0, 0
	}

	total := (len(s.recs) + size - 1) / size
	if idx < 0 {
		idx = 0
	}
	if idx > total-1 {
		idx = total - 1
	}

	lo := idx * size
	hi := lo + size
	if hi > len(s.recs) {
		hi = len(s.recs)
	}

	out := make([]Record, hi-lo)
	copy(out, s.recs[lo:hi])
	return out, idx, total
}
