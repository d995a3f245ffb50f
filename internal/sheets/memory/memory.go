package memory

import (
	"context"
	"fmt"
	"sync"

	ports "monthgroup/internal/sheets"
)

// Store keeps ranges in memory, keyed by their exact A1 string.
type Store struct {
	mu      sync.Mutex
	ranges  map[string][][]any
	written map[string][][]any
}

var _ ports.ReadWriter = (*Store)(nil)

func New() *Store {
	return &Store{
		ranges:  make(map[string][][]any),
		written: make(map[string][][]any),
	}
}

// Put registers a matrix under an A1 range.
func (s *Store) Put(a1 string, values [][]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges[a1] = cloneMatrix(values)
}

// ReadRanges returns copies of the stored matrices.
func (s *Store) ReadRanges(_ context.Context, ranges ...string) ([][][]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][][]any, len(ranges))
	for i, rng := range ranges {
		values, ok := s.ranges[rng]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ports.ErrRangeNotFound, rng)
		}
		out[i] = cloneMatrix(values)
	}
	return out, nil
}

// WriteResult records rows under the target's anchor cell.
func (s *Store) WriteResult(_ context.Context, target string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written[ports.Anchor(target)] = cloneMatrix(rows)
	return nil
}

// Written returns what was last written at target's anchor.
func (s *Store) Written(target string) ([][]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.written[ports.Anchor(target)]
	return cloneMatrix(rows), ok
}

func cloneMatrix(in [][]any) [][]any {
	if in == nil {
		return nil
	}
	out := make([][]any, len(in))
	for i, row := range in {
		out[i] = append([]any(nil), row...)
	}
	return out
}
