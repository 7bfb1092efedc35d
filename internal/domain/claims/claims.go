// Package claims tracks which keys a single plan or batch has consumed.
package claims

import (
	"sync"
	"sync/atomic"
)

// Claimer records consumed keys so a resource is used at most once per
// request. A Claimer is never shared between requests.
type Claimer interface {
	// SeenAndClaim atomically checks whether key was claimed and claims it if
	// not. It returns true when the key was already claimed.
	SeenAndClaim(key string) bool

	// Claimed reports whether key was claimed without claiming it.
	Claimed(key string) bool

	// Size returns the number of claimed keys.
	Size() int64
}

// set implements Claimer with a mutex-guarded map.
type set struct {
	mu   sync.Mutex
	keys map[string]struct{}
	size atomic.Int64
}

// New creates an empty claim set.
func New(opts ...Option) Claimer {
	s := &set{}
	capacity := 0
	for _, opt := range opts {
		opt(&capacity)
	}
	s.keys = make(map[string]struct{}, capacity)
	return s
}

func (s *set) SeenAndClaim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[key]; exists {
		return true
	}
	s.keys[key] = struct{}{}
	s.size.Add(1)
	return false
}

func (s *set) Claimed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.keys[key]
	return exists
}

func (s *set) Size() int64 {
	return s.size.Load()
}

// PairKey is the claim key of a (subject, exam model) pair.
func PairKey(subjectID, examModelID string) string {
	return "pair:" + examModelID + "/" + subjectID
}

// CopyKey is the claim key of a graded copy.
func CopyKey(copyID string) string {
	return "copy:" + copyID
}
