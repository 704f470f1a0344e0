// Package memory provides in-memory store implementations.
package memory

import (
	"context"
	"sort"
	"sync"

	"trendcast/internal/domain"
	"trendcast/internal/storage"
)

// DefaultMentionCap bounds the store; the oldest mentions are evicted first.
const DefaultMentionCap = 512

// MentionStore is an in-memory implementation of storage.MentionStore.
type MentionStore struct {
	mu   sync.RWMutex
	data map[domain.Candidate]*storage.Mention
	cap  int
}

// NewMentionStore creates a mention store with the default capacity.
func NewMentionStore() *MentionStore {
	return NewMentionStoreWithCap(DefaultMentionCap)
}

// NewMentionStoreWithCap creates a mention store with an explicit capacity.
func NewMentionStoreWithCap(capacity int) *MentionStore {
	if capacity <= 0 {
		capacity = DefaultMentionCap
	}
	return &MentionStore{
		data: make(map[domain.Candidate]*storage.Mention),
		cap:  capacity,
	}
}

// Record stores a mention, refreshing the observation time for a candidate
// seen before. When full, the oldest mention is evicted.
func (s *MentionStore) Record(_ context.Context, m *storage.Mention) error {
	if m == nil || m.Candidate == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[m.Candidate]; !exists && len(s.data) >= s.cap {
		s.evictOldestLocked()
	}

	// Store a copy to prevent external mutation
	mentionCopy := *m
	s.data[m.Candidate] = &mentionCopy
	return nil
}

func (s *MentionStore) evictOldestLocked() {
	var oldest domain.Candidate
	var oldestAt int64
	first := true
	for c, m := range s.data {
		if first || m.ObservedAt < oldestAt {
			oldest, oldestAt, first = c, m.ObservedAt, false
		}
	}
	if !first {
		delete(s.data, oldest)
	}
}

// Recent returns up to limit mentions, most recently observed first.
func (s *MentionStore) Recent(_ context.Context, limit int) ([]*storage.Mention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.Mention, 0, len(s.data))
	for _, m := range s.data {
		mentionCopy := *m
		result = append(result, &mentionCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt > result[j].ObservedAt
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Candidates returns the distinct candidates, most recently observed first.
func (s *MentionStore) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	mentions, err := s.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, 0, len(mentions))
	for _, m := range mentions {
		out = append(out, m.Candidate)
	}
	return out, nil
}

// Verify interface compliance at compile time.
var _ storage.MentionStore = (*MentionStore)(nil)
