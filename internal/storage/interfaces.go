// Package storage defines the run-state store contracts. All implementations
// are in-memory: the system keeps no state beyond the process lifetime.
package storage

import (
	"context"

	"trendcast/internal/domain"
)

// Mention is one contract identifier observed in a watched channel during
// this process lifetime.
type Mention struct {
	Candidate  domain.Candidate
	ChannelID  int64
	ObservedAt int64 // Unix timestamp in milliseconds
}

// MentionStore records observed mentions and serves them back to the
// trending pass as a seed alongside the channel history scan.
type MentionStore interface {
	// Record stores a mention. Re-recording the same candidate refreshes
	// its observation time; it is never an error.
	Record(ctx context.Context, m *Mention) error

	// Recent returns up to limit mentions, most recently observed first.
	Recent(ctx context.Context, limit int) ([]*Mention, error)

	// Candidates returns the distinct candidates, most recently observed
	// first.
	Candidates(ctx context.Context) ([]domain.Candidate, error)
}
