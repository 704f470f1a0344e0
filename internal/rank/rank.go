// Package rank turns raw pair snapshots into an ordered, symbol-deduplicated
// leaderboard.
package rank

import (
	"math"
	"sort"

	"trendcast/internal/domain"
)

// Policy selects how the best price change is picked across time windows.
type Policy int

const (
	// PolicyPositiveOnly returns the largest strictly-positive change;
	// when no window is positive there is no usable change.
	PolicyPositiveOnly Policy = iota
	// PolicyMagnitude returns the change with the largest absolute value,
	// sign ignored.
	PolicyMagnitude
)

// SelectBestChange scans the windows in fixed priority order
// (h1, h6, h24) and returns the winning value and its window under the given
// policy. Ties go to the earlier window. ok is false when no window qualifies.
func SelectBestChange(pc domain.PriceChange, policy Policy) (value float64, window string, ok bool) {
	for _, w := range domain.Windows {
		v := pc.Get(w)
		if v == nil {
			continue
		}
		switch policy {
		case PolicyPositiveOnly:
			if *v <= 0 {
				continue
			}
			if !ok || *v > value {
				value, window, ok = *v, w, true
			}
		case PolicyMagnitude:
			if !ok || math.Abs(*v) > math.Abs(value) {
				value, window, ok = *v, w, true
			}
		}
	}
	return value, window, ok
}

// Options configure a ranking pass.
type Options struct {
	// Limit caps the output length (6 banner slots, 8 caption rows).
	Limit int
	// Policy is the best-change selection policy.
	Policy Policy
	// Bounds, when enabled, discards changes outside [MinChange, MaxChange],
	// rejecting both noise and implausible outliers.
	Bounds    bool
	MinChange float64
	MaxChange float64
	// RequireTwitter discards pairs without a twitter-type social link.
	RequireTwitter bool
	// KeepBest replaces an earlier entry when a later pair for the same
	// symbol ranks higher. The default (false) is first-seen-wins, matching
	// deployed behavior; the knob exists because that default is a
	// questionable simplification.
	KeepBest bool
}

// Rank computes the best change for every pair, drops unusable ones,
// deduplicates by symbol, sorts descending by change (stable, so input order
// breaks ties) and truncates to the limit. The result never holds two entries
// with the same symbol.
func Rank(pairs []domain.Pair, opts Options) []domain.RankedToken {
	var out []domain.RankedToken
	index := make(map[string]int) // symbol -> position in out

	for i := range pairs {
		p := &pairs[i]

		change, window, ok := SelectBestChange(p.PriceChange, opts.Policy)
		if !ok {
			continue
		}
		if opts.Bounds && (change < opts.MinChange || change > opts.MaxChange) {
			continue
		}

		twitter := p.Twitter()
		if opts.RequireTwitter && twitter == "" {
			continue
		}

		symbol := p.BaseToken.Symbol
		if symbol == "" {
			symbol = "???"
		}

		token := domain.RankedToken{
			Change:   change,
			Window:   window,
			Symbol:   symbol,
			Chain:    p.Chain(),
			LogoURL:  p.LogoURL(),
			URL:      p.URL,
			Twitter:  twitter,
			Telegram: p.Telegram(),
		}

		if at, seen := index[symbol]; seen {
			if opts.KeepBest && token.Change > out[at].Change {
				out[at] = token
			}
			continue
		}
		index[symbol] = len(out)
		out = append(out, token)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Change > out[j].Change
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}
