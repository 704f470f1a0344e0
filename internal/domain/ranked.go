package domain

// RankedToken is a deduplicated, ranked projection of a Pair used for
// leaderboard display. At most one RankedToken exists per distinct symbol
// within one ranking pass.
type RankedToken struct {
	Change   float64 // best percent change across windows
	Window   string  // window the best change came from
	Symbol   string
	Chain    string
	LogoURL  string
	URL      string // canonical pair URL
	Twitter  string
	Telegram string
}

// Link returns the preferred outbound link for a leaderboard row:
// telegram first, then the canonical pair URL, then a fixed fallback.
func (t RankedToken) Link(fallback string) string {
	if t.Telegram != "" {
		return t.Telegram
	}
	if t.URL != "" {
		return t.URL
	}
	return fallback
}
