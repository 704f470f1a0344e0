// Package publish holds the announcement pipeline: the per-mention announcer,
// the periodic trending runner and the leaderboard post state machine. The
// chat platform and the image renderer are external collaborators consumed
// through the interfaces defined here.
package publish

import (
	"context"

	"trendcast/internal/banner"
	"trendcast/internal/domain"
)

// Message is one delivered or observed chat message.
type Message struct {
	ID   int
	Text string
	Self bool // authored by this process
}

// Gateway delivers and edits posts and answers bounded recent-history
// queries. Implementations live outside this package.
type Gateway interface {
	// SendPhoto posts an image with an HTML caption (link previews off) and
	// returns the new message id.
	SendPhoto(ctx context.Context, channel string, image []byte, captionHTML string) (int, error)

	// EditPhoto replaces image and caption of an existing message in place.
	EditPhoto(ctx context.Context, channel string, messageID int, image []byte, captionHTML string) error

	// History returns up to limit recent messages, most recent first.
	History(ctx context.Context, channel string, limit int) ([]Message, error)
}

// Renderer produces announcement images from already-fetched inputs.
type Renderer interface {
	Token(in banner.TokenInput) ([]byte, error)
	Leaderboard(in banner.LeaderboardInput) ([]byte, error)
}

// MarketClient fetches pair snapshots for one candidate identifier.
type MarketClient interface {
	Search(ctx context.Context, id domain.Candidate) ([]domain.Pair, error)
}

// ImageFetcher downloads an image by URL (header images, logos).
type ImageFetcher func(ctx context.Context, url string) ([]byte, error)
