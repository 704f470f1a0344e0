package publish

import (
	"context"

	"trendcast/internal/banner"
	"trendcast/internal/dexscreener"
	"trendcast/internal/domain"
)

// fakeGateway records sends and edits and serves a canned history.
type fakeGateway struct {
	history  []Message
	histErr  error
	sendErr  error
	editErr  error
	nextID   int
	sends    []sentPost
	edits    []editedPost
	histReqs int
}

type sentPost struct {
	channel string
	image   []byte
	caption string
}

type editedPost struct {
	channel   string
	messageID int
	caption   string
}

func (g *fakeGateway) SendPhoto(_ context.Context, channel string, image []byte, captionHTML string) (int, error) {
	if g.sendErr != nil {
		return 0, g.sendErr
	}
	g.nextID++
	g.sends = append(g.sends, sentPost{channel: channel, image: image, caption: captionHTML})
	return g.nextID, nil
}

func (g *fakeGateway) EditPhoto(_ context.Context, channel string, messageID int, _ []byte, captionHTML string) error {
	if g.editErr != nil {
		return g.editErr
	}
	g.edits = append(g.edits, editedPost{channel: channel, messageID: messageID, caption: captionHTML})
	return nil
}

func (g *fakeGateway) History(_ context.Context, _ string, limit int) ([]Message, error) {
	g.histReqs++
	if g.histErr != nil {
		return nil, g.histErr
	}
	if limit > 0 && len(g.history) > limit {
		return g.history[:limit], nil
	}
	return g.history, nil
}

// fakeMarket serves canned pairs per identifier.
type fakeMarket struct {
	pairs   map[domain.Candidate][]domain.Pair
	err     error
	queries []domain.Candidate
}

func (m *fakeMarket) Search(_ context.Context, id domain.Candidate) ([]domain.Pair, error) {
	m.queries = append(m.queries, id)
	if m.err != nil {
		return nil, m.err
	}
	found, ok := m.pairs[id]
	if !ok || len(found) == 0 {
		return nil, dexscreener.ErrUnavailable
	}
	return found, nil
}

// fakeRenderer returns fixed bytes.
type fakeRenderer struct {
	tokenCalls int
	boardCalls int
	err        error
}

func (r *fakeRenderer) Token(banner.TokenInput) ([]byte, error) {
	r.tokenCalls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("token-banner"), nil
}

func (r *fakeRenderer) Leaderboard(banner.LeaderboardInput) ([]byte, error) {
	r.boardCalls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("leaderboard-banner"), nil
}

func fakeFetcher(payload []byte, err error) ImageFetcher {
	return func(context.Context, string) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return payload, nil
	}
}
