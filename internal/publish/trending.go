package publish

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"trendcast/internal/banner"
	"trendcast/internal/caption"
	"trendcast/internal/dexscreener"
	"trendcast/internal/domain"
	"trendcast/internal/extract"
	"trendcast/internal/rank"
	"trendcast/internal/storage"
)

// Trending loop defaults.
const (
	DefaultTrendInterval = 30 * time.Minute
	DefaultCollectLimit  = 150 // history messages harvested for contracts
	DefaultMarkerScan    = 30  // history messages scanned for the tracked post
	DefaultFetchPacing   = 1 * time.Second
	BannerSlots          = 6
	CaptionRows          = 8
)

// TrendingOptions configure a TrendingRunner.
type TrendingOptions struct {
	Market     MarketClient
	Gateway    Gateway
	Renderer   Renderer
	Mentions   storage.MentionStore
	FetchImage ImageFetcher

	TargetChannel string
	CommunityURL  string
	ApplyURL      string

	// Interval between iterations, measured from the end of one to the
	// start of the next. Zero means DefaultTrendInterval.
	Interval time.Duration
	// CollectLimit bounds the history harvest. Zero means
	// DefaultCollectLimit.
	CollectLimit int
	// Rank holds the ranking pass configuration. Zero Limit gets
	// CaptionRows.
	Rank rank.Options

	// Sleep paces per-identifier fetches; injectable for tests.
	Sleep dexscreener.SleepFunc

	Logger *logrus.Logger
}

// TrendingRunner maintains the single leaderboard post: harvest seen
// contracts, enrich, rank, render, then create-or-edit the post. It is the
// sole writer of the post state and runs one iteration at a time; the
// inter-iteration delay starts only after an iteration fully completes, so
// iterations never overlap.
type TrendingRunner struct {
	market     MarketClient
	gateway    Gateway
	renderer   Renderer
	mentions   storage.MentionStore
	fetchImage ImageFetcher

	targetChannel string
	communityURL  string
	applyURL      string

	interval     time.Duration
	collectLimit int
	rankOpts     rank.Options
	sleep        dexscreener.SleepFunc

	state  PostState
	logger *logrus.Logger
}

// NewTrendingRunner creates a TrendingRunner with defaults applied.
func NewTrendingRunner(opts TrendingOptions) *TrendingRunner {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultTrendInterval
	}
	collectLimit := opts.CollectLimit
	if collectLimit == 0 {
		collectLimit = DefaultCollectLimit
	}
	rankOpts := opts.Rank
	if rankOpts.Limit == 0 {
		rankOpts.Limit = CaptionRows
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TrendingRunner{
		market:        opts.Market,
		gateway:       opts.Gateway,
		renderer:      opts.Renderer,
		mentions:      opts.Mentions,
		fetchImage:    opts.FetchImage,
		targetChannel: opts.TargetChannel,
		communityURL:  opts.CommunityURL,
		applyURL:      opts.ApplyURL,
		interval:      interval,
		collectLimit:  collectLimit,
		rankOpts:      rankOpts,
		sleep:         sleep,
		state:         PostState{Status: StatusUnknown},
		logger:        logger,
	}
}

// State returns the current leaderboard post state.
func (r *TrendingRunner) State() PostState { return r.state }

// Run executes iterations until the context is cancelled. The first
// iteration starts immediately. Iteration failures are logged and the loop
// continues after the interval; nothing here is process-fatal.
func (r *TrendingRunner) Run(ctx context.Context) error {
	for {
		r.safeRunOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}
}

// safeRunOnce guards one iteration against both errors and panics.
func (r *TrendingRunner) safeRunOnce(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithField("panic", rec).Error("trending iteration recovered")
		}
	}()
	if err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.WithError(err).Error("trending iteration failed")
	}
}

// RunOnce executes a single leaderboard pass. A pass with no qualifying
// tokens posts nothing and leaves the tracked state untouched.
func (r *TrendingRunner) RunOnce(ctx context.Context) error {
	candidates, err := r.collectCandidates(ctx)
	if err != nil {
		return err
	}
	r.logger.WithField("contracts", len(candidates)).Info("trending: collected contracts")

	tokens := r.pickTopTokens(ctx, candidates)
	if len(tokens) == 0 {
		r.logger.Info("trending: no data, skipping post")
		return nil
	}
	r.logger.WithField("tokens", len(tokens)).Info("trending: ranked tokens")

	image, err := r.renderBanner(ctx, tokens)
	if err != nil {
		return err
	}
	captionHTML := caption.Trends(caption.TrendsInput{
		Tokens:       tokens,
		CommunityURL: r.communityURL,
		ApplyURL:     r.applyURL,
	})

	state, err := Reconcile(ctx, r.gateway, r.targetChannel, r.state, caption.TrendsMarker, DefaultMarkerScan)
	if err != nil {
		return err
	}
	r.state = state

	state, err = Publish(ctx, r.gateway, r.targetChannel, r.state, image, captionHTML)
	r.state = state
	if err != nil {
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"status":  r.state.Status.String(),
		"message": r.state.MessageID,
	}).Info("trending: leaderboard published")
	return nil
}

// collectCandidates merges hex contracts from recent channel history with
// candidates the mention store observed live.
func (r *TrendingRunner) collectCandidates(ctx context.Context) ([]domain.Candidate, error) {
	seen := make(map[domain.Candidate]struct{})
	var out []domain.Candidate

	msgs, err := r.gateway.History(ctx, r.targetChannel, r.collectLimit)
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		for _, c := range extract.HexCandidates(m.Text) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}

	if r.mentions != nil {
		stored, err := r.mentions.Candidates(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range stored {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

// pickTopTokens fetches pairs for every candidate (paced, skipping
// unavailable ones) and runs the ranking pass over the union.
func (r *TrendingRunner) pickTopTokens(ctx context.Context, candidates []domain.Candidate) []domain.RankedToken {
	var pairs []domain.Pair
	for i, candidate := range candidates {
		if i > 0 {
			if err := r.sleep(ctx, DefaultFetchPacing); err != nil {
				break
			}
		}
		found, err := r.market.Search(ctx, candidate)
		if err != nil {
			if !errors.Is(err, dexscreener.ErrUnavailable) {
				r.logger.WithError(err).WithField("identifier", candidate.String()).Warn("trending: lookup failed")
			}
			continue
		}
		pairs = append(pairs, found...)
	}
	return rank.Rank(pairs, r.rankOpts)
}

// renderBanner fetches the top slots' logos (missing logos fall back inside
// the renderer) and renders the leaderboard image.
func (r *TrendingRunner) renderBanner(ctx context.Context, tokens []domain.RankedToken) ([]byte, error) {
	count := len(tokens)
	if count > BannerSlots {
		count = BannerSlots
	}
	slots := make([]banner.Slot, 0, count)
	for _, t := range tokens[:count] {
		var logo []byte
		if t.LogoURL != "" && r.fetchImage != nil {
			if img, err := r.fetchImage(ctx, t.LogoURL); err == nil {
				logo = img
			} else {
				r.logger.WithError(err).WithField("symbol", t.Symbol).Warn("trending: logo download failed")
			}
		}
		slots = append(slots, banner.Slot{
			Symbol: t.Symbol,
			Change: t.Change,
			Logo:   logo,
		})
	}
	return r.renderer.Leaderboard(banner.LeaderboardInput{Slots: slots})
}
