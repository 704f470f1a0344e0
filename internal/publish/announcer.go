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
	"trendcast/internal/filter"
	"trendcast/internal/rank"
	"trendcast/internal/storage"
)

// AnnouncerOptions configure an Announcer.
type AnnouncerOptions struct {
	Market     MarketClient
	Gateway    Gateway
	Renderer   Renderer
	Filter     *filter.Filter
	Mentions   storage.MentionStore
	FetchImage ImageFetcher

	// TargetChannel receives the announcements.
	TargetChannel string
	// Strategies maps each watched channel to its extraction strategy.
	// Messages from unmapped channels are ignored.
	Strategies map[int64]extract.Strategy

	CommunityURL string
	SponsorHTML  string

	Logger *logrus.Logger
}

// Announcer handles inbound messages: extract candidates, enrich each with
// market data, filter, render and send. One announcement per eligible
// candidate; repeats across time are possible and accepted.
type Announcer struct {
	market     MarketClient
	gateway    Gateway
	renderer   Renderer
	filter     *filter.Filter
	mentions   storage.MentionStore
	fetchImage ImageFetcher

	targetChannel string
	strategies    map[int64]extract.Strategy
	communityURL  string
	sponsorHTML   string

	logger *logrus.Logger
}

// NewAnnouncer creates an Announcer.
func NewAnnouncer(opts AnnouncerOptions) *Announcer {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Announcer{
		market:        opts.Market,
		gateway:       opts.Gateway,
		renderer:      opts.Renderer,
		filter:        opts.Filter,
		mentions:      opts.Mentions,
		fetchImage:    opts.FetchImage,
		targetChannel: opts.TargetChannel,
		strategies:    opts.Strategies,
		communityURL:  opts.CommunityURL,
		sponsorHTML:   opts.SponsorHTML,
		logger:        logger,
	}
}

// HandleMessage processes one inbound message. It never returns an error and
// never panics outward: every failure mode is logged and contained so a bad
// message cannot take the handler down.
func (a *Announcer) HandleMessage(ctx context.Context, channelID int64, text string, entities []extract.Entity) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.WithField("panic", rec).Error("mention handler recovered")
		}
	}()

	strategy, watched := a.strategies[channelID]
	if !watched {
		return
	}

	candidates := extract.Extract(strategy, text, entities)
	if len(candidates) == 0 {
		return
	}

	for _, candidate := range candidates {
		a.announceCandidate(ctx, channelID, candidate)
	}
}

// announceCandidate fetches pairs for one candidate and sends at most one
// announcement: the first record that yields a successful render-and-send
// wins. Only the liquidity check moves on to the next pair; any other
// stop condition ends the loop for this candidate.
func (a *Announcer) announceCandidate(ctx context.Context, channelID int64, candidate domain.Candidate) {
	log := a.logger.WithFields(logrus.Fields{
		"identifier": candidate.String(),
		"kind":       candidate.Kind().String(),
		"channel":    channelID,
	})
	log.Info("token candidate found")

	a.recordMention(ctx, channelID, candidate)

	pairs, err := a.market.Search(ctx, candidate)
	if err != nil {
		if errors.Is(err, dexscreener.ErrUnavailable) {
			log.Info("no market data for candidate")
		} else {
			log.WithError(err).Warn("market lookup failed")
		}
		return
	}

	for i := range pairs {
		pair := &pairs[i]

		if !a.filter.MeetsLiquidityFloor(pair) {
			log.WithField("liquidity", pair.LiquidityUSD()).Info("low liquidity, skipped")
			continue
		}

		media, captionHTML := a.buildAnnouncement(ctx, pair)
		if media == nil {
			log.Info("media or caption not created")
			break
		}

		if _, err := a.gateway.SendPhoto(ctx, a.targetChannel, media, captionHTML); err != nil {
			log.WithError(err).Error("send failed")
		} else {
			log.WithField("symbol", pair.BaseToken.Symbol).Info("announcement sent")
		}
		break
	}
}

// buildAnnouncement produces the media and caption for one pair, or nil when
// the pair is not announceable. The header image is preferred; when absent
// or failing, a banner is rendered around the token logo.
func (a *Announcer) buildAnnouncement(ctx context.Context, pair *domain.Pair) ([]byte, string) {
	change, window, ok := rank.SelectBestChange(pair.PriceChange, rank.PolicyPositiveOnly)
	if !ok {
		a.logger.WithField("symbol", pair.BaseToken.Symbol).Info("skipped: negative or zero change")
		return nil, ""
	}
	if !a.filter.HasRequiredSocials(pair) {
		a.logger.WithField("symbol", pair.BaseToken.Symbol).Info("skipped: must have telegram plus twitter or website")
		return nil, ""
	}

	captionHTML := caption.Announcement(caption.AnnouncementInput{
		Pair:         pair,
		Change:       change,
		Window:       window,
		CommunityURL: a.communityURL,
		SponsorHTML:  a.sponsorHTML,
	})

	if headerURL := pair.HeaderURL(); headerURL != "" {
		if img, err := a.fetchImage(ctx, headerURL); err == nil {
			return img, captionHTML
		} else {
			a.logger.WithError(err).Warn("header image download failed")
		}
	}

	logoURL := pair.LogoURL()
	if logoURL == "" {
		return nil, ""
	}
	logo, err := a.fetchImage(ctx, logoURL)
	if err != nil {
		a.logger.WithError(err).Warn("logo download failed")
		return nil, ""
	}

	img, err := a.renderer.Token(banner.TokenInput{
		Name:     pair.BaseToken.Name,
		Symbol:   pair.BaseToken.Symbol,
		Chain:    pair.Chain(),
		Contract: pair.BaseToken.Address,
		Website:  pair.Website(),
		Logo:     logo,
		Change:   change,
		Window:   window,
	})
	if err != nil {
		a.logger.WithError(err).Error("banner render failed")
		return nil, ""
	}
	return img, captionHTML
}

func (a *Announcer) recordMention(ctx context.Context, channelID int64, candidate domain.Candidate) {
	if a.mentions == nil {
		return
	}
	err := a.mentions.Record(ctx, &storage.Mention{
		Candidate:  candidate,
		ChannelID:  channelID,
		ObservedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		a.logger.WithError(err).Warn("mention record failed")
	}
}
