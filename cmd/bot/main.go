// Package main runs the trend watcher bot: the per-mention announcement
// handler and the periodic trending leaderboard task.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"trendcast/internal/banner"
	"trendcast/internal/config"
	"trendcast/internal/dexscreener"
	"trendcast/internal/filter"
	"trendcast/internal/gateway"
	"trendcast/internal/publish"
	"trendcast/internal/rank"
	"trendcast/internal/storage/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuration error")
	}

	logger := logrus.New()
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(logrus.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	tg, err := gateway.New(cfg.BotToken, 5*time.Second, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create telegram gateway")
	}

	market := dexscreener.New(cfg.DexBaseURL, dexscreener.WithLogger(logger))

	renderer := newRenderer(cfg, logger)
	mentions := memory.NewMentionStore()

	eligibility := filter.New(filter.Config{
		LiquidityFloor: cfg.LiquidityFloor,
		RequirePump:    true,
		RequireSocials: true,
	}, logger)

	announcer := publish.NewAnnouncer(publish.AnnouncerOptions{
		Market:        market,
		Gateway:       tg,
		Renderer:      renderer,
		Filter:        eligibility,
		Mentions:      mentions,
		FetchImage:    market.FetchImage,
		TargetChannel: cfg.TargetChannel,
		Strategies:    cfg.ChannelStrategies,
		CommunityURL:  cfg.CommunityURL,
		SponsorHTML:   cfg.SponsorHTML,
		Logger:        logger,
	})
	tg.OnMessage(announcer.HandleMessage)

	trending := publish.NewTrendingRunner(publish.TrendingOptions{
		Market:        market,
		Gateway:       tg,
		Renderer:      renderer,
		Mentions:      mentions,
		FetchImage:    market.FetchImage,
		TargetChannel: cfg.TargetChannel,
		CommunityURL:  cfg.CommunityURL,
		ApplyURL:      cfg.ApplyURL,
		Interval:      cfg.TrendInterval,
		CollectLimit:  cfg.CollectLimit,
		Rank: rank.Options{
			Limit:          publish.CaptionRows,
			Policy:         rank.PolicyPositiveOnly,
			Bounds:         true,
			MinChange:      cfg.PumpMin,
			MaxChange:      cfg.PumpMax,
			RequireTwitter: true,
		},
		Logger: logger,
	})

	go func() {
		if err := trending.Run(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("trending runner stopped")
		}
	}()

	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig.String()).Info("shutting down")
		cancel()
		tg.Stop()
	}()

	logger.WithFields(logrus.Fields{
		"target":   cfg.TargetChannel,
		"channels": len(cfg.ChannelStrategies),
		"interval": cfg.TrendInterval.String(),
	}).Info("bot starting")
	tg.Start()
}

// newRenderer builds the banner renderer from configured assets. Missing
// assets degrade: no background means a flat backdrop, a bad font file means
// the built-in face.
func newRenderer(cfg *config.Config, logger *logrus.Logger) *banner.Renderer {
	var opts []banner.Option

	if bg, err := banner.LoadBackground(cfg.BannerPath); err != nil {
		logger.WithError(err).Warn("banner background unavailable, using flat backdrop")
	} else {
		opts = append(opts, banner.WithBackground(bg))
	}

	headline, body, small := banner.LoadFaces(cfg.FontPath)
	opts = append(opts, banner.WithFaces(headline, body, small))

	return banner.New(opts...)
}
