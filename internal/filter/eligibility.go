// Package filter decides whether a market record is worth publishing.
package filter

import (
	"github.com/sirupsen/logrus"

	"trendcast/internal/domain"
	"trendcast/internal/rank"
)

// DefaultLiquidityFloor is the minimum pool liquidity in USD. The boundary is
// inclusive: exactly the floor is eligible.
const DefaultLiquidityFloor = 10_000

// Config sets the filter thresholds. Observed deployments vary these, so they
// are configuration rather than constants.
type Config struct {
	// LiquidityFloor in USD; zero means DefaultLiquidityFloor.
	LiquidityFloor float64
	// RequirePump demands a present, strictly positive best change. Flows
	// that only report movement leave it off.
	RequirePump bool
	// RequireSocials demands a telegram link plus twitter or website:
	// a community channel plus a public identity.
	RequireSocials bool
}

// Filter applies eligibility predicates to pair snapshots. It is pure: no
// mutation, and an ineligible record is informational, never an error.
type Filter struct {
	cfg    Config
	logger *logrus.Logger
}

// New creates a Filter, applying defaults for zero thresholds.
func New(cfg Config, logger *logrus.Logger) *Filter {
	if cfg.LiquidityFloor == 0 {
		cfg.LiquidityFloor = DefaultLiquidityFloor
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Filter{cfg: cfg, logger: logger}
}

// MeetsLiquidityFloor reports whether pool liquidity reaches the floor.
func (f *Filter) MeetsLiquidityFloor(p *domain.Pair) bool {
	return p.LiquidityUSD() >= f.cfg.LiquidityFloor
}

// HasPositiveChange reports whether some window carries a strictly positive
// price change.
func (f *Filter) HasPositiveChange(p *domain.Pair) bool {
	_, _, ok := rank.SelectBestChange(p.PriceChange, rank.PolicyPositiveOnly)
	return ok
}

// HasRequiredSocials reports whether the pair has a telegram link and at
// least one of twitter or website.
func (f *Filter) HasRequiredSocials(p *domain.Pair) bool {
	if p.Telegram() == "" {
		return false
	}
	return p.Twitter() != "" || p.Website() != ""
}

// Eligible composes the predicates in order, cheapest first, short-circuiting
// on the first failure.
func (f *Filter) Eligible(p *domain.Pair) bool {
	if !f.MeetsLiquidityFloor(p) {
		f.logger.WithFields(logrus.Fields{
			"symbol":    p.BaseToken.Symbol,
			"liquidity": p.LiquidityUSD(),
			"floor":     f.cfg.LiquidityFloor,
		}).Info("skipped: liquidity below floor")
		return false
	}
	if f.cfg.RequirePump && !f.HasPositiveChange(p) {
		f.logger.WithField("symbol", p.BaseToken.Symbol).Info("skipped: no positive change")
		return false
	}
	if f.cfg.RequireSocials && !f.HasRequiredSocials(p) {
		f.logger.WithField("symbol", p.BaseToken.Symbol).Info("skipped: must have telegram plus twitter or website")
		return false
	}
	return true
}
