// Command scan is a one-shot pipeline check: read a message from stdin,
// extract contract candidates, look each up and print the ranked result.
// Useful for tuning extraction strategies and rank thresholds offline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"trendcast/internal/banner"
	"trendcast/internal/dexscreener"
	"trendcast/internal/domain"
	"trendcast/internal/extract"
	"trendcast/internal/rank"
)

func main() {
	var (
		baseURL   = flag.String("base-url", dexscreener.DefaultBaseURL, "market API base URL")
		strategy  = flag.String("strategy", "combined", "extraction strategy: anchored, url or combined")
		limit     = flag.Int("limit", 8, "maximum ranked tokens to print")
		minChange = flag.Float64("min-change", 10, "minimum accepted change percent")
		maxChange = flag.Float64("max-change", 999, "maximum accepted change percent")
		timeout   = flag.Duration("timeout", 2*time.Minute, "overall deadline")
		bannerOut = flag.String("banner", "", "write a leaderboard banner preview PNG to this path")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	strat, err := extract.ParseStrategy(*strategy)
	if err != nil {
		logger.WithError(err).Fatal("bad strategy")
	}

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.WithError(err).Fatal("failed to read stdin")
	}

	candidates := extract.Extract(strat, string(text), nil)
	if len(candidates) == 0 {
		fmt.Println("no candidates found")
		return
	}
	fmt.Printf("candidates: %d\n", len(candidates))
	for _, c := range candidates {
		fmt.Printf("  %s (%s)\n", c, c.Kind())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := dexscreener.New(*baseURL, dexscreener.WithLogger(logger))

	pairs := collect(ctx, client, candidates, logger)
	if len(pairs) == 0 {
		fmt.Println("no pairs resolved")
		writePreview(*bannerOut, nil, logger)
		return
	}

	ranked := rank.Rank(pairs, rank.Options{
		Limit:     *limit,
		Policy:    rank.PolicyPositiveOnly,
		Bounds:    true,
		MinChange: *minChange,
		MaxChange: *maxChange,
	})
	if len(ranked) == 0 {
		fmt.Println("no tokens passed ranking")
		writePreview(*bannerOut, nil, logger)
		return
	}

	fmt.Printf("ranked tokens: %d\n", len(ranked))
	for i, tok := range ranked {
		fmt.Printf("%2d. $%s [%s] +%.2f%% (%s) %s\n",
			i+1, tok.Symbol, tok.Chain, tok.Change, tok.Window, tok.URL)
	}

	writePreview(*bannerOut, ranked, logger)
}

// writePreview renders the ranked result as a leaderboard banner (logos
// omitted, slots fall back to tiles), or the placeholder when nothing
// ranked. A missing -banner flag skips the render entirely.
func writePreview(path string, ranked []domain.RankedToken, logger *logrus.Logger) {
	if path == "" {
		return
	}
	r := banner.New()

	var img []byte
	var err error
	if len(ranked) == 0 {
		img, err = r.Placeholder()
	} else {
		slots := make([]banner.Slot, 0, len(ranked))
		for _, tok := range ranked {
			slots = append(slots, banner.Slot{Symbol: tok.Symbol, Change: tok.Change})
		}
		img, err = r.Leaderboard(banner.LeaderboardInput{Slots: slots})
	}
	if err != nil {
		logger.WithError(err).Error("banner render failed")
		return
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		logger.WithError(err).Error("banner write failed")
		return
	}
	fmt.Printf("banner preview written to %s\n", path)
}

func collect(ctx context.Context, client *dexscreener.Client, candidates []domain.Candidate, logger *logrus.Logger) []domain.Pair {
	var pairs []domain.Pair
	for _, c := range candidates {
		got, err := client.Search(ctx, c)
		if err != nil {
			if !errors.Is(err, dexscreener.ErrUnavailable) {
				logger.WithError(err).WithField("candidate", c).Warn("lookup failed")
			}
			continue
		}
		pairs = append(pairs, got...)
	}
	return pairs
}
