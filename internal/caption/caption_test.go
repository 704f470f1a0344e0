package caption

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"trendcast/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestHumanAmount(t *testing.T) {
	cases := map[float64]string{
		0:             "0.00",
		999:           "999.00",
		1000:          "1.00K",
		15_420:        "15.42K",
		2_500_000:     "2.50M",
		7_100_000_000: "7.10B",
		3.2e12:        "3.20T",
	}
	for in, want := range cases {
		assert.Equal(t, want, HumanAmount(in), "input %v", in)
	}
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "0.0000234", Price("0.0000234"))
	assert.Equal(t, "N/A", Price(""))
	assert.Equal(t, "N/A", Price("not-a-number"))
}

func TestTwitterHandle(t *testing.T) {
	assert.Equal(t, "@someproject", TwitterHandle("https://twitter.com/someproject"))
	assert.Equal(t, "@someproject", TwitterHandle("https://x.com/someproject?s=21"))
	assert.Equal(t, "", TwitterHandle("https://example.com/someproject"))
	assert.Equal(t, "", TwitterHandle(""))
}

func TestChainTag(t *testing.T) {
	assert.Equal(t, "#ETH", ChainTag("Ethereum"))
	assert.Equal(t, "#SOL", ChainTag("Solana"))
	assert.Equal(t, "#CRONOS", ChainTag("Cronos"))
}

func TestAnnouncementLayout(t *testing.T) {
	p := &domain.Pair{
		ChainID:   "ethereum",
		BaseToken: domain.Token{Address: "0xabc", Name: "Some Token", Symbol: "STK"},
		PriceUsd:  "0.042",
		FDV:       1_200_000,
		Liquidity: &domain.Liquidity{USD: 50_000},
		Info: &domain.PairInfo{
			Socials: []domain.Social{
				{Type: "telegram", URL: "https://t.me/stk"},
				{Type: "twitter", URL: "https://x.com/stk"},
			},
		},
	}

	got := Announcement(AnnouncementInput{
		Pair:         p,
		Change:       42,
		Window:       "h24",
		CommunityURL: "https://t.me/community",
	})

	assert.Contains(t, got, "Some Token is <a href='https://t.me/community'>#Trending</a>")
	assert.Contains(t, got, "Pumped 42% in the last h24")
	assert.Contains(t, got, "<code>0xabc</code>")
	assert.Contains(t, got, "$0.042")
	assert.Contains(t, got, "$1.20M")
	assert.Contains(t, got, "$50.00K")
	assert.Contains(t, got, "💥 Telegram")
	assert.Contains(t, got, "💥 Twitter")
	assert.Contains(t, got, "#STK")
	assert.Contains(t, got, "#ETH")
	assert.Contains(t, got, "@stk")
	assert.NotContains(t, got, "Sponsored")
}

func TestAnnouncementSponsorFooter(t *testing.T) {
	p := &domain.Pair{BaseToken: domain.Token{Name: "N", Symbol: "N"}}
	got := Announcement(AnnouncementInput{
		Pair:        p,
		SponsorHTML: "<a href='https://ad.example'>Ad</a>",
	})
	assert.Contains(t, got, "💠 Sponsored: <a href='https://ad.example'>Ad</a>")
}

func token(symbol string, change float64) domain.RankedToken {
	return domain.RankedToken{
		Symbol:   symbol,
		Chain:    "Ethereum",
		Change:   change,
		Window:   "h1",
		Telegram: "https://t.me/" + symbol,
		Twitter:  "https://x.com/" + symbol,
	}
}

func TestTrendsMarkerPresent(t *testing.T) {
	got := Trends(TrendsInput{Tokens: []domain.RankedToken{token("AAA", 50)}})
	assert.Contains(t, got, TrendsMarker)
}

func TestTrendsRowCapAndMedals(t *testing.T) {
	var tokens []domain.RankedToken
	for _, s := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		tokens = append(tokens, token(s, 30))
	}

	got := Trends(TrendsInput{Tokens: tokens})

	assert.Contains(t, got, "🥇📊")
	assert.Contains(t, got, "🥈📊")
	assert.Contains(t, got, "🥉📊")
	assert.Equal(t, 8, strings.Count(got, "📊"), "eight rows at most")
	assert.Contains(t, got, "$H |")
	assert.NotContains(t, got, "$I |")
}

func TestTrendsHandlesOnlyBannerSlots(t *testing.T) {
	var tokens []domain.RankedToken
	for _, s := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		tokens = append(tokens, token(s, 30))
	}

	got := Trends(TrendsInput{Tokens: tokens})

	assert.Contains(t, got, "@F")
	assert.NotContains(t, got, "@G")
}

func TestTrendsRowLinkFallback(t *testing.T) {
	tok := domain.RankedToken{Symbol: "X", Chain: "Ethereum", Change: 20, Window: "h6"}
	got := Trends(TrendsInput{Tokens: []domain.RankedToken{tok}, LinkFallback: "https://fallback.example"})
	assert.Contains(t, got, "href='https://fallback.example'")
}

func TestTrendsCommunityLinks(t *testing.T) {
	got := Trends(TrendsInput{
		Tokens:       []domain.RankedToken{token("AAA", 50)},
		CommunityURL: "https://t.me/community",
		ApplyURL:     "https://t.me/apply",
	})
	assert.Contains(t, got, "<a href='https://t.me/community'>Join Community</a>")
	assert.Contains(t, got, "<a href='https://t.me/apply'>Apply Trend Now</a>")
}
