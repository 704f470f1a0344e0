// Package caption builds the HTML captions attached to announcements. The
// gateway accepts a small HTML subset (<b>, <a href>, <code>, <i>), so all
// formatting here stays inside it.
package caption

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"trendcast/internal/domain"
)

// TrendsMarker identifies the leaderboard post in channel history. Post
// discovery after a restart depends on it staying stable and unique among
// recent messages.
const TrendsMarker = "Worldwide Top #Trends Diamonds Now"

var (
	handlePattern = regexp.MustCompile(`(?:twitter\.com|x\.com)/([A-Za-z0-9_]+)`)

	thousand = decimal.NewFromInt(1000)

	chainHashtags = map[string]string{
		"Ethereum":  "#ETH",
		"Eth":       "#ETH",
		"Bsc":       "#BSC",
		"Binance":   "#BSC",
		"Arbitrum":  "#ARB",
		"Polygon":   "#MATIC",
		"Solana":    "#SOL",
		"Avalanche": "#AVAX",
		"Optimism":  "#OP",
		"Fantom":    "#FTM",
		"Base":      "#BASE",
	}
)

// HumanAmount renders a USD amount with K/M/B/T suffixes, two decimals.
func HumanAmount(v float64) string {
	d := decimal.NewFromFloat(v)
	for _, unit := range []string{"", "K", "M", "B", "T"} {
		if d.Abs().LessThan(thousand) {
			return d.StringFixed(2) + unit
		}
		d = d.Div(thousand)
	}
	return d.StringFixed(1) + "P"
}

// Price echoes the upstream decimal string, validating it parses; empty or
// malformed input renders as N/A.
func Price(s string) string {
	if s == "" {
		return "N/A"
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return "N/A"
	}
	return s
}

// TwitterHandle extracts "@name" from a twitter/x profile URL, or "".
func TwitterHandle(url string) string {
	m := handlePattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "@" + m[1]
}

// ChainTag maps a chain name to its hashtag, defaulting to #CHAINNAME.
func ChainTag(chain string) string {
	if tag, ok := chainHashtags[chain]; ok {
		return tag
	}
	return "#" + strings.ToUpper(chain)
}

// SocialLine renders the pair's social links as inline anchors joined
// with " | ".
func SocialLine(p *domain.Pair) string {
	if p.Info == nil {
		return ""
	}
	var links []string
	for _, s := range p.Info.Socials {
		if s.URL == "" {
			continue
		}
		switch strings.ToLower(s.Type) {
		case "twitter":
			links = append(links, fmt.Sprintf("<a href='%s'>💥 Twitter</a>", s.URL))
		case "telegram":
			links = append(links, fmt.Sprintf("<a href='%s'>💥 Telegram</a>", s.URL))
		case "":
			links = append(links, fmt.Sprintf("<a href='%s'>🔗 Link</a>", s.URL))
		default:
			links = append(links, fmt.Sprintf("<a href='%s'>📢 %s</a>", s.URL, title(s.Type)))
		}
	}
	return strings.Join(links, " | ")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// AnnouncementInput carries everything the per-mention caption needs.
type AnnouncementInput struct {
	Pair         *domain.Pair
	Change       float64
	Window       string
	CommunityURL string // the target channel link used in the headline
	SponsorHTML  string // optional footer, appended verbatim when set
}

// Announcement builds the per-mention caption. The caller has already passed
// the record through the eligibility filter.
func Announcement(in AnnouncementInput) string {
	p := in.Pair
	name := p.BaseToken.Name
	if name == "" {
		name = "Unknown"
	}
	symbol := strings.ToUpper(p.BaseToken.Symbol)
	chain := p.Chain()

	headline := fmt.Sprintf("🟢 %s is <a href='%s'>#Trending</a> Worldwide. Pumped %.0f%% in the last %s.",
		name, in.CommunityURL, in.Change, in.Window)

	twitterUser := TwitterHandle(p.Twitter())
	hashtags := strings.TrimSpace(fmt.Sprintf("#trendcast #%s #Dexscreener #BullishMarketCap %s %s",
		symbol, ChainTag(chain), twitterUser))

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", headline)
	fmt.Fprintf(&b, "<b>🔗 Chain:</b> %s\n", chain)
	fmt.Fprintf(&b, "<b>🧬 Contract:</b> <code>%s</code>\n\n", p.BaseToken.Address)
	fmt.Fprintf(&b, "<b>💵 Price:</b> $%s\n", Price(p.PriceUsd))
	fmt.Fprintf(&b, "<b>🤠 Market Cap:</b> $%s\n", HumanAmount(p.FDV))
	fmt.Fprintf(&b, "<b>💧 Liquidity:</b> $%s\n\n", HumanAmount(p.LiquidityUSD()))
	if line := SocialLine(p); line != "" {
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	b.WriteString(hashtags)
	if in.SponsorHTML != "" {
		b.WriteString("\n\n💠 Sponsored: ")
		b.WriteString(in.SponsorHTML)
	}
	return b.String()
}

// TrendsInput carries everything the leaderboard caption needs.
type TrendsInput struct {
	Tokens       []domain.RankedToken
	CommunityURL string
	ApplyURL     string
	LinkFallback string // row link when a token has neither telegram nor URL
}

// Trends builds the leaderboard caption: up to eight medal-ranked rows, a
// twitter-handle footer for the banner slots, and the community links. The
// marker string is embedded so the post can be rediscovered after a restart.
func Trends(in TrendsInput) string {
	fallback := in.LinkFallback
	if fallback == "" {
		fallback = "https://dexscreener.com"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>%s | Live Update</b>\n\n", TrendsMarker)

	rows := in.Tokens
	if len(rows) > 8 {
		rows = rows[:8]
	}
	for i, t := range rows {
		icon := "📊🎗"
		switch i {
		case 0:
			icon = "🥇📊"
		case 1:
			icon = "🥈📊"
		case 2:
			icon = "🥉📊"
		}
		fmt.Fprintf(&b, "%s <a href='%s'>$%s | %s</a> <b>+%.0f%%</b> (%s)\n",
			icon, t.Link(fallback), t.Symbol, t.Chain, t.Change, t.Window)
	}

	var handles []string
	banner := in.Tokens
	if len(banner) > 6 {
		banner = banner[:6]
	}
	for _, t := range banner {
		if t.Twitter == "" {
			continue
		}
		if h := TwitterHandle(t.Twitter); h != "" {
			handles = append(handles, h)
		}
	}
	if len(handles) > 0 {
		b.WriteString("\n" + strings.Join(handles, " | "))
	}

	b.WriteString("\n#Dexscreener #BullishMarketCap #Trend\n")
	if in.CommunityURL != "" || in.ApplyURL != "" {
		b.WriteString("\n👉 <b>")
		if in.CommunityURL != "" {
			fmt.Fprintf(&b, "<a href='%s'>Join Community</a>", in.CommunityURL)
		}
		if in.CommunityURL != "" && in.ApplyURL != "" {
			b.WriteString(" | ")
		}
		if in.ApplyURL != "" {
			fmt.Fprintf(&b, "<a href='%s'>Apply Trend Now</a>", in.ApplyURL)
		}
		b.WriteString("</b>")
	}
	return b.String()
}
