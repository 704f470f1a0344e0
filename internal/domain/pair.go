package domain

import "strings"

// Pair is one trading-pair snapshot from the market data source. Only the
// fields the pipeline consumes are declared; the upstream schema is the
// source of truth for everything else. A Pair is immutable once fetched and
// lives for a single pipeline pass.
type Pair struct {
	ChainID     string      `json:"chainId"`
	DexID       string      `json:"dexId"`
	URL         string      `json:"url"`
	PairAddress string      `json:"pairAddress"`
	BaseToken   Token       `json:"baseToken"`
	PriceUsd    string      `json:"priceUsd"`
	PriceChange PriceChange `json:"priceChange"`
	Liquidity   *Liquidity  `json:"liquidity"`
	FDV         float64     `json:"fdv"`
	Info        *PairInfo   `json:"info"`
}

// Token identifies one side of a trading pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	LogoURL string `json:"logoUrl"`
}

// Liquidity holds pool liquidity figures.
type Liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// PriceChange holds percent price change per time window.
// Absent windows stay nil.
type PriceChange struct {
	H1  *float64 `json:"h1"`
	H6  *float64 `json:"h6"`
	H24 *float64 `json:"h24"`
}

// Windows is the fixed priority order for best-change selection.
var Windows = []string{"h1", "h6", "h24"}

// Get returns the change for a window name, or nil when absent.
func (pc PriceChange) Get(window string) *float64 {
	switch window {
	case "h1":
		return pc.H1
	case "h6":
		return pc.H6
	case "h24":
		return pc.H24
	default:
		return nil
	}
}

// PairInfo carries presentation metadata attached to a pair.
type PairInfo struct {
	ImageURL  string    `json:"imageUrl"`
	HeaderURL string    `json:"headerUrl"`
	Websites  []Website `json:"websites"`
	Socials   []Social  `json:"socials"`
}

// Website is a project website entry.
type Website struct {
	URL string `json:"url"`
}

// Social is a social link with a type tag (twitter/telegram/...).
type Social struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// LiquidityUSD returns pool liquidity in USD, zero when absent.
func (p *Pair) LiquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.USD
}

// Chain returns the chain identifier with the first letter capitalized,
// defaulting to "EVM" when the upstream omits it.
func (p *Pair) Chain() string {
	id := p.ChainID
	if id == "" {
		return "EVM"
	}
	return strings.ToUpper(id[:1]) + strings.ToLower(id[1:])
}

// LogoURL prefers the base token logo, falling back to the pair image.
func (p *Pair) LogoURL() string {
	if p.BaseToken.LogoURL != "" {
		return p.BaseToken.LogoURL
	}
	if p.Info != nil {
		return p.Info.ImageURL
	}
	return ""
}

// HeaderURL returns the pair header image URL when present.
func (p *Pair) HeaderURL() string {
	if p.Info == nil {
		return ""
	}
	return p.Info.HeaderURL
}

// Social returns the first social link of the given type (lowercase tag),
// or the empty string.
func (p *Pair) Social(kind string) string {
	if p.Info == nil {
		return ""
	}
	for _, s := range p.Info.Socials {
		if strings.ToLower(s.Type) == kind && s.URL != "" {
			return s.URL
		}
	}
	return ""
}

// Twitter returns the twitter-type social link, if any.
func (p *Pair) Twitter() string { return p.Social("twitter") }

// Telegram returns the telegram-type social link, if any.
func (p *Pair) Telegram() string { return p.Social("telegram") }

// Website returns the first project website, if any.
func (p *Pair) Website() string {
	if p.Info == nil {
		return ""
	}
	for _, w := range p.Info.Websites {
		if w.URL != "" {
			return w.URL
		}
	}
	return ""
}
