// Package extract pulls candidate token identifiers out of raw chat messages.
// Extraction is heuristic: it yields regex-shaped plausible identifiers, never
// validated on-chain addresses. It also never fails: malformed or empty input
// produces an empty set.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"trendcast/internal/domain"
)

// Strategy selects how candidates are pulled out of a message. The set is
// closed; channel configuration resolves to one of these at load time.
type Strategy int

const (
	// StrategyAnchoredLine scans lines for a trigger keyword ("CA",
	// "Contract") and collects candidates from that line and the next three.
	StrategyAnchoredLine Strategy = iota
	// StrategyURLAnchored collects URLs from entities and text and extracts
	// one identifier from the first URL on the domain allow-list.
	StrategyURLAnchored
	// StrategyCombined is the union of the two.
	StrategyCombined
)

// ParseStrategy resolves a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "anchored", "anchored-line", "line":
		return StrategyAnchoredLine, nil
	case "url", "url-anchored":
		return StrategyURLAnchored, nil
	case "combined", "combo":
		return StrategyCombined, nil
	default:
		return 0, fmt.Errorf("unknown extraction strategy %q", name)
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyAnchoredLine:
		return "anchored-line"
	case StrategyURLAnchored:
		return "url-anchored"
	case StrategyCombined:
		return "combined"
	default:
		return "invalid"
	}
}

// Entity is the slice of a structured message entity that extraction needs.
type Entity struct {
	URL string
}

var (
	hexPattern     = regexp.MustCompile(`0[xX][0-9a-fA-F]{40}`)
	genericPattern = regexp.MustCompile(`\b[a-zA-Z0-9]{32,}\b`)
	urlPattern     = regexp.MustCompile(`https?://[^\s]+`)
	// In-URL identifier: hex form, or a 32-45 alphanumeric path segment.
	urlTokenPattern = regexp.MustCompile(`(0[xX][0-9a-fA-F]{40})|([A-Za-z0-9]{32,45})`)
)

// anchorDomains is the allow-list for URL-anchored extraction: known
// block-explorer, swap-chart and social hosts.
var anchorDomains = []string{
	"solscan.io",
	"etherscan.io",
	"dexscreener.com",
	"dexview.com",
	"x.com",
	"twitter.com",
}

// triggerWords anchor line-based extraction.
var triggerWords = []string{"CA", "Contract"}

// Extract returns the set of candidate identifiers found in a message under
// the given strategy. Duplicates collapse; order of the result carries no
// meaning. Absent text and entities yield an empty set, never an error.
func Extract(strategy Strategy, text string, entities []Entity) []domain.Candidate {
	switch strategy {
	case StrategyAnchoredLine:
		return dedup(anchoredLine(text))
	case StrategyURLAnchored:
		return dedup(urlAnchored(text, entities))
	case StrategyCombined:
		return dedup(append(anchoredLine(text), urlAnchored(text, entities)...))
	default:
		return nil
	}
}

// Candidates applies both matchers to free text: the hex matcher anywhere,
// then the generic matcher for runs not starting with 0x so a hex address is
// never double-counted.
func Candidates(text string) []domain.Candidate {
	var out []domain.Candidate
	for _, m := range hexPattern.FindAllString(text, -1) {
		out = append(out, normalizeHex(m))
	}
	for _, m := range genericPattern.FindAllString(text, -1) {
		if strings.HasPrefix(strings.ToLower(m), "0x") {
			continue
		}
		out = append(out, domain.Candidate(m))
	}
	return out
}

// HexCandidates returns only hex-form identifiers, used when harvesting
// channel history for the trending pass.
func HexCandidates(text string) []domain.Candidate {
	var out []domain.Candidate
	for _, m := range hexPattern.FindAllString(text, -1) {
		out = append(out, normalizeHex(m))
	}
	return out
}

// Hex addresses are case-insensitive upstream; fold them so dedup works.
func normalizeHex(s string) domain.Candidate {
	return domain.Candidate(strings.ToLower(s))
}

// anchoredLine scans lines in order. The first line containing a trigger
// keyword contributes candidates from itself and the next three lines, then
// scanning stops: later triggers in the same message are ignored.
func anchoredLine(text string) []domain.Candidate {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var out []domain.Candidate
	for i, line := range lines {
		if !containsTrigger(line) {
			continue
		}
		out = append(out, Candidates(line)...)
		for j := 1; j <= 3 && i+j < len(lines); j++ {
			out = append(out, Candidates(lines[i+j])...)
		}
		break
	}
	return out
}

func containsTrigger(line string) bool {
	for _, w := range triggerWords {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

// urlAnchored collects URLs from structured entities first, then from the
// plain text. The first URL matching the allow-list yields at most one
// identifier and wins; remaining URLs are ignored.
func urlAnchored(text string, entities []Entity) []domain.Candidate {
	var urls []string
	for _, e := range entities {
		if e.URL != "" {
			urls = append(urls, e.URL)
		}
	}
	urls = append(urls, urlPattern.FindAllString(text, -1)...)

	for _, u := range urls {
		if !allowListed(u) {
			continue
		}
		if tok := urlTokenPattern.FindString(u); tok != "" {
			if strings.HasPrefix(strings.ToLower(tok), "0x") {
				return []domain.Candidate{normalizeHex(tok)}
			}
			return []domain.Candidate{domain.Candidate(tok)}
		}
		break
	}
	return nil
}

func allowListed(url string) bool {
	for _, d := range anchorDomains {
		if strings.Contains(url, d) {
			return true
		}
	}
	return false
}

func dedup(in []domain.Candidate) []domain.Candidate {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[domain.Candidate]struct{}, len(in))
	out := make([]domain.Candidate, 0, len(in))
	for _, c := range in {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
