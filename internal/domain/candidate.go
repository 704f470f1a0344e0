package domain

import (
	"strings"

	"github.com/mr-tron/base58"
)

// CandidateKind classifies the likely address family of a candidate.
type CandidateKind int

const (
	// KindUnknown means the identifier fits neither known family.
	KindUnknown CandidateKind = iota
	// KindEVM is a 0x-prefixed 40-hex-digit address.
	KindEVM
	// KindBase58 decodes as base58 and is plausibly a Solana mint.
	KindBase58
)

// String returns a short label for logging.
func (k CandidateKind) String() string {
	switch k {
	case KindEVM:
		return "evm"
	case KindBase58:
		return "base58"
	default:
		return "unknown"
	}
}

// Candidate is a string heuristically recognized as possibly denoting a token
// contract address. Candidates are ephemeral: produced by extraction, consumed
// by the market data client, never persisted.
type Candidate string

func (c Candidate) String() string { return string(c) }

// Kind reports the likely address family. The classification is informational
// (logging, display); it never filters a candidate out.
func (c Candidate) Kind() CandidateKind {
	s := string(c)
	if isHexAddress(s) {
		return KindEVM
	}
	if _, err := base58.Decode(s); err == nil {
		return KindBase58
	}
	return KindUnknown
}

func isHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
