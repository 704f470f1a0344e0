package domain

import "testing"

func TestCandidateKind(t *testing.T) {
	cases := []struct {
		in   Candidate
		want CandidateKind
	}{
		{"0xabcdef0123456789abcdef0123456789abcdef01", KindEVM},
		{"0xABCDEF0123456789ABCDEF0123456789ABCDEF01", KindEVM},
		{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", KindBase58},
		{"0xzzzzzz0123456789abcdef0123456789abcdef01", KindUnknown}, // bad hex digits
		{"0xabc", KindUnknown},                                      // wrong length
		{"contains0OIl", KindUnknown},                               // base58 forbids 0, O, I, l
		{"", KindUnknown},
	}
	for _, tc := range cases {
		if got := tc.in.Kind(); got != tc.want {
			t.Errorf("Kind(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCandidateKindString(t *testing.T) {
	if KindEVM.String() != "evm" || KindBase58.String() != "base58" || KindUnknown.String() != "unknown" {
		t.Fatal("kind labels changed")
	}
}
