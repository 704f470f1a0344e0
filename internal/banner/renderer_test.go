package banner

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodedLogo(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	return img
}

func TestTokenBanner(t *testing.T) {
	r := New()
	out, err := r.Token(TokenInput{
		Name:     "Some Token",
		Symbol:   "STK",
		Chain:    "Ethereum",
		Contract: "0xabc",
		Website:  "https://stk.example",
		Logo:     encodedLogo(t, color.RGBA{R: 200, A: 255}),
		Change:   42,
		Window:   "h24",
	})
	if err != nil {
		t.Fatal(err)
	}

	img := decodePNG(t, out)
	b := img.Bounds()
	if b.Dx() != tokenWidth || b.Dy() != tokenHeight {
		t.Fatalf("unexpected dimensions %dx%d", b.Dx(), b.Dy())
	}
}

func TestTokenBannerRejectsBadLogo(t *testing.T) {
	r := New()
	_, err := r.Token(TokenInput{Symbol: "X", Logo: []byte("not an image")})
	if err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestLeaderboardBanner(t *testing.T) {
	r := New()
	slots := []Slot{
		{Symbol: "AAA", Change: 90, Logo: encodedLogo(t, color.RGBA{G: 200, A: 255})},
		{Symbol: "BBB", Change: 50}, // no logo: fallback tile
		{Symbol: "CCC", Change: 40, Logo: []byte("garbage")}, // undecodable: fallback tile
	}

	out, err := r.Leaderboard(LeaderboardInput{Slots: slots})
	if err != nil {
		t.Fatal(err)
	}

	img := decodePNG(t, out)
	b := img.Bounds()
	if b.Dx() != trendWidth || b.Dy() != trendHeight {
		t.Fatalf("unexpected dimensions %dx%d", b.Dx(), b.Dy())
	}
}

func TestLeaderboardTruncatesToSixSlots(t *testing.T) {
	r := New()
	slots := make([]Slot, 9)
	for i := range slots {
		slots[i] = Slot{Symbol: "T", Change: 10}
	}
	if _, err := r.Leaderboard(LeaderboardInput{Slots: slots}); err != nil {
		t.Fatal(err)
	}
}

func TestPlaceholder(t *testing.T) {
	r := New()
	out, err := r.Placeholder()
	if err != nil {
		t.Fatal(err)
	}
	decodePNG(t, out)
}

func TestWithBackgroundScalesToCanvas(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 10, 10))
	r := New(WithBackground(bg))

	out, err := r.Leaderboard(LeaderboardInput{Slots: []Slot{{Symbol: "T", Change: 10}}})
	if err != nil {
		t.Fatal(err)
	}
	img := decodePNG(t, out)
	if img.Bounds().Dx() != trendWidth {
		t.Fatalf("background must scale to the canvas, got width %d", img.Bounds().Dx())
	}
}

func TestLoadFacesMissingFileFallsBack(t *testing.T) {
	headline, body, small := LoadFaces("/nonexistent/font.ttf")
	if headline == nil || body == nil || small == nil {
		t.Fatal("fallback faces must never be nil")
	}
}
