// Package banner renders announcement images. The renderer is a pure
// function from inputs to PNG bytes; all network fetching (logos, header
// images) happens in the caller.
package banner

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	xdraw "golang.org/x/image/draw"
)

// Canvas dimensions.
const (
	tokenWidth  = 1000
	tokenHeight = 1000
	trendWidth  = 1000
	trendHeight = 950
)

var (
	backdrop = color.RGBA{R: 20, G: 20, B: 30, A: 255}
	white    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	grey     = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	yellow   = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	gold     = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	green    = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	tile     = color.RGBA{R: 80, G: 80, B: 100, A: 255}
)

// Renderer composes banners over an optional background image. The zero
// option set renders on a flat dark backdrop with the built-in font face, so
// a Renderer always works; missing assets only degrade the look.
type Renderer struct {
	background image.Image
	headline   font.Face
	body       font.Face
	small      font.Face
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBackground sets the backdrop image.
func WithBackground(img image.Image) Option {
	return func(r *Renderer) { r.background = img }
}

// WithFaces overrides the font faces (headline, body, small).
func WithFaces(headline, body, small font.Face) Option {
	return func(r *Renderer) {
		r.headline, r.body, r.small = headline, body, small
	}
}

// New creates a Renderer. Without options it uses the built-in face and a
// flat backdrop.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		headline: basicfont.Face7x13,
		body:     basicfont.Face7x13,
		small:    basicfont.Face7x13,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadBackground reads a backdrop image from disk.
func LoadBackground(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	return img, nil
}

// LoadFaces parses a TTF/OTF file into the three face sizes. On any failure
// it returns the built-in face three times: font trouble degrades the look,
// it never blocks an announcement.
func LoadFaces(path string) (headline, body, small font.Face) {
	fallback := basicfont.Face7x13
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback, fallback, fallback
	}
	ft, err := opentype.Parse(data)
	if err != nil {
		return fallback, fallback, fallback
	}
	mk := func(size float64) font.Face {
		face, err := opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return fallback
		}
		return face
	}
	return mk(52), mk(38), mk(24)
}

// TokenInput is everything the single-token banner needs.
type TokenInput struct {
	Name     string
	Symbol   string
	Chain    string
	Contract string
	Website  string
	Logo     []byte // encoded logo image; required
	Change   float64
	Window   string
}

// Token renders the per-mention announcement banner.
func (r *Renderer) Token(in TokenInput) ([]byte, error) {
	logo, _, err := image.Decode(bytes.NewReader(in.Logo))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}

	canvas := r.canvas(tokenWidth, tokenHeight)

	headline := fmt.Sprintf("$%s #Trending Now Worldwide", strings.ToUpper(in.Symbol))
	drawCentered(canvas, r.headline, headline, tokenWidth/2, 90, white)

	const logoSize = 300
	logoY := 220
	pasteCircle(canvas, logo, tokenWidth/2, logoY+logoSize/2, logoSize, gold)

	if in.Change > 0 && in.Window != "" {
		drawCentered(canvas, r.body, fmt.Sprintf("%.0f%% Increased", in.Change), tokenWidth/2, logoY-40, white)
	}

	name := in.Name
	if name == "" {
		name = "Unknown"
	}
	tokenLine := fmt.Sprintf("%s (%s)", name, strings.ToUpper(in.Symbol))
	drawCentered(canvas, r.body, tokenLine, tokenWidth/2, logoY+logoSize+60, white)
	drawCentered(canvas, r.small, strings.ToUpper(in.Chain), tokenWidth/2, logoY+logoSize+110, white)
	drawCentered(canvas, r.small, in.Contract, tokenWidth/2, logoY+logoSize+150, white)
	if in.Website != "" {
		drawCentered(canvas, r.small, in.Website, tokenWidth/2, tokenHeight-80, white)
	}

	return encode(canvas)
}

// Slot is one leaderboard banner position.
type Slot struct {
	Symbol string
	Change float64
	Logo   []byte // encoded logo image; nil renders a fallback tile
}

// LeaderboardInput is everything the six-slot trending banner needs.
type LeaderboardInput struct {
	Title string
	Slots []Slot
}

// Leaderboard renders the trending banner: the top slot larger with a gold
// ring, five smaller slots below, each with rank, symbol and change.
func (r *Renderer) Leaderboard(in LeaderboardInput) ([]byte, error) {
	canvas := r.canvas(trendWidth, trendHeight)

	title := in.Title
	if title == "" {
		title = "Worldwide Top Trends"
	}
	drawCentered(canvas, r.headline, title, trendWidth/2, 70, white)

	const (
		sizeBig   = 132
		sizeSmall = 108
		gapRow2   = 420
		gapRow3   = 380
	)
	cx := trendWidth / 2
	centers := []image.Point{
		{X: cx, Y: 230},
		{X: cx - gapRow2/2, Y: 400},
		{X: cx + gapRow2/2, Y: 400},
		{X: cx - gapRow3, Y: 640},
		{X: cx, Y: 640},
		{X: cx + gapRow3, Y: 640},
	}

	slots := in.Slots
	if len(slots) > len(centers) {
		slots = slots[:len(centers)]
	}

	for i, slot := range slots {
		size := sizeSmall
		ring := white
		if i == 0 {
			size = sizeBig
			ring = gold
		}

		logo := decodeOrTile(slot.Logo, size)
		c := centers[i]
		pasteCircle(canvas, logo, c.X, c.Y, size, ring)

		drawCentered(canvas, r.small, fmt.Sprintf("#%d", i+1), c.X, c.Y-size/2-14, yellow)
		drawCentered(canvas, r.body, "$"+slot.Symbol, c.X, c.Y+size/2+30, white)
		drawCentered(canvas, r.body, fmt.Sprintf("+%.0f%%", slot.Change), c.X, c.Y+size/2+66, green)
	}

	return encode(canvas)
}

// Placeholder renders the "collecting data" banner used before the first
// leaderboard exists.
func (r *Renderer) Placeholder() ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, trendWidth, 340))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: backdrop}, image.Point{}, draw.Src)
	drawCentered(canvas, r.headline, "Worldwide Top Trends", trendWidth/2, 110, white)
	drawCentered(canvas, r.small, "Collecting data from channel...", trendWidth/2, 180, grey)
	return encode(canvas)
}

func (r *Renderer) canvas(w, h int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	if r.background != nil {
		xdraw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), r.background, r.background.Bounds(), draw.Src, nil)
	} else {
		draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: backdrop}, image.Point{}, draw.Src)
	}
	return canvas
}

func decodeOrTile(data []byte, size int) image.Image {
	if len(data) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return img
		}
	}
	fallback := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(fallback, fallback.Bounds(), &image.Uniform{C: tile}, image.Point{}, draw.Src)
	return fallback
}

// pasteCircle scales img to size, clips it to a circle centered at (cx, cy)
// and draws a ring around it.
func pasteCircle(dst *image.RGBA, img image.Image, cx, cy, size int, ring color.RGBA) {
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	radius := float64(size) / 2
	x0, y0 := cx-size/2, cy-size/2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - radius + 0.5
			dy := float64(y) - radius + 0.5
			if dx*dx+dy*dy <= radius*radius {
				dst.Set(x0+x, y0+y, scaled.At(x, y))
			}
		}
	}
	drawRing(dst, cx, cy, radius, 4, ring)
	if ring == gold {
		drawRing(dst, cx, cy, radius-5, 2, color.RGBA{R: 255, G: 235, B: 120, A: 255})
	}
}

func drawRing(dst *image.RGBA, cx, cy int, radius float64, width float64, c color.RGBA) {
	outer := radius * radius
	inner := (radius - width) * (radius - width)
	span := int(radius) + 1
	for y := -span; y <= span; y++ {
		for x := -span; x <= span; x++ {
			d := float64(x*x + y*y)
			if d <= outer && d >= inner {
				dst.Set(cx+x, cy+y, c)
			}
		}
	}
}

func drawCentered(dst *image.RGBA, face font.Face, text string, cx, y int, c color.RGBA) {
	width := font.MeasureString(face, text).Round()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(cx-width/2, y),
	}
	d.DrawString(text)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
