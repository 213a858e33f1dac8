// Package ui draws the chat overlay: a prompt label, the input box and the
// output box with wrapped reply text.
package ui

// Color is RGBA in the 0..1 range
type Color [4]float32

// Canvas is the immediate-mode drawing surface the overlay needs.
// Coordinates have their origin at the top-left of the window.
type Canvas interface {
	FillRect(x, y, w, h float32, clr Color)
	DrawText(x, baseline float32, text string, clr Color)
}

// Metrics provides font measurements
type Metrics interface {
	Advance(r rune) float32
	Ascent() float32
	LineHeight() float32
}

// Style holds the colors and spacing of a box
type Style struct {
	Fill        Color
	Border      Color
	Text        Color
	BorderWidth float32
	Padding     float32
}

var (
	// InputStyle is the translucent grey of the input box
	InputStyle = Style{
		Fill:        Color{0.8, 0.8, 0.8, 0.5},
		Border:      Color{0.2, 0.2, 0.2, 1.0},
		Text:        Color{1.0, 0.0, 0.0, 1.0},
		BorderWidth: 2,
		Padding:     5,
	}
	// OutputStyle is slightly lighter than the input box
	OutputStyle = Style{
		Fill:        Color{0.9, 0.9, 0.9, 0.5},
		Border:      Color{0.3, 0.3, 0.3, 1.0},
		Text:        Color{1.0, 0.0, 0.0, 1.0},
		BorderWidth: 2,
		Padding:     5,
	}
	// LabelColor is used for the prompt above the input box
	LabelColor = Color{1.0, 0.0, 0.0, 1.0}
)

// Box is a fixed rectangle. Y is the top edge.
type Box struct {
	X, Y          float32
	Width, Height float32
	Style         Style
}

// Bottom returns the y of the bottom edge
func (b Box) Bottom() float32 {
	return b.Y + b.Height
}

// ContentWidth is the width available to text inside the padding
func (b Box) ContentWidth() float32 {
	return b.Width - 2*b.Style.Padding
}

// VisibleLines returns how many lines of the given height fit between the
// bottom padding and the top edge
func (b Box) VisibleLines(lineHeight float32) int {
	if lineHeight <= 0 {
		return 0
	}
	n := int((b.Height - b.Style.Padding) / lineHeight)
	if n < 0 {
		return 0
	}
	return n
}

// DrawFrame fills the box and draws its border
func DrawFrame(c Canvas, b Box) {
	bw := b.Style.BorderWidth
	c.FillRect(b.X, b.Y, b.Width, b.Height, b.Style.Fill)
	if bw <= 0 {
		return
	}
	c.FillRect(b.X, b.Y, b.Width, bw, b.Style.Border)
	c.FillRect(b.X, b.Bottom()-bw, b.Width, bw, b.Style.Border)
	c.FillRect(b.X, b.Y, bw, b.Height, b.Style.Border)
	c.FillRect(b.X+b.Width-bw, b.Y, bw, b.Height, b.Style.Border)
}

// DrawLines draws lines bottom-up: the first line sits just above the bottom
// edge and later lines stack upward. Drawing stops at the first line whose
// top would pass the box's top edge; nothing signals the cut. It returns the
// number of lines drawn.
func DrawLines(c Canvas, m Metrics, b Box, lines []string) int {
	lh := m.LineHeight()
	x := b.X + b.Style.Padding
	bottom := b.Bottom() - b.Style.Padding

	drawn := 0
	for i, line := range lines {
		top := bottom - float32(i+1)*lh
		if top < b.Y {
			break
		}
		c.DrawText(x, top+m.Ascent(), line, b.Style.Text)
		drawn++
	}
	return drawn
}

// DrawInput draws a single line vertically centred in the box. When the text
// is wider than the box only its tail is shown, so the caret stays visible.
func DrawInput(c Canvas, m Metrics, b Box, text string) {
	DrawFrame(c, b)
	if text == "" {
		return
	}
	visible := tailThatFits(text, b.ContentWidth(), m.Advance)
	top := b.Y + (b.Height-m.LineHeight())/2
	c.DrawText(b.X+b.Style.Padding, top+m.Ascent(), visible, b.Style.Text)
}

// DrawLabel draws text whose line box ends at bottom
func DrawLabel(c Canvas, m Metrics, x, bottom float32, text string, clr Color) {
	if text == "" {
		return
	}
	top := bottom - m.LineHeight()
	c.DrawText(x, top+m.Ascent(), text, clr)
}

func tailThatFits(text string, maxWidth float32, advance func(rune) float32) string {
	runes := []rune(text)
	width := float32(0)
	start := len(runes)
	for start > 0 {
		w := advance(runes[start-1])
		if width+w > maxWidth && start < len(runes) {
			break
		}
		width += w
		start--
	}
	return string(runes[start:])
}
