package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rectCall struct {
	x, y, w, h float32
	clr        Color
}

type textCall struct {
	x, baseline float32
	text        string
}

type recordingCanvas struct {
	rects []rectCall
	texts []textCall
}

func (c *recordingCanvas) FillRect(x, y, w, h float32, clr Color) {
	c.rects = append(c.rects, rectCall{x, y, w, h, clr})
}

func (c *recordingCanvas) DrawText(x, baseline float32, text string, _ Color) {
	c.texts = append(c.texts, textCall{x, baseline, text})
}

type monoMetrics struct {
	advance, ascent, lineHeight float32
}

func (m monoMetrics) Advance(rune) float32 { return m.advance }
func (m monoMetrics) Ascent() float32      { return m.ascent }
func (m monoMetrics) LineHeight() float32  { return m.lineHeight }

var metrics = monoMetrics{advance: 10, ascent: 16, lineHeight: 20}

func lines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strings.Repeat(string(rune('a'+i%26)), 3)
	}
	return out
}

func TestVisibleLines(t *testing.T) {
	box := Box{X: 10, Y: 10, Width: 200, Height: 100, Style: OutputStyle}

	assert.Equal(t, 4, box.VisibleLines(20))
	assert.Equal(t, 95, box.VisibleLines(1))
	assert.Equal(t, 0, box.VisibleLines(0))
	assert.Equal(t, 0, box.VisibleLines(200))
}

func TestDrawLinesClipsAtTopEdge(t *testing.T) {
	box := Box{X: 10, Y: 10, Width: 200, Height: 100, Style: OutputStyle}
	visible := box.VisibleLines(metrics.LineHeight())

	for _, n := range []int{0, 1, 3, 4, 5, 50} {
		c := &recordingCanvas{}
		drawn := DrawLines(c, metrics, box, lines(n))

		want := n
		if want > visible {
			want = visible
		}
		assert.Equal(t, want, drawn, "lines=%d", n)
		assert.Len(t, c.texts, want, "lines=%d", n)
		assert.Empty(t, c.rects)
	}
}

func TestDrawLinesStacksBottomUp(t *testing.T) {
	box := Box{X: 10, Y: 10, Width: 200, Height: 100, Style: OutputStyle}
	c := &recordingCanvas{}

	DrawLines(c, metrics, box, []string{"first", "second", "third"})

	require.Len(t, c.texts, 3)
	assert.Equal(t, "first", c.texts[0].text)
	// bottom edge 110, padding 5, line height 20, ascent 16
	assert.Equal(t, float32(101), c.texts[0].baseline)
	assert.Equal(t, float32(81), c.texts[1].baseline)
	assert.Equal(t, float32(61), c.texts[2].baseline)
	for _, call := range c.texts {
		assert.Equal(t, float32(15), call.x)
		assert.GreaterOrEqual(t, call.baseline-metrics.Ascent(), box.Y)
	}
}

func TestDrawFrame(t *testing.T) {
	box := Box{X: 0, Y: 0, Width: 100, Height: 50, Style: InputStyle}
	c := &recordingCanvas{}

	DrawFrame(c, box)

	require.Len(t, c.rects, 5)
	assert.Equal(t, InputStyle.Fill, c.rects[0].clr)
	for _, border := range c.rects[1:] {
		assert.Equal(t, InputStyle.Border, border.clr)
	}

	noBorder := box
	noBorder.Style.BorderWidth = 0
	c = &recordingCanvas{}
	DrawFrame(c, noBorder)
	assert.Len(t, c.rects, 1)
}

func TestDrawInputShowsTail(t *testing.T) {
	box := Box{X: 0, Y: 0, Width: 60, Height: 40, Style: InputStyle}
	c := &recordingCanvas{}

	DrawInput(c, metrics, box, "abcdefghij")

	require.Len(t, c.texts, 1)
	assert.Equal(t, "fghij", c.texts[0].text)
	// centred: (40 - 20) / 2 + ascent
	assert.Equal(t, float32(26), c.texts[0].baseline)
}

func TestDrawInputEmpty(t *testing.T) {
	box := Box{X: 0, Y: 0, Width: 60, Height: 40, Style: InputStyle}
	c := &recordingCanvas{}

	DrawInput(c, metrics, box, "")

	assert.Empty(t, c.texts)
	assert.Len(t, c.rects, 5)
}

func TestTailThatFitsKeepsOversizeRune(t *testing.T) {
	got := tailThatFits("ab", 5, func(rune) float32 { return 10 })
	assert.Equal(t, "b", got)
}

func TestNewLayout(t *testing.T) {
	l := NewLayout(800, 600)

	assert.Equal(t, Box{X: 10, Y: 510, Width: 780, Height: 40, Style: InputStyle}, l.Input)
	assert.Equal(t, Box{X: 10, Y: 10, Width: 780, Height: 490, Style: OutputStyle}, l.Output)
	assert.Equal(t, float32(590), l.PromptBottom)
	assert.Less(t, l.Output.Bottom(), l.Input.Y)
	assert.Less(t, l.Input.Bottom(), l.PromptBottom)
}

func TestOverlayDraw(t *testing.T) {
	o := NewOverlay(800, 600)
	c := &recordingCanvas{}

	// 77 runes per line at 10px inside 770px of content width
	output := strings.Repeat("x", 77*30)
	drawn := o.Draw(c, metrics, "hello", output, false)

	visible := o.Layout.Output.VisibleLines(metrics.LineHeight())
	assert.Equal(t, 24, visible)
	assert.Equal(t, visible, drawn)
	require.Len(t, c.texts, 2+visible)
	assert.Equal(t, DefaultPrompt, c.texts[0].text)
	assert.Equal(t, "hello_", c.texts[1].text)
	assert.Equal(t, strings.Repeat("x", 77), c.texts[2].text)
}

func TestOverlayDrawBusy(t *testing.T) {
	o := NewOverlay(800, 600)
	c := &recordingCanvas{}

	drawn := o.Draw(c, metrics, "", "", true)

	assert.Zero(t, drawn)
	require.Len(t, c.texts, 1)
	assert.Equal(t, DefaultPrompt+" ...", c.texts[0].text)
}

func TestInputBuffer(t *testing.T) {
	var b InputBuffer
	assert.True(t, b.IsEmpty())

	b.Backspace()
	assert.True(t, b.IsEmpty())

	b.AppendString("你好")
	b.Append('!')
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, "你好!", b.String())

	b.Backspace()
	assert.Equal(t, "你好", b.String())

	assert.Equal(t, "你好", b.Take())
	assert.True(t, b.IsEmpty())
	assert.Equal(t, "", b.String())

	b.Append('x')
	b.Clear()
	assert.Zero(t, b.Len())
}
