package ui

import "github.com/javanhut/RavenCompanion/textwrap"

// DefaultPrompt asks the user for a question
const DefaultPrompt = "请输入你的问题"

// Layout positions the overlay elements for a window size
type Layout struct {
	PromptX      float32
	PromptBottom float32
	Input        Box
	Output       Box
}

// NewLayout anchors the prompt and input box to the bottom of the window and
// gives the output box everything above them.
func NewLayout(width, height int) Layout {
	w := float32(width)
	h := float32(height)
	return Layout{
		PromptX:      10,
		PromptBottom: h - 10,
		Input: Box{
			X:      10,
			Y:      h - 90,
			Width:  w - 20,
			Height: 40,
			Style:  InputStyle,
		},
		Output: Box{
			X:      10,
			Y:      10,
			Width:  w - 20,
			Height: h - 110,
			Style:  OutputStyle,
		},
	}
}

// Overlay draws the chat UI each frame
type Overlay struct {
	Layout Layout
	Prompt string
	// Busy is appended to the prompt while a reply is pending
	Busy string
	// Caret follows the typed text while input is accepted
	Caret string

	wrap textwrap.Cache
}

// NewOverlay creates an overlay for a window size
func NewOverlay(width, height int) *Overlay {
	return &Overlay{
		Layout: NewLayout(width, height),
		Prompt: DefaultPrompt,
		Busy:   " ...",
		Caret:  "_",
	}
}

// Resize recomputes the layout for a new window size
func (o *Overlay) Resize(width, height int) {
	o.Layout = NewLayout(width, height)
}

// Draw renders the prompt, input box and output box. It returns the number
// of output lines drawn.
func (o *Overlay) Draw(c Canvas, m Metrics, input, output string, busy bool) int {
	prompt := o.Prompt
	if busy {
		prompt += o.Busy
	}
	DrawLabel(c, m, o.Layout.PromptX, o.Layout.PromptBottom, prompt, LabelColor)

	shown := input
	if !busy {
		shown += o.Caret
	}
	DrawInput(c, m, o.Layout.Input, shown)

	out := o.Layout.Output
	DrawFrame(c, out)
	lines := o.wrap.Wrap(output, out.ContentWidth(), m.Advance)
	return DrawLines(c, m, out, lines)
}

// Invalidate forgets cached wrapping, e.g. after a font change
func (o *Overlay) Invalidate() {
	o.wrap.Reset()
}
