// Package textwrap splits text into lines that fit a pixel width.
package textwrap

import "strings"

// MeasureFunc returns the rendered pixel width of a single rune
type MeasureFunc func(r rune) float32

// Wrap greedily fills lines rune by rune. A rune is added to the current line
// while it fits; once it does not, the line is flushed and the rune starts the
// next one. Breaks fall on any rune boundary, including mid-word.
//
// Joining the result reproduces text exactly. A rune wider than maxWidth ends
// up alone on its own line.
func Wrap(text string, maxWidth float32, measure MeasureFunc) []string {
	if text == "" {
		return nil
	}

	var (
		lines []string
		line  strings.Builder
		width float32
	)
	for _, r := range text {
		w := measure(r)
		if line.Len() > 0 && width+w > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}
		line.WriteRune(r)
		width += w
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Cache remembers the last wrap so an unchanged box is not re-measured every
// frame. The zero value is ready to use.
type Cache struct {
	text  string
	width float32
	lines []string
	valid bool
}

// Wrap returns the cached lines when text and width match the previous call
func (c *Cache) Wrap(text string, maxWidth float32, measure MeasureFunc) []string {
	if c.valid && c.text == text && c.width == maxWidth {
		return c.lines
	}
	c.text = text
	c.width = maxWidth
	c.lines = Wrap(text, maxWidth, measure)
	c.valid = true
	return c.lines
}

// Reset drops the cached result, e.g. after the font changes
func (c *Cache) Reset() {
	*c = Cache{}
}
