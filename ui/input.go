package ui

// InputBuffer holds what the user has typed since the last submission
type InputBuffer struct {
	runes []rune
}

// Append adds a typed rune
func (b *InputBuffer) Append(r rune) {
	b.runes = append(b.runes, r)
}

// AppendString adds every rune of s
func (b *InputBuffer) AppendString(s string) {
	b.runes = append(b.runes, []rune(s)...)
}

// Backspace removes the last rune, if any
func (b *InputBuffer) Backspace() {
	if len(b.runes) == 0 {
		return
	}
	b.runes = b.runes[:len(b.runes)-1]
}

// Len returns the number of runes typed
func (b *InputBuffer) Len() int {
	return len(b.runes)
}

// IsEmpty reports whether nothing has been typed
func (b *InputBuffer) IsEmpty() bool {
	return len(b.runes) == 0
}

func (b *InputBuffer) String() string {
	return string(b.runes)
}

// Take returns the buffered text and clears the buffer
func (b *InputBuffer) Take() string {
	s := string(b.runes)
	b.runes = b.runes[:0]
	return s
}

// Clear empties the buffer
func (b *InputBuffer) Clear() {
	b.runes = b.runes[:0]
}
