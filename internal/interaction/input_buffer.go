package interaction

import "unicode"

// InputBuffer is the line being composed, with a cursor counted in runes.
type InputBuffer struct {
	runes  []rune
	cursor int
}

// String returns the buffer contents.
func (b *InputBuffer) String() string {
	return string(b.runes)
}

// Cursor returns the cursor position in runes.
func (b *InputBuffer) Cursor() int {
	return b.cursor
}

// Len returns the number of runes in the buffer.
func (b *InputBuffer) Len() int {
	return len(b.runes)
}

// Insert puts r at the cursor and advances it.
func (b *InputBuffer) Insert(r rune) {
	b.runes = append(b.runes, 0)
	copy(b.runes[b.cursor+1:], b.runes[b.cursor:])
	b.runes[b.cursor] = r
	b.cursor++
}

// Backspace removes the rune before the cursor.
func (b *InputBuffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	b.runes = append(b.runes[:b.cursor-1], b.runes[b.cursor:]...)
	b.cursor--
}

// Delete removes the rune under the cursor.
func (b *InputBuffer) Delete() {
	if b.cursor >= len(b.runes) {
		return
	}
	b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
}

// DeleteWord removes the word before the cursor together with the spaces
// between it and the cursor.
func (b *InputBuffer) DeleteWord() {
	start := b.cursor
	for start > 0 && unicode.IsSpace(b.runes[start-1]) {
		start--
	}
	for start > 0 && !unicode.IsSpace(b.runes[start-1]) {
		start--
	}
	b.runes = append(b.runes[:start], b.runes[b.cursor:]...)
	b.cursor = start
}

// Left moves the cursor one rune left.
func (b *InputBuffer) Left() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// Right moves the cursor one rune right.
func (b *InputBuffer) Right() {
	if b.cursor < len(b.runes) {
		b.cursor++
	}
}

// Home moves the cursor to the start of the line.
func (b *InputBuffer) Home() {
	b.cursor = 0
}

// End moves the cursor past the last rune.
func (b *InputBuffer) End() {
	b.cursor = len(b.runes)
}

// Clear empties the buffer.
func (b *InputBuffer) Clear() {
	b.runes = b.runes[:0]
	b.cursor = 0
}
