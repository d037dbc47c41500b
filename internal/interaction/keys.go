package interaction

// KeyType identifies a normalized key. Printable input uses KeyRune.
type KeyType int

const (
	KeyRune KeyType = iota
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyClearLine
	// KeyForceQuit quits from any mode.
	KeyForceQuit
)

// Key is a key event as delivered by the key input adapter.
type Key struct {
	Type KeyType
	Rune rune
	Alt  bool
}

// Rune returns the Key for a printable character.
func Rune(r rune) Key {
	return Key{Type: KeyRune, Rune: r}
}

// Special returns the Key for a non-printable key.
func Special(t KeyType) Key {
	return Key{Type: t}
}
