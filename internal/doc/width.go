package doc

import "github.com/mattn/go-runewidth"

// Width returns the display width of s in terminal columns.
func Width(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return runewidth.StringWidth(s)
		}
	}
	return len(s)
}
