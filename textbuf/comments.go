package textbuf

import "bytes"

var (
	blockOpen  = []byte("/*")
	blockClose = []byte("*/")
)

// StripBlockComments erases every terminated /* ... */ comment from src,
// working in place, and returns the shortened slice.
//
// Comments do not nest and string literals are not recognised. An
// unterminated comment stops the pass: it and everything after it are left
// untouched.
func StripBlockComments(src []byte) []byte {
	pos := 0
	for {
		i := bytes.Index(src[pos:], blockOpen)
		if i < 0 {
			return src
		}
		start := pos + i
		j := bytes.Index(src[start+len(blockOpen):], blockClose)
		if j < 0 {
			return src
		}
		end := start + len(blockOpen) + j + len(blockClose)
		src = append(src[:start], src[end:]...)

		// the byte before the erased span may now pair with the one after it
		pos = max(start-1, 0)
	}
}
