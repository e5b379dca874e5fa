// Package mask hides selected preprocessor directives from a directive
// engine and restores them afterwards.
//
// A directive is hidden by inserting Sentinel directly before its keyword.
// The keyword is then no longer the first thing on its line, so the engine
// does not treat it as a directive and passes the line through. Unmask
// removes every Sentinel from the engine output, leaving the directive text
// exactly as it was written.
//
// Both passes are textual: keywords are matched literally, so "#if" also
// matches the start of "#ifdef", and occurrences inside strings or comments
// are masked whenever they start a line.
package mask

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel is inserted before masked keywords. It starts with a line
// comment marker so C-family engines that keep comments copy the rest of
// the line verbatim.
const Sentinel = "//##c!m!t##"

// DirectiveMarker prefixes every directive keyword.
const DirectiveMarker = "#"

// ErrEmptyKeyword reports an ignore keyword with no name after the marker.
var ErrEmptyKeyword = errors.New("empty ignore keyword")

var sentinel = []byte(Sentinel)

// Keywords turns caller-supplied directive names ("pragma", "error") into
// the keyword set used by Mask ("#pragma", "#error"). Names that already
// carry the marker are kept as they are. Duplicates are dropped.
func Keywords(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	keywords := make([]string, 0, len(names))
	for _, name := range names {
		bare := strings.TrimPrefix(strings.TrimSpace(name), DirectiveMarker)
		if strings.TrimSpace(bare) == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptyKeyword, name)
		}
		keyword := DirectiveMarker + bare
		if seen[keyword] {
			continue
		}
		seen[keyword] = true
		keywords = append(keywords, keyword)
	}
	return keywords, nil
}

// Mask inserts Sentinel before every line-initial occurrence of each
// keyword. src may be modified in place; use the returned slice.
func Mask(src []byte, keywords []string) []byte {
	out, _ := MaskCount(src, keywords)
	return out
}

// MaskCount is Mask that also reports how many sentinels were inserted.
func MaskCount(src []byte, keywords []string) ([]byte, int) {
	inserted := 0
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		key := []byte(keyword)
		pos := 0
		for {
			i := bytes.Index(src[pos:], key)
			if i < 0 {
				break
			}
			at := pos + i
			if !lineInitial(src, at) {
				pos = at + len(key)
				continue
			}
			src = slices.Insert(src, at, sentinel...)
			pos = at + len(sentinel) + len(key)
			inserted++
		}
	}
	return src, inserted
}

// lineInitial reports whether only spaces and tabs precede src[at] on its line.
func lineInitial(src []byte, at int) bool {
	start := bytes.LastIndexByte(src[:at], '\n') + 1
	for _, c := range src[start:at] {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

// Unmask erases every Sentinel from text, including ones that only appear
// once an inner occurrence has been erased. text is modified in place.
func Unmask(text []byte) []byte {
	pos := 0
	for {
		i := bytes.Index(text[pos:], sentinel)
		if i < 0 {
			return text
		}
		at := pos + i
		text = append(text[:at], text[at+len(sentinel):]...)
		pos = max(at-len(sentinel)+1, 0)
	}
}
