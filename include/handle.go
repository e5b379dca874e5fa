package include

import "github.com/LegacyCodeHQ/ppfront/textbuf"

// Handle is an open include. Its content stays valid until Close.
type Handle struct {
	resolver *Resolver
	path     string
	buf      *textbuf.Buffer
	closed   bool
}

// Path returns the resolved absolute path.
func (h *Handle) Path() string {
	return h.path
}

// Bytes returns the included content.
func (h *Handle) Bytes() []byte {
	return h.buf.Bytes()
}

// Len returns the content length in bytes.
func (h *Handle) Len() int {
	return h.buf.Len()
}

// Close returns the handle to its resolver.
func (h *Handle) Close() error {
	return h.resolver.Close(h)
}
