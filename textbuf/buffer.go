// Package textbuf loads source files into owned byte buffers and applies
// the textual (non-lexical) transforms that run before the directive engine.
package textbuf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

var (
	// ErrNotFound reports that a source file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrAccessDenied reports that a source file exists but cannot be read.
	ErrAccessDenied = errors.New("file access denied")
)

// Buffer owns the content of a file or of an intermediate transform.
//
// The backing array always carries one zero byte past the content, so the
// memory can be handed to code that scans for a terminator. The terminator
// is never part of Bytes; Len is the authoritative size.
type Buffer struct {
	data []byte
}

// NewBuffer copies content into a new terminated buffer.
func NewBuffer(content []byte) *Buffer {
	data := make([]byte, len(content)+1)
	copy(data, content)
	return &Buffer{data: data}
}

// Bytes returns the content without the terminator.
func (b *Buffer) Bytes() []byte {
	if b == nil || len(b.data) == 0 {
		return nil
	}
	return b.data[:len(b.data)-1]
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	if b == nil || len(b.data) == 0 {
		return 0
	}
	return len(b.data) - 1
}

// Replace makes content the buffer's new content. content may alias the
// current content, which is how in-place transforms hand their result back.
func (b *Buffer) Replace(content []byte) {
	b.data = append(content, 0)
}

// Release drops the buffer's memory. A released buffer is empty.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	b.data = nil
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	return b == nil || b.data == nil
}

// Load reads the whole file at path into a new Buffer.
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classify(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, classify(err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrAccessDenied, path)
	}

	size := info.Size()
	data := make([]byte, size+1)
	n, err := io.ReadFull(f, data[:size])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data = data[:n+1]
	data[n] = 0
	return &Buffer{data: data}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	default:
		return err
	}
}
