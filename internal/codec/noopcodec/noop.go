// Package noopcodec stores objects uncompressed.
package noopcodec

import (
	"io"

	"github.com/discochess/chessinsight/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec passes bytes through unchanged. Like the compressing codecs, closing
// its streams leaves the underlying reader or writer open.
type Codec struct{}

// New returns a pass-through codec.
func New() *Codec {
	return &Codec{}
}

// Reader returns r with a no-op Close.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w with a no-op Close.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return writeCloser{w}, nil
}

// Extension returns "", so uncompressed objects carry no suffix.
func (c *Codec) Extension() string {
	return ""
}

type writeCloser struct {
	io.Writer
}

func (writeCloser) Close() error { return nil }
