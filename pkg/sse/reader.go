package sse

import (
	"context"
	"io"
)

const readChunkSize = 4096

// ReadStream feeds r through a Decoder and calls fn for every frame in
// arrival order. fn returning false stops reading early. When the stream
// ends, a buffered unterminated frame is flushed and delivered too, so a
// terminal frame the server never followed with a blank line is not lost.
func ReadStream(ctx context.Context, r io.Reader, fn func(Frame) bool) error {
	var dec Decoder
	buf := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			for _, f := range dec.Feed(string(buf[:n])) {
				if !fn(f) {
					return nil
				}
			}
		}
		if err == io.EOF {
			if f, ok := dec.Flush(); ok {
				fn(f)
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}
