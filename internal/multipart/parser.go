package multipart

import (
	"context"
	"fmt"
	"io"
)

// defaultChunkSize is the read buffer size for ParseForm. The decoder is
// chunk-size agnostic, so this only tunes syscall frequency.
const defaultChunkSize = 32 * 1024

// Options carries the two configuration values the parsing core is
// allowed to see: the default charset policy and the body size cap.
type Options struct {
	// DefaultCharset overrides the utf-8 fallback applied when the
	// Content-Type header names no charset. Empty means utf-8.
	DefaultCharset string

	// MaxBodyBytes rejects bodies larger than this with ErrBodyTooLarge.
	// Zero means no limit.
	MaxBodyBytes int64

	// ChunkSize is the read buffer size. Zero means 32KB.
	ChunkSize int
}

// ParseForm decodes a complete multipart/form-data body into its ordered
// parts. It pulls the body strictly in arrival order: all events produced
// by one read are assembled before the next read is issued. Context
// cancellation and read failures surface as ErrIncompleteMultipart, and
// every error is all-or-nothing: no items are returned alongside one.
func ParseForm(ctx context.Context, contentType string, body io.Reader, opts Options) ([]FormItem, error) {
	boundary, charset, explicit, err := resolveContentType(contentType)
	if err != nil {
		return nil, err
	}
	if !explicit && opts.DefaultCharset != "" {
		charset = opts.DefaultCharset
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	dec := NewDecoder(boundary)
	asm := NewAssembler(charset)
	buf := make([]byte, chunkSize)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIncompleteMultipart, err)
		}

		n, rerr := body.Read(buf)
		if n > 0 {
			total += int64(n)
			if opts.MaxBodyBytes > 0 && total > opts.MaxBodyBytes {
				return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrBodyTooLarge, opts.MaxBodyBytes)
			}
			events, err := dec.Write(buf[:n])
			if err != nil {
				return nil, err
			}
			if err := asm.Feed(events); err != nil {
				return nil, err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("%w: reading body: %v", ErrIncompleteMultipart, rerr)
		}
	}

	if err := dec.Close(); err != nil {
		return nil, err
	}
	return asm.Items(), nil
}
