// Package multipart implements incremental decoding of multipart/form-data
// bodies into discrete named form items. It is the parsing core of the
// gateway: the transport layer feeds it the raw request body and receives
// back the ordered list of parts, each with its own headers and payload.
//
// # Architecture
//
// The package is organized into three components layered leaf-first:
//
// 1. ParseContentType: resolves the boundary token and charset from the
// Content-Type header.
// 2. Decoder: a byte-level state machine that consumes body chunks of any
// size and emits typed parse events.
// 3. Assembler: reduces the event stream into FormItem records.
//
// ParseForm ties the three together as a pull-driven loop over an
// io.Reader, which is what callers normally use:
//
//	items, err := multipart.ParseForm(ctx, contentType, r.Body, multipart.Options{})
//	if err != nil {
//	    // one of ErrInvalidContentType, ErrMalformedMultipart,
//	    // ErrIncompleteMultipart, ErrMissingFieldName, ErrBodyTooLarge
//	}
//
// # Data Flow
//
//	body stream → ParseContentType (once) → Decoder → events → Assembler → []FormItem
//
// # Chunking
//
// The decoder is chunk-size agnostic: feeding the same body one byte at a
// time, in 64KB reads, or as a single slice yields an identical FormItem
// sequence. Lookahead that is not yet terminated (a header line or
// boundary split across two chunks) is buffered internally and never
// surfaces as a partial event.
//
// # Error Handling
//
// All failures are fatal to the whole decode; the package never returns a
// subset of parts alongside an error. Sentinel errors are matched with
// errors.Is.
package multipart
