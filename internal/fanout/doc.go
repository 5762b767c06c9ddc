// Package fanout projects a parsed multipart request into independent
// sub-requests and folds multiple sub-responses back into one outbound
// multipart response.
//
// Split consumes the parent request body through internal/multipart and
// yields one synthetic *http.Request per field name, carrying the parent's
// connection-level headers with the part's own headers layered on top.
// Every decode failure is collapsed into ErrInvalidMultipartRequest and no
// partial result is ever returned.
//
// Merge goes the other way: it concatenates sub-response bodies into a
// single streaming body under a freshly generated boundary. Note the
// deliberate asymmetry with the parse path: Merge writes no per-part
// boundary markers or headers around the concatenated bytes, so its output
// is not decodable by Split. This mirrors the behavior of the system this
// gateway replaces and is kept until the downstream consumers are
// confirmed to want true multipart framing.
package fanout
