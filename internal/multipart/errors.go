package multipart

import "errors"

// Sentinel errors for the four fatal decode conditions plus the configured
// body-size cap. Callers match them with errors.Is; the transport layer
// collapses all of them into a single invalid-request failure.
var (
	// ErrInvalidContentType reports a Content-Type header that is not
	// multipart/form-data or carries no boundary parameter.
	ErrInvalidContentType = errors.New("invalid multipart content type")

	// ErrMalformedMultipart reports structurally invalid header or part
	// framing found mid-stream.
	ErrMalformedMultipart = errors.New("malformed multipart stream")

	// ErrIncompleteMultipart reports a stream that ended before the final
	// boundary was seen.
	ErrIncompleteMultipart = errors.New("incomplete multipart stream")

	// ErrMissingFieldName reports a part whose Content-Disposition header
	// has no name parameter.
	ErrMissingFieldName = errors.New("part is missing a field name")

	// ErrBodyTooLarge reports a body exceeding the configured maximum size.
	ErrBodyTooLarge = errors.New("multipart body too large")
)
