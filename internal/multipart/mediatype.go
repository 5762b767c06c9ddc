package multipart

import (
	"fmt"
	"mime"
	"strings"
)

// DefaultCharset is used to decode header parameter values when neither
// the Content-Type header nor the parser options name a charset.
const DefaultCharset = "utf-8"

// ParseContentType resolves the boundary token and charset from a
// Content-Type header value. The media type must be multipart/form-data
// and the boundary parameter must be present and non-empty; anything else
// fails with ErrInvalidContentType. Charset defaults to utf-8 when the
// header does not carry one.
func ParseContentType(contentType string) (boundary []byte, charset string, err error) {
	boundary, charset, _, err = resolveContentType(contentType)
	return boundary, charset, err
}

// resolveContentType additionally reports whether the charset was named
// explicitly, so ParseForm can apply the configured default policy only
// when the header is silent.
func resolveContentType(contentType string) (boundary []byte, charset string, explicit bool, err error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", ErrInvalidContentType, err)
	}

	if !strings.EqualFold(mediaType, "multipart/form-data") {
		return nil, "", false, fmt.Errorf("%w: media type %q is not multipart/form-data", ErrInvalidContentType, mediaType)
	}

	b, ok := params["boundary"]
	if !ok || b == "" {
		return nil, "", false, fmt.Errorf("%w: missing boundary parameter", ErrInvalidContentType)
	}

	if cs, ok := params["charset"]; ok && cs != "" {
		return []byte(b), cs, true, nil
	}
	return []byte(b), DefaultCharset, false, nil
}
