package fanout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	stdmultipart "mime/multipart"
	"net/http"
	"net/url"

	"formgate/internal/multipart"
)

// ErrInvalidMultipartRequest is the single error the parse path surfaces.
// The underlying cause (invalid content type, malformed framing, truncated
// stream, missing field name, oversized body) is wrapped and available via
// errors.Is for logging, but callers branch only on this sentinel.
var ErrInvalidMultipartRequest = errors.New("invalid multipart request")

// SplitOptions carries the configuration the parse path needs.
type SplitOptions struct {
	DefaultCharset string
	MaxBodyBytes   int64
	ReadChunkBytes int
}

// Split decodes the parent request's multipart body and returns one
// synthetic sub-request per field name, plus the field names in part
// order. Each sub-request is an independent clone of the parent: its
// headers are the parent's headers with the part's own headers overriding
// same-named entries, and its body is exactly the part's payload. No
// mutable state is shared with the parent after return.
//
// If two parts share a field name the later part wins; the name keeps its
// first position in the returned order. This matches the documented
// behavior of the decode mapping and is relied on by callers.
//
// As a side effect the parent's Form, PostForm and MultipartForm caches
// are populated from the decoded parts, so reading the form off the parent
// again does not attempt to re-parse the consumed body.
//
// On any decode failure Split returns ErrInvalidMultipartRequest and nil
// results; it never returns a subset of sub-requests.
func Split(r *http.Request, opts SplitOptions) (map[string]*http.Request, []string, error) {
	items, err := multipart.ParseForm(r.Context(), r.Header.Get("Content-Type"), r.Body, multipart.Options{
		DefaultCharset: opts.DefaultCharset,
		MaxBodyBytes:   opts.MaxBodyBytes,
		ChunkSize:      opts.ReadChunkBytes,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidMultipartRequest, err)
	}

	cacheParentForm(r, items)

	subs := make(map[string]*http.Request, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := subs[item.FieldName]; !seen {
			order = append(order, item.FieldName)
		}
		subs[item.FieldName] = subRequest(r, item)
	}
	return subs, order, nil
}

// subRequest builds one independent request from a decoded part.
func subRequest(parent *http.Request, item multipart.FormItem) *http.Request {
	sub := parent.Clone(parent.Context())
	for _, h := range item.Headers {
		sub.Header.Set(string(h.Name), string(h.Value))
	}

	data := item.Data
	sub.Body = io.NopCloser(bytes.NewReader(data))
	sub.ContentLength = int64(len(data))
	sub.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	// The clone shares the parent's cached form values; the sub-request
	// must not.
	sub.Form = nil
	sub.PostForm = nil
	sub.MultipartForm = nil
	return sub
}

// cacheParentForm fills the parent's parsed-form caches from the decoded
// items. net/http's ParseMultipartForm is a no-op once MultipartForm is
// set, so a later form read on the parent will not touch the drained body.
func cacheParentForm(r *http.Request, items []multipart.FormItem) {
	values := make(map[string][]string, len(items))
	for _, item := range items {
		values[item.FieldName] = append(values[item.FieldName], string(item.Data))
	}

	r.MultipartForm = &stdmultipart.Form{
		Value: values,
		File:  map[string][]*stdmultipart.FileHeader{},
	}
	r.PostForm = url.Values(values)
	if r.Form == nil {
		r.Form = url.Values(values)
	}
}
