package multipart

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Header is one name/value pair from a part's header block. Names are
// stored lowercased, values as the raw bytes after the colon.
type Header struct {
	Name  []byte
	Value []byte
}

// FormItem is one fully assembled part of a multipart body. Headers holds
// the part's headers in stream order, excluding Content-Disposition, which
// is consumed to produce FieldName.
type FormItem struct {
	FieldName string
	Headers   []Header
	Data      []byte
}

// Assembler reduces the decoder's event sequence into FormItems. Header
// name and value bytes are accumulated across events until the closing
// HeaderEnd, because a single logical header may arrive as several
// sub-events when it straddles chunk boundaries. Like the Decoder, an
// Assembler serves one decode and is not safe for concurrent use.
type Assembler struct {
	charset string
	items   []FormItem

	headerField []byte
	headerValue []byte
	disposition []byte
	seenDisp    bool
	fieldName   string
	headers     []Header
	data        []byte
}

// NewAssembler returns an Assembler that decodes header parameter values
// with the given charset, as resolved by ParseContentType.
func NewAssembler(charset string) *Assembler {
	return &Assembler{charset: charset}
}

// Feed applies a batch of events in order. Any error is fatal to the
// decode; no partial items should be used afterwards.
func (a *Assembler) Feed(events []Event) error {
	for _, ev := range events {
		if err := a.on(ev); err != nil {
			return err
		}
	}
	return nil
}

// Items returns the completed items in stream order.
func (a *Assembler) Items() []FormItem {
	return a.items
}

func (a *Assembler) on(ev Event) error {
	switch ev.Kind {
	case EventPartBegin:
		a.headerField = nil
		a.headerValue = nil
		a.disposition = nil
		a.seenDisp = false
		a.fieldName = ""
		a.headers = nil
		a.data = nil

	case EventHeaderField:
		a.headerField = append(a.headerField, ev.Data...)

	case EventHeaderValue:
		a.headerValue = append(a.headerValue, ev.Data...)

	case EventHeaderEnd:
		name := bytes.ToLower(a.headerField)
		if bytes.Equal(name, []byte("content-disposition")) {
			a.disposition = a.headerValue
			a.seenDisp = true
		} else {
			a.headers = append(a.headers, Header{Name: name, Value: a.headerValue})
		}
		a.headerField = nil
		a.headerValue = nil

	case EventHeadersFinished:
		if !a.seenDisp {
			return fmt.Errorf("%w: part has no content-disposition header", ErrMissingFieldName)
		}
		_, params, err := mime.ParseMediaType(string(a.disposition))
		if err != nil {
			return fmt.Errorf("%w: invalid content-disposition %q: %v", ErrMalformedMultipart, a.disposition, err)
		}
		raw, ok := params["name"]
		if !ok {
			return fmt.Errorf("%w: content-disposition %q has no name parameter", ErrMissingFieldName, a.disposition)
		}
		a.fieldName, err = decodeText([]byte(raw), a.charset)
		if err != nil {
			return err
		}

	case EventPartData:
		a.data = append(a.data, ev.Data...)

	case EventPartEnd:
		a.items = append(a.items, FormItem{
			FieldName: a.fieldName,
			Headers:   a.headers,
			Data:      a.data,
		})
		a.headers = nil
		a.data = nil

	case EventEnd:
		// Terminal; nothing to accumulate.
	}
	return nil
}

// decodeText decodes header parameter bytes using the named charset.
// UTF-8 and US-ASCII pass through unchanged; unknown charset names fall
// back to the raw bytes rather than failing the whole decode.
func decodeText(b []byte, charset string) (string, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return string(b), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(b), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: decoding %q as %s: %v", ErrMalformedMultipart, b, charset, err)
	}
	return string(out), nil
}
