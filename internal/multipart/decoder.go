package multipart

import (
	"bytes"
	"errors"
	"fmt"
)

// decodeState positions the decoder within the multipart grammar.
type decodeState uint8

const (
	// statePreamble scans for the first boundary delimiter line.
	statePreamble decodeState = iota + 1
	// stateBoundaryTail has consumed "--boundary" and decides between a
	// new part (CRLF follows) and the final boundary ("--" follows).
	stateBoundaryTail
	// stateHeaders consumes CRLF-terminated header lines up to the blank
	// line that ends the header block.
	stateHeaders
	// stateData consumes literal payload bytes up to the next delimiter.
	stateData
	// stateEpilogue is the terminal state after the final boundary; any
	// trailing bytes are discarded.
	stateEpilogue
)

func (s decodeState) String() string {
	switch s {
	case statePreamble:
		return "preamble"
	case stateBoundaryTail:
		return "boundary"
	case stateHeaders:
		return "headers"
	case stateData:
		return "data"
	case stateEpilogue:
		return "epilogue"
	default:
		return "unknown"
	}
}

var crlf = []byte("\r\n")

// Decoder is an incremental multipart/form-data decoder. Feed it body
// chunks of arbitrary size with Write and it returns the parse events each
// chunk completes; bytes that do not yet terminate an event (a header line
// or boundary split across chunks) are retained internally and replayed on
// the next call. A Decoder serves exactly one body and is not safe for
// concurrent use; concurrent decodes need independent instances.
type Decoder struct {
	delimiter []byte // "--" + boundary
	seam      []byte // CRLF + delimiter, the in-body part separator
	state     decodeState
	buf       []byte
	err       error
	closed    bool
}

// NewDecoder returns a Decoder for a body delimited by the given boundary
// token, as resolved by ParseContentType.
func NewDecoder(boundary []byte) *Decoder {
	delimiter := append([]byte("--"), boundary...)
	return &Decoder{
		delimiter: delimiter,
		seam:      append([]byte("\r\n"), delimiter...),
		state:     statePreamble,
	}
}

// Write feeds one chunk and returns, in order, every event the accumulated
// input now terminates. Event data is copied and stays valid after
// subsequent writes. A decode error is fatal and sticky: every later call
// returns the same error.
func (d *Decoder) Write(chunk []byte) ([]Event, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.closed {
		d.err = errors.New("multipart: write on closed decoder")
		return nil, d.err
	}

	d.buf = append(d.buf, chunk...)

	var events []Event
	for {
		n, evs, more, err := d.step()
		events = append(events, evs...)
		if err != nil {
			d.err = err
			return nil, err
		}
		d.buf = d.buf[n:]
		if !more {
			return events, nil
		}
	}
}

// Close finalizes the decode after the body stream is exhausted. Closing
// anywhere but after the final boundary is a fatal decode error.
func (d *Decoder) Close() error {
	if d.err != nil {
		return d.err
	}
	d.closed = true
	switch d.state {
	case stateEpilogue:
		return nil
	case statePreamble:
		d.err = fmt.Errorf("%w: no boundary delimiter found in body", ErrMalformedMultipart)
	default:
		d.err = fmt.Errorf("%w: stream ended in %s state", ErrIncompleteMultipart, d.state)
	}
	return d.err
}

// step consumes at most one grammar element from the front of d.buf. It
// reports how many bytes were consumed, the events produced, and whether
// another step may make progress on the remaining buffer. No event is ever
// produced for lookahead that is not yet terminated.
func (d *Decoder) step() (consumed int, events []Event, more bool, err error) {
	switch d.state {
	case statePreamble:
		i := bytes.Index(d.buf, d.delimiter)
		if i < 0 {
			// Discard preamble bytes that can no longer begin a
			// delimiter match.
			keep := len(d.delimiter) - 1
			if drop := len(d.buf) - keep; drop > 0 {
				return drop, nil, false, nil
			}
			return 0, nil, false, nil
		}
		d.state = stateBoundaryTail
		return i + len(d.delimiter), nil, true, nil

	case stateBoundaryTail:
		if len(d.buf) < 2 {
			return 0, nil, false, nil
		}
		switch {
		case bytes.HasPrefix(d.buf, crlf):
			d.state = stateHeaders
			return 2, []Event{{Kind: EventPartBegin}}, true, nil
		case bytes.HasPrefix(d.buf, []byte("--")):
			d.state = stateEpilogue
			return 2, []Event{{Kind: EventEnd}}, true, nil
		default:
			return 0, nil, false, fmt.Errorf("%w: unexpected bytes after boundary delimiter", ErrMalformedMultipart)
		}

	case stateHeaders:
		i := bytes.Index(d.buf, crlf)
		if i < 0 {
			return 0, nil, false, nil
		}
		line := d.buf[:i]
		if len(line) == 0 {
			d.state = stateData
			return 2, []Event{{Kind: EventHeadersFinished}}, true, nil
		}
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return 0, nil, false, fmt.Errorf("%w: header line %q has no colon separator", ErrMalformedMultipart, line)
		}
		name := line[:colon]
		value := bytes.TrimLeft(line[colon+1:], " \t")
		events = []Event{
			{Kind: EventHeaderField, Data: bytes.Clone(name)},
			{Kind: EventHeaderValue, Data: bytes.Clone(value)},
			{Kind: EventHeaderEnd},
		}
		return i + 2, events, true, nil

	case stateData:
		i := bytes.Index(d.buf, d.seam)
		if i >= 0 {
			if i > 0 {
				events = append(events, Event{Kind: EventPartData, Data: bytes.Clone(d.buf[:i])})
			}
			events = append(events, Event{Kind: EventPartEnd})
			d.state = stateBoundaryTail
			return i + len(d.seam), events, true, nil
		}
		// Everything except a potential partial seam match at the tail is
		// settled payload and can be flushed.
		safe := len(d.buf) - (len(d.seam) - 1)
		if safe > 0 {
			return safe, []Event{{Kind: EventPartData, Data: bytes.Clone(d.buf[:safe])}}, false, nil
		}
		return 0, nil, false, nil

	case stateEpilogue:
		return len(d.buf), nil, false, nil

	default:
		return 0, nil, false, fmt.Errorf("%w: decoder in invalid state %d", ErrMalformedMultipart, d.state)
	}
}
